package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	maxListItems = 15
	maxRisks     = 20
)

// normalizeResult reads model output tolerantly: strings may arrive as
// numbers, lists as single strings, and unknown severities become medium.
func normalizeResult(raw json.RawMessage) (Result, error) {
	if !gjson.ValidBytes(raw) {
		return Result{}, fmt.Errorf("%w: response is not valid JSON", errSchema)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Result{}, fmt.Errorf("%w: response is not an object", errSchema)
	}

	res := Result{
		Summary:      text(doc.Get("summary")),
		ContractType: text(doc.Get("contractType")),
		Parties:      list(doc.Get("parties")),
		RedFlags:     list(doc.Get("redFlags")),
	}
	if res.Summary == "" {
		return Result{}, fmt.Errorf("%w: summary is missing", errSchema)
	}
	if res.ContractType == "" {
		res.ContractType = "other"
	}

	terms := doc.Get("keyTerms")
	res.KeyTerms = KeyTerms{
		Salary:       text(terms.Get("salary")),
		Duration:     text(terms.Get("duration")),
		Probation:    text(terms.Get("probation")),
		NoticePeriod: text(terms.Get("noticePeriod")),
		WorkingHours: text(terms.Get("workingHours")),
		Benefits:     list(terms.Get("benefits")),
	}

	res.Risks = []Risk{}
	doc.Get("risks").ForEach(func(_, item gjson.Result) bool {
		clause := text(item.Get("clause"))
		if clause == "" {
			return true
		}
		res.Risks = append(res.Risks, Risk{
			Clause:         clause,
			Severity:       normalizeSeverity(item.Get("severity").String(), SeverityMedium),
			Explanation:    text(item.Get("explanation")),
			Recommendation: text(item.Get("recommendation")),
		})
		return len(res.Risks) < maxRisks
	})

	res.OverallRisk = normalizeSeverity(doc.Get("overallRisk").String(), highestSeverity(res.Risks))
	if score, ok := readScore(doc.Get("fairnessScore")); ok {
		res.FairnessScore = score
	} else {
		res.FairnessScore = scoreFromRisks(res.Risks)
	}
	return res, nil
}

func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(v.String())
	}
	return ""
}

func list(v gjson.Result) []string {
	out := []string{}
	if v.Type == gjson.String {
		if s := text(v); s != "" {
			out = append(out, s)
		}
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		if s := text(item); s != "" {
			out = append(out, s)
		}
		return len(out) < maxListItems
	})
	return out
}

func normalizeSeverity(raw, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case SeverityLow, "rendah":
		return SeverityLow
	case SeverityMedium, "moderate", "sedang":
		return SeverityMedium
	case SeverityHigh, "critical", "tinggi":
		return SeverityHigh
	}
	return fallback
}

func highestSeverity(risks []Risk) string {
	level := SeverityLow
	for _, r := range risks {
		switch r.Severity {
		case SeverityHigh:
			return SeverityHigh
		case SeverityMedium:
			level = SeverityMedium
		}
	}
	return level
}

func readScore(v gjson.Result) (int, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v.String()), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(math.Max(0, math.Min(100, f)))), true
}

// scoreFromRisks estimates fairness when the model omits a score.
func scoreFromRisks(risks []Risk) int {
	score := 100
	for _, r := range risks {
		switch r.Severity {
		case SeverityHigh:
			score -= 25
		case SeverityMedium:
			score -= 10
		default:
			score -= 5
		}
	}
	return max(score, 0)
}
