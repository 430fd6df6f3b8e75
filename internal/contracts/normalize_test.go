package contracts

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeResultComplete(t *testing.T) {
	raw := []byte(`{
	  "summary": "Fixed-term contract with a long probation.",
	  "contractType": "PKWT",
	  "parties": ["PT Maju Jaya", "Budi"],
	  "keyTerms": {"salary": "Rp 8.000.000 per month", "duration": 12, "probation": "6 months", "noticePeriod": "", "workingHours": "40 hours/week", "benefits": ["BPJS Kesehatan", "THR"]},
	  "risks": [
	    {"clause": "Probation of 6 months", "severity": "HIGH", "explanation": "PKWT may not include probation.", "recommendation": "Ask to remove it."},
	    {"clause": "Overtime unpaid", "severity": "urgent", "explanation": "", "recommendation": ""},
	    {"clause": "", "severity": "low"}
	  ],
	  "redFlags": "probation in PKWT",
	  "overallRisk": "tinggi",
	  "fairnessScore": "55%"
	}`)
	res, err := normalizeResult(raw)
	if err != nil {
		t.Fatalf("normalizeResult: %v", err)
	}
	if res.KeyTerms.Duration != "12" || !reflect.DeepEqual(res.KeyTerms.Benefits, []string{"BPJS Kesehatan", "THR"}) {
		t.Fatalf("unexpected key terms: %+v", res.KeyTerms)
	}
	if len(res.Risks) != 2 || res.Risks[0].Severity != SeverityHigh || res.Risks[1].Severity != SeverityMedium {
		t.Fatalf("unexpected risks: %+v", res.Risks)
	}
	if !reflect.DeepEqual(res.RedFlags, []string{"probation in PKWT"}) {
		t.Fatalf("redFlags = %v", res.RedFlags)
	}
	if res.OverallRisk != SeverityHigh || res.FairnessScore != 55 {
		t.Fatalf("overall=%q score=%d", res.OverallRisk, res.FairnessScore)
	}
}

func TestNormalizeResultDerivesMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		overall string
		score   int
		ctype   string
	}{
		{name: "derived from risks", raw: `{"summary":"ok","risks":[{"clause":"a","severity":"medium"},{"clause":"b","severity":"low"}]}`, overall: SeverityMedium, score: 85, ctype: "other"},
		{name: "no risks", raw: `{"summary":"ok","contractType":"PKWTT"}`, overall: SeverityLow, score: 100, ctype: "PKWTT"},
		{name: "score clamped high", raw: `{"summary":"ok","fairnessScore":140}`, overall: SeverityLow, score: 100, ctype: "other"},
		{name: "score clamped low", raw: `{"summary":"ok","fairnessScore":-3.2,"overallRisk":"unknown"}`, overall: SeverityLow, score: 0, ctype: "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := normalizeResult([]byte(tt.raw))
			if err != nil {
				t.Fatalf("normalizeResult: %v", err)
			}
			if res.OverallRisk != tt.overall || res.FairnessScore != tt.score || res.ContractType != tt.ctype {
				t.Fatalf("got overall=%q score=%d type=%q", res.OverallRisk, res.FairnessScore, res.ContractType)
			}
			if res.Risks == nil || res.Parties == nil || res.KeyTerms.Benefits == nil {
				t.Fatalf("lists must be non-nil for JSON output: %+v", res)
			}
		})
	}
}

func TestNormalizeResultRejectsUnusableOutput(t *testing.T) {
	for _, raw := range []string{`not json`, `["summary"]`, `{"risks":[]}`, `{"summary":"   "}`} {
		if _, err := normalizeResult([]byte(raw)); !errors.Is(err, errSchema) {
			t.Fatalf("%s: expected schema error, got %v", raw, err)
		}
	}
}
