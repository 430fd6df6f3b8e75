package salary

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const maxListItems = 8

// parseBenchmark reads model output tolerantly and repairs the salary band.
// Output without any usable amount is rejected rather than filled in.
func parseBenchmark(raw []byte, inputCurrency string) (Benchmark, error) {
	if !gjson.ValidBytes(raw) {
		return Benchmark{}, fmt.Errorf("%w: response is not valid JSON", ErrGenerationFailed)
	}
	doc := gjson.ParseBytes(raw)

	amounts := [5]amount{
		readAmount(doc, "min"),
		readAmount(doc, "p25"),
		readAmount(doc, "median"),
		readAmount(doc, "p75"),
		readAmount(doc, "max"),
	}
	if !amounts[0].ok && !amounts[2].ok && !amounts[4].ok {
		return Benchmark{}, fmt.Errorf("%w: response has no salary amounts", ErrGenerationFailed)
	}

	period := strings.ToLower(strings.TrimSpace(doc.Get("period").String()))
	if period == "yearly" || period == "annual" || period == "annually" {
		for i := range amounts {
			amounts[i].v /= 12
		}
	}
	min, p25, median, p75, max := repairBand(amounts)

	return Benchmark{
		Currency:        normalizeCurrency(doc.Get("currency").String(), inputCurrency),
		Min:             min,
		P25:             p25,
		Median:          median,
		P75:             p75,
		Max:             max,
		Period:          PeriodMonthly,
		Confidence:      normalizeConfidence(doc.Get("confidence").String()),
		Summary:         strings.TrimSpace(doc.Get("summary").String()),
		Factors:         readStrings(doc.Get("factors")),
		Recommendations: readStrings(doc.Get("recommendations")),
		Sources:         []string{},
	}, nil
}

type amount struct {
	v  float64
	ok bool
}

// readAmount accepts numbers and strings such as "Rp 15.000.000", at the top
// level or inside a nested "salaryRange" object.
func readAmount(doc gjson.Result, key string) amount {
	r := doc.Get(key)
	if !r.Exists() {
		r = doc.Get("salaryRange." + key)
	}
	switch r.Type {
	case gjson.Number:
		if r.Float() > 0 {
			return amount{v: r.Float(), ok: true}
		}
	case gjson.String:
		if v, ok := parseAmountText(r.String()); ok {
			return amount{v: v, ok: true}
		}
	}
	return amount{}
}

// parseAmountText reads one written amount: "Rp 12.500.000,50", "USD 3,000.00",
// "15 000 000", "8,5 juta", "500rb". Text holding more than one number, a sign,
// or separators that could mean either thousands or decimals is rejected.
func parseAmountText(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return 0, false
	}
	if strings.HasSuffix(strings.TrimSpace(s[:start]), "-") {
		return 0, false
	}
	end := start
	for end < len(s) {
		c := s[end]
		if isDigit(c) {
			end++
			continue
		}
		if (c == '.' || c == ',' || c == ' ') && end+1 < len(s) && isDigit(s[end+1]) {
			end++
			continue
		}
		break
	}
	rest := s[end:]
	if strings.ContainsAny(rest, "0123456789") {
		return 0, false
	}
	mult := amountMultiplier(rest)
	v, ok := parseGroupedNumber(s[start:end], mult != 1)
	if !ok || v <= 0 {
		return 0, false
	}
	return v * mult, true
}

func amountMultiplier(rest string) float64 {
	rest = strings.TrimLeft(rest, " ")
	i := 0
	for i < len(rest) && rest[i] >= 'a' && rest[i] <= 'z' {
		i++
	}
	switch rest[:i] {
	case "juta", "jt", "million", "mio":
		return 1e6
	case "ribu", "rb", "k", "thousand":
		return 1e3
	}
	return 1
}

// parseGroupedNumber splits body on '.', ',' and ' '. Integer groups after the
// first must have three digits and share one separator. A trailing group is a
// decimal part when its separator differs from the thousands separator or it
// has one or two digits. A lone three-digit group after a multiplier word
// ("8.500 juta") is ambiguous.
func parseGroupedNumber(body string, scaled bool) (float64, bool) {
	var (
		groups []string
		seps   []byte
		last   int
	)
	for i := 0; i < len(body); i++ {
		if c := body[i]; c == '.' || c == ',' || c == ' ' {
			groups = append(groups, body[last:i])
			seps = append(seps, c)
			last = i + 1
		}
	}
	groups = append(groups, body[last:])
	if len(seps) == 0 {
		v, err := strconv.ParseFloat(body, 64)
		return v, err == nil
	}

	intGroups, intSeps, frac := groups, seps, ""
	lastSep := seps[len(seps)-1]
	lastGroup := groups[len(groups)-1]
	if lastSep != ' ' {
		decimal := false
		switch {
		case len(seps) > 1 && lastSep != seps[len(seps)-2]:
			decimal = true
		case len(lastGroup) <= 2:
			decimal = true
		case len(seps) == 1 && scaled:
			return 0, false
		}
		if decimal {
			frac = lastGroup
			intGroups = groups[:len(groups)-1]
			intSeps = seps[:len(seps)-1]
			for _, sp := range intSeps {
				if sp == lastSep {
					return 0, false
				}
			}
		}
	}

	if len(intGroups) > 1 && len(intGroups[0]) > 3 {
		return 0, false
	}
	for _, g := range intGroups[1:] {
		if len(g) != 3 {
			return 0, false
		}
	}
	for _, sp := range intSeps {
		if sp != intSeps[0] {
			return 0, false
		}
	}
	num := strings.Join(intGroups, "")
	if frac != "" {
		num += "." + frac
	}
	v, err := strconv.ParseFloat(num, 64)
	return v, err == nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// repairBand fills missing points from their neighbours and forces an ascending band.
func repairBand(a [5]amount) (min, p25, median, p75, max float64) {
	first := func(idx ...int) (float64, bool) {
		for _, i := range idx {
			if a[i].ok {
				return a[i].v, true
			}
		}
		return 0, false
	}
	if !a[2].ok {
		lo, okLo := first(0, 1)
		hi, okHi := first(4, 3)
		switch {
		case okLo && okHi:
			a[2] = amount{v: (lo + hi) / 2, ok: true}
		case okLo:
			a[2] = amount{v: lo, ok: true}
		default:
			a[2] = amount{v: hi, ok: true}
		}
	}
	if !a[0].ok {
		v, _ := first(1, 2)
		a[0] = amount{v: v, ok: true}
	}
	if !a[4].ok {
		v, _ := first(3, 2)
		a[4] = amount{v: v, ok: true}
	}
	if !a[1].ok {
		a[1] = amount{v: (a[0].v + a[2].v) / 2, ok: true}
	}
	if !a[3].ok {
		a[3] = amount{v: (a[2].v + a[4].v) / 2, ok: true}
	}

	vals := []float64{a[0].v, a[1].v, a[2].v, a[3].v, a[4].v}
	for i, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		vals[i] = math.Round(v)
	}
	sort.Float64s(vals)
	return vals[0], vals[1], vals[2], vals[3], vals[4]
}

func normalizeCurrency(raw, fallback string) string {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if len(c) != 3 {
		return fallback
	}
	for _, ch := range c {
		if ch < 'A' || ch > 'Z' {
			return fallback
		}
	}
	return c
}

func normalizeConfidence(raw string) string {
	switch c := strings.ToLower(strings.TrimSpace(raw)); c {
	case "low", "medium", "high":
		return c
	}
	return "medium"
}

func readStrings(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		if s := strings.TrimSpace(r.String()); r.Type == gjson.String && s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range r.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
		if len(out) == maxListItems {
			break
		}
	}
	return out
}
