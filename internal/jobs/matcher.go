package jobs

import (
	"math"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/kb"
)

const (
	titleBonus      = 10.0
	maxMissingTerms = 15
)

// Matcher scores keyword coverage of a job by a CV.
type Matcher struct{}

// Score returns the share of the job's keywords present in the CV, plus a
// bonus when the CV mentions any title keyword, capped at 100.
func (Matcher) Score(cvKeywords []string, job Job) Fit {
	cv := make(map[string]bool, len(cvKeywords))
	for _, k := range cvKeywords {
		cv[k] = true
	}
	// Sorted, so both keyword lists come out sorted.
	jobKW := kb.ExtractKeywords(job.Title + "\n" + job.Description)

	fit := Fit{MatchingKeywords: []string{}, MissingKeywords: []string{}}
	for _, k := range jobKW {
		if cv[k] {
			fit.MatchingKeywords = append(fit.MatchingKeywords, k)
		} else if len(fit.MissingKeywords) < maxMissingTerms {
			fit.MissingKeywords = append(fit.MissingKeywords, k)
		}
	}
	if len(jobKW) > 0 {
		fit.Coverage = round1(float64(len(fit.MatchingKeywords)) / float64(len(jobKW)) * 100)
	}
	for _, k := range kb.ExtractKeywords(job.Title) {
		if cv[k] {
			fit.TitleBonus = true
			break
		}
	}
	fit.Score = fit.Coverage
	if fit.TitleBonus {
		fit.Score = round1(fit.Score + titleBonus)
	}
	fit.Score = math.Min(fit.Score, 100)
	return fit
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
