package jobs

import "time"

// Work types accepted by the listing search.
const (
	WorkTypeOnsite = "onsite"
	WorkTypeRemote = "remote"
	WorkTypeHybrid = "hybrid"
)

// Query is one page of a LinkedIn guest search.
type Query struct {
	Keywords string `json:"keywords"`
	Location string `json:"location,omitempty"`
	WorkType string `json:"workType,omitempty"`
	Page     int    `json:"page"`
}

// Job is a listing card, optionally enriched with its description.
type Job struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Company     string            `json:"company"`
	CompanyURL  string            `json:"companyUrl,omitempty"`
	Location    string            `json:"location"`
	URL         string            `json:"url"`
	PostedAt    string            `json:"postedAt,omitempty"`
	Description string            `json:"description,omitempty"`
	Criteria    map[string]string `json:"criteria,omitempty"`
}

// MatchInput configures one CV-to-jobs match run.
type MatchInput struct {
	Keywords    string `json:"keywords" validate:"required,max=100"`
	Location    string `json:"location" validate:"max=100"`
	WorkType    string `json:"workType" validate:"omitempty,oneof=onsite remote hybrid"`
	Pages       int    `json:"pages" validate:"min=0,max=3"`
	DocumentID  string `json:"documentId" validate:"max=64"`
	DetailLimit int    `json:"detailLimit" validate:"min=0,max=10"`
}

// Fit is how well a CV covers one job.
type Fit struct {
	Score            float64  `json:"score"`
	Coverage         float64  `json:"coverage"`
	TitleBonus       bool     `json:"titleBonus"`
	MatchingKeywords []string `json:"matchingKeywords"`
	MissingKeywords  []string `json:"missingKeywords"`
}

// ScoredJob pairs a listing with its fit.
type ScoredJob struct {
	Job
	Fit
}

// MatchResult is the ranked outcome of a match run.
type MatchResult struct {
	DocumentID string      `json:"documentId"`
	CVKeywords int         `json:"cvKeywords"`
	Jobs       []ScoredJob `json:"jobs"`
	CacheHit   bool        `json:"cacheHit"`
	MatchedAt  time.Time   `json:"matchedAt"`
}
