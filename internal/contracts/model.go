package contracts

import "time"

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Severity levels for risks and overall contract risk.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// KeyTerms are the headline terms of an employment contract.
type KeyTerms struct {
	Salary       string   `json:"salary"`
	Duration     string   `json:"duration"`
	Probation    string   `json:"probation"`
	NoticePeriod string   `json:"noticePeriod"`
	WorkingHours string   `json:"workingHours"`
	Benefits     []string `json:"benefits"`
}

// Risk is one problematic clause.
type Risk struct {
	Clause         string `json:"clause"`
	Severity       string `json:"severity"`
	Explanation    string `json:"explanation"`
	Recommendation string `json:"recommendation"`
}

// Result is the normalized contract review.
type Result struct {
	Summary       string   `json:"summary"`
	ContractType  string   `json:"contractType"`
	Parties       []string `json:"parties"`
	KeyTerms      KeyTerms `json:"keyTerms"`
	Risks         []Risk   `json:"risks"`
	RedFlags      []string `json:"redFlags"`
	OverallRisk   string   `json:"overallRisk"`
	FairnessScore int      `json:"fairnessScore"`
}

// Failure describes why an analysis failed.
type Failure struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Analysis is one contract analysis job.
type Analysis struct {
	ID          string
	UserID      string
	DocumentID  string
	Status      string
	Notes       string
	Result      *Result
	Failure     *Failure
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Finished reports whether the analysis reached a terminal status.
func (a Analysis) Finished() bool {
	return a.Status == StatusCompleted || a.Status == StatusFailed
}
