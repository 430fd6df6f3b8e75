package salary

import "time"

const (
	PeriodMonthly   = "monthly"
	DefaultCurrency = "IDR"

	// Category is the knowledge-base category searched for benchmarks.
	Category = "salary"

	// RetrievalUnavailable marks a benchmark generated without KB context.
	RetrievalUnavailable = "unavailable"
)

// Input describes the role to benchmark.
type Input struct {
	JobTitle        string   `json:"jobTitle" validate:"required,max=120"`
	Location        string   `json:"location" validate:"required,max=120"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0,lte=50"`
	Industry        string   `json:"industry,omitempty" validate:"max=80"`
	Education       string   `json:"education,omitempty" validate:"max=80"`
	Skills          []string `json:"skills,omitempty" validate:"max=30,dive,max=50"`
	Currency        string   `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// Benchmark is a monthly salary band with supporting narrative.
type Benchmark struct {
	Currency        string   `json:"currency"`
	Min             float64  `json:"min"`
	P25             float64  `json:"p25"`
	Median          float64  `json:"median"`
	P75             float64  `json:"p75"`
	Max             float64  `json:"max"`
	Period          string   `json:"period"`
	Confidence      string   `json:"confidence"`
	Summary         string   `json:"summary"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
	Sources         []string `json:"sources"`
}

// Request is one persisted benchmark request.
type Request struct {
	ID            string    `json:"requestId"`
	UserID        string    `json:"-"`
	Input         Input     `json:"input"`
	Result        Benchmark `json:"result"`
	CacheHit      bool      `json:"cacheHit"`
	RetrievalMode string    `json:"retrievalMode"`
	CreatedAt     time.Time `json:"createdAt"`
}

// cachedBenchmark is what the AI cache stores for a normalized input.
type cachedBenchmark struct {
	Result        Benchmark `json:"result"`
	RetrievalMode string    `json:"retrievalMode"`
}
