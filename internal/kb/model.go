package kb

import "time"

// Retrieval modes reported with every search.
const (
	ModeHybrid      = "hybrid"
	ModeVectorOnly  = "vector_only"
	ModeKeywordOnly = "keyword_only"
)

// Legs named in ScoredChunk.MatchedBy.
const (
	LegVector  = "vector"
	LegKeyword = "keyword"
)

// Search defaults.
const (
	DefaultTopK          = 5
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
	DefaultMinScore      = 0.0
	MaxTopK              = 50
	minCandidateLimit    = 20
)

// Document is a knowledge-base source such as a salary survey or a labour regulation.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Category   string    `json:"category"`
	ChunkCount int       `json:"chunkCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Chunk is one embedded window of a document.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Ordinal    int       `json:"ordinal"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	Keywords   []string  `json:"keywords,omitempty"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`

	// Populated on reads from the owning document.
	DocumentTitle string `json:"documentTitle,omitempty"`
	Source        string `json:"source,omitempty"`
}

// SearchOptions tunes a hybrid search. Zero values take the defaults.
type SearchOptions struct {
	TopK           int     `json:"topK"`
	VectorWeight   float64 `json:"vectorWeight"`
	KeywordWeight  float64 `json:"keywordWeight"`
	MinScore       float64 `json:"minScore"`
	Category       string  `json:"category"`
	CandidateLimit int     `json:"candidateLimit"`

	// MinScoreSet marks MinScore as explicit, so zero overrides a configured floor.
	MinScoreSet bool `json:"-"`
}

// ScoredChunk is a merged search hit.
type ScoredChunk struct {
	Chunk
	VectorScore  float64  `json:"vectorScore"`
	KeywordScore float64  `json:"keywordScore"`
	Score        float64  `json:"score"`
	MatchedBy    []string `json:"matchedBy"`
}

// SearchResult is the outcome of Service.Search.
type SearchResult struct {
	Query   string        `json:"query"`
	Mode    string        `json:"mode"`
	Results []ScoredChunk `json:"results"`
}

// Candidate is a raw hit from a single retrieval leg. For the vector leg
// Score is a cosine similarity in [-1,1]; for the keyword leg it is a
// non-negative rank.
type Candidate struct {
	Chunk Chunk
	Score float64
}

// IngestInput is the payload for Service.Ingest.
type IngestInput struct {
	Title    string `json:"title" binding:"required"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Content  string `json:"content" binding:"required"`
}
