package kb

import "context"

// Repo persists knowledge-base documents and serves both retrieval legs.
type Repo interface {
	CreateDocument(ctx context.Context, doc Document, chunks []Chunk) error
	GetDocument(ctx context.Context, id string) (Document, error)
	ListDocuments(ctx context.Context, category string, limit, offset int) ([]Document, error)
	DeleteDocument(ctx context.Context, id string) error
	// VectorSearch returns the nearest chunks with their cosine similarity.
	VectorSearch(ctx context.Context, embedding []float32, category string, limit int) ([]Candidate, error)
	// KeywordSearch returns chunks matching any term with a raw, non-negative rank.
	KeywordSearch(ctx context.Context, terms []string, category string, limit int) ([]Candidate, error)
}
