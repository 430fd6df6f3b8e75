package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	// GetCurrentByUser returns the newest document of the given kind.
	GetCurrentByUser(ctx context.Context, userID, kind string) (Document, error)
	// ListByUser lists newest first; an empty kind matches every kind.
	ListByUser(ctx context.Context, userID, kind string, limit, offset int) ([]Document, error)
	// UpdateExtraction records the extracted text key once; later calls keep the first key.
	UpdateExtraction(ctx context.Context, userID, documentID, extractedKey string, extractedAt time.Time) error
}
