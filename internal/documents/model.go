package documents

import (
	"fmt"
	"strings"
	"time"
)

// Document kinds.
const (
	KindCV       = "cv"
	KindContract = "contract"
)

// Document represents an uploaded document owned by a user.
type Document struct {
	ID               string
	UserID           string
	Kind             string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}

// ParseKind normalizes a kind; empty means cv.
func ParseKind(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", KindCV:
		return KindCV, nil
	case KindContract:
		return KindContract, nil
	default:
		return "", fmt.Errorf("%w: kind must be cv or contract", ErrInvalidInput)
	}
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	Kind       string    `json:"kind"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	Extracted  bool      `json:"extracted"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		Kind:       doc.Kind,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		Extracted:  doc.ExtractedTextKey != "",
		UploadedAt: doc.CreatedAt,
	}
}
