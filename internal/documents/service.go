package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/extract"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/object"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/util"
)

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            DocumentsRepo
	StorageProvider string

	now   func() time.Time
	newID func() string
}

// NewService wires a Service; provider is recorded on each document (local or s3).
func NewService(store object.ObjectStore, repo DocumentsRepo, provider string) *Service {
	return &Service{
		Store:           store,
		Repo:            repo,
		StorageProvider: provider,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
}

func supportedMime(mimeType string) bool {
	switch mimeType {
	case util.MimePDF, util.MimeDOCX, util.MimeText:
		return true
	}
	return false
}

// Upload saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, userID, kind, fileName string, r io.Reader) (Document, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(fileName) == "" {
		return Document{}, ErrInvalidInput
	}
	kind, err := ParseKind(kind)
	if err != nil {
		return Document{}, err
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}
	if !supportedMime(mimeType) {
		s.discard(ctx, storageKey)
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	doc := Document{
		ID:              s.newID(),
		UserID:          userID,
		Kind:            kind,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		CreatedAt:       s.now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		s.discard(ctx, storageKey)
		return Document{}, fmt.Errorf("record document: %w", err)
	}

	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"user_id":     userID,
		"kind":        kind,
		"mime_type":   mimeType,
		"size_bytes":  size,
	})
	return doc, nil
}

// discard removes an object whose document was never recorded.
func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
		telemetry.Warn("document.discard_failed", map[string]any{"storage_key": key, "error": err.Error()})
	}
}

// Current returns the newest document of kind for a user.
func (s *Service) Current(ctx context.Context, userID, kind string) (Document, error) {
	if userID == "" {
		return Document{}, errors.New("user id required")
	}
	kind, err := ParseKind(kind)
	if err != nil {
		return Document{}, err
	}
	return s.Repo.GetCurrentByUser(ctx, userID, kind)
}

// Get returns a document owned by userID.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// List returns a user's documents newest first; an empty kind lists all.
func (s *Service) List(ctx context.Context, userID, kind string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if kind != "" {
		parsed, err := ParseKind(kind)
		if err != nil {
			return nil, err
		}
		kind = parsed
	}
	return s.Repo.ListByUser(ctx, userID, kind, limit, offset)
}

// Text returns the extracted text of a user's document.
func (s *Service) Text(ctx context.Context, userID, documentID string) (string, error) {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return "", err
	}
	return s.TextFor(ctx, doc)
}

// TextFor returns doc's text, reusing a stored extraction when one exists and
// recording a new one otherwise.
func (s *Service) TextFor(ctx context.Context, doc Document) (string, error) {
	if doc.ExtractedTextKey != "" {
		text, err := extract.LoadExtracted(ctx, s.Store, doc.StorageKey)
		if err == nil {
			return text, nil
		}
		telemetry.Warn("document.extracted_missing", map[string]any{"document_id": doc.ID, "error": err.Error()})
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", err
	}
	if doc.ExtractedTextKey == "" {
		if err := s.Repo.UpdateExtraction(ctx, doc.UserID, doc.ID, extract.ExtractedKey(doc.StorageKey), s.now()); err != nil {
			return "", fmt.Errorf("record extraction: %w", err)
		}
	}
	return text, nil
}
