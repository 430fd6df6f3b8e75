package kb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/metrics"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
)

const defaultCategory = "general"

// Service ingests knowledge-base documents and runs hybrid search over them.
type Service struct {
	Repo     Repo
	Embedder llm.Embedder
	// Defaults seeds zero-valued SearchOptions fields, typically from config.
	Defaults SearchOptions

	ChunkSize    int
	ChunkOverlap int

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service with the default chunking settings.
func NewService(repo Repo, embedder llm.Embedder, defaults SearchOptions) *Service {
	return &Service{
		Repo:         repo,
		Embedder:     embedder,
		Defaults:     defaults,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// Ingest chunks and embeds content, then stores the document with its chunks.
// Nothing is stored if any chunk fails to embed.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (Document, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return Document{}, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	if s.Embedder == nil {
		return Document{}, fmt.Errorf("kb ingest: %w", llm.ErrNotConfigured)
	}
	category := normalizeCategory(in.Category)

	pieces := ChunkText(content, s.ChunkSize, s.ChunkOverlap)
	now := s.now()
	doc := Document{
		ID:         s.newID(),
		Title:      title,
		Source:     strings.TrimSpace(in.Source),
		Category:   category,
		ChunkCount: len(pieces),
		CreatedAt:  now,
	}

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		emb, err := s.Embedder.Embed(ctx, piece)
		if err != nil {
			return Document{}, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, Chunk{
			ID:         s.newID(),
			DocumentID: doc.ID,
			Ordinal:    i,
			Content:    piece,
			Category:   category,
			Keywords:   ExtractKeywords(piece),
			Embedding:  emb,
			CreatedAt:  now,
		})
	}

	if err := s.Repo.CreateDocument(ctx, doc, chunks); err != nil {
		return Document{}, fmt.Errorf("store kb document: %w", err)
	}
	telemetry.Info("kb.ingest", map[string]any{
		"document_id": doc.ID,
		"category":    doc.Category,
		"chunks":      len(chunks),
	})
	return doc, nil
}

// Search runs the vector and keyword legs and fuses them. A failing leg
// degrades the search to the surviving one; only both failing is an error.
func (s *Service) Search(ctx context.Context, query string, opts SearchOptions) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	opts = resolveOptions(s.withDefaults(opts))
	if opts.Category != "" {
		opts.Category = normalizeCategory(opts.Category)
	}
	start := time.Now()

	vector, vecErr := s.vectorLeg(ctx, query, opts)
	terms := ExtractKeywords(query)
	var (
		keyword []Candidate
		kwErr   error
	)
	if len(terms) > 0 {
		keyword, kwErr = s.Repo.KeywordSearch(ctx, terms, opts.Category, opts.CandidateLimit)
		if kwErr == nil && keyword == nil {
			keyword = []Candidate{}
		}
	}

	if vecErr != nil && (kwErr != nil || len(terms) == 0) {
		if err := ctx.Err(); err != nil {
			return SearchResult{}, err
		}
		if kwErr == nil {
			kwErr = errors.New("no keywords in query")
		}
		return SearchResult{}, fmt.Errorf("%w: vector: %w; keyword: %w", ErrSearchFailed, vecErr, kwErr)
	}

	mode := ModeHybrid
	degraded := false
	switch {
	case vecErr != nil:
		mode, degraded = ModeKeywordOnly, true
		vector = nil
		telemetry.Warn("kb.search.degraded", map[string]any{"mode": mode, "error": vecErr.Error()})
	case kwErr != nil:
		mode, degraded = ModeVectorOnly, true
		keyword = nil
		telemetry.Warn("kb.search.degraded", map[string]any{"mode": mode, "error": kwErr.Error()})
	case len(terms) == 0:
		mode = ModeVectorOnly
	}

	results := fuse(vector, keyword, opts)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	metrics.ObserveKBSearch(elapsed, degraded)
	telemetry.Info("kb.search", map[string]any{
		"mode":        mode,
		"category":    opts.Category,
		"results":     len(results),
		"terms":       len(terms),
		"duration_ms": elapsed,
	})
	return SearchResult{Query: query, Mode: mode, Results: results}, nil
}

func (s *Service) vectorLeg(ctx context.Context, query string, opts SearchOptions) ([]Candidate, error) {
	if s.Embedder == nil {
		return nil, llm.ErrNotConfigured
	}
	emb, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	cands, err := s.Repo.VectorSearch(ctx, emb, opts.Category, opts.CandidateLimit)
	if err != nil {
		return nil, err
	}
	if cands == nil {
		cands = []Candidate{}
	}
	return cands, nil
}

// withDefaults fills zero fields from the service defaults. Weights are
// only taken as a pair so a caller setting one weight keeps its meaning.
func (s *Service) withDefaults(opts SearchOptions) SearchOptions {
	d := s.Defaults
	if opts.TopK == 0 {
		opts.TopK = d.TopK
	}
	if opts.VectorWeight == 0 && opts.KeywordWeight == 0 {
		opts.VectorWeight, opts.KeywordWeight = d.VectorWeight, d.KeywordWeight
	}
	if opts.MinScore == 0 && !opts.MinScoreSet {
		opts.MinScore = d.MinScore
	}
	if opts.CandidateLimit == 0 {
		opts.CandidateLimit = d.CandidateLimit
	}
	return opts
}

// ListDocuments pages through stored documents, newest first.
func (s *Service) ListDocuments(ctx context.Context, category string, limit, offset int) ([]Document, error) {
	if category != "" {
		category = normalizeCategory(category)
	}
	return s.Repo.ListDocuments(ctx, category, limit, offset)
}

// DeleteDocument removes a document and its chunks.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if err := s.Repo.DeleteDocument(ctx, id); err != nil {
		return err
	}
	telemetry.Info("kb.delete", map[string]any{"document_id": id})
	return nil
}

func normalizeCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" {
		return defaultCategory
	}
	return c
}
