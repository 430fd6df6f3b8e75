package salary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/kb"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/metrics"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/cache"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

const cacheNamespace = "salary:v1"

// Searcher is the knowledge-base retrieval the benchmark depends on.
type Searcher interface {
	Search(ctx context.Context, query string, opts kb.SearchOptions) (kb.SearchResult, error)
}

// Quota gates model calls per principal.
type Quota interface {
	CanConsume(ctx context.Context, userID string, n int) (bool, usage.Usage, error)
	Consume(ctx context.Context, userID string, n int) (usage.Usage, error)
}

// Service produces salary benchmarks grounded in knowledge-base context.
type Service struct {
	Repo      Repo
	KB        Searcher
	Generator llm.Generator
	Cache     cache.Cache
	CacheTTL  time.Duration
	Usage     Quota

	now   func() time.Time
	newID func() string
}

// NewService wires a Service.
func NewService(repo Repo, searcher Searcher, gen llm.Generator, c cache.Cache, ttl time.Duration, quota Quota) *Service {
	return &Service{
		Repo:      repo,
		KB:        searcher,
		Generator: gen,
		Cache:     c,
		CacheTTL:  ttl,
		Usage:     quota,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Benchmark validates the input, serves a cached answer when available and
// otherwise retrieves KB context, asks the generator and repairs its band.
func (s *Service) Benchmark(ctx context.Context, userID string, in Input) (Request, error) {
	norm, err := normalize(in)
	if err != nil {
		return Request{}, err
	}
	key := cache.Key(cacheNamespace, cacheParts(norm)...)

	if s.Cache != nil {
		var cached cachedBenchmark
		hit, err := cache.GetJSON(ctx, s.Cache, key, &cached)
		if err != nil {
			telemetry.Warn("salary.cache_error", map[string]any{"error": err.Error()})
		}
		metrics.ObserveCache(hit)
		if hit {
			return s.persist(ctx, userID, norm, cached.Result, cached.RetrievalMode, true)
		}
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Request{}, fmt.Errorf("check usage: %w", err)
		}
		if !ok {
			return Request{}, usage.ErrLimitReached
		}
	}

	results, mode := s.retrieve(ctx, norm)
	prompt := buildPrompt(norm, kb.BuildContext(results, maxContextChars))

	raw, err := s.Generator.GenerateJSON(ctx, prompt)
	if err != nil {
		telemetry.Error("salary.generate_failed", map[string]any{"user_id": userID, "error": err.Error()})
		return Request{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	bench, err := parseBenchmark(raw, norm.Currency)
	if err != nil {
		telemetry.Error("salary.parse_failed", map[string]any{"user_id": userID, "error": err.Error()})
		return Request{}, err
	}
	bench.Sources = sourceTitles(results)
	if len(results) == 0 {
		bench.Confidence = "low"
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return Request{}, err
		}
	}
	if s.Cache != nil {
		if err := cache.SetJSON(ctx, s.Cache, key, cachedBenchmark{Result: bench, RetrievalMode: mode}, s.CacheTTL); err != nil {
			telemetry.Warn("salary.cache_error", map[string]any{"error": err.Error()})
		}
	}
	metrics.IncSalaryBenchmark()
	return s.persist(ctx, userID, norm, bench, mode, false)
}

// retrieve runs the KB search; a failed search yields no context rather than an error.
func (s *Service) retrieve(ctx context.Context, in Input) ([]kb.ScoredChunk, string) {
	if s.KB == nil {
		return nil, RetrievalUnavailable
	}
	res, err := s.KB.Search(ctx, retrievalQuery(in), kb.SearchOptions{Category: Category})
	if err != nil {
		telemetry.Warn("salary.retrieval_failed", map[string]any{"error": err.Error()})
		return nil, RetrievalUnavailable
	}
	return res.Results, res.Mode
}

func (s *Service) persist(ctx context.Context, userID string, in Input, bench Benchmark, mode string, hit bool) (Request, error) {
	req := Request{
		ID:            s.newID(),
		UserID:        userID,
		Input:         in,
		Result:        bench,
		CacheHit:      hit,
		RetrievalMode: mode,
		CreatedAt:     s.now(),
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return Request{}, fmt.Errorf("store salary request: %w", err)
	}
	telemetry.Info("salary.benchmark", map[string]any{
		"salary_request_id": req.ID,
		"user_id":           userID,
		"cache_hit":         hit,
		"retrieval_mode":    mode,
		"sources":           len(bench.Sources),
	})
	return req, nil
}

// Get returns a request owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Request, error) {
	if strings.TrimSpace(id) == "" {
		return Request{}, ErrNotFound
	}
	req, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.UserID != userID {
		return Request{}, ErrNotFound
	}
	return req, nil
}

// List returns userID's requests newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Request, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// sourceTitles lists the titles of retrieved documents in rank order.
func sourceTitles(results []kb.ScoredChunk) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, r := range results {
		title := strings.TrimSpace(r.DocumentTitle)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, title)
	}
	return out
}
