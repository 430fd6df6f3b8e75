package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/documents"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/kb"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/metrics"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/cache"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

const (
	cacheNamespace     = "jobs:v1"
	defaultDetailLimit = 5
	detailConcurrency  = 3
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Source lists jobs and fetches their detail pages.
type Source interface {
	Search(ctx context.Context, q Query) ([]Job, error)
	Describe(ctx context.Context, jobURL string) (string, map[string]string, error)
}

// CVSource resolves a user's CV and its text.
type CVSource interface {
	Current(ctx context.Context, userID, kind string) (documents.Document, error)
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
	TextFor(ctx context.Context, doc documents.Document) (string, error)
}

// Quota gates match runs per principal.
type Quota interface {
	CanConsume(ctx context.Context, userID string, n int) (bool, usage.Usage, error)
	Consume(ctx context.Context, userID string, n int) (usage.Usage, error)
}

// Service searches listings and ranks them against a CV.
type Service struct {
	Source   Source
	Docs     CVSource
	Matcher  Matcher
	Cache    cache.Cache
	CacheTTL time.Duration
	Usage    Quota

	now func() time.Time
}

// NewService wires a Service.
func NewService(src Source, docs CVSource, c cache.Cache, ttl time.Duration, quota Quota) *Service {
	return &Service{
		Source:   src,
		Docs:     docs,
		Cache:    c,
		CacheTTL: ttl,
		Usage:    quota,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Search passes one listing page through.
func (s *Service) Search(ctx context.Context, q Query) ([]Job, error) {
	q.Keywords = squash(q.Keywords)
	q.Location = squash(q.Location)
	if q.Keywords == "" {
		return nil, fmt.Errorf("%w: keywords is required", ErrInvalidInput)
	}
	if q.Page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", ErrInvalidInput)
	}
	jobs, err := s.Source.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []Job{}
	}
	return jobs, nil
}

// Match ranks the listings for in against the user's CV. Results are cached
// per user, document and query; a usage unit is consumed on a cache miss.
func (s *Service) Match(ctx context.Context, userID string, in MatchInput) (MatchResult, error) {
	in, err := normalizeMatch(in)
	if err != nil {
		return MatchResult{}, err
	}
	doc, err := s.resolveCV(ctx, userID, in.DocumentID)
	if err != nil {
		return MatchResult{}, err
	}

	key := cache.Key(cacheNamespace, userID, doc.ID, strings.ToLower(in.Keywords), strings.ToLower(in.Location),
		in.WorkType, strconv.Itoa(in.Pages), strconv.Itoa(in.DetailLimit))
	if s.Cache != nil {
		var cached MatchResult
		hit, err := cache.GetJSON(ctx, s.Cache, key, &cached)
		if err != nil {
			telemetry.Warn("jobs.cache_error", map[string]any{"error": err.Error()})
		}
		metrics.ObserveCache(hit)
		if hit {
			cached.CacheHit = true
			return cached, nil
		}
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return MatchResult{}, fmt.Errorf("check usage: %w", err)
		}
		if !ok {
			return MatchResult{}, usage.ErrLimitReached
		}
	}

	text, err := s.Docs.TextFor(ctx, doc)
	if err != nil {
		return MatchResult{}, err
	}
	cvKeywords := kb.ExtractKeywords(text)
	if len(cvKeywords) == 0 {
		return MatchResult{}, ErrEmptyCV
	}

	listings, err := s.collect(ctx, in)
	if err != nil {
		return MatchResult{}, err
	}
	s.describe(ctx, listings[:min(in.DetailLimit, len(listings))])

	scored := make([]ScoredJob, 0, len(listings))
	for _, j := range listings {
		scored = append(scored, ScoredJob{Job: j, Fit: s.Matcher.Score(cvKeywords, j)})
	}
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].ID < scored[b].ID
	})

	res := MatchResult{
		DocumentID: doc.ID,
		CVKeywords: len(cvKeywords),
		Jobs:       scored,
		MatchedAt:  s.now(),
	}
	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return MatchResult{}, err
		}
	}
	if s.Cache != nil {
		if err := cache.SetJSON(ctx, s.Cache, key, res, s.CacheTTL); err != nil {
			telemetry.Warn("jobs.cache_error", map[string]any{"error": err.Error()})
		}
	}
	metrics.IncJobMatch()
	telemetry.Info("jobs.matched", map[string]any{
		"user_id":     userID,
		"document_id": doc.ID,
		"jobs":        len(scored),
		"cv_keywords": len(cvKeywords),
	})
	return res, nil
}

func normalizeMatch(in MatchInput) (MatchInput, error) {
	in.Keywords = squash(in.Keywords)
	in.Location = squash(in.Location)
	in.WorkType = strings.ToLower(strings.TrimSpace(in.WorkType))
	in.DocumentID = strings.TrimSpace(in.DocumentID)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return MatchInput{}, fmt.Errorf("%w: %s failed %s", ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return MatchInput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Pages == 0 {
		in.Pages = 1
	}
	if in.DetailLimit == 0 {
		in.DetailLimit = defaultDetailLimit
	}
	return in, nil
}

func (s *Service) resolveCV(ctx context.Context, userID, documentID string) (documents.Document, error) {
	var (
		doc documents.Document
		err error
	)
	if documentID != "" {
		doc, err = s.Docs.Get(ctx, userID, documentID)
	} else {
		doc, err = s.Docs.Current(ctx, userID, documents.KindCV)
	}
	if errors.Is(err, documents.ErrNotFound) {
		return documents.Document{}, ErrNoCV
	}
	return doc, err
}

// collect fetches listing pages in order and drops repeated job IDs. A failed
// first page is an error; a later failure keeps what was already collected.
func (s *Service) collect(ctx context.Context, in MatchInput) ([]Job, error) {
	seen := make(map[string]bool)
	var out []Job
	for page := 0; page < in.Pages; page++ {
		batch, err := s.Source.Search(ctx, Query{Keywords: in.Keywords, Location: in.Location, WorkType: in.WorkType, Page: page})
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			}
			telemetry.Warn("jobs.page_failed", map[string]any{"page": page, "error": err.Error()})
			break
		}
		for _, j := range batch {
			if seen[j.ID] {
				continue
			}
			seen[j.ID] = true
			out = append(out, j)
		}
		if len(batch) < PageSize {
			break
		}
	}
	return out, nil
}

// describe fills descriptions in place; failures leave the card as is.
func (s *Service) describe(ctx context.Context, listings []Job) {
	var g errgroup.Group
	g.SetLimit(detailConcurrency)
	for i := range listings {
		g.Go(func() error {
			desc, criteria, err := s.Source.Describe(ctx, listings[i].URL)
			if err != nil {
				telemetry.Warn("jobs.describe_failed", map[string]any{"job_id": listings[i].ID, "error": err.Error()})
				return nil
			}
			listings[i].Description = desc
			listings[i].Criteria = criteria
			return nil
		})
	}
	_ = g.Wait()
}
