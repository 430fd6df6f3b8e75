package kb

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var testVocab = []string{"salary", "engineer", "jakarta", "bandung", "nurse", "contract"}

// bagEmbedder embeds text as vocabulary counts plus a constant bias
// dimension, so related texts have a high cosine similarity.
type bagEmbedder struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (e *bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.fail {
		return nil, errors.New("embedding http status 503")
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(testVocab)+1)
	for i, w := range testVocab {
		vec[i] = float32(strings.Count(lower, w))
	}
	vec[len(testVocab)] = 0.1
	return vec, nil
}

func (e *bagEmbedder) setFail(v bool) {
	e.mu.Lock()
	e.fail = v
	e.mu.Unlock()
}

// flakyRepo wraps MemoryRepo and can fail either retrieval leg.
type flakyRepo struct {
	*MemoryRepo
	failVector  bool
	failKeyword bool
	failCreate  bool
}

func (r *flakyRepo) VectorSearch(ctx context.Context, emb []float32, category string, limit int) ([]Candidate, error) {
	if r.failVector {
		return nil, errors.New("vector index unavailable")
	}
	return r.MemoryRepo.VectorSearch(ctx, emb, category, limit)
}

func (r *flakyRepo) KeywordSearch(ctx context.Context, terms []string, category string, limit int) ([]Candidate, error) {
	if r.failKeyword {
		return nil, errors.New("tsquery failed")
	}
	return r.MemoryRepo.KeywordSearch(ctx, terms, category, limit)
}

func (r *flakyRepo) CreateDocument(ctx context.Context, doc Document, chunks []Chunk) error {
	if r.failCreate {
		return errors.New("insert failed")
	}
	return r.MemoryRepo.CreateDocument(ctx, doc, chunks)
}

func newTestService() (*Service, *flakyRepo, *bagEmbedder) {
	repo := &flakyRepo{MemoryRepo: NewMemoryRepo()}
	emb := &bagEmbedder{}
	svc := NewService(repo, emb, SearchOptions{})
	return svc, repo, emb
}

func seedSalaryDocs(svc *Service) error {
	docs := []IngestInput{
		{Title: "Jakarta Tech Salary Guide", Source: "survey-2025", Category: "salary", Content: "Software engineer salary in Jakarta ranges from 15 to 35 million rupiah per month for engineer roles."},
		{Title: "Bandung Healthcare Pay", Source: "survey-2025", Category: "salary", Content: "Nurse salary in Bandung ranges from 5 to 9 million rupiah per month."},
		{Title: "Engineering Culture", Source: "blog", Category: "general", Content: "Engineer onboarding in Jakarta focuses on mentoring."},
	}
	for _, d := range docs {
		if _, err := svc.Ingest(context.Background(), d); err != nil {
			return err
		}
	}
	return nil
}
