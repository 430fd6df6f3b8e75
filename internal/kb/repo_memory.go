package kb

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo using brute-force cosine similarity.
type MemoryRepo struct {
	mu     sync.RWMutex
	docs   map[string]Document
	chunks map[string][]Chunk // documentID -> chunks
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:   make(map[string]Document),
		chunks: make(map[string][]Chunk),
	}
}

func (r *MemoryRepo) CreateDocument(ctx context.Context, doc Document, chunks []Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ChunkCount = len(chunks)
	r.docs[doc.ID] = doc
	stored := make([]Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		c.Keywords = append([]string(nil), c.Keywords...)
		stored[i] = c
	}
	r.chunks[doc.ID] = stored
	return nil
}

func (r *MemoryRepo) GetDocument(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListDocuments returns documents newest first, optionally filtered by category.
func (r *MemoryRepo) ListDocuments(ctx context.Context, category string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Document, 0, len(r.docs))
	for _, d := range r.docs {
		if category == "" || d.Category == category {
			out = append(out, d)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Document{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	delete(r.chunks, id)
	return nil
}

func (r *MemoryRepo) VectorSearch(ctx context.Context, embedding []float32, category string, limit int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Candidate{}
	r.each(category, func(c Chunk) {
		if len(c.Embedding) != len(embedding) {
			return
		}
		out = append(out, Candidate{Chunk: c, Score: cosine(embedding, c.Embedding)})
	})
	return topCandidates(out, limit), nil
}

// KeywordSearch ranks chunks by the sum of (1 + ln tf) over matched terms.
func (r *MemoryRepo) KeywordSearch(ctx context.Context, terms []string, category string, limit int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Candidate{}
	if len(terms) == 0 {
		return out, nil
	}
	r.each(category, func(c Chunk) {
		tf := make(map[string]int)
		for _, tok := range tokenize(c.Content) {
			tf[tok]++
		}
		var rank float64
		for _, t := range terms {
			if n := tf[t]; n > 0 {
				rank += 1 + math.Log(float64(n))
			}
		}
		if rank > 0 {
			out = append(out, Candidate{Chunk: c, Score: rank})
		}
	})
	return topCandidates(out, limit), nil
}

// each calls fn for every chunk in category, annotated with its document.
func (r *MemoryRepo) each(category string, fn func(Chunk)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for docID, chunks := range r.chunks {
		doc := r.docs[docID]
		for _, c := range chunks {
			if category != "" && c.Category != category {
				continue
			}
			c.DocumentTitle = doc.Title
			c.Source = doc.Source
			fn(c)
		}
	}
}

func topCandidates(cands []Candidate, limit int) []Candidate {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Chunk.ID < cands[j].Chunk.ID
	})
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ Repo = (*MemoryRepo)(nil)
