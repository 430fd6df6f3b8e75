package contracts

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(ctx context.Context, a Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	r.data[a.ID] = a
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.data[id]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Analysis{}
	for _, a := range r.data {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Analysis{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	return r.update(ctx, id, func(a *Analysis) error {
		if a.Finished() {
			return ErrAlreadyFinished
		}
		a.Status = StatusProcessing
		a.StartedAt = &startedAt
		a.UpdatedAt = startedAt
		return nil
	})
}

func (r *MemoryRepo) Complete(ctx context.Context, id string, result Result, completedAt time.Time) error {
	return r.update(ctx, id, func(a *Analysis) error {
		a.Status = StatusCompleted
		a.Result = &result
		a.Failure = nil
		a.CompletedAt = &completedAt
		a.UpdatedAt = completedAt
		return nil
	})
}

func (r *MemoryRepo) Fail(ctx context.Context, id string, failure Failure, completedAt time.Time) error {
	return r.update(ctx, id, func(a *Analysis) error {
		a.Status = StatusFailed
		a.Result = nil
		a.Failure = &failure
		a.CompletedAt = &completedAt
		a.UpdatedAt = completedAt
		return nil
	})
}

func (r *MemoryRepo) update(ctx context.Context, id string, fn func(*Analysis) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&a); err != nil {
		return err
	}
	r.data[id] = a
	return nil
}

// ClaimGuest reassigns a guest's analyses to userID.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, a := range r.data {
		if a.UserID == guestUserID {
			a.UserID = userID
			r.data[id] = a
			n++
		}
	}
	return n, nil
}

var _ Repo = (*MemoryRepo)(nil)
