package contracts

import (
	"context"
	"time"
)

// Repo defines persistence operations for contract analyses.
type Repo interface {
	Create(ctx context.Context, a Analysis) error
	GetByID(ctx context.Context, id string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	// MarkProcessing claims a queued or stalled processing analysis; finished
	// analyses return ErrAlreadyFinished.
	MarkProcessing(ctx context.Context, id string, startedAt time.Time) error
	Complete(ctx context.Context, id string, result Result, completedAt time.Time) error
	Fail(ctx context.Context, id string, failure Failure, completedAt time.Time) error
}
