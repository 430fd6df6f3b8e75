package salary

import "context"

// Repo persists benchmark requests.
type Repo interface {
	Create(ctx context.Context, req Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Request, error)
}
