package users

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// Repo stores users.
type Repo interface {
	// Upsert writes identity fields and leaves the profile untouched.
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	UpdateProfile(ctx context.Context, userID string, p Profile, at time.Time) error
}
