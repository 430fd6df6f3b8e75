package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/db"
)

type pgStore struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(conn *sql.DB) *pgStore {
	return &pgStore{DB: conn, now: func() time.Time { return time.Now().UTC() }}
}

func (s *pgStore) Get(ctx context.Context, userID string) (Usage, error) {
	return s.EnsurePeriod(ctx, userID)
}

func (s *pgStore) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	var u Usage
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		u, err = s.lockAndEnsure(ctx, tx, userID)
		return err
	})
	return u, err
}

func (s *pgStore) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	var u Usage
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		u, err = s.lockAndEnsure(ctx, tx, userID)
		if err != nil || n <= 0 {
			return err
		}
		if u.Used+n > u.Limit {
			return ErrLimitReached
		}
		u.Used += n
		_, err = tx.ExecContext(ctx, `UPDATE usage SET used = $1 WHERE user_id = $2`, u.Used, userID)
		return err
	})
	if err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Reset(ctx context.Context, userID string) (Usage, error) {
	plan, limit := planFor(userID)
	u := Usage{Plan: plan, Limit: limit, Used: 0, ResetsAt: s.now().Add(Period)}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO usage (user_id, plan, limit_amount, used, resets_at)
VALUES ($1, $2, $3, 0, $4)
ON CONFLICT (user_id) DO UPDATE SET used = 0, resets_at = EXCLUDED.resets_at`, userID, u.Plan, u.Limit, u.ResetsAt)
	if err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Usage, error) {
	now := s.now()
	var u Usage
	err := tx.QueryRowContext(ctx, `
SELECT plan, limit_amount, used, resets_at FROM usage WHERE user_id = $1 FOR UPDATE`, userID).
		Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	if errors.Is(err, sql.ErrNoRows) {
		u = defaultUsage(userID, now)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO usage (user_id, plan, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`,
			userID, u.Plan, u.Limit, u.Used, u.ResetsAt); err != nil {
			return Usage{}, err
		}
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}

	if next, rolled := rollover(u, now); rolled {
		u = next
		if _, err := tx.ExecContext(ctx, `UPDATE usage SET used = $1, resets_at = $2 WHERE user_id = $3`, u.Used, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
