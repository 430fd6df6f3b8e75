package salary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres; input and result are JSONB.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, req Request) error {
	input, err := json.Marshal(req.Input)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	result, err := json.Marshal(req.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	const query = `
INSERT INTO salary_requests (id, user_id, input, result, cache_hit, retrieval_mode, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.DB.ExecContext(ctx, query, req.ID, req.UserID, input, result, req.CacheHit, req.RetrievalMode, req.CreatedAt)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Request, error) {
	const query = `
SELECT id, user_id, input, result, cache_hit, retrieval_mode, created_at
FROM salary_requests
WHERE id = $1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Request, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, input, result, cache_hit, retrieval_mode, created_at
FROM salary_requests
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var (
		req           Request
		input, result []byte
	)
	if err := row.Scan(&req.ID, &req.UserID, &input, &result, &req.CacheHit, &req.RetrievalMode, &req.CreatedAt); err != nil {
		return Request{}, err
	}
	if err := json.Unmarshal(input, &req.Input); err != nil {
		return Request{}, fmt.Errorf("decode input: %w", err)
	}
	if err := json.Unmarshal(result, &req.Result); err != nil {
		return Request{}, fmt.Errorf("decode result: %w", err)
	}
	return req, nil
}

var _ Repo = (*PGRepo)(nil)
