package contracts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, document_id, status, notes, result, error_code, error_message, error_retryable, started_at, completed_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, a Analysis) error {
	const query = `
INSERT INTO contract_analyses (id, user_id, document_id, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`
	_, err := r.DB.ExecContext(ctx, query, a.ID, a.UserID, a.DocumentID, a.Status, nullString(a.Notes), a.CreatedAt)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	const query = `
SELECT ` + analysisColumns + `
FROM contract_analyses
WHERE id = $1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
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
SELECT ` + analysisColumns + `
FROM contract_analyses
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	const query = `
UPDATE contract_analyses
SET status = $2, started_at = $3, updated_at = $3
WHERE id = $1 AND status IN ($4, $2)`
	res, err := r.DB.ExecContext(ctx, query, id, StatusProcessing, startedAt, StatusQueued)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyFinished
}

func (r *PGRepo) Complete(ctx context.Context, id string, result Result, completedAt time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	const query = `
UPDATE contract_analyses
SET status = $2, result = $3, error_code = NULL, error_message = NULL, error_retryable = NULL,
    completed_at = $4, updated_at = $4
WHERE id = $1`
	return r.exec(ctx, query, id, StatusCompleted, payload, completedAt)
}

func (r *PGRepo) Fail(ctx context.Context, id string, failure Failure, completedAt time.Time) error {
	const query = `
UPDATE contract_analyses
SET status = $2, result = NULL, error_code = $3, error_message = $4, error_retryable = $5,
    completed_at = $6, updated_at = $6
WHERE id = $1`
	return r.exec(ctx, query, id, StatusFailed, failure.Code, failure.Message, failure.Retryable, completedAt)
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a           Analysis
		notes       sql.NullString
		result      []byte
		errCode     sql.NullString
		errMessage  sql.NullString
		retryable   sql.NullBool
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.DocumentID, &a.Status, &notes, &result,
		&errCode, &errMessage, &retryable, &startedAt, &completedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Analysis{}, err
	}
	a.Notes = notes.String
	if len(result) > 0 {
		var res Result
		if err := json.Unmarshal(result, &res); err != nil {
			return Analysis{}, fmt.Errorf("decode result: %w", err)
		}
		a.Result = &res
	}
	if errCode.Valid {
		a.Failure = &Failure{Code: errCode.String, Message: errMessage.String, Retryable: retryable.Bool}
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
