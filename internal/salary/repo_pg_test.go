package salary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	req := Request{ID: "s-1", UserID: "google:1", Input: Input{JobTitle: "QA", Location: "Bandung"}, RetrievalMode: "hybrid", CreatedAt: now}

	mock.ExpectExec("INSERT INTO salary_requests").
		WithArgs("s-1", "google:1", sqlmock.AnyArg(), sqlmock.AnyArg(), false, "hybrid", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	cols := []string{"id", "user_id", "input", "result", "cache_hit", "retrieval_mode", "created_at"}

	mock.ExpectQuery("SELECT (.+) FROM salary_requests").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"s-1", "google:1",
			[]byte(`{"jobTitle":"QA","location":"Bandung","experienceYears":2}`),
			[]byte(`{"currency":"IDR","median":9000000,"sources":["UMP 2025"]}`),
			true, "keyword_only", now,
		))

	req, err := repo.GetByID(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if req.Input.ExperienceYears != 2 || req.Result.Median != 9000000 || !req.CacheHit || req.Result.Sources[0] != "UMP 2025" {
		t.Fatalf("unexpected request: %+v", req)
	}

	mock.ExpectQuery("SELECT (.+) FROM salary_requests").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(cols))
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserClampsLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	cols := []string{"id", "user_id", "input", "result", "cache_hit", "retrieval_mode", "created_at"}

	mock.ExpectQuery("SELECT (.+) FROM salary_requests").
		WithArgs("google:1", 100, 0).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s-1", "google:1", []byte(`{}`), []byte(`{}`), false, "hybrid", time.Now()))

	reqs, err := repo.ListByUser(context.Background(), "google:1", 500, -3)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
