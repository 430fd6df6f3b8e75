package kb

import (
	"context"
	"errors"
	"reflect"
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

func TestPGRepoCreateDocumentInsertsChunksInTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	doc := Document{ID: "doc-1", Title: "Guide", Source: "survey", Category: "salary", CreatedAt: now}
	chunks := []Chunk{
		{ID: "c-0", Ordinal: 0, Category: "salary", Content: "first", Keywords: []string{"first"}, Embedding: []float32{1, 0}, CreatedAt: now},
		{ID: "c-1", Ordinal: 1, Category: "salary", Content: "second", Embedding: []float32{0, 1}, CreatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kb_documents").
		WithArgs("doc-1", "Guide", "survey", "salary", 2, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO kb_chunks").
		WithArgs("c-0", "doc-1", 0, "salary", "first", []byte(`["first"]`), sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO kb_chunks").
		WithArgs("c-1", "doc-1", 1, "salary", "second", []byte(`[]`), sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.CreateDocument(context.Background(), doc, chunks); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateDocumentRollsBackOnChunkFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kb_documents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO kb_chunks").WillReturnError(errors.New("dimension mismatch"))
	mock.ExpectRollback()

	err := repo.CreateDocument(context.Background(), Document{ID: "doc-1", CreatedAt: now}, []Chunk{{ID: "c-0", Embedding: []float32{1}, CreatedAt: now}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoKeywordSearch(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	cols := []string{"id", "document_id", "ordinal", "category", "content", "keywords", "created_at", "title", "source", "score"}

	mock.ExpectQuery("to_tsquery").
		WithArgs("'engineer' | 'node.js'", "salary", 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c-1", "doc-1", 0, "salary", "engineer node.js", []byte(`["engineer","node.js"]`), now, "Guide", "survey", 0.42))

	got, err := repo.KeywordSearch(context.Background(), []string{"engineer", "node.js"}, "salary", 10)
	if err != nil {
		t.Fatalf("KeywordSearch: %v", err)
	}
	if len(got) != 1 || got[0].Score != 0.42 || got[0].Chunk.DocumentTitle != "Guide" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if !reflect.DeepEqual(got[0].Chunk.Keywords, []string{"engineer", "node.js"}) {
		t.Fatalf("keywords not decoded: %v", got[0].Chunk.Keywords)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoKeywordSearchWithoutTermsSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)
	got, err := repo.KeywordSearch(context.Background(), []string{" "}, "", 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoVectorSearch(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	cols := []string{"id", "document_id", "ordinal", "category", "content", "keywords", "created_at", "title", "source", "score"}

	mock.ExpectQuery("embedding <=>").
		WithArgs(sqlmock.AnyArg(), "", 20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c-1", "doc-1", 0, "salary", "a", []byte(`[]`), now, "Guide", "", 0.9).
			AddRow("c-2", "doc-1", 1, "salary", "b", []byte(`[]`), now, "Guide", "", -0.2))

	got, err := repo.VectorSearch(context.Background(), []float32{0.1, 0.2}, "", 20)
	if err != nil {
		t.Fatalf("VectorSearch: %v", err)
	}
	if len(got) != 2 || got[0].Score != 0.9 || got[1].Score != -0.2 {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteDocumentNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM kb_documents").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteDocument(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestBuildTSQuery(t *testing.T) {
	got := buildTSQuery([]string{"c++", "o'neil", "", `back\slash`})
	want := `'c++' | 'o''neil' | 'backslash'`
	if got != want {
		t.Fatalf("buildTSQuery = %q, want %q", got, want)
	}
}
