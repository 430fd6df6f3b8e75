package kb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/db"
)

// PGRepo implements Repo on Postgres with pgvector for the vector leg and
// full-text ranking for the keyword leg.
type PGRepo struct {
	DB *sql.DB
}

const chunkColumns = `c.id, c.document_id, c.ordinal, c.category, c.content, c.keywords, c.created_at, d.title, d.source`

// CreateDocument inserts the document and all of its chunks in one transaction.
func (r *PGRepo) CreateDocument(ctx context.Context, doc Document, chunks []Chunk) error {
	const insertDoc = `
INSERT INTO kb_documents (id, title, source, category, chunk_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	const insertChunk = `
INSERT INTO kb_chunks (id, document_id, ordinal, category, content, keywords, embedding, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertDoc, doc.ID, doc.Title, doc.Source, doc.Category, len(chunks), doc.CreatedAt); err != nil {
			return fmt.Errorf("insert kb document: %w", err)
		}
		for _, c := range chunks {
			keywords, err := json.Marshal(nonNilStrings(c.Keywords))
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insertChunk,
				c.ID,
				doc.ID,
				c.Ordinal,
				c.Category,
				c.Content,
				keywords,
				pgvector.NewVector(c.Embedding),
				c.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert kb chunk %d: %w", c.Ordinal, err)
			}
		}
		return nil
	})
}

func (r *PGRepo) GetDocument(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT id, title, source, category, chunk_count, created_at
FROM kb_documents
WHERE id = $1`
	var d Document
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Title, &d.Source, &d.Category, &d.ChunkCount, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return d, nil
}

func (r *PGRepo) ListDocuments(ctx context.Context, category string, limit, offset int) ([]Document, error) {
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
SELECT id, title, source, category, chunk_count, created_at
FROM kb_documents
WHERE ($1 = '' OR category = $1)
ORDER BY created_at DESC, id ASC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Source, &d.Category, &d.ChunkCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document; its chunks go with it via ON DELETE CASCADE.
func (r *PGRepo) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM kb_documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// VectorSearch orders by cosine distance and reports 1 - distance as similarity.
func (r *PGRepo) VectorSearch(ctx context.Context, embedding []float32, category string, limit int) ([]Candidate, error) {
	query := `
SELECT ` + chunkColumns + `, 1 - (c.embedding <=> $1::vector) AS score
FROM kb_chunks c
JOIN kb_documents d ON d.id = c.document_id
WHERE c.embedding IS NOT NULL
  AND vector_dims(c.embedding) = vector_dims($1::vector)
  AND ($2 = '' OR c.category = $2)
ORDER BY c.embedding <=> $1::vector, c.id
LIMIT $3`
	rows, err := r.DB.QueryContext(ctx, query, pgvector.NewVector(embedding), category, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return scanCandidates(rows)
}

// KeywordSearch ranks with ts_rank over the 'simple' configuration so
// Indonesian and English text are treated alike.
func (r *PGRepo) KeywordSearch(ctx context.Context, terms []string, category string, limit int) ([]Candidate, error) {
	tsquery := buildTSQuery(terms)
	if tsquery == "" {
		return []Candidate{}, nil
	}
	query := `
SELECT ` + chunkColumns + `, ts_rank(to_tsvector('simple', c.content), to_tsquery('simple', $1)) AS score
FROM kb_chunks c
JOIN kb_documents d ON d.id = c.document_id
WHERE to_tsvector('simple', c.content) @@ to_tsquery('simple', $1)
  AND ($2 = '' OR c.category = $2)
ORDER BY score DESC, c.id
LIMIT $3`
	rows, err := r.DB.QueryContext(ctx, query, tsquery, category, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return scanCandidates(rows)
}

// buildTSQuery ORs quoted terms so characters like "+" and "." cannot break
// the tsquery syntax.
func buildTSQuery(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		t = strings.ReplaceAll(t, `\`, ``)
		parts = append(parts, "'"+strings.ReplaceAll(t, "'", "''")+"'")
	}
	return strings.Join(parts, " | ")
}

func scanCandidates(rows *sql.Rows) ([]Candidate, error) {
	defer rows.Close()
	out := []Candidate{}
	for rows.Next() {
		var (
			c        Chunk
			keywords []byte
			score    sql.NullFloat64
		)
		if err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&c.Ordinal,
			&c.Category,
			&c.Content,
			&keywords,
			&c.CreatedAt,
			&c.DocumentTitle,
			&c.Source,
			&score,
		); err != nil {
			return nil, err
		}
		if len(keywords) > 0 {
			if err := json.Unmarshal(keywords, &c.Keywords); err != nil {
				return nil, fmt.Errorf("decode chunk keywords: %w", err)
			}
		}
		out = append(out, Candidate{Chunk: c, Score: score.Float64})
	}
	return out, rows.Err()
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
