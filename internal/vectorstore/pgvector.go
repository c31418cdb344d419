package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// payloadColumns maps filterable payload keys to table columns.
var payloadColumns = map[string]string{
	"case_type": "case_type",
	"date":      "file_date",
}

// PgVectorStore keeps one table per collection in Postgres with the
// pgvector extension.
type PgVectorStore struct {
	db    *pgxpool.Pool
	table string
	name  string
}

func NewPgVectorStore(db *pgxpool.Pool, collection string) *PgVectorStore {
	return &PgVectorStore{
		db:    db,
		table: pgx.Identifier{collection}.Sanitize(),
		name:  collection,
	}
}

func (s *PgVectorStore) EnsureCollection(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("ensure collection %s: invalid dimension %d", s.name, dim)
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         BIGINT PRIMARY KEY,
			file_id    BIGINT NOT NULL,
			case_type  TEXT NOT NULL DEFAULT '',
			file_date  TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			embedding  vector(%d) NOT NULL
		)`, s.table, dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (case_type)`,
			pgx.Identifier{s.name + "_case_type_idx"}.Sanitize(), s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)`,
			pgx.Identifier{s.name + "_embedding_idx"}.Sanitize(), s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure collection %s: %w", s.name, err)
		}
	}
	return nil
}

func (s *PgVectorStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(
		`INSERT INTO %s (id, file_id, case_type, file_date, content, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET file_id = $2, case_type = $3, file_date = $4, content = $5, embedding = $6`,
		s.table)

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(query, p.ID, p.Payload.FileID, p.Payload.CaseType, p.Payload.Date, p.Payload.Text,
			pgvector.NewVector(p.Vector))
	}

	br := tx.SendBatch(ctx, batch)
	for _, p := range points {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("upsert point %d: %w", p.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("search %s: limit must be positive", s.name)
	}

	args := []any{pgvector.NewVector(req.Vector), req.Limit}
	where, args, err := buildWhere(req.Filter, args)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.name, err)
	}

	query := fmt.Sprintf(
		`SELECT id, file_id, case_type, file_date, content, 1 - (embedding <=> $1) AS score
		 FROM %s%s
		 ORDER BY embedding <=> $1
		 LIMIT $2`, s.table, where)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.name, err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Payload.FileID, &r.Payload.CaseType, &r.Payload.Date, &r.Payload.Text, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if !req.WithPayload {
			r.Payload = Payload{}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", s.name, err)
	}
	return results, nil
}

// DeleteFile removes the whole id range owned by the file.
func (s *PgVectorStore) DeleteFile(ctx context.Context, fileID int64) error {
	lo, hi := FileIDRange(fileID)
	_, err := s.db.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id BETWEEN $1 AND $2", s.table), lo, hi)
	if err != nil {
		return fmt.Errorf("delete file %d: %w", fileID, err)
	}
	return nil
}

// buildWhere translates f into a WHERE clause whose placeholders continue
// after the existing args.
func buildWhere(f *Filter, args []any) (string, []any, error) {
	if f == nil || len(f.Must) == 0 {
		return "", args, nil
	}

	clauses := make([]string, 0, len(f.Must))
	for _, c := range f.Must {
		if c.Key == "" {
			args = append(args, c.HasID)
			clauses = append(clauses, fmt.Sprintf("id = ANY($%d)", len(args)))
			continue
		}

		col, ok := payloadColumns[c.Key]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter key %q", c.Key)
		}
		if c.Match == nil {
			return "", nil, fmt.Errorf("filter key %q has no match", c.Key)
		}
		if len(c.Match.Any) > 0 {
			args = append(args, c.Match.Any)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", col, len(args)))
		} else {
			args = append(args, c.Match.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}

	return "\n\t\t WHERE " + strings.Join(clauses, " AND "), args, nil
}
