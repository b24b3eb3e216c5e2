package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// RelationalAdapter implements Adapter over a SQLite table of rows with
// free-text content, a comma-joined tags column, and a created_at
// timestamp. modernc.org/sqlite is a pure-Go driver, avoiding a CGO
// mattn/go-sqlite3 dependency.
type RelationalAdapter struct {
	db *sql.DB
}

// NewRelationalAdapter opens (creating if necessary) a SQLite database at
// dsn and ensures the backing table exists.
func NewRelationalAdapter(dsn string) (*RelationalAdapter, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &RelationalAdapter{db: db}, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	title TEXT,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '',
	resource_type TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
`

func (r *RelationalAdapter) Name() Kind { return Relational }

func (r *RelationalAdapter) Health(ctx context.Context) Health {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return Health{Healthy: false}
	}
	return Health{Healthy: true, SizeHint: count}
}

// Insert adds or replaces a record; not part of the query-time contract,
// provided so the adapter is exercisable in tests.
func (r *RelationalAdapter) Insert(ctx context.Context, id, title, content string, tags []string, resourceType string, createdAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, title, content, tags, resource_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, content=excluded.content,
		   tags=excluded.tags, resource_type=excluded.resource_type, created_at=excluded.created_at`,
		id, title, content, strings.Join(tags, ","), resourceType, createdAt.UTC())
	return err
}

func (r *RelationalAdapter) Execute(ctx context.Context, opKind OperationKind, params Params) (Payload, error) {
	if opKind != OpRetrieve && opKind != OpSearch {
		return Payload{}, fmt.Errorf("relational adapter does not support %s", opKind)
	}
	if err := params.Validate(); err != nil {
		return Payload{}, err
	}

	terms := params.SearchTerms
	if len(terms) == 0 && params.Query != "" {
		terms = strings.Fields(params.Query)
	}

	var clauses []string
	var args []any
	for _, t := range terms {
		clauses = append(clauses, "(content LIKE ? OR tags LIKE ?)")
		like := "%" + t + "%"
		args = append(args, like, like)
	}

	query := "SELECT id, title, content, created_at FROM records"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " OR ")
	}
	if params.TemporalFrom != nil && params.TemporalTo != nil {
		if len(clauses) > 0 {
			query += " AND created_at BETWEEN ? AND ?"
		} else {
			query += " WHERE created_at BETWEEN ? AND ?"
		}
		args = append(args, params.TemporalFrom.UTC(), params.TemporalTo.UTC())
	}
	if params.ResourceType != "" {
		query += " AND resource_type = ?"
		args = append(args, params.ResourceType)
	}
	query += " ORDER BY created_at DESC"

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Payload{}, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, title, content string
		var createdAt time.Time
		if err := rows.Scan(&id, &title, &content, &createdAt); err != nil {
			return Payload{}, fmt.Errorf("scan record: %w", err)
		}
		docs = append(docs, Document{
			ID:        id,
			Title:     title,
			Content:   content,
			Timestamp: &createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return Payload{}, err
	}

	return Payload{Documents: docs}, nil
}

func (r *RelationalAdapter) Close() error { return r.db.Close() }
