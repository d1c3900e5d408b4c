// Package sqlite persists idea history in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/davidbz/ideaforge/internal/domain"
)

// Config contains idea history storage configuration.
type Config struct {
	Path string `env:"IDEAS_DB_PATH" envDefault:"ideas.db"`
}

const createIdeasTable = `
CREATE TABLE IF NOT EXISTS ideas (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	text TEXT NOT NULL,
	idea_type TEXT NOT NULL,
	score REAL NOT NULL,
	recommendation TEXT NOT NULL,
	provider TEXT NOT NULL,
	cached INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ideas_created ON ideas(created_at);
`

// IdeaStore implements domain.IdeaRepository with a SQLite database.
type IdeaStore struct {
	db *sql.DB
}

// New opens the database at path and runs auto-migration.
func New(path string) (*IdeaStore, error) {
	if path == "" {
		return nil, errors.New("database path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ideas db: %w", err)
	}

	if _, err := db.Exec(createIdeasTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ideas db: %w", err)
	}

	return &IdeaStore{db: db}, nil
}

// Save stores one analyzed idea.
func (s *IdeaStore) Save(ctx context.Context, record *domain.IdeaRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ideas (id, text, idea_type, score, recommendation, provider, cached, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Text, string(record.IdeaType), record.Score, string(record.Recommendation),
		string(record.Provider), record.Cached, record.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save idea: %w", err)
	}
	return nil
}

// List returns up to limit ideas, newest first.
func (s *IdeaStore) List(ctx context.Context, limit int) ([]*domain.IdeaRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, idea_type, score, recommendation, provider, cached, created_at
		 FROM ideas ORDER BY created_at DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.IdeaRecord, 0, limit)
	for rows.Next() {
		var (
			rec            domain.IdeaRecord
			ideaType       string
			recommendation string
			provider       string
			createdAt      int64
		)
		if err := rows.Scan(&rec.ID, &rec.Text, &ideaType, &rec.Score, &recommendation,
			&provider, &rec.Cached, &createdAt); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		rec.IdeaType = domain.IdeaType(ideaType)
		rec.Recommendation = domain.Recommendation(recommendation)
		rec.Provider = domain.ProviderType(provider)
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ideas: %w", err)
	}

	return records, nil
}

// CountByType returns how many ideas of each type have been recorded.
func (s *IdeaStore) CountByType(ctx context.Context) (map[domain.IdeaType]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idea_type, COUNT(*) FROM ideas GROUP BY idea_type`)
	if err != nil {
		return nil, fmt.Errorf("count ideas: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.IdeaType]int)
	for rows.Next() {
		var (
			ideaType string
			n        int
		)
		if err := rows.Scan(&ideaType, &n); err != nil {
			return nil, fmt.Errorf("scan idea count: %w", err)
		}
		counts[domain.IdeaType(ideaType)] = n
	}
	return counts, rows.Err()
}

// Close releases the database.
func (s *IdeaStore) Close() error {
	return s.db.Close()
}
