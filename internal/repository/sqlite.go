package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			export_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL,
			participant TEXT NOT NULL,
			document BLOB NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_filename ON exports(filename, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_session ON exports(session_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveExport stores a minted artifact. Re-exporting within the same
// millisecond yields the same filename; the newest row wins on lookup.
func (s *SQLiteStore) SaveExport(ctx context.Context, artifact *domain.ExportArtifact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (export_id, session_id, filename, participant, document, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		artifact.ExportID, artifact.SessionID, artifact.Filename, artifact.Participant, artifact.Document, artifact.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save export %s: %w", artifact.ExportID, err)
	}
	return nil
}

// GetExportByFilename returns the latest artifact minted under filename.
func (s *SQLiteStore) GetExportByFilename(ctx context.Context, filename string) (*domain.ExportArtifact, error) {
	var a domain.ExportArtifact
	err := s.db.QueryRowContext(ctx,
		`SELECT export_id, session_id, filename, participant, document, created_at FROM exports
		 WHERE filename = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		filename).Scan(&a.ExportID, &a.SessionID, &a.Filename, &a.Participant, &a.Document, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListExports returns a session's artifacts, oldest first. Documents are
// not loaded.
func (s *SQLiteStore) ListExports(ctx context.Context, sessionID string) ([]domain.ExportArtifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT export_id, session_id, filename, participant, created_at FROM exports
		 WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []domain.ExportArtifact
	for rows.Next() {
		var a domain.ExportArtifact
		if err := rows.Scan(&a.ExportID, &a.SessionID, &a.Filename, &a.Participant, &a.CreatedAt); err != nil {
			return nil, err
		}
		exports = append(exports, a)
	}
	return exports, rows.Err()
}
