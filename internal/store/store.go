// Package store persists extracted transactions in SQLite so they can be
// listed, searched and removed per source document.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file_id      TEXT NOT NULL,
	document_name       TEXT NOT NULL,
	date                TEXT NOT NULL,
	description         TEXT NOT NULL,
	amount              REAL NOT NULL,
	direction           TEXT NOT NULL,
	category            TEXT NOT NULL DEFAULT '',
	icon                TEXT NOT NULL DEFAULT '',
	category_confidence TEXT NOT NULL DEFAULT '',
	raw_line            TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_file ON transactions(source_file_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

// Filter narrows List. Zero values match everything.
type Filter struct {
	SourceFileID string
	Direction    models.Direction
	Category     string
	// Query is a case-insensitive substring of the description.
	Query string
	Limit int
}

// Store is a SQLite-backed transaction store.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path. Use ":memory:" for an
// ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts every transaction of result in one transaction. Saving the
// same source file again replaces its earlier rows.
func (s *Store) Save(ctx context.Context, result models.ExtractionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Save: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE source_file_id = ?`, result.SourceFileID); err != nil {
		return fmt.Errorf("Save: clear previous rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(source_file_id, document_name, date, description, amount, direction, category, icon, category_confidence, raw_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("Save: prepare: %w", err)
	}
	defer stmt.Close()

	for _, txn := range result.Transactions {
		if _, err := stmt.ExecContext(ctx,
			result.SourceFileID, result.DocumentName, txn.Date, txn.Description, txn.Amount,
			string(txn.Direction), txn.Category, txn.Icon, txn.CategoryConfidence, txn.RawLine,
		); err != nil {
			return fmt.Errorf("Save: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Save: commit: %w", err)
	}
	return nil
}

// List returns matching transactions ordered by date, then insertion order.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Transaction, error) {
	var where []string
	var args []any
	if f.SourceFileID != "" {
		where = append(where, "source_file_id = ?")
		args = append(args, f.SourceFileID)
	}
	if f.Direction != "" {
		where = append(where, "direction = ?")
		args = append(args, string(f.Direction))
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Query != "" {
		where = append(where, "instr(lower(description), ?) > 0")
		args = append(args, strings.ToLower(f.Query))
	}

	query := `SELECT source_file_id, date, description, amount, direction, category, icon, category_confidence, raw_line
		FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		var txn models.Transaction
		var direction string
		if err := rows.Scan(&txn.SourceFileID, &txn.Date, &txn.Description, &txn.Amount, &direction,
			&txn.Category, &txn.Icon, &txn.CategoryConfidence, &txn.RawLine); err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		txn.Direction = models.Direction(direction)
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return txns, nil
}

// DeleteFile removes every transaction of a source file and returns how many
// were deleted.
func (s *Store) DeleteFile(ctx context.Context, sourceFileID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE source_file_id = ?`, sourceFileID)
	if err != nil {
		return 0, fmt.Errorf("DeleteFile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteFile: rows affected: %w", err)
	}
	return n, nil
}

// Count returns the number of stored transactions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
