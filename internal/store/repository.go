package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository provides document operations over the agents table. The
// only server-side predicate is the category equality filter; everything
// richer runs in memory above this layer.
type Repository struct {
	db interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}
}

// NewRepository creates a new repository instance
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a single record by id. Returns nil without error
// when the record does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*AgentRecord, error) {
	query := `SELECT document FROM agents WHERE id = ?`

	var doc string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return decodeRecord(doc)
}

// QueryByCategory retrieves all records in a category. An unknown
// category yields an empty slice, not an error.
func (r *Repository) QueryByCategory(ctx context.Context, category string) ([]*AgentRecord, error) {
	query := `SELECT document FROM agents WHERE category = ?`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents by category: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListAll retrieves the whole collection.
func (r *Repository) ListAll(ctx context.Context) ([]*AgentRecord, error) {
	query := `SELECT document FROM agents`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Upsert inserts or replaces a record, keeping the category and status
// columns in sync with the document for pushdown filtering.
func (r *Repository) Upsert(ctx context.Context, rec *AgentRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("agent id is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode agent document: %w", err)
	}

	status := rec.Status
	if status == "" {
		status = StatusActive
	}

	query := `
		INSERT INTO agents (id, category, status, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			status = excluded.status,
			document = excluded.document,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, rec.ID, rec.Category, string(status), string(doc),
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert agent: %w", err)
	}

	return nil
}

// Delete removes a record by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM agents WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	return nil
}

// CountAll returns the total number of records in the collection.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM agents`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count agents: %w", err)
	}

	return count, nil
}

// WithTransaction executes a function within a database transaction
func (r *Repository) WithTransaction(ctx context.Context, fn func(*Repository) error) error {
	sqlDB, ok := r.db.(*sql.DB)
	if !ok {
		return fmt.Errorf("repository not connected to sql.DB")
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txRepo := &Repository{db: tx}

	if err := fn(txRepo); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction (original error: %w): %w", err, rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func decodeRecord(doc string) (*AgentRecord, error) {
	var rec AgentRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode agent document: %w", err)
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*AgentRecord, error) {
	var records []*AgentRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan agent document: %w", err)
		}

		rec, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
