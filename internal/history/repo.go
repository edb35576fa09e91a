// Package history records rename batches in Postgres so operators can see
// what was renamed, when, and how the endpoint accounted for it.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"photomapper/internal/mapping"
)

// Batch is one recorded rename batch. The bucket counts are stored exactly
// as the endpoint reported them, mismatches included.
type Batch struct {
	ID         string    `json:"id"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository persists rename audit rows.
//
// Expected schema:
//
//	rename_batches(id uuid primary key, total int, successful int,
//	    skipped int, failed int, created_at timestamptz default now())
//	rename_items(batch_id uuid references rename_batches(id),
//	    photo_id text, status text, old_name text, new_name text,
//	    message text)
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RecordBatch inserts the batch row and its per-file outcomes in one
// transaction.
func (r *Repository) RecordBatch(ctx context.Context, result mapping.BatchResult) (Batch, error) {
	batch := Batch{
		ID:         uuid.NewString(),
		Total:      result.Total,
		Successful: result.Successful,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO rename_batches (id, total, successful, skipped, failed)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, batch.ID, batch.Total, batch.Successful, batch.Skipped, batch.Failed)
	if err := row.Scan(&batch.CreatedAt); err != nil {
		return Batch{}, err
	}

	for _, item := range result.Results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rename_items (batch_id, photo_id, status, old_name, new_name, message)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, batch.ID, item.PhotoID, item.Status, item.OldName, item.NewName, item.Message)
		if err != nil {
			return Batch{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Batch{}, err
	}
	return batch, nil
}

// ListBatches returns recent batches, newest first.
func (r *Repository) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, total, successful, skipped, failed, created_at
		FROM rename_batches
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Total, &b.Successful, &b.Skipped, &b.Failed, &b.CreatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
