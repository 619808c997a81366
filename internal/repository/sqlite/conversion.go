// Package sqlite persists conversion history in a local SQLite file, the
// durable single-node backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"docmorph/internal/domain/models"
	"docmorph/internal/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name       TEXT    NOT NULL,
	original_format TEXT    NOT NULL,
	target_format   TEXT    NOT NULL,
	file_size       INTEGER NOT NULL,
	status          TEXT    NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions (created_at);
`

// ConversionRepository stores history rows in SQLite. The schema is created
// on open; there is no separate migration step.
type ConversionRepository struct {
	db *sql.DB
}

// NewConversionRepository opens (and if needed creates) the database file.
func NewConversionRepository(ctx context.Context, path string) (*ConversionRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The driver serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create conversions schema: %w", err)
	}
	return &ConversionRepository{db: db}, nil
}

func (r *ConversionRepository) Create(ctx context.Context, rec *models.ConversionRecord) (*models.ConversionRecord, error) {
	stored := *rec
	stored.CreatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO conversions (file_name, original_format, target_format, file_size, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		stored.FileName,
		stored.OriginalFormat,
		stored.TargetFormat,
		stored.FileSize,
		stored.Status,
		stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	stored.ID = int(id)
	return &stored, nil
}

func (r *ConversionRepository) List(ctx context.Context) ([]models.ConversionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_name, original_format, target_format, file_size, status, created_at
		FROM conversions
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *ConversionRepository) ListSince(ctx context.Context, days int) ([]models.ConversionRecord, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_name, original_format, target_format, file_size, status, created_at
		FROM conversions
		WHERE created_at >= ?
		ORDER BY created_at DESC, id DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list recent conversions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *ConversionRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete conversion %d: %w", id, err)
	}
	return nil
}

func (r *ConversionRepository) Close() error { return r.db.Close() }

func scanRecords(rows *sql.Rows) ([]models.ConversionRecord, error) {
	records := make([]models.ConversionRecord, 0)
	for rows.Next() {
		var rec models.ConversionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.FileName,
			&rec.OriginalFormat,
			&rec.TargetFormat,
			&rec.FileSize,
			&rec.Status,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversion rows: %w", err)
	}
	return records, nil
}

var _ repositories.ConversionRepository = (*ConversionRepository)(nil)
