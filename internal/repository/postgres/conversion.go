package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docmorph/internal/domain/models"
	"docmorph/internal/domain/repositories"
)

const conversionSchema = `
CREATE TABLE IF NOT EXISTS conversions (
	id              SERIAL PRIMARY KEY,
	file_name       TEXT        NOT NULL,
	original_format TEXT        NOT NULL,
	target_format   TEXT        NOT NULL,
	file_size       BIGINT      NOT NULL,
	status          TEXT        NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions (created_at);
`

// ConversionRepository stores history rows in PostgreSQL.
type ConversionRepository struct {
	pool *pgxpool.Pool
}

// NewConversionRepository ensures the schema exists and wraps the pool.
func NewConversionRepository(ctx context.Context, pool *pgxpool.Pool) (*ConversionRepository, error) {
	if _, err := pool.Exec(ctx, conversionSchema); err != nil {
		return nil, fmt.Errorf("create conversions schema: %w", err)
	}
	return &ConversionRepository{pool: pool}, nil
}

func (r *ConversionRepository) Create(ctx context.Context, rec *models.ConversionRecord) (*models.ConversionRecord, error) {
	stored := *rec
	stored.CreatedAt = time.Now().UTC()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversions (file_name, original_format, target_format, file_size, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		stored.FileName,
		stored.OriginalFormat,
		stored.TargetFormat,
		stored.FileSize,
		stored.Status,
		stored.CreatedAt,
	).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("insert conversion: %w", err)
	}
	return &stored, nil
}

func (r *ConversionRepository) List(ctx context.Context) ([]models.ConversionRecord, error) {
	rows, err := r.pool.Query(ctx, `
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

	rows, err := r.pool.Query(ctx, `
		SELECT id, file_name, original_format, target_format, file_size, status, created_at
		FROM conversions
		WHERE created_at >= $1
		ORDER BY created_at DESC, id DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list recent conversions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *ConversionRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM conversions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete conversion %d: %w", id, err)
	}
	return nil
}

func (r *ConversionRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanRecords(rows pgx.Rows) ([]models.ConversionRecord, error) {
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
