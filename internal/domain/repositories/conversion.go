package repositories

import (
	"context"

	"docmorph/internal/domain/models"
)

// ConversionRepository defines data access operations for conversion history.
// Records are immutable once created; there is no update operation.
type ConversionRepository interface {
	// Create stores a new record, assigning the next monotonic id and setting
	// CreatedAt. The stored record is returned.
	Create(ctx context.Context, rec *models.ConversionRecord) (*models.ConversionRecord, error)

	// List returns all records sorted newest-first.
	List(ctx context.Context) ([]models.ConversionRecord, error)

	// ListSince returns records with CreatedAt >= now - days, newest-first.
	ListSince(ctx context.Context, days int) ([]models.ConversionRecord, error)

	// Delete removes a record by id. Deleting a non-existent id is not an error.
	Delete(ctx context.Context, id int) error

	// Close releases the backing store, if any.
	Close() error
}
