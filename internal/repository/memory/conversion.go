// Package memory holds conversion history in process memory. It is the
// default backend for development and the reference implementation the
// durable backends are tested against.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"docmorph/internal/domain/models"
	"docmorph/internal/domain/repositories"
)

// ConversionRepository is a mutex-guarded in-memory store with a monotonic
// id counter. History disappears on restart.
type ConversionRepository struct {
	mu      sync.RWMutex
	records map[int]models.ConversionRecord
	nextID  int

	// now is swappable for tests
	now func() time.Time
}

func NewConversionRepository() *ConversionRepository {
	return &ConversionRepository{
		records: make(map[int]models.ConversionRecord),
		nextID:  1,
		now:     time.Now,
	}
}

func (r *ConversionRepository) Create(ctx context.Context, rec *models.ConversionRecord) (*models.ConversionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rec
	stored.ID = r.nextID
	stored.CreatedAt = r.now().UTC()
	r.nextID++
	r.records[stored.ID] = stored

	return &stored, nil
}

func (r *ConversionRepository) List(ctx context.Context) ([]models.ConversionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(models.ConversionRecord) bool { return true }), nil
}

func (r *ConversionRepository) ListSince(ctx context.Context, days int) ([]models.ConversionRecord, error) {
	cutoff := r.now().UTC().AddDate(0, 0, -days)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(rec models.ConversionRecord) bool {
		return !rec.CreatedAt.Before(cutoff)
	}), nil
}

func (r *ConversionRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *ConversionRepository) Close() error { return nil }

// collect snapshots matching records newest-first. Caller holds the lock.
func (r *ConversionRepository) collect(keep func(models.ConversionRecord) bool) []models.ConversionRecord {
	out := make([]models.ConversionRecord, 0, len(r.records))
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

var _ repositories.ConversionRepository = (*ConversionRepository)(nil)
