package postgresql

import (
	"context"
	"time"

	"github.com/dukex/n8ngen/pkg/models"
)

// Save stores a record.
func (a *Archive) Save(ctx context.Context, record *models.Record) error {
	return a.records.Save(ctx, record)
}

// ByID returns a record by its ID.
func (a *Archive) ByID(ctx context.Context, id string) (*models.Record, error) {
	return a.records.ByID(ctx, id)
}

// Recent returns up to limit records, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]*models.Record, error) {
	return a.records.Recent(ctx, limit)
}

// Prune deletes records created before the cutoff.
func (a *Archive) Prune(ctx context.Context, before time.Time) (int, error) {
	return a.records.Prune(ctx, before)
}
