// Package persistence provides the storage abstraction for the generation archive.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/n8ngen/pkg/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Archive stores generation records.
type Archive interface {
	// Save stores record, assigning ID and CreatedAt when they are empty.
	Save(ctx context.Context, record *models.Record) error

	// ByID returns the record or an error matching ErrRecordNotFound.
	ByID(ctx context.Context, id string) (*models.Record, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*models.Record, error)

	// Prune deletes records created before the cutoff and returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// NormalizeLimit clamps a requested page size to (0, MaxListLimit], defaulting to DefaultListLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}

	if limit > MaxListLimit {
		return MaxListLimit
	}

	return limit
}
