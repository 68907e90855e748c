// Package postgresql provides PostgreSQL persistence for the generation archive.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/n8ngen/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Archive implements persistence.Archive for PostgreSQL.
type Archive struct {
	db      *sql.DB
	logger  *slog.Logger
	records *RecordRepository
}

// NewArchive connects to databaseURL and runs pending migrations.
func NewArchive(ctx context.Context, logger *slog.Logger, databaseURL string) (*Archive, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Archive{
		db:      database,
		logger:  logger,
		records: NewRecordRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (a *Archive) Close(_ context.Context) error {
	if a.db != nil {
		err := a.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (a *Archive) HealthCheck(ctx context.Context) error {
	err := a.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Records returns the record repository.
func (a *Archive) Records() *RecordRepository {
	return a.records
}
