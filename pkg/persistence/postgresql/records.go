package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/persistence"
)

// RecordRepository handles generation record database operations.
type RecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db *sql.DB, logger *slog.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: logger}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectRecords = `
		SELECT
			id
		  , prompt
		  , status
		  , COALESCE(error_kind, '')
		  , COALESCE(error_message, '')
		  , COALESCE(provider, '')
		  , workflow
		  , COALESCE(export_path, '')
		  , created_at
		FROM generation_records
`

// Save inserts or replaces a record.
func (r *RecordRepository) Save(ctx context.Context, record *models.Record) error {
	if err := persistence.Prepare(record); err != nil {
		return err
	}

	workflowJSON, err := json.Marshal(record.Workflow)
	if err != nil {
		return persistence.NewRecordError("Save", record.ID, fmt.Errorf("failed to marshal workflow: %w", err))
	}

	query := `
		INSERT INTO generation_records (
			id, prompt, status, error_kind, error_message, provider, workflow_name, workflow, export_path, created_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10)
		ON CONFLICT (id) DO UPDATE SET
			prompt = EXCLUDED.prompt
		  , status = EXCLUDED.status
		  , error_kind = EXCLUDED.error_kind
		  , error_message = EXCLUDED.error_message
		  , provider = EXCLUDED.provider
		  , workflow_name = EXCLUDED.workflow_name
		  , workflow = EXCLUDED.workflow
		  , export_path = EXCLUDED.export_path
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Prompt,
		record.Status,
		record.ErrorKind,
		record.ErrorMessage,
		record.Provider,
		record.Workflow.Name,
		string(workflowJSON),
		record.ExportPath,
		record.CreatedAt,
	)
	if err != nil {
		return persistence.NewRecordError("Save", record.ID, err)
	}

	return nil
}

// ByID returns a record by its ID.
func (r *RecordRepository) ByID(ctx context.Context, id string) (*models.Record, error) {
	if !ids.IsID(id) {
		return nil, persistence.NewRecordError("ByID", id, persistence.ErrRecordNotFound)
	}

	row := r.db.QueryRowContext(ctx, selectRecords+" WHERE id = $1", id)

	record, err := r.scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRecordError("ByID", id, persistence.ErrRecordNotFound)
		}

		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	return record, nil
}

// Recent returns the newest records first.
func (r *RecordRepository) Recent(ctx context.Context, limit int) ([]*models.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectRecords+" ORDER BY created_at DESC LIMIT $1", persistence.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.Record, 0)

	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Prune deletes records created before the cutoff.
func (r *RecordRepository) Prune(ctx context.Context, before time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM generation_records WHERE created_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune records: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned records: %w", err)
	}

	return int(removed), nil
}

func (r *RecordRepository) scanRecord(row scanner) (*models.Record, error) {
	var (
		record       models.Record
		workflowJSON []byte
	)

	err := row.Scan(
		&record.ID,
		&record.Prompt,
		&record.Status,
		&record.ErrorKind,
		&record.ErrorMessage,
		&record.Provider,
		&workflowJSON,
		&record.ExportPath,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Workflow = &models.Workflow{}
	if err := json.Unmarshal(workflowJSON, record.Workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow for record %s: %w", record.ID, err)
	}

	return &record, nil
}
