// Package file provides file-based persistence for the generation archive.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/persistence"
)

const recordsDir = "records"

// Archive implements persistence.Archive with one JSON file per record.
type Archive struct {
	root string
}

// NewArchive creates a file archive rooted at root. A "file://" prefix is stripped.
func NewArchive(root string) *Archive {
	return &Archive{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (a *Archive) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks the root directory exists.
func (a *Archive) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(a.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Save writes the record to <root>/records/<id>.json.
func (a *Archive) Save(_ context.Context, record *models.Record) error {
	if err := persistence.Prepare(record); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(a.root, recordsDir), 0750); err != nil {
		return fmt.Errorf("failed to create records directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return persistence.NewRecordError("Save", record.ID, err)
	}

	if err := os.WriteFile(a.path(record.ID), data, 0600); err != nil {
		return persistence.NewRecordError("Save", record.ID, err)
	}

	return nil
}

// ByID reads a record from the file system.
func (a *Archive) ByID(_ context.Context, id string) (*models.Record, error) {
	if !ids.IsID(id) {
		return nil, persistence.NewRecordError("ByID", id, persistence.ErrRecordNotFound)
	}

	body, err := os.ReadFile(a.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewRecordError("ByID", id, persistence.ErrRecordNotFound)
		}

		return nil, fmt.Errorf("failed to fetch record %s: %w", id, err)
	}

	var record models.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}

	return &record, nil
}

// Recent loads every record and returns the newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]*models.Record, error) {
	limit = persistence.NormalizeLimit(limit)

	jsonFiles, err := fs.Glob(os.DirFS(filepath.Join(a.root, recordsDir)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list record files: %w", err)
	}

	records := make([]*models.Record, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		record, err := a.ByID(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			if persistence.IsRecordNotFound(err) {
				continue
			}

			return nil, err
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// Prune removes the files of records created before the cutoff.
func (a *Archive) Prune(ctx context.Context, before time.Time) (int, error) {
	jsonFiles, err := fs.Glob(os.DirFS(filepath.Join(a.root, recordsDir)), "*.json")
	if err != nil {
		return 0, fmt.Errorf("failed to list record files: %w", err)
	}

	removed := 0

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		record, err := a.ByID(ctx, id)
		if err != nil {
			if persistence.IsRecordNotFound(err) {
				continue
			}

			return removed, err
		}

		if !record.CreatedAt.Before(before) {
			continue
		}

		if err := os.Remove(a.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, persistence.NewRecordError("Prune", id, err)
		}

		removed++
	}

	return removed, nil
}

func (a *Archive) path(id string) string {
	return filepath.Join(a.root, recordsDir, id+".json")
}
