package persistence

import (
	"time"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/models"
)

// Prepare validates record and fills ID and CreatedAt when missing. Backends call it from Save.
func Prepare(record *models.Record) error {
	if record == nil {
		return NewRecordError("Save", "", ErrInvalidRecord)
	}

	if record.Workflow == nil {
		return &RecordError{Op: "Save", RecordID: record.ID, Err: ErrInvalidRecord, Message: "workflow is nil"}
	}

	if record.ID == "" {
		record.ID = ids.NewID()
	} else if !ids.IsID(record.ID) {
		return &RecordError{Op: "Save", RecordID: record.ID, Err: ErrInvalidRecord, Message: "id is not a UUID"}
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	return nil
}
