// Package export writes workflow documents as n8n-importable JSON files.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/schema"
)

const (
	extension   = ".json"
	filePerm    = 0o644
	dirPerm     = 0o750
	indentation = "  "
)

// Exporter writes documents into a directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// New creates an exporter rooted at dir. An empty dir means the working directory.
func New(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = log.WithModule("export")
	}

	return &Exporter{dir: dir, logger: logger}
}

// ToString renders the canonical form of doc: JSON indented with two spaces.
func ToString(doc *models.Workflow) (string, error) {
	data, err := json.MarshalIndent(doc, "", indentation)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow %q: %w", doc.Name, err)
	}

	return string(data), nil
}

// SanitizeFilename keeps Unicode letters, digits, '.', '_' and '-', replaces every other
// character with '_' and appends ".json" when missing.
func SanitizeFilename(name string) string {
	var b strings.Builder

	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	sanitized := b.String()
	if !strings.HasSuffix(sanitized, extension) {
		sanitized += extension
	}

	return sanitized
}

// FallbackFilename returns a randomized name used when the preferred file cannot be written.
func FallbackFilename() string {
	return "workflow_export_" + ids.NewID() + extension
}

// ToFile writes doc to the sanitized filename and returns the path written.
// When that fails it retries once with FallbackFilename. If both attempts fail
// the failure is logged and an empty path is returned.
func (e *Exporter) ToFile(doc *models.Workflow, filename string) string {
	if err := schema.Validate(doc); err != nil {
		e.logger.Warn("Exporting workflow that does not match schema", "name", doc.Name, "error", err)
	}

	content, err := ToString(doc)
	if err != nil {
		e.logger.Error("Failed to export workflow", "name", doc.Name, "error", err)

		return ""
	}

	path := filepath.Join(e.dir, SanitizeFilename(filename))

	err = e.write(path, content)
	if err == nil {
		e.logger.Info("Workflow exported", "path", path)

		return path
	}

	e.logger.Warn("Failed to write export file, retrying with fallback name", "path", path, "error", err)

	fallback := filepath.Join(e.dir, FallbackFilename())
	if err := e.write(fallback, content); err != nil {
		e.logger.Error("Failed to write fallback export file", "path", fallback, "error", err)

		return ""
	}

	e.logger.Info("Workflow exported", "path", fallback)

	return fallback
}

func (e *Exporter) write(path, content string) error {
	if e.dir != "" {
		if err := os.MkdirAll(e.dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
