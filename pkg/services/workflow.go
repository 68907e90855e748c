package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/n8ngen/pkg/eventbus"
	"github.com/dukex/n8ngen/pkg/events"
	"github.com/dukex/n8ngen/pkg/generator"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/persistence"
	"github.com/dukex/n8ngen/pkg/repair"
)

// Generator produces a workflow for a request text.
type Generator interface {
	Generate(ctx context.Context, text string) *generator.Result
}

// Exporter writes a workflow to a file and returns the path, or "" on failure.
type Exporter interface {
	ToFile(doc *models.Workflow, filename string) string
}

// Workflow is the request façade: generate, then optionally export, archive and publish.
type Workflow struct {
	generator Generator
	exporter  Exporter
	archive   persistence.Archive
	publisher eventbus.EventPublisher
	provider  string
	logger    *slog.Logger
}

// Option configures the Workflow service.
type Option func(*Workflow)

// WithExporter enables file export.
func WithExporter(exporter Exporter) Option {
	return func(w *Workflow) {
		w.exporter = exporter
	}
}

// WithArchive records every generation in archive.
func WithArchive(archive persistence.Archive) Option {
	return func(w *Workflow) {
		w.archive = archive
	}
}

// WithEventPublisher publishes a generation event after every request.
func WithEventPublisher(publisher eventbus.EventPublisher) Option {
	return func(w *Workflow) {
		w.publisher = publisher
	}
}

// WithProviderName labels archived records with the LLM provider.
func WithProviderName(provider string) Option {
	return func(w *Workflow) {
		w.provider = provider
	}
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(gen Generator, logger *slog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		generator: gen,
		logger:    logger.With("module", "workflow_service"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// CreateRequest asks for a new workflow.
type CreateRequest struct {
	Prompt string

	// Export writes the result to a file. ExportFilename defaults to the workflow name.
	Export         bool
	ExportFilename string
}

// CreateResult is the outcome of Create. Workflow is always set.
type CreateResult struct {
	Workflow   *models.Workflow
	Status     string
	Error      *generator.GenerationError
	Issues     []repair.Issue
	ExportPath string
	RecordID   string
}

// Create generates a workflow for req.Prompt. Generation failures are reported
// through CreateResult.Status and CreateResult.Error; the only returned error
// is ErrPromptRequired.
//
// Status follows the generator's tagged result, not the workflow name: a workflow
// the model itself named "Error ..." is still a success.
func (w *Workflow) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewValidationError("Create", "prompt_required", "prompt is required", ErrPromptRequired)
	}

	result := w.generator.Generate(ctx, req.Prompt)

	out := &CreateResult{
		Workflow: result.Workflow,
		Status:   result.Status(),
		Error:    result.Err,
		Issues:   result.Issues,
	}

	if req.Export || req.ExportFilename != "" {
		out.ExportPath = w.export(result.Workflow, req.ExportFilename)
	}

	out.RecordID = w.record(ctx, req.Prompt, out)

	w.publish(ctx, req.Prompt, out)

	return out, nil
}

func (w *Workflow) export(doc *models.Workflow, filename string) string {
	if w.exporter == nil {
		w.logger.Warn("Export requested but no exporter is configured")

		return ""
	}

	if strings.TrimSpace(filename) == "" {
		filename = doc.Name
	}

	return w.exporter.ToFile(doc, filename)
}

func (w *Workflow) record(ctx context.Context, prompt string, out *CreateResult) string {
	if w.archive == nil {
		return ""
	}

	record := &models.Record{
		Prompt:     prompt,
		Status:     out.Status,
		Provider:   w.provider,
		Workflow:   out.Workflow,
		ExportPath: out.ExportPath,
	}

	if out.Error != nil {
		record.ErrorKind = string(out.Error.Kind)
		record.ErrorMessage = out.Error.Message
	}

	if err := w.archive.Save(ctx, record); err != nil {
		w.logger.ErrorContext(ctx, "Failed to archive generation", "error", err)

		return ""
	}

	return record.ID
}

func (w *Workflow) publish(ctx context.Context, prompt string, out *CreateResult) {
	if w.publisher == nil {
		return
	}

	var event eventbus.Event

	if out.Error != nil {
		event = events.NewWorkflowGenerationFailed(out.RecordID, w.provider, prompt, string(out.Error.Kind), out.Error.Message)
	} else {
		generated := events.NewWorkflowGenerated(out.RecordID, w.provider, prompt,
			out.Workflow.Name, len(out.Workflow.Nodes), len(out.Issues))
		generated.ExportPath = out.ExportPath
		event = generated
	}

	key := out.RecordID
	if key == "" {
		key = out.Workflow.VersionID
	}

	if err := w.publisher.Publish(ctx, key, event); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish generation event", "error", err)
	}
}

// Records returns the most recent archived generations.
func (w *Workflow) Records(ctx context.Context, limit int) ([]*models.Record, error) {
	if w.archive == nil {
		return nil, ErrArchiveDisabled
	}

	records, err := w.archive.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return records, nil
}

// Record returns one archived generation.
func (w *Workflow) Record(ctx context.Context, id string) (*models.Record, error) {
	if w.archive == nil {
		return nil, ErrArchiveDisabled
	}

	return w.archive.ByID(ctx, id)
}

// HealthCheck checks the health of the archive.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.archive == nil {
		return "Archive disabled", true
	}

	err := w.archive.HealthCheck(ctx)
	if err != nil {
		return "Archive is unhealthy: " + err.Error(), false
	}

	return "Archive is healthy", true
}
