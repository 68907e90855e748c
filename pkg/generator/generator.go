// Package generator turns a free-text request into a repaired n8n workflow by
// asking a language model for the document.
//
// Generate never fails outright. Every failure is returned as a GenerationError
// together with a synthetic single-note document that can still be imported
// into n8n and explains what went wrong.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/llm"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/otelhelper"
	"github.com/dukex/n8ngen/pkg/repair"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// PlaceholderAPIKey is the sample credential value treated as absent.
	PlaceholderAPIKey = "YOUR_OPENAI_API_KEY"

	DefaultTimeout = 60 * time.Second

	// rawPreviewLimit bounds how much of an undecodable response is echoed back.
	rawPreviewLimit = 500

	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the tagged outcome of a generation. Workflow is always set.
type Result struct {
	Workflow *models.Workflow
	Issues   []repair.Issue
	Err      *GenerationError
}

// Status returns "success" or "error".
func (r *Result) Status() string {
	if r.Err != nil {
		return StatusError
	}

	return StatusSuccess
}

// Generator asks an llm.Provider for workflows and repairs what comes back.
type Generator struct {
	provider llm.Provider
	apiKey   string
	model    string
	timeout  time.Duration
	repair   *repair.Engine
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(g *Generator) {
		g.timeout = timeout
	}
}

func WithRepairEngine(engine *repair.Engine) Option {
	return func(g *Generator) {
		g.repair = engine
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(g *Generator) {
		g.tracer = tracer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a generator. apiKey is only checked for presence; the provider
// is expected to have been configured with the same credential.
func New(provider llm.Provider, apiKey string, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		apiKey:   apiKey,
		timeout:  DefaultTimeout,
		tracer:   otelhelper.NoopTracer(),
		logger:   log.WithModule("generator"),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.repair == nil {
		g.repair = repair.New(repair.WithLogger(g.logger))
	}

	return g
}

// HasCredential reports whether apiKey is set to something other than the placeholder.
func HasCredential(apiKey string) bool {
	key := strings.TrimSpace(apiKey)

	return key != "" && key != PlaceholderAPIKey
}

// Generate asks the model for a workflow matching text.
func (g *Generator) Generate(ctx context.Context, text string) (result *Result) {
	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "generator.generate",
		attribute.String(otelhelper.ProviderKey, g.providerName()),
		attribute.String(otelhelper.ModelKey, g.model),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			result = g.fail(KindUnexpected, fmt.Errorf("panic: %v", r), "")
		}

		if result.Err != nil {
			otelhelper.SetError(span, result.Err, attribute.String(otelhelper.ErrorKindKey, string(result.Err.Kind)))
		} else {
			span.SetAttributes(
				attribute.String(otelhelper.WorkflowNameKey, result.Workflow.Name),
				attribute.Int(otelhelper.NodeCountKey, len(result.Workflow.Nodes)),
				attribute.Int(otelhelper.RepairIssuesKey, len(result.Issues)),
			)
		}
	}()

	if !HasCredential(g.apiKey) {
		return g.fail(KindCredentialMissing, ErrCredentialMissing, "")
	}

	if g.provider == nil {
		return g.fail(KindUnexpected, errors.New("no llm provider configured"), "")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.MessageRoleSystem, Content: SystemPrompt},
			{Role: llm.MessageRoleUser, Content: text},
		},
		Model:        g.model,
		JSONResponse: true,
	})
	if err != nil {
		return g.fail(KindProvider, err, "")
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return g.fail(KindDecode, ErrEmptyResponse, resp.Content)
	}

	raw, err := repair.Decode([]byte(content))
	if err != nil {
		return g.fail(KindDecode, err, content)
	}

	if _, ok := raw.(map[string]any); !ok {
		return g.fail(KindDecode, ErrNotObject, content)
	}

	repaired := g.repair.Repair(raw)
	if repaired.Err != nil {
		return g.fail(KindValidation, repaired.Err, "")
	}

	g.logger.Info("Workflow generated",
		"name", repaired.Workflow.Name,
		"nodes", len(repaired.Workflow.Nodes),
		"issues", len(repaired.Issues))

	return &Result{Workflow: repaired.Workflow, Issues: repaired.Issues}
}

// fail renders err as a synthetic note document. The note is stamped with fresh
// identifiers before it goes through the repair engine, so repair has nothing to report.
func (g *Generator) fail(kind ErrorKind, err error, raw string) *Result {
	genErr := &GenerationError{Kind: kind, Message: g.describe(kind, err, raw), Err: err}

	workflowName, nodeName := models.ErrorWorkflowName, models.ErrorNodeName
	if kind == KindCredentialMissing {
		workflowName, nodeName = models.MissingKeyWorkflowName, models.MissingKeyNodeName
	}

	note := models.NewNoteWorkflow(workflowName, nodeName, genErr.Message)
	now := ids.Now()
	note.VersionID, note.CreatedAt, note.UpdatedAt = ids.NewID(), now, now
	note.Nodes[0].ID = ids.NewID()

	repaired := g.repair.Repair(note.Raw())

	g.logger.Error("Workflow generation failed", "kind", kind, "error", genErr.Message)

	return &Result{Workflow: repaired.Workflow, Err: genErr}
}

func (g *Generator) describe(kind ErrorKind, err error, raw string) string {
	provider := displayName(g.providerName())

	var msg string

	switch kind {
	case KindCredentialMissing:
		return provider + " API Key is missing. Please configure it."
	case KindProvider:
		msg = provider + " API Error: " + err.Error()
	case KindDecode:
		msg = fmt.Sprintf("JSON Parsing Error: %s. Raw response: %s...", err, preview(raw))
	case KindValidation:
		msg = "LLM Response/Validation Error: " + err.Error()
	default:
		msg = "Unexpected Error: " + err.Error()
	}

	return g.redact(msg)
}

func (g *Generator) redact(msg string) string {
	key := strings.TrimSpace(g.apiKey)
	if key == "" {
		return msg
	}

	return strings.ReplaceAll(msg, key, "[REDACTED]")
}

func (g *Generator) providerName() string {
	if g.provider == nil {
		return "openai"
	}

	return g.provider.Name()
}

func displayName(provider string) string {
	switch provider {
	case "openai":
		return "OpenAI"
	case "gemini":
		return "Gemini"
	default:
		return provider
	}
}

// preview returns at most rawPreviewLimit bytes of raw without splitting a rune.
func preview(raw string) string {
	if len(raw) <= rawPreviewLimit {
		return raw
	}

	cut := rawPreviewLimit
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}

	return raw[:cut]
}

// IsKind reports whether err is a *GenerationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var genErr *GenerationError

	return errors.As(err, &genErr) && genErr.Kind == kind
}
