// Package web provides HTTP handlers for the workflow generator API.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/n8ngen/pkg/generator"
	"github.com/dukex/n8ngen/pkg/persistence"
	"github.com/dukex/n8ngen/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const (
	// RootMessage is the liveness text served on GET /.
	RootMessage = "N8N Workflow Generator server is running!"

	credentialUnsetMessage = "OpenAI API key is not configured on the server."
)

type APIHandlers struct {
	workflowService *services.Workflow
	validator       *validator.Validate
	apiKey          string
}

// NewAPIHandlers creates the handlers. apiKey is only checked for presence so
// requests fail fast when the server has no credential.
func NewAPIHandlers(
	workflowService *services.Workflow,
	validator *validator.Validate,
	apiKey string,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		validator:       validator,
		apiKey:          apiKey,
	}
}

func (h *APIHandlers) Root(c fiber.Ctx) error {
	return c.SendString(RootMessage)
}

func (h *APIHandlers) GenerateWorkflow(c fiber.Ctx) error {
	if !generator.HasCredential(h.apiKey) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": credentialUnsetMessage,
		})
	}

	if len(c.Body()) == 0 {
		return badRequest(c, "Invalid JSON payload.")
	}

	var req GenerateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Failed to parse JSON payload: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Missing 'prompt' in request body.")
	}

	result, err := h.workflowService.Create(c.Context(), services.CreateRequest{Prompt: req.Prompt})
	if err != nil {
		return handleServiceError(c, err)
	}

	if result.Error != nil {
		return generationFailed(c, result)
	}

	return c.JSON(result.Workflow)
}

func (h *APIHandlers) GetRecords(c fiber.Ctx) error {
	limit := persistence.DefaultListLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid query parameters: "+err.Error())
		}

		limit = parsed
	}

	limit = persistence.NormalizeLimit(limit)

	records, err := h.workflowService.Records(c.Context(), limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(RecordListResponse{Records: records, Limit: limit})
}

func (h *APIHandlers) GetRecord(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Record ID is required")
	}

	record, err := h.workflowService.Record(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	archiveCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "N8N Workflow Generator API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "N8N Workflow Generator API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"archive":    archiveCheck,
			"credential": generator.HasCredential(h.apiKey),
		},
		"timestamp": time.Now().UTC(),
	})
}
