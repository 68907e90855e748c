// Package web provides HTTP request and response types for the generator API.
package web

import (
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/moogar0880/problems"
)

// GenerateWorkflowRequest represents the request body for generating a workflow.
type GenerateWorkflowRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// GenerationProblem is the error body of a failed generation. Details carries the
// synthetic workflow so clients can still import it.
type GenerationProblem struct {
	*problems.Problem

	Error   string           `json:"error"`
	Details *models.Workflow `json:"details,omitempty"`
}

// RecordListResponse is the body of GET /workflows.
type RecordListResponse struct {
	Records []*models.Record `json:"records"`
	Limit   int              `json:"limit"`
}
