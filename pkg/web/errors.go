package web

import (
	"errors"

	"github.com/dukex/n8ngen/pkg/generator"
	"github.com/dukex/n8ngen/pkg/persistence"
	"github.com/dukex/n8ngen/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("record_not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// generationStatus maps a generation failure to its HTTP status.
func generationStatus(kind generator.ErrorKind) int {
	if kind.IsClientFault() {
		return fiber.StatusUnprocessableEntity
	}

	return fiber.StatusInternalServerError
}

// generationFailed renders a failed generation with the synthetic workflow attached.
func generationFailed(c fiber.Ctx, result *services.CreateResult) error {
	status := generationStatus(result.Error.Kind)

	problem := &GenerationProblem{
		Problem: problems.NewStatusProblem(status).
			WithInstance(c.Path()).
			WithType(string(result.Error.Kind)).
			WithDetail(result.Error.Message),
		Error:   result.Error.Message,
		Details: result.Workflow,
	}

	return c.Status(status).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case errors.Is(err, services.ErrArchiveDisabled):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("archive_disabled").
			WithDetail("generation archive is disabled")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsRecordNotFound(err):
		return notFound(c, "record not found")

	default:
		return internalError(c, err)
	}
}
