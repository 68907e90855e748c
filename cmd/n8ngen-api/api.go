// Package main provides the workflow generator API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/n8ngen/pkg/services"
	"github.com/dukex/n8ngen/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

type API struct {
	logger   *slog.Logger
	service  *services.Workflow
	apiKey   string
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	service *services.Workflow,
	apiKey string,
) *API {
	return &API{
		logger:   logger,
		service:  service,
		apiKey:   apiKey,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.service, a.validate, a.apiKey)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, ok := a.service.HealthCheck(c.Context())

			return ok
		},
	}))

	app.Get("/", handlers.Root)
	app.Post("/generate-workflow", handlers.GenerateWorkflow)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetRecords)
	w.Get("/:id", handlers.GetRecord)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
