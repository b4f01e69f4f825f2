package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/brandreview/api/http/handlers"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Health      *handlers.HealthHandler
	Agent       *handlers.AgentHandler
	Brand       *handlers.BrandHandler
	Attachments *handlers.AttachmentHandler
	Reviews     *handlers.ReviewHandler
}

// Register wires all HTTP routes onto given Fiber app.
// authMW protects the review history; nil leaves it open.
func Register(app *fiber.App, h Handlers, authMW fiber.Handler) {
	// Health and readiness endpoints for probes/monitoring
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)

	api := app.Group("/api")
	api.Post("/foundry-agent", h.Agent.Ask)
	api.Get("/brand-rules/:brandId", h.Brand.Rules)
	api.Post("/parse-email", h.Attachments.ParseEmail)
	api.Post("/parse-pdf", h.Attachments.ParsePDF)

	v1 := api.Group("/v1")
	rg := v1.Group("/reviews")
	if authMW != nil {
		rg.Use(authMW)
	}
	rg.Post("/", h.Reviews.Create)
	rg.Get("/", h.Reviews.List)
	rg.Get("/:id", h.Reviews.Get)
	rg.Post("/:id/chat", h.Reviews.Chat)
}
