package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/brandreview/api/http/presenter"
	"github.com/artem13815/brandreview/pkg/health"
)

// ConfigFlags reports which upstream settings are present, never their values.
type ConfigFlags struct {
	FoundryEndpoint       bool `json:"foundryEndpoint"`
	AgentID               bool `json:"agentId"`
	AzureOpenAIConfigured bool `json:"azureOpenaiConfigured"`
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc   health.ReadinessUseCase
	flags ConfigFlags
	now   func() time.Time
}

func NewHealthHandler(svc health.ReadinessUseCase, flags ConfigFlags) *HealthHandler {
	return &HealthHandler{svc: svc, flags: flags, now: time.Now}
}

type healthResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Config    ConfigFlags `json:"config"`
}

// Health: basic liveness check.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} healthResponse
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(healthResponse{
		Status:    "healthy",
		Timestamp: presenter.Timestamp(h.now()),
		Config:    h.flags,
	})
}

// Ready: readiness check over every configured dependency.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	rep := h.svc.Check(ctx)
	if !rep.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "not_ready",
			"details": rep.Err.Error(),
			"checks":  rep.Checks,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ready", "checks": rep.Checks})
}
