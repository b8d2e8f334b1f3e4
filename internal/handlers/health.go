package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/services"
)

// HealthHandler handles liveness and readiness checks
type HealthHandler struct {
	Version string
	session services.TransportSession
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, session services.TransportSession) *HealthHandler {
	return &HealthHandler{
		Version: version,
		session: session,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"service": "SOFIA Orchestrator",
		"version": h.Version,
	})
}

// Ready reports whether the channel transport session can send messages.
// With no transport configured (webchat-only deployments) the service is
// always ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.session == nil {
		return c.JSON(fiber.Map{"ready": true})
	}
	ready := h.session.IsAuthenticated()
	body := fiber.Map{"ready": ready}
	if lastError := h.session.LastError(); lastError != "" {
		body["lastError"] = lastError
	}
	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
