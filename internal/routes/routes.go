package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/config"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/handlers"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/middleware"
)

// Handlers bundles everything SetupRoutes needs to wire
type Handlers struct {
	Health       *handlers.HealthHandler
	Orchestrator *handlers.OrchestratorHandler
	Webchat      *handlers.WebchatHandler
	WhatsApp     *handlers.WhatsAppHandler
	Admin        *handlers.AdminHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, h *Handlers) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "SOFIA Orchestrator",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":       "/health",
				"ready":        "/ready",
				"orchestrator": "/v1/orchestrator/handle-message",
				"webchat":      "/v1/webchat/message",
				"webhook":      "/webhook/whatsapp",
				"admin":        "/admin",
			},
		})
	})

	app.Get("/health", h.Health.Check)
	app.Get("/ready", h.Health.Ready)

	// Orchestrator entry point for channel adapters
	v1 := app.Group("/v1")
	v1.Post("/orchestrator/handle-message", h.Orchestrator.HandleMessage)
	v1.Post("/webchat/message", h.Webchat.HandleMessage)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	if cfg.DisableWebhookValidation {
		println("⚠️  WhatsApp webhook validation DISABLED for development")
		webhooks.Post("/whatsapp", h.WhatsApp.HandleWebhook)
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(cfg.TwilioAuthToken), h.WhatsApp.HandleWebhook)
	}

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdminToken(cfg.AdminJWTSecret))
	admin.Get("/sessions", h.Admin.GetSessions)
	admin.Get("/stats", h.Admin.GetStats)
	admin.Get("/conversations/:id/messages", h.Admin.GetTranscript)
	admin.Get("/pairing-code", h.Admin.GetPairingCode)
}
