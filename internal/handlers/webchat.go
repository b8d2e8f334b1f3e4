package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/config"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/services"
)

// WebchatMessageRequest is the simplified body accepted on the webchat entry
type WebchatMessageRequest struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
}

// WebchatHandler is a thin adapter for browser chat widgets and manual
// testing. It skips provider dedup since webchat has no redeliveries.
type WebchatHandler struct {
	cfg          *config.Config
	orchestrator *services.OrchestratorService
}

func NewWebchatHandler(cfg *config.Config, orchestrator *services.OrchestratorService) *WebchatHandler {
	return &WebchatHandler{cfg: cfg, orchestrator: orchestrator}
}

// HandleMessage routes one webchat message through the orchestrator
func (h *WebchatHandler) HandleMessage(c *fiber.Ctx) error {
	var req WebchatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.UserID == "" || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId and text are required",
		})
	}

	result, err := h.orchestrator.HandleMessage(c.UserContext(), &models.InboundMessage{
		TenantID:       h.cfg.TenantID,
		Channel:        models.WireChannelWebchat,
		ExternalUserID: req.UserID,
		DisplayName:    req.DisplayName,
		CorrelationID:  c.Get("x-correlation-id"),
		Message: models.InboundMessageBody{
			Type: "text",
			Text: req.Text,
		},
	})
	if err != nil {
		log.Printf("❌ Webchat orchestration failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal error",
		})
	}

	return c.JSON(fiber.Map{
		"data": result,
	})
}
