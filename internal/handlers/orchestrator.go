package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/services"
)

// OrchestratorHandler exposes the conversation core to channel adapters
type OrchestratorHandler struct {
	orchestrator *services.OrchestratorService
	validate     *validator.Validate
}

func NewOrchestratorHandler(orchestrator *services.OrchestratorService) *OrchestratorHandler {
	return &OrchestratorHandler{
		orchestrator: orchestrator,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HandleMessage processes one normalized inbound message and returns the
// orchestrator result. Malformed input is the only client error; every
// downstream failure is absorbed into a fallback reply with status 200.
func (h *OrchestratorHandler) HandleMessage(c *fiber.Ctx) error {
	var in models.InboundMessage
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing orchestrator request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	if in.CorrelationID == "" {
		in.CorrelationID = c.Get("x-correlation-id")
	}

	result, err := h.orchestrator.HandleMessage(c.UserContext(), &in)
	if err != nil {
		log.Printf("❌ Orchestrator failure: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal error",
		})
	}

	return c.JSON(fiber.Map{
		"data": result,
	})
}
