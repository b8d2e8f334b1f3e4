package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/convoapi"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/services"
)

// AdminHandler exposes operational inspection endpoints. All routes behind
// it require an admin bearer token.
type AdminHandler struct {
	tenantID string
	sessions *services.SessionManager
	dedup    *services.DedupTracker
	convo    convoapi.Client
	session  services.TransportSession
}

func NewAdminHandler(tenantID string, sessions *services.SessionManager, dedup *services.DedupTracker, convo convoapi.Client, session services.TransportSession) *AdminHandler {
	return &AdminHandler{
		tenantID: tenantID,
		sessions: sessions,
		dedup:    dedup,
		convo:    convo,
		session:  session,
	}
}

// GetSessions returns the live in-memory dialogue states
func (h *AdminHandler) GetSessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"active":   h.sessions.ActiveCount(),
			"sessions": h.sessions.Snapshot(),
		},
	})
}

// GetStats returns counters useful when triaging duplicated or lost turns
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"activeSessions":  h.sessions.ActiveCount(),
			"trackedMessages": h.dedup.TrackedCount(),
		},
	})
}

// GetTranscript returns the stored message history of one conversation
func (h *AdminHandler) GetTranscript(c *fiber.Ctx) error {
	conversationID := c.Params("id")
	if conversationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing conversation id",
		})
	}

	messages, err := h.convo.ListMessages(c.UserContext(), h.tenantID, conversationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	}
	return c.JSON(fiber.Map{
		"data": messages,
	})
}

// GetPairingCode returns the code a phone number must send to link with the
// channel transport
func (h *AdminHandler) GetPairingCode(c *fiber.Ctx) error {
	if h.session == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "No transport session configured",
		})
	}
	phone := c.Query("phone")
	code, err := h.session.RequestPairingCode(phone)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"pairingCode": code},
	})
}
