package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/config"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/services"
)

// TwilioWebhookPayload is the form body Twilio posts for inbound messages
type TwilioWebhookPayload struct {
	MessageSid  string `form:"MessageSid"`
	AccountSid  string `form:"AccountSid"`
	From        string `form:"From"`
	To          string `form:"To"`
	Body        string `form:"Body"`
	ProfileName string `form:"ProfileName"`
	NumMedia    string `form:"NumMedia"`
}

// WhatsAppHandler bridges the Twilio webhook to the orchestrator. It dedupes
// provider redeliveries, bounds each turn with a timeout and always replies,
// falling back to a fixed text when the orchestrator cannot produce one.
type WhatsAppHandler struct {
	cfg           *config.Config
	orchestrator  *services.OrchestratorService
	twilioService *services.TwilioService
	dedup         *services.DedupTracker
}

func NewWhatsAppHandler(cfg *config.Config, orchestrator *services.OrchestratorService, twilioService *services.TwilioService, dedup *services.DedupTracker) *WhatsAppHandler {
	return &WhatsAppHandler{
		cfg:           cfg,
		orchestrator:  orchestrator,
		twilioService: twilioService,
		dedup:         dedup,
	}
}

// HandleWebhook processes incoming WhatsApp messages
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	if payload.Body == "" || payload.From == "" {
		// Status callbacks and media-only events are acknowledged and dropped
		return c.SendStatus(fiber.StatusOK)
	}

	if h.dedup.IsDuplicate(payload.MessageSid) {
		log.Printf("🔁 Duplicate delivery ignored: sid=%s", payload.MessageSid)
		return c.SendStatus(fiber.StatusOK)
	}

	from := strings.TrimPrefix(payload.From, "whatsapp:")
	log.Printf("📱 WhatsApp message from %s: %s", from, payload.Body)

	reply := h.processMessage(from, payload)

	if h.twilioService != nil && reply != "" {
		if err := h.twilioService.SendWhatsAppMessage(from, reply); err != nil {
			log.Printf("❌ Failed to send WhatsApp response: %v", err)
		} else {
			log.Printf("✅ Response sent to %s", from)
		}
	} else if reply != "" {
		log.Printf("📤 Response (not sent, Twilio not configured): %s", reply)
	}

	return c.SendStatus(fiber.StatusOK)
}

// processMessage runs the orchestrator under the adapter timeout and maps
// any failure to the fixed fallback text
func (h *WhatsAppHandler) processMessage(from string, payload TwilioWebhookPayload) string {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.OrchestratorTimeout)
	defer cancel()

	result, err := h.orchestrator.HandleMessage(ctx, &models.InboundMessage{
		TenantID:       h.cfg.TenantID,
		Channel:        models.WireChannelWhatsApp,
		ExternalUserID: from,
		DisplayName:    payload.ProfileName,
		Message: models.InboundMessageBody{
			Type:              "text",
			Text:              payload.Body,
			ProviderMessageID: payload.MessageSid,
			Timestamp:         time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil || result == nil || len(result.Responses) == 0 {
		log.Printf("❌ Orchestrator unavailable for %s: %v", from, err)
		return services.FallbackReplyText
	}
	return result.Responses[0].Text
}
