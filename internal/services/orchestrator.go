package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/consentapi"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/convoapi"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
)

// FallbackReplyText is the last-resort reply when even the decision engine
// cannot produce one
const FallbackReplyText = "En este momento no puedo procesar tu solicitud, intenta más tarde."

// Data protection consent texts (Ley 1581 de 2012)
const (
	ConsentPolicyVersion = "2012-1581-v1"

	ConsentPromptText = "Hola 👋 Soy SOFIA, asistente virtual del Consultorio Jurídico.\n\n" +
		"Antes de continuar necesito tu autorización para el tratamiento de tus datos " +
		"personales, conforme a la Ley 1581 de 2012 y nuestra política de privacidad.\n\n" +
		"Responde *acepto* para continuar."
	ConsentGrantedText = "¡Gracias! ✅ Quedó registrada tu autorización de tratamiento de datos.\n\n" +
		"¿En qué te puedo ayudar?"
)

var consentAcceptTokens = map[string]bool{
	"acepto":      true,
	"si acepto":   true,
	"sí acepto":   true,
	"si, acepto":  true,
	"sí, acepto":  true,
	"de acuerdo":  true,
	"autorizo":    true,
}

// OrchestratorService is the conversation core: it resolves contact and
// conversation identity, gates WhatsApp users on data-processing consent,
// runs the configured decision strategy and records both sides of the turn.
// Persistence is best effort throughout; a reply is produced even when every
// downstream dependency is failing.
type OrchestratorService struct {
	tenantID string
	convo    convoapi.Client
	consent  consentapi.Checker // nil disables the consent gate
	strategy DecisionStrategy
}

func NewOrchestratorService(tenantID string, convo convoapi.Client, consent consentapi.Checker, strategy DecisionStrategy) *OrchestratorService {
	return &OrchestratorService{
		tenantID: tenantID,
		convo:    convo,
		consent:  consent,
		strategy: strategy,
	}
}

// SetStrategy swaps the decision strategy. Intended for startup wiring and
// tests, not for concurrent use against live traffic.
func (o *OrchestratorService) SetStrategy(strategy DecisionStrategy) {
	o.strategy = strategy
}

func (o *OrchestratorService) HandleMessage(ctx context.Context, in *models.InboundMessage) (*models.OrchestratorResult, error) {
	correlationID := in.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	tenantID := in.TenantID
	if tenantID == "" {
		tenantID = o.tenantID
	}
	storedChannel := models.WireChannelToStored(in.Channel)

	log.Printf("📨 Inbound message: correlationId=%s tenant=%s channel=%s user=%s type=%s",
		correlationID, tenantID, in.Channel, in.ExternalUserID, in.Message.Type)

	contactID, conversationID := o.ensureIdentity(ctx, tenantID, storedChannel, in, correlationID)

	o.appendMessage(ctx, convoapi.AppendMessageInput{
		TenantID:          tenantID,
		ConversationID:    conversationID,
		ContactID:         contactID,
		Direction:         models.DirectionIn,
		Type:              models.WireTypeToStored(in.Message.Type),
		Text:              in.Message.Text,
		Payload:           in.Message.Payload,
		ProviderMessageID: in.Message.ProviderMessageID,
		CorrelationID:     correlationID,
	})

	normalized := NormalizeText(in.Message.Text)

	if in.Channel == models.WireChannelWhatsApp && o.consent != nil {
		if reply, gated := o.consentGate(ctx, in.ExternalUserID, normalized, correlationID); gated {
			o.appendOutbound(ctx, tenantID, conversationID, contactID, reply, correlationID)
			return o.result(conversationID, contactID, correlationID, reply), nil
		}
	}

	contextData := o.latestContext(ctx, tenantID, conversationID, correlationID)

	decision, err := o.strategy.Decide(ctx, &DecisionInput{
		Key: SessionKey{
			TenantID:       tenantID,
			Channel:        storedChannel,
			ExternalUserID: in.ExternalUserID,
		},
		Text:          in.Message.Text,
		Normalized:    normalized,
		Context:       contextData,
		CorrelationID: correlationID,
	})
	if err != nil {
		log.Printf("❌ Decision strategy %s failed: correlationId=%s error=%v",
			o.strategy.Name(), correlationID, err)
		decision = &Decision{ReplyText: FallbackReplyText}
	}

	if decision.Patch != nil && conversationID != "" {
		if _, err := o.convo.PatchContext(ctx, tenantID, conversationID, decision.Patch, correlationID); err != nil {
			log.Printf("⚠️ Context patch failed: correlationId=%s conversation=%s error=%v",
				correlationID, conversationID, err)
		}
	}

	o.appendOutbound(ctx, tenantID, conversationID, contactID, decision.ReplyText, correlationID)

	log.Printf("📤 Reply ready: correlationId=%s conversation=%s strategy=%s chars=%d",
		correlationID, conversationID, o.strategy.Name(), len([]rune(decision.ReplyText)))

	return o.result(conversationID, contactID, correlationID, decision.ReplyText), nil
}

// ensureIdentity upserts the contact and conversation. Failures leave the
// IDs empty and the turn continues without persistence.
func (o *OrchestratorService) ensureIdentity(ctx context.Context, tenantID, storedChannel string, in *models.InboundMessage, correlationID string) (contactID, conversationID string) {
	contact, err := o.convo.UpsertContact(ctx, convoapi.UpsertContactInput{
		TenantID:      tenantID,
		Channel:       storedChannel,
		ExternalID:    in.ExternalUserID,
		DisplayName:   in.DisplayName,
		CorrelationID: correlationID,
	})
	if err != nil {
		log.Printf("⚠️ Contact upsert failed, continuing without identity: correlationId=%s error=%v",
			correlationID, err)
		return "", ""
	}
	contactID = contact.ID

	conversation, err := o.convo.GetOrCreateConversation(ctx, convoapi.ConversationInput{
		TenantID:      tenantID,
		ContactID:     contactID,
		Channel:       storedChannel,
		CorrelationID: correlationID,
	})
	if err != nil {
		log.Printf("⚠️ Conversation resolve failed, continuing without transcript: correlationId=%s error=%v",
			correlationID, err)
		return contactID, ""
	}
	return contactID, conversation.ID
}

// consentGate returns the gate reply when the user has not yet authorized
// data processing. A failed lookup counts as no consent.
func (o *OrchestratorService) consentGate(ctx context.Context, phone, normalized, correlationID string) (string, bool) {
	granted, err := o.consent.HasConsent(ctx, phone)
	if err != nil {
		log.Printf("⚠️ Consent lookup failed, assuming not granted: correlationId=%s error=%v",
			correlationID, err)
		granted = false
	}
	if granted {
		return "", false
	}

	if consentAcceptTokens[normalized] {
		if err := o.consent.RecordConsent(ctx, phone, ConsentPolicyVersion); err != nil {
			log.Printf("❌ Consent record failed: correlationId=%s error=%v", correlationID, err)
			return ConsentPromptText, true
		}
		log.Printf("✅ Consent recorded: correlationId=%s policy=%s", correlationID, ConsentPolicyVersion)
		return ConsentGrantedText, true
	}
	return ConsentPromptText, true
}

func (o *OrchestratorService) latestContext(ctx context.Context, tenantID, conversationID, correlationID string) map[string]interface{} {
	if conversationID == "" {
		return map[string]interface{}{}
	}
	doc, err := o.convo.GetLatestContext(ctx, tenantID, conversationID, correlationID)
	if err != nil || doc == nil || doc.Data == nil {
		if err != nil {
			log.Printf("⚠️ Context fetch failed, starting from empty: correlationId=%s error=%v",
				correlationID, err)
		}
		return map[string]interface{}{}
	}
	return doc.Data
}

func (o *OrchestratorService) appendOutbound(ctx context.Context, tenantID, conversationID, contactID, text, correlationID string) {
	o.appendMessage(ctx, convoapi.AppendMessageInput{
		TenantID:       tenantID,
		ConversationID: conversationID,
		ContactID:      contactID,
		Direction:      models.DirectionOut,
		Type:           models.MessageTypeText,
		Text:           text,
		CorrelationID:  correlationID,
	})
}

func (o *OrchestratorService) appendMessage(ctx context.Context, input convoapi.AppendMessageInput) {
	if input.ConversationID == "" {
		return
	}
	if err := o.convo.AppendMessage(ctx, input); err != nil {
		log.Printf("⚠️ Message append failed: correlationId=%s conversation=%s direction=%s error=%v",
			input.CorrelationID, input.ConversationID, input.Direction, err)
	}
}

func (o *OrchestratorService) result(conversationID, contactID, correlationID, reply string) *models.OrchestratorResult {
	return &models.OrchestratorResult{
		ConversationID: conversationID,
		ContactID:      contactID,
		CorrelationID:  correlationID,
		Responses: []models.OutboundMessage{
			{Type: "text", Text: reply},
		},
	}
}
