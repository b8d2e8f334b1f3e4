package models

// Wire channel values accepted on the orchestrator entry point
const (
	WireChannelWhatsApp = "whatsapp"
	WireChannelWebchat  = "webchat"
)

// InboundMessage is the normalized input shape handed to the orchestrator by a
// channel adapter. Created once per transport event, never mutated.
type InboundMessage struct {
	TenantID       string             `json:"tenantId" validate:"required"`
	Channel        string             `json:"channel" validate:"required,oneof=whatsapp webchat"`
	ExternalUserID string             `json:"externalUserId" validate:"required"`
	DisplayName    string             `json:"displayName"`
	CorrelationID  string             `json:"correlationId"`
	Message        InboundMessageBody `json:"message" validate:"required"`
}

// InboundMessageBody carries the transport-level message content
type InboundMessageBody struct {
	Type              string                 `json:"type" validate:"required,oneof=text image audio document interactive"`
	Text              string                 `json:"text"`
	Payload           map[string]interface{} `json:"payload"`
	ProviderMessageID string                 `json:"providerMessageId"`
	Timestamp         string                 `json:"timestamp"`
}

// OutboundMessage is one reply produced for an inbound message. Payload is
// diagnostic only and is never re-ingested as control input.
type OutboundMessage struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// OrchestratorResult is the response shape returned to channel adapters
type OrchestratorResult struct {
	ConversationID string            `json:"conversationId"`
	ContactID      string            `json:"contactId"`
	CorrelationID  string            `json:"correlationId,omitempty"`
	Responses      []OutboundMessage `json:"responses"`
}

// WireChannelToStored maps a wire channel value to its persisted form
func WireChannelToStored(channel string) string {
	if channel == WireChannelWhatsApp {
		return ChannelWhatsApp
	}
	return ChannelWebchat
}

// WireTypeToStored maps a wire message type to its persisted form
func WireTypeToStored(messageType string) string {
	switch messageType {
	case "image":
		return MessageTypeImage
	case "audio":
		return MessageTypeAudio
	case "document":
		return MessageTypeDocument
	case "interactive":
		return MessageTypeInteractive
	default:
		return MessageTypeText
	}
}
