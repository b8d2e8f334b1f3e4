package convoapi

import (
	"context"
	"time"
)

// Contact is the persistence service's view of a channel user
type Contact struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Channel     string `json:"channel"`
	ExternalID  string `json:"externalId"`
	DisplayName string `json:"displayName"`
}

// Conversation is one active dialogue record
type Conversation struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenantId"`
	ContactID string `json:"contactId"`
	Channel   string `json:"channel"`
}

// ContextDocument is the latest versioned context blob of a conversation
type ContextDocument struct {
	Data    map[string]interface{} `json:"data"`
	Version int                    `json:"version"`
}

// MessageRecord is one transcript entry as returned by the persistence layer
type MessageRecord struct {
	ID                string    `json:"id"`
	Direction         string    `json:"direction"`
	Type              string    `json:"type"`
	Text              string    `json:"text"`
	ProviderMessageID string    `json:"providerMessageId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// UpsertContactInput identifies a contact to create or refresh
type UpsertContactInput struct {
	TenantID      string
	Channel       string
	ExternalID    string
	DisplayName   string
	CorrelationID string
}

// ConversationInput identifies the active conversation to fetch or open
type ConversationInput struct {
	TenantID      string
	ContactID     string
	Channel       string
	CorrelationID string
}

// AppendMessageInput is one transcript write
type AppendMessageInput struct {
	TenantID          string
	ConversationID    string
	ContactID         string
	Direction         string
	Type              string
	Text              string
	Payload           map[string]interface{}
	ProviderMessageID string
	CorrelationID     string
}

// Client is the context persistence interface consumed by the orchestrator.
// All writes are treated as at-least-once and best-effort: a failed append is
// logged by the caller and never aborts the turn.
type Client interface {
	UpsertContact(ctx context.Context, in UpsertContactInput) (*Contact, error)
	GetOrCreateConversation(ctx context.Context, in ConversationInput) (*Conversation, error)
	AppendMessage(ctx context.Context, in AppendMessageInput) error
	GetLatestContext(ctx context.Context, tenantID, conversationID, correlationID string) (*ContextDocument, error)
	PatchContext(ctx context.Context, tenantID, conversationID string, patch map[string]interface{}, correlationID string) (*ContextDocument, error)
	ListMessages(ctx context.Context, tenantID, conversationID string) ([]MessageRecord, error)
}
