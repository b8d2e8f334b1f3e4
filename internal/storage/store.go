package storage

import (
	"errors"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the persistence operations backing the built-in conversation
// service. Context versions are append-only: every patch writes a new version
// with a strictly increasing number per conversation.
type Store interface {
	// Contact operations
	UpsertContact(tenantID, channel, externalID, displayName string) (*models.Contact, error)
	GetContactByExternal(tenantID, channel, externalID string) (*models.Contact, error)

	// Conversation operations
	GetOrCreateConversation(tenantID, contactID, channel string) (*models.Conversation, error)
	GetConversation(tenantID, conversationID string) (*models.Conversation, error)
	GetActiveConversations(tenantID string) ([]*models.Conversation, error)

	// Transcript operations
	AppendMessage(msg *models.ChatMessage) (*models.ChatMessage, error)
	GetMessagesByConversation(tenantID, conversationID string) ([]*models.ChatMessage, error)

	// Context operations
	GetLatestContext(tenantID, conversationID string) (*models.ContextVersion, error)
	AppendContextVersion(tenantID, conversationID, data string) (*models.ContextVersion, error)

	// Consent operations
	HasConsent(tenantID, externalID string) (bool, error)
	RecordConsent(tenantID, externalID, policyVersion string) (*models.ConsentRecord, error)
}
