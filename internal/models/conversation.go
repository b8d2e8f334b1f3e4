package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Channel values as stored by the persistence layer
const (
	ChannelWhatsApp = "WHATSAPP"
	ChannelWebchat  = "WEBCHAT"
)

// Message direction values
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// Message type values
const (
	MessageTypeText        = "TEXT"
	MessageTypeImage       = "IMAGE"
	MessageTypeAudio       = "AUDIO"
	MessageTypeDocument    = "DOCUMENT"
	MessageTypeInteractive = "INTERACTIVE"
)

// Contact is the persisted identity of an external user on a channel
type Contact struct {
	gorm.Model
	ContactID   string `gorm:"uniqueIndex;not null" json:"contact_id"`
	TenantID    string `gorm:"index:idx_contact_lookup;not null" json:"tenant_id"`
	Channel     string `gorm:"index:idx_contact_lookup;not null" json:"channel"`
	ExternalID  string `gorm:"index:idx_contact_lookup;not null" json:"external_id"`
	DisplayName string `json:"display_name"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ContactID == "" {
		c.ContactID = fmt.Sprintf("CT%d", time.Now().UnixNano())
	}
	return nil
}

// Conversation is the ongoing exchange between one contact and the system
type Conversation struct {
	gorm.Model
	ConversationID string `gorm:"uniqueIndex;not null" json:"conversation_id"`
	TenantID       string `gorm:"index;not null" json:"tenant_id"`
	ContactID      string `gorm:"index;not null" json:"contact_id"`
	Channel        string `json:"channel"`
	Status         string `gorm:"default:'ACTIVE'" json:"status"` // ACTIVE, CLOSED
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ConversationID == "" {
		c.ConversationID = fmt.Sprintf("CV%d", time.Now().UnixNano())
	}
	return nil
}

// ChatMessage is one transcript entry (IN or OUT) of a conversation
type ChatMessage struct {
	gorm.Model
	MessageID         string `gorm:"uniqueIndex;not null" json:"message_id"`
	TenantID          string `gorm:"index" json:"tenant_id"`
	ConversationID    string `gorm:"index" json:"conversation_id"`
	ContactID         string `json:"contact_id"`
	Direction         string `json:"direction"` // IN, OUT
	Type              string `json:"type"`
	Text              string `json:"text"`
	Payload           string `json:"payload"` // JSON string, diagnostic only
	ProviderMessageID string `gorm:"index" json:"provider_message_id"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == "" {
		m.MessageID = fmt.Sprintf("MSG%d", time.Now().UnixNano())
	}
	return nil
}

// ContextVersion is one append-only version of a conversation's context blob.
// Versions are never overwritten in place; reads take the highest version.
type ContextVersion struct {
	gorm.Model
	TenantID       string `gorm:"index:idx_context_lookup" json:"tenant_id"`
	ConversationID string `gorm:"index:idx_context_lookup" json:"conversation_id"`
	Version        int    `gorm:"not null" json:"version"`
	Data           string `json:"data"` // JSON blob: intent/stage/step/profile
}

// ConsentRecord stores a data-processing consent acceptance for a phone number
type ConsentRecord struct {
	gorm.Model
	TenantID      string `gorm:"index:idx_consent_lookup" json:"tenant_id"`
	ExternalID    string `gorm:"index:idx_consent_lookup" json:"external_id"`
	PolicyVersion string `json:"policy_version"`
}
