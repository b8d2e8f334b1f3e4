package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
)

// MemoryStore holds all data in memory, for development and tests
type MemoryStore struct {
	contacts      map[string]*models.Contact        // keyed by tenant|channel|externalID
	conversations map[string]*models.Conversation   // keyed by conversation ID
	messages      map[string][]*models.ChatMessage  // keyed by conversation ID
	contexts      map[string][]*models.ContextVersion // keyed by conversation ID, ascending versions
	consents      map[string]*models.ConsentRecord  // keyed by tenant|externalID

	mu sync.RWMutex

	// Counters for ID generation
	contactCounter      int
	conversationCounter int
	messageCounter      int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts:      make(map[string]*models.Contact),
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]*models.ChatMessage),
		contexts:      make(map[string][]*models.ContextVersion),
		consents:      make(map[string]*models.ConsentRecord),
	}
}

func contactKey(tenantID, channel, externalID string) string {
	return tenantID + "|" + channel + "|" + externalID
}

func consentKey(tenantID, externalID string) string {
	return tenantID + "|" + externalID
}

// Contact operations

func (m *MemoryStore) UpsertContact(tenantID, channel, externalID, displayName string) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := contactKey(tenantID, channel, externalID)
	if contact, exists := m.contacts[key]; exists {
		if displayName != "" {
			contact.DisplayName = displayName
		}
		contact.UpdatedAt = time.Now()
		return contact, nil
	}

	m.contactCounter++
	contact := &models.Contact{
		ContactID:   fmt.Sprintf("CT%05d", m.contactCounter),
		TenantID:    tenantID,
		Channel:     channel,
		ExternalID:  externalID,
		DisplayName: displayName,
	}
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt

	m.contacts[key] = contact
	return contact, nil
}

func (m *MemoryStore) GetContactByExternal(tenantID, channel, externalID string) (*models.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contact, exists := m.contacts[contactKey(tenantID, channel, externalID)]
	if !exists {
		return nil, ErrNotFound
	}
	return contact, nil
}

// Conversation operations

func (m *MemoryStore) GetOrCreateConversation(tenantID, contactID, channel string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, conv := range m.conversations {
		if conv.TenantID == tenantID && conv.ContactID == contactID && conv.Status == "ACTIVE" {
			return conv, nil
		}
	}

	m.conversationCounter++
	conv := &models.Conversation{
		ConversationID: fmt.Sprintf("CV%05d", m.conversationCounter),
		TenantID:       tenantID,
		ContactID:      contactID,
		Channel:        channel,
		Status:         "ACTIVE",
	}
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt

	m.conversations[conv.ConversationID] = conv
	return conv, nil
}

func (m *MemoryStore) GetConversation(tenantID, conversationID string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, exists := m.conversations[conversationID]
	if !exists || conv.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return conv, nil
}

func (m *MemoryStore) GetActiveConversations(tenantID string) ([]*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Conversation
	for _, conv := range m.conversations {
		if conv.TenantID == tenantID && conv.Status == "ACTIVE" {
			result = append(result, conv)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ConversationID < result[j].ConversationID
	})
	return result, nil
}

// Transcript operations

func (m *MemoryStore) AppendMessage(msg *models.ChatMessage) (*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messageCounter++
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("MSG%05d", m.messageCounter)
	}
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt

	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	return msg, nil
}

func (m *MemoryStore) GetMessagesByConversation(tenantID, conversationID string) ([]*models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.ChatMessage
	for _, msg := range m.messages[conversationID] {
		if msg.TenantID == tenantID {
			result = append(result, msg)
		}
	}
	return result, nil
}

// Context operations

func (m *MemoryStore) GetLatestContext(tenantID, conversationID string) (*models.ContextVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := m.contexts[conversationID]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}

	latest := versions[len(versions)-1]
	if latest.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryStore) AppendContextVersion(tenantID, conversationID, data string) (*models.ContextVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	versions := m.contexts[conversationID]
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1].Version + 1
	}

	version := &models.ContextVersion{
		TenantID:       tenantID,
		ConversationID: conversationID,
		Version:        next,
		Data:           data,
	}
	version.CreatedAt = time.Now()
	version.UpdatedAt = version.CreatedAt

	m.contexts[conversationID] = append(versions, version)
	return version, nil
}

// Consent operations

func (m *MemoryStore) HasConsent(tenantID, externalID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.consents[consentKey(tenantID, externalID)]
	return exists, nil
}

func (m *MemoryStore) RecordConsent(tenantID, externalID, policyVersion string) (*models.ConsentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := consentKey(tenantID, externalID)
	if record, exists := m.consents[key]; exists {
		return record, nil
	}

	record := &models.ConsentRecord{
		TenantID:      tenantID,
		ExternalID:    externalID,
		PolicyVersion: policyVersion,
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	m.consents[key] = record
	return record, nil
}
