package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
)

// DatabaseStore implements Store on top of PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Contact operations

func (d *DatabaseStore) UpsertContact(tenantID, channel, externalID, displayName string) (*models.Contact, error) {
	var contact models.Contact
	err := d.db.Where("tenant_id = ? AND channel = ? AND external_id = ?", tenantID, channel, externalID).
		First(&contact).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		contact = models.Contact{
			TenantID:    tenantID,
			Channel:     channel,
			ExternalID:  externalID,
			DisplayName: displayName,
		}
		if err := d.db.Create(&contact).Error; err != nil {
			return nil, err
		}
		return &contact, nil
	}
	if err != nil {
		return nil, err
	}

	if displayName != "" && displayName != contact.DisplayName {
		contact.DisplayName = displayName
		if err := d.db.Save(&contact).Error; err != nil {
			return nil, err
		}
	}
	return &contact, nil
}

func (d *DatabaseStore) GetContactByExternal(tenantID, channel, externalID string) (*models.Contact, error) {
	var contact models.Contact
	err := d.db.Where("tenant_id = ? AND channel = ? AND external_id = ?", tenantID, channel, externalID).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Conversation operations

func (d *DatabaseStore) GetOrCreateConversation(tenantID, contactID, channel string) (*models.Conversation, error) {
	var conv models.Conversation
	err := d.db.Where("tenant_id = ? AND contact_id = ? AND status = ?", tenantID, contactID, "ACTIVE").
		Order("created_at DESC").
		First(&conv).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		conv = models.Conversation{
			TenantID:  tenantID,
			ContactID: contactID,
			Channel:   channel,
			Status:    "ACTIVE",
		}
		if err := d.db.Create(&conv).Error; err != nil {
			return nil, err
		}
		return &conv, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (d *DatabaseStore) GetConversation(tenantID, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := d.db.Where("tenant_id = ? AND conversation_id = ?", tenantID, conversationID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (d *DatabaseStore) GetActiveConversations(tenantID string) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	err := d.db.Where("tenant_id = ? AND status = ?", tenantID, "ACTIVE").
		Order("created_at ASC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// Transcript operations

func (d *DatabaseStore) AppendMessage(msg *models.ChatMessage) (*models.ChatMessage, error) {
	if err := d.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (d *DatabaseStore) GetMessagesByConversation(tenantID, conversationID string) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := d.db.Where("tenant_id = ? AND conversation_id = ?", tenantID, conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Context operations

func (d *DatabaseStore) GetLatestContext(tenantID, conversationID string) (*models.ContextVersion, error) {
	var version models.ContextVersion
	err := d.db.Where("tenant_id = ? AND conversation_id = ?", tenantID, conversationID).
		Order("version DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (d *DatabaseStore) AppendContextVersion(tenantID, conversationID, data string) (*models.ContextVersion, error) {
	next := 1
	latest, err := d.GetLatestContext(tenantID, conversationID)
	if err == nil {
		next = latest.Version + 1
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	version := &models.ContextVersion{
		TenantID:       tenantID,
		ConversationID: conversationID,
		Version:        next,
		Data:           data,
	}
	if err := d.db.Create(version).Error; err != nil {
		return nil, err
	}
	return version, nil
}

// Consent operations

func (d *DatabaseStore) HasConsent(tenantID, externalID string) (bool, error) {
	var count int64
	err := d.db.Model(&models.ConsentRecord{}).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DatabaseStore) RecordConsent(tenantID, externalID, policyVersion string) (*models.ConsentRecord, error) {
	var existing models.ConsentRecord
	err := d.db.Where("tenant_id = ? AND external_id = ?", tenantID, externalID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record := &models.ConsentRecord{
		TenantID:      tenantID,
		ExternalID:    externalID,
		PolicyVersion: policyVersion,
	}
	if err := d.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
