package convoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/storage"
)

// LocalClient implements the persistence interface on the built-in store,
// used when no external conversation service is configured.
type LocalClient struct {
	store storage.Store
}

// NewLocalClient creates a store-backed persistence client
func NewLocalClient(store storage.Store) *LocalClient {
	return &LocalClient{store: store}
}

func (c *LocalClient) UpsertContact(_ context.Context, in UpsertContactInput) (*Contact, error) {
	contact, err := c.store.UpsertContact(in.TenantID, in.Channel, in.ExternalID, in.DisplayName)
	if err != nil {
		return nil, err
	}
	return &Contact{
		ID:          contact.ContactID,
		TenantID:    contact.TenantID,
		Channel:     contact.Channel,
		ExternalID:  contact.ExternalID,
		DisplayName: contact.DisplayName,
	}, nil
}

func (c *LocalClient) GetOrCreateConversation(_ context.Context, in ConversationInput) (*Conversation, error) {
	conv, err := c.store.GetOrCreateConversation(in.TenantID, in.ContactID, in.Channel)
	if err != nil {
		return nil, err
	}
	return &Conversation{
		ID:        conv.ConversationID,
		TenantID:  conv.TenantID,
		ContactID: conv.ContactID,
		Channel:   conv.Channel,
	}, nil
}

func (c *LocalClient) AppendMessage(_ context.Context, in AppendMessageInput) error {
	payload := ""
	if in.Payload != nil {
		raw, err := json.Marshal(in.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		payload = string(raw)
	}

	_, err := c.store.AppendMessage(&models.ChatMessage{
		TenantID:          in.TenantID,
		ConversationID:    in.ConversationID,
		ContactID:         in.ContactID,
		Direction:         in.Direction,
		Type:              in.Type,
		Text:              in.Text,
		Payload:           payload,
		ProviderMessageID: in.ProviderMessageID,
	})
	return err
}

func (c *LocalClient) GetLatestContext(_ context.Context, tenantID, conversationID, _ string) (*ContextDocument, error) {
	latest, err := c.store.GetLatestContext(tenantID, conversationID)
	if errors.Is(err, storage.ErrNotFound) {
		return &ContextDocument{Data: map[string]interface{}{}, Version: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeContextVersion(latest)
}

// PatchContext applies a shallow merge: top-level patch keys replace the
// stored keys wholesale, nested objects are not deep-merged.
func (c *LocalClient) PatchContext(ctx context.Context, tenantID, conversationID string, patch map[string]interface{}, correlationID string) (*ContextDocument, error) {
	current, err := c.GetLatestContext(ctx, tenantID, conversationID, correlationID)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(current.Data)+len(patch))
	for k, v := range current.Data {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	version, err := c.store.AppendContextVersion(tenantID, conversationID, string(raw))
	if err != nil {
		return nil, err
	}
	return &ContextDocument{Data: merged, Version: version.Version}, nil
}

func (c *LocalClient) ListMessages(_ context.Context, tenantID, conversationID string) ([]MessageRecord, error) {
	messages, err := c.store.GetMessagesByConversation(tenantID, conversationID)
	if err != nil {
		return nil, err
	}

	records := make([]MessageRecord, 0, len(messages))
	for _, msg := range messages {
		records = append(records, MessageRecord{
			ID:                msg.MessageID,
			Direction:         msg.Direction,
			Type:              msg.Type,
			Text:              msg.Text,
			ProviderMessageID: msg.ProviderMessageID,
			CreatedAt:         msg.CreatedAt,
		})
	}
	return records, nil
}

func decodeContextVersion(version *models.ContextVersion) (*ContextDocument, error) {
	data := map[string]interface{}{}
	if version.Data != "" {
		if err := json.Unmarshal([]byte(version.Data), &data); err != nil {
			// Malformed stored context is treated as empty, not fatal
			data = map[string]interface{}{}
		}
	}
	return &ContextDocument{Data: data, Version: version.Version}, nil
}
