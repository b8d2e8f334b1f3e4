package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
)

func TestMemoryStoreUpsertContactIsIdempotent(t *testing.T) {
	store := NewMemoryStore()

	first, err := store.UpsertContact("t1", models.ChannelWhatsApp, "+57300", "Ana")
	require.NoError(t, err)
	require.NotEmpty(t, first.ContactID)

	second, err := store.UpsertContact("t1", models.ChannelWhatsApp, "+57300", "Ana María")
	require.NoError(t, err)

	assert.Equal(t, first.ContactID, second.ContactID)
	assert.Equal(t, "Ana María", second.DisplayName)
}

func TestMemoryStoreGetContactByExternal(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetContactByExternal("t1", models.ChannelWhatsApp, "+57300")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := store.UpsertContact("t1", models.ChannelWhatsApp, "+57300", "Ana")
	require.NoError(t, err)

	found, err := store.GetContactByExternal("t1", models.ChannelWhatsApp, "+57300")
	require.NoError(t, err)
	assert.Equal(t, created.ContactID, found.ContactID)
}

func TestMemoryStoreGetOrCreateConversationReuses(t *testing.T) {
	store := NewMemoryStore()

	contact, err := store.UpsertContact("t1", models.ChannelWhatsApp, "+57300", "Ana")
	require.NoError(t, err)

	first, err := store.GetOrCreateConversation("t1", contact.ContactID, models.ChannelWhatsApp)
	require.NoError(t, err)

	second, err := store.GetOrCreateConversation("t1", contact.ContactID, models.ChannelWhatsApp)
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
}

func TestMemoryStoreTranscriptOrder(t *testing.T) {
	store := NewMemoryStore()

	contact, err := store.UpsertContact("t1", models.ChannelWhatsApp, "+57300", "Ana")
	require.NoError(t, err)
	conv, err := store.GetOrCreateConversation("t1", contact.ContactID, models.ChannelWhatsApp)
	require.NoError(t, err)

	_, err = store.AppendMessage(&models.ChatMessage{
		TenantID:       "t1",
		ConversationID: conv.ConversationID,
		Direction:      models.DirectionIn,
		Type:           models.MessageTypeText,
		Text:           "hola",
	})
	require.NoError(t, err)

	_, err = store.AppendMessage(&models.ChatMessage{
		TenantID:       "t1",
		ConversationID: conv.ConversationID,
		Direction:      models.DirectionOut,
		Type:           models.MessageTypeText,
		Text:           "buenas",
	})
	require.NoError(t, err)

	messages, err := store.GetMessagesByConversation("t1", conv.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hola", messages[0].Text)
	assert.Equal(t, "buenas", messages[1].Text)
}

func TestMemoryStoreContextVersionsAreMonotonic(t *testing.T) {
	store := NewMemoryStore()

	contact, err := store.UpsertContact("t1", models.ChannelWhatsApp, "+57300", "Ana")
	require.NoError(t, err)
	conv, err := store.GetOrCreateConversation("t1", contact.ContactID, models.ChannelWhatsApp)
	require.NoError(t, err)

	_, err = store.GetLatestContext("t1", conv.ConversationID)
	assert.ErrorIs(t, err, ErrNotFound)

	v1, err := store.AppendContextVersion("t1", conv.ConversationID, `{"stage":"awaiting_category"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)

	v2, err := store.AppendContextVersion("t1", conv.ConversationID, `{"stage":"support"}`)
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	latest, err := store.GetLatestContext("t1", conv.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, `{"stage":"support"}`, latest.Data)
}

func TestMemoryStoreConsentRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	granted, err := store.HasConsent("t1", "+57300")
	require.NoError(t, err)
	assert.False(t, granted)

	record, err := store.RecordConsent("t1", "+57300", "2012-1581-v1")
	require.NoError(t, err)
	assert.Equal(t, "2012-1581-v1", record.PolicyVersion)

	granted, err = store.HasConsent("t1", "+57300")
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestMemoryStoreTenantsAreIsolated(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.UpsertContact("t1", models.ChannelWhatsApp, "+57300", "Ana")
	require.NoError(t, err)

	_, err = store.GetContactByExternal("t2", models.ChannelWhatsApp, "+57300")
	assert.ErrorIs(t, err, ErrNotFound)
}
