package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(user string) SessionKey {
	return SessionKey{TenantID: "t1", Channel: "WHATSAPP", ExternalUserID: user}
}

func TestSessionManagerSetAndGet(t *testing.T) {
	sm := NewSessionManager(time.Minute)

	sm.Set(testKey("u1"), StageAwaitingQuestion, CategoryLaboral, map[string]interface{}{"city": "Bogotá"})

	state := sm.Get(testKey("u1"))
	require.NotNil(t, state)
	assert.Equal(t, StageAwaitingQuestion, state.Stage)
	assert.Equal(t, CategoryLaboral, state.Category)
	assert.Equal(t, "Bogotá", state.Profile["city"])
}

func TestSessionManagerGetUnknownKey(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	assert.Nil(t, sm.Get(testKey("nobody")))
}

func TestSessionManagerSetReplacesWholesale(t *testing.T) {
	sm := NewSessionManager(time.Minute)

	sm.Set(testKey("u1"), StageAwaitingQuestion, CategoryLaboral, map[string]interface{}{"city": "Cali"})
	sm.Set(testKey("u1"), StageSupport, CategorySoporte, nil)

	state := sm.Get(testKey("u1"))
	require.NotNil(t, state)
	assert.Equal(t, StageSupport, state.Stage)
	assert.Equal(t, CategorySoporte, state.Category)
	assert.NotContains(t, state.Profile, "city")
}

func TestSessionManagerExpiry(t *testing.T) {
	sm := NewSessionManager(20 * time.Millisecond)

	sm.Set(testKey("u1"), StageAwaitingCategory, "", nil)
	time.Sleep(40 * time.Millisecond)

	assert.Nil(t, sm.Get(testKey("u1")))
	assert.Equal(t, 0, sm.ActiveCount())
}

func TestSessionManagerSlidingTTL(t *testing.T) {
	sm := NewSessionManager(60 * time.Millisecond)

	sm.Set(testKey("u1"), StageAwaitingCategory, "", nil)

	// Keep touching the session past the original deadline
	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		require.NotNil(t, sm.Get(testKey("u1")), "read %d should refresh the deadline", i)
	}
}

func TestSessionManagerClear(t *testing.T) {
	sm := NewSessionManager(time.Minute)

	sm.Set(testKey("u1"), StageSupport, CategorySoporte, nil)
	sm.Clear(testKey("u1"))

	assert.Nil(t, sm.Get(testKey("u1")))
}

func TestSessionManagerGetReturnsCopy(t *testing.T) {
	sm := NewSessionManager(time.Minute)

	sm.Set(testKey("u1"), StageAwaitingQuestion, CategoryLaboral, map[string]interface{}{"city": "Cali"})

	state := sm.Get(testKey("u1"))
	require.NotNil(t, state)
	state.Profile["city"] = "Medellín"

	again := sm.Get(testKey("u1"))
	assert.Equal(t, "Cali", again.Profile["city"])
}

func TestSessionManagerSnapshot(t *testing.T) {
	sm := NewSessionManager(time.Minute)

	sm.Set(testKey("u1"), StageAwaitingCategory, "", nil)
	sm.Set(testKey("u2"), StageSupport, CategorySoporte, nil)

	snap := sm.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, 2, sm.ActiveCount())
}
