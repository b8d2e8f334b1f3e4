package services

import (
	"sync"
	"time"
)

// Dialogue stages used by the stateful decision strategy
const (
	StageAwaitingCategory = "awaiting_category"
	StageAwaitingQuestion = "awaiting_question"
	StageSupport          = "support"
)

// Dialogue categories
const (
	CategoryLaboral = "laboral"
	CategorySoporte = "soporte"
)

// SessionKey identifies exactly one active dialogue
type SessionKey struct {
	TenantID       string
	Channel        string
	ExternalUserID string
}

func (k SessionKey) String() string {
	return k.TenantID + "|" + k.Channel + "|" + k.ExternalUserID
}

// ConversationState is the in-process dialogue state of one conversation.
// The durable system of record is the persistence layer; this is only the
// decision-making cache and is lost on restart.
type ConversationState struct {
	Stage     string                 `json:"stage"`
	Category  string                 `json:"category,omitempty"`
	Profile   map[string]interface{} `json:"profile,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// SessionManager is a TTL-bounded map of conversation states with sliding
// expiration: every read refreshes the entry's expiry.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*ConversationState
	ttl      time.Duration
}

// NewSessionManager creates a session manager with the given TTL
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*ConversationState),
		ttl:      ttl,
	}
}

// Get sweeps expired entries, then returns the live state for key (or nil).
// A hit gets a fresh expiry stamp.
func (sm *SessionManager) Get(key SessionKey) *ConversationState {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	sm.sweep(now)

	state, exists := sm.sessions[key.String()]
	if !exists {
		return nil
	}

	state.UpdatedAt = now
	state.ExpiresAt = now.Add(sm.ttl)

	copied := *state
	copied.Profile = copyProfile(state.Profile)
	return &copied
}

// Set writes a complete new state for key. Callers supply the full semantic
// state they want retained; missing fields are not merged from the old entry.
func (sm *SessionManager) Set(key SessionKey, stage, category string, profile map[string]interface{}) *ConversationState {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	state := &ConversationState{
		Stage:     stage,
		Category:  category,
		Profile:   copyProfile(profile),
		UpdatedAt: now,
		ExpiresAt: now.Add(sm.ttl),
	}
	sm.sessions[key.String()] = state

	copied := *state
	copied.Profile = copyProfile(state.Profile)
	return &copied
}

// Clear removes the key immediately, independent of TTL
func (sm *SessionManager) Clear(key SessionKey) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, key.String())
}

// ActiveCount returns the number of live (unexpired) sessions
func (sm *SessionManager) ActiveCount() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sweep(time.Now())
	return len(sm.sessions)
}

// Snapshot returns a copy of all live states keyed by conversation key,
// for the admin inspection endpoint.
func (sm *SessionManager) Snapshot() map[string]ConversationState {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sweep(time.Now())

	result := make(map[string]ConversationState, len(sm.sessions))
	for key, state := range sm.sessions {
		result[key] = *state
	}
	return result
}

func copyProfile(profile map[string]interface{}) map[string]interface{} {
	if profile == nil {
		return nil
	}
	copied := make(map[string]interface{}, len(profile))
	for k, v := range profile {
		copied[k] = v
	}
	return copied
}

// sweep evicts every entry whose expiry has passed. Caller holds the lock.
func (sm *SessionManager) sweep(now time.Time) {
	for key, state := range sm.sessions {
		if !state.ExpiresAt.After(now) {
			delete(sm.sessions, key)
		}
	}
}
