package services

import (
	"sync"
	"time"
)

// DedupTracker drops provider message IDs that were already seen within the
// configured window, so each transport message reaches the orchestrator at
// most once per window.
type DedupTracker struct {
	mu     sync.Mutex
	seen   map[string]time.Time // providerMessageID -> firstSeenAt
	window time.Duration
}

// NewDedupTracker creates a tracker with the given dedup window
func NewDedupTracker(window time.Duration) *DedupTracker {
	return &DedupTracker{
		seen:   make(map[string]time.Time),
		window: window,
	}
}

// IsDuplicate reports whether providerMessageID was already delivered within
// the window, recording it as seen otherwise. Empty IDs are never duplicates.
func (d *DedupTracker) IsDuplicate(providerMessageID string) bool {
	if providerMessageID == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	d.purge(now)

	if firstSeen, exists := d.seen[providerMessageID]; exists && now.Sub(firstSeen) <= d.window {
		return true
	}

	d.seen[providerMessageID] = now
	return false
}

// Purge drops entries older than the window
func (d *DedupTracker) Purge() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := len(d.seen)
	d.purge(time.Now())
	return before - len(d.seen)
}

// TrackedCount returns the number of IDs currently in the window
func (d *DedupTracker) TrackedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.seen)
}

// purge removes expired entries. Caller holds the lock.
func (d *DedupTracker) purge(now time.Time) {
	for id, firstSeen := range d.seen {
		if now.Sub(firstSeen) > d.window {
			delete(d.seen, id)
		}
	}
}
