package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupTrackerFirstDeliveryPasses(t *testing.T) {
	d := NewDedupTracker(time.Minute)

	assert.False(t, d.IsDuplicate("SM123"))
	assert.True(t, d.IsDuplicate("SM123"))
}

func TestDedupTrackerDistinctIDs(t *testing.T) {
	d := NewDedupTracker(time.Minute)

	assert.False(t, d.IsDuplicate("SM1"))
	assert.False(t, d.IsDuplicate("SM2"))
	assert.Equal(t, 2, d.TrackedCount())
}

func TestDedupTrackerEmptyIDNeverDuplicate(t *testing.T) {
	d := NewDedupTracker(time.Minute)

	assert.False(t, d.IsDuplicate(""))
	assert.False(t, d.IsDuplicate(""))
	assert.Equal(t, 0, d.TrackedCount())
}

func TestDedupTrackerWindowExpiry(t *testing.T) {
	d := NewDedupTracker(20 * time.Millisecond)

	assert.False(t, d.IsDuplicate("SM123"))
	time.Sleep(40 * time.Millisecond)

	// Redelivery outside the window counts as a fresh message
	assert.False(t, d.IsDuplicate("SM123"))
}

func TestDedupTrackerPurge(t *testing.T) {
	d := NewDedupTracker(20 * time.Millisecond)

	d.IsDuplicate("SM1")
	d.IsDuplicate("SM2")
	time.Sleep(40 * time.Millisecond)

	purged := d.Purge()
	assert.Equal(t, 2, purged)
	assert.Equal(t, 0, d.TrackedCount())
}
