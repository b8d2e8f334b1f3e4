package jobs

import (
	"log"
	"time"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/services"
)

// MaintenanceJob runs the periodic housekeeping loops: expiring dedup
// entries and reporting live session counts
type MaintenanceJob struct {
	sessions  *services.SessionManager
	dedup     *services.DedupTracker
	interval  time.Duration
	isRunning bool
	stop      chan struct{}
}

// NewMaintenanceJob creates the housekeeping scheduler
func NewMaintenanceJob(sessions *services.SessionManager, dedup *services.DedupTracker, interval time.Duration) *MaintenanceJob {
	return &MaintenanceJob{
		sessions: sessions,
		dedup:    dedup,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the housekeeping loop
func (m *MaintenanceJob) Start() {
	if m.isRunning {
		log.Println("Maintenance job already running")
		return
	}

	m.isRunning = true
	log.Println("Starting maintenance job...")

	go m.run()
}

// Stop halts the housekeeping loop
func (m *MaintenanceJob) Stop() {
	if !m.isRunning {
		return
	}
	m.isRunning = false
	close(m.stop)
	log.Println("Stopping maintenance job...")
}

func (m *MaintenanceJob) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purged := m.dedup.Purge()
			log.Printf("🧹 Maintenance sweep: activeSessions=%d purgedDedupEntries=%d trackedMessages=%d",
				m.sessions.ActiveCount(), purged, m.dedup.TrackedCount())
		case <-m.stop:
			return
		}
	}
}
