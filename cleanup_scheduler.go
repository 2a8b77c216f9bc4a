package main

import (
	"sync"
	"time"

	"github.com/grutapig/colddm/log"
)

type CleanupScheduler struct {
	loggingService *LoggingService
	retentionDays  int
	stopChan       chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

// NewCleanupScheduler returns a scheduler that does nothing when the
// generation log is disabled.
func NewCleanupScheduler(loggingService *LoggingService, retentionDays int) *CleanupScheduler {
	if retentionDays <= 0 {
		retentionDays = DEFAULT_LOG_RETENTION_DAYS
	}
	return &CleanupScheduler{
		loggingService: loggingService,
		retentionDays:  retentionDays,
		stopChan:       make(chan struct{}),
	}
}

func (cs *CleanupScheduler) Start() {
	if cs.loggingService == nil {
		return
	}
	log.Infof("🧹 Starting cleanup scheduler - will run daily at midnight, keeping %d days", cs.retentionDays)

	now := time.Now()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	firstRunTimer := time.NewTimer(nextMidnight.Sub(now))

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()

		select {
		case <-firstRunTimer.C:
			cs.runCleanup()
		case <-cs.stopChan:
			firstRunTimer.Stop()
			return
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cs.runCleanup()
			case <-cs.stopChan:
				log.Infof("🧹 Cleanup scheduler stopped")
				return
			}
		}
	}()
}

// Stop is safe to call more than once and waits for a running cleanup.
func (cs *CleanupScheduler) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
	})
	cs.wg.Wait()
}

func (cs *CleanupScheduler) runCleanup() {
	if err := cs.loggingService.CleanupOldLogs(cs.retentionDays); err != nil {
		log.Errorf("❌ Error during cleanup: %v", err)
		return
	}

	if err := cs.loggingService.VacuumDatabase(); err != nil {
		log.Errorf("❌ Error during VACUUM: %v", err)
		return
	}

	stats, err := cs.loggingService.GetDatabaseStats()
	if err != nil {
		log.Errorf("❌ Error getting database stats: %v", err)
		return
	}
	log.Infof("✅ Cleanup completed, database stats: %+v", stats)
}

func (cs *CleanupScheduler) RunCleanupNow() {
	if cs.loggingService == nil {
		return
	}
	cs.runCleanup()
}
