package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/grutapig/colddm/profile"
	"github.com/grutapig/colddm/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLoggingDB(t *testing.T) *LoggingService {
	service, err := NewLoggingService(filepath.Join(t.TempDir(), "test_logging.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		service.Close()
	})

	return service
}

func completedOutcome(requestId string) relay.Outcome {
	return relay.Outcome{
		RequestId:      requestId,
		Handle:         "billgates",
		MotiveLength:   42,
		State:          relay.StateComplete,
		DataSource:     profile.SourceFallback,
		FallbackReason: "No API token provided",
		DisplayName:    "Bill Gates",
		FinalResponse:  "Hi Bill, loved your note on malaria vaccines.",
		FinalLength:    45,
		SentinelSeen:   true,
		Started:        time.Now(),
		Duration:       1500 * time.Millisecond,
	}
}

func TestLoggingService_LogGeneration(t *testing.T) {
	service := setupTestLoggingDB(t)

	t.Run("Completed", func(t *testing.T) {
		require.NoError(t, service.LogGeneration(completedOutcome("req-1")))

		entry, err := service.GetGenerationByUUID("req-1")
		require.NoError(t, err)
		assert.Equal(t, "billgates", entry.Handle)
		assert.Equal(t, GENERATION_STATUS_COMPLETED, entry.Status)
		assert.Equal(t, string(profile.SourceFallback), entry.DataSource)
		assert.Equal(t, "No API token provided", entry.FallbackReason)
		assert.Equal(t, 45, entry.FinalLength)
		assert.Equal(t, 1500, entry.ProcessingTime)
		assert.True(t, entry.SentinelSeen)
		assert.Empty(t, entry.ErrorMessage)
	})

	t.Run("Failed", func(t *testing.T) {
		outcome := relay.Outcome{
			RequestId: "req-2",
			Handle:    "nobody",
			State:     relay.StateFailed,
			Err:       errors.New("upstream returned 502"),
			Started:   time.Now(),
		}
		require.NoError(t, service.LogGeneration(outcome))

		entry, err := service.GetGenerationByUUID("req-2")
		require.NoError(t, err)
		assert.Equal(t, GENERATION_STATUS_FAILED, entry.Status)
		assert.Equal(t, "upstream returned 502", entry.ErrorMessage)
	})

	t.Run("DuplicateRequestId", func(t *testing.T) {
		assert.Error(t, service.LogGeneration(completedOutcome("req-1")))
	})

	t.Run("UnknownRequestId", func(t *testing.T) {
		_, err := service.GetGenerationByUUID("missing")
		assert.Error(t, err)
	})
}

func TestLoggingService_GetGenerationStats(t *testing.T) {
	service := setupTestLoggingDB(t)

	live := completedOutcome("live")
	live.DataSource = profile.SourceLive
	live.FallbackReason = ""
	live.Duration = 3 * time.Second
	require.NoError(t, service.LogGeneration(live))

	long := completedOutcome("long")
	long.OverBudget = true
	long.Duration = time.Second
	require.NoError(t, service.LogGeneration(long))

	failed := relay.Outcome{RequestId: "failed", State: relay.StateFailed, Started: time.Now(), Duration: 2 * time.Second}
	require.NoError(t, service.LogGeneration(failed))

	stale := completedOutcome("stale")
	stale.Started = time.Now().AddDate(0, 0, -10)
	require.NoError(t, service.LogGeneration(stale))

	stats, err := service.GetGenerationStats(7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["total"])
	assert.Equal(t, int64(2), stats["completed"])
	assert.Equal(t, int64(1), stats["failed"])
	assert.Equal(t, int64(1), stats["fallback"])
	assert.Equal(t, int64(1), stats["over_budget"])
	assert.InDelta(t, 2000.0, stats["avg_processing_time_ms"], 0.001)
}

func TestLoggingService_CleanupOldLogs(t *testing.T) {
	service := setupTestLoggingDB(t)

	require.NoError(t, service.LogGeneration(completedOutcome("old")))
	require.NoError(t, service.LogGeneration(completedOutcome("fresh")))
	require.NoError(t, service.db.Model(&GenerationLogModel{}).
		Where("request_uuid = ?", "old").
		Update("created_at", time.Now().AddDate(0, 0, -40)).Error)

	require.NoError(t, service.CleanupOldLogs(30))

	_, err := service.GetGenerationByUUID("old")
	assert.Error(t, err)
	_, err = service.GetGenerationByUUID("fresh")
	assert.NoError(t, err)

	stats, err := service.GetDatabaseStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["generation_logs"])
	assert.Contains(t, stats, "oldest_record")
}

func TestCleanupScheduler(t *testing.T) {
	t.Run("RunCleanupNow", func(t *testing.T) {
		service := setupTestLoggingDB(t)
		require.NoError(t, service.LogGeneration(completedOutcome("old")))
		require.NoError(t, service.db.Model(&GenerationLogModel{}).
			Where("request_uuid = ?", "old").
			Update("created_at", time.Now().AddDate(0, 0, -5)).Error)

		scheduler := NewCleanupScheduler(service, 3)
		scheduler.RunCleanupNow()

		_, err := service.GetGenerationByUUID("old")
		assert.Error(t, err)
	})

	t.Run("StartStop", func(t *testing.T) {
		scheduler := NewCleanupScheduler(setupTestLoggingDB(t), 0)
		assert.Equal(t, DEFAULT_LOG_RETENTION_DAYS, scheduler.retentionDays)

		scheduler.Start()
		scheduler.Stop()
		scheduler.Stop()
	})

	t.Run("DisabledLog", func(t *testing.T) {
		scheduler := NewCleanupScheduler(nil, 30)
		scheduler.Start()
		scheduler.RunCleanupNow()
		scheduler.Stop()
	})
}
