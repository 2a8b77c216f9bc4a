package main

import (
	"fmt"
	"time"

	"github.com/grutapig/colddm/log"
	"github.com/grutapig/colddm/profile"
	"github.com/grutapig/colddm/relay"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LoggingService struct {
	db *gorm.DB
}

// NewLoggingService opens the generation log and migrates it.
func NewLoggingService(dbPath string) (*LoggingService, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to logging database: %w", err)
	}

	service := &LoggingService{
		db: db,
	}

	if err := service.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run logging migrations: %w", err)
	}

	return service, nil
}

func (s *LoggingService) runMigrations() error {
	return s.db.AutoMigrate(
		&GenerationLogModel{},
	)
}

// LogGeneration stores one relay outcome.
func (s *LoggingService) LogGeneration(outcome relay.Outcome) error {
	status := GENERATION_STATUS_FAILED
	if outcome.State == relay.StateComplete {
		status = GENERATION_STATUS_COMPLETED
	}
	errorMessage := ""
	if outcome.Err != nil {
		errorMessage = outcome.Err.Error()
	}

	generationLog := GenerationLogModel{
		RequestUUID:    outcome.RequestId,
		Handle:         outcome.Handle,
		MotiveLength:   outcome.MotiveLength,
		Status:         status,
		DataSource:     string(outcome.DataSource),
		FallbackReason: outcome.FallbackReason,
		ErrorMessage:   errorMessage,
		FinalMessage:   outcome.FinalResponse,
		FinalLength:    outcome.FinalLength,
		OverBudget:     outcome.OverBudget,
		SentinelSeen:   outcome.SentinelSeen,
		SkippedFrames:  outcome.SkippedFrames,
		ProcessingTime: int(outcome.Duration.Milliseconds()),
		RequestedAt:    outcome.Started,
	}
	return s.db.Create(&generationLog).Error
}

// GetGenerationByUUID returns the log entry of a single request.
func (s *LoggingService) GetGenerationByUUID(requestUUID string) (*GenerationLogModel, error) {
	var generationLog GenerationLogModel
	err := s.db.Where("request_uuid = ?", requestUUID).First(&generationLog).Error
	return &generationLog, err
}

// GetGenerationStats aggregates the last days of generations.
func (s *LoggingService) GetGenerationStats(days int) (map[string]interface{}, error) {
	since := time.Now().AddDate(0, 0, -days)
	stats := make(map[string]interface{})

	var total, completed, failed, fallback, overBudget int64
	base := s.db.Model(&GenerationLogModel{}).Where("requested_at >= ?", since).Session(&gorm.Session{})

	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := base.Where("status = ?", GENERATION_STATUS_COMPLETED).Count(&completed).Error; err != nil {
		return nil, err
	}
	if err := base.Where("status = ?", GENERATION_STATUS_FAILED).Count(&failed).Error; err != nil {
		return nil, err
	}
	if err := base.Where("data_source = ?", string(profile.SourceFallback)).Count(&fallback).Error; err != nil {
		return nil, err
	}
	if err := base.Where("over_budget = ?", true).Count(&overBudget).Error; err != nil {
		return nil, err
	}

	var avgTime float64
	if err := base.Select("COALESCE(AVG(processing_time), 0)").Row().Scan(&avgTime); err != nil {
		return nil, err
	}

	stats["total"] = total
	stats["completed"] = completed
	stats["failed"] = failed
	stats["fallback"] = fallback
	stats["over_budget"] = overBudget
	stats["avg_processing_time_ms"] = avgTime
	return stats, nil
}

// CleanupOldLogs removes generation logs older than days.
func (s *LoggingService) CleanupOldLogs(days int) error {
	cutoffDate := time.Now().AddDate(0, 0, -days)

	log.Infof("🧹 Cleaning up logging database records older than %d days (before %s)", days, cutoffDate.Format("2006-01-02"))

	result := s.db.Where("created_at < ?", cutoffDate).Delete(&GenerationLogModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup generation logs: %w", result.Error)
	}
	log.Infof("🧹 Cleaned up %d generation log records", result.RowsAffected)

	return nil
}

// VacuumDatabase runs VACUUM command to reclaim space
func (s *LoggingService) VacuumDatabase() error {
	log.Infof("🧹 Running VACUUM on logging database to reclaim space...")
	err := s.db.Exec("VACUUM").Error
	if err != nil {
		return fmt.Errorf("failed to vacuum logging database: %w", err)
	}
	return nil
}

func (s *LoggingService) GetDatabaseStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var generationCount int64
	if err := s.db.Model(&GenerationLogModel{}).Count(&generationCount).Error; err != nil {
		return nil, err
	}
	stats["generation_logs"] = generationCount

	var oldest GenerationLogModel
	if s.db.Order("created_at ASC").Limit(1).Find(&oldest).RowsAffected > 0 {
		stats["oldest_record"] = oldest.CreatedAt.Format("2006-01-02 15:04:05")
	}

	var newest GenerationLogModel
	if s.db.Order("created_at DESC").Limit(1).Find(&newest).RowsAffected > 0 {
		stats["newest_record"] = newest.CreatedAt.Format("2006-01-02 15:04:05")
	}

	return stats, nil
}

func (s *LoggingService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
