package main

import (
	"time"
)

// GenerationLogModel records the outcome of one personalize request.
type GenerationLogModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestUUID    string    `gorm:"column:request_uuid;uniqueIndex" json:"request_uuid"`
	Handle         string    `gorm:"column:handle;index" json:"handle"`
	MotiveLength   int       `gorm:"column:motive_length" json:"motive_length"`
	Status         string    `gorm:"column:status;index" json:"status"` // "completed", "failed"
	DataSource     string    `gorm:"column:data_source;index" json:"data_source"`
	FallbackReason string    `gorm:"column:fallback_reason" json:"fallback_reason,omitempty"`
	ErrorMessage   string    `gorm:"column:error_message" json:"error_message,omitempty"`
	FinalMessage   string    `gorm:"column:final_message" json:"final_message,omitempty"`
	FinalLength    int       `gorm:"column:final_length" json:"final_length"`
	OverBudget     bool      `gorm:"column:over_budget;index" json:"over_budget"`
	SentinelSeen   bool      `gorm:"column:sentinel_seen" json:"sentinel_seen"`
	SkippedFrames  int       `gorm:"column:skipped_frames" json:"skipped_frames"`
	ProcessingTime int       `gorm:"column:processing_time" json:"processing_time"` // milliseconds
	RequestedAt    time.Time `gorm:"column:requested_at;index" json:"requested_at"`
	CreatedAt      time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (GenerationLogModel) TableName() string {
	return "generation_logs"
}

// Generation status constants
const (
	GENERATION_STATUS_COMPLETED = "completed"
	GENERATION_STATUS_FAILED    = "failed"
)
