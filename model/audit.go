package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records one tracker mutation or admin action.
type AuditLog struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID     string         `gorm:"size:64;index" json:"trace_id"`
	AccountID   *int64         `gorm:"index" json:"account_id"`
	TrackerID   *int64         `gorm:"index" json:"tracker_id"`
	TrackerName string         `gorm:"size:64" json:"tracker_name"`
	Action      string         `gorm:"size:64;not null" json:"action"`
	Request     datatypes.JSON `json:"request"`
	Response    datatypes.JSON `json:"response"`
	Error       string         `gorm:"size:512" json:"error"`
	IP          string         `gorm:"size:45" json:"ip"`
	DurationMs  int            `json:"duration_ms"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
