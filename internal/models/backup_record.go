package models

import (
	"time"

	"gorm.io/gorm"
)

type BackupRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time      `gorm:"not null;index" json:"timestamp"`
	SessionID   string         `gorm:"not null;index" json:"session_id"`
	Mode        string         `gorm:"not null" json:"mode"` // "file" or "folder"
	Source      string         `gorm:"not null" json:"source"`
	Destination string         `gorm:"not null" json:"destination"`
	Success     bool           `gorm:"not null;default:false;index" json:"success"`
	ErrorMsg    string         `json:"error_msg,omitempty"`
	Bytes       int64          `gorm:"not null;default:0" json:"bytes"`
	Files       int            `gorm:"not null;default:0" json:"files"`
	ElapsedMs   int64          `gorm:"not null;default:0" json:"elapsed_ms"`
	CPUTimeMs   int64          `gorm:"not null;default:0" json:"cpu_time_ms"`
	LogWritten  bool           `gorm:"not null;default:false" json:"log_written"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type BackupSummary struct {
	TotalBackups   int     `json:"total_backups"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	TotalBytes     int64   `json:"total_bytes"`
	TotalElapsedMs int64   `json:"total_elapsed_ms"`
	AvgElapsedMs   float64 `json:"avg_elapsed_ms"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period      ReportPeriod     `json:"period"`
	Summary     BackupSummary    `json:"summary"`
	Gestures    map[string]int64 `json:"gestures"`
	Backups     []*BackupRecord  `json:"backups"`
	GeneratedAt time.Time        `json:"generated_at"`
}
