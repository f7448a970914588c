package models

import (
	"time"

	"gorm.io/gorm"
)

// Gesture event kinds
const (
	EventFirstCommand  = "first_command"
	EventSecondCommand = "second_command"
	EventExpired       = "expired"
	EventCancelled     = "cancelled"
)

type GestureEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	SessionID string         `gorm:"not null;index" json:"session_id"`
	Kind      string         `gorm:"not null;index" json:"kind"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type GestureCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}
