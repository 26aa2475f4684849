package models

import "time"

type ActivityType string

const (
	ActivitySignup      ActivityType = "SIGNUP"
	ActivityLogin       ActivityType = "LOGIN"
	ActivityChatCreated ActivityType = "CHAT_CREATED"
)

// ActivityLog is append-only; rows are only ever counted by day.
type ActivityLog struct {
	ID           uint         `gorm:"primaryKey"`
	UserID       uint         `gorm:"not null;index"`
	ActivityType ActivityType `gorm:"size:32;not null;index:idx_activity_type_created"`
	Description  *string      `gorm:"size:255"`
	CreatedAt    time.Time    `gorm:"not null;index:idx_activity_type_created"`
}

func (ActivityLog) TableName() string { return "user_activity_logs" }
