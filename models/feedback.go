package models

import "time"

type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "PENDING"
	FeedbackResolved FeedbackStatus = "RESOLVED"
)

func (s FeedbackStatus) Valid() bool {
	return s == FeedbackPending || s == FeedbackResolved
}

// Feedback is one user's rating of one chat; (UserID, ChatID) is unique.
type Feedback struct {
	ID         uint           `gorm:"primaryKey"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_feedback_user_chat"`
	ChatID     uint           `gorm:"not null;uniqueIndex:idx_feedback_user_chat;index"`
	IsPositive bool           `gorm:"not null;index"`
	Status     FeedbackStatus `gorm:"size:16;not null;default:PENDING"`
	CreatedAt  time.Time      `gorm:"not null;index"`
}

func (Feedback) TableName() string { return "feedback" }
