package models

import "time"

// ThreadInactivity is how long a thread stays reusable after its last chat.
const ThreadInactivity = 30 * time.Minute

type Thread struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         uint      `gorm:"not null;index"`
	CreatedAt      time.Time `gorm:"not null;index"`
	LastActivityAt time.Time `gorm:"not null;index"`
}
