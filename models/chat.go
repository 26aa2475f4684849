package models

import "time"

type Chat struct {
	ID        uint      `gorm:"primaryKey"`
	ThreadID  uint      `gorm:"not null;index"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}
