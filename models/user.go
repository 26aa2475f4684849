package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:120;not null"`
	Name         string    `gorm:"uniqueIndex;size:80;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         Role      `gorm:"size:16;not null;default:USER"`
	Enabled      bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Principal returns the authenticated view of u.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
