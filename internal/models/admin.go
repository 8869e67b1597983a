package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin back-office operator who can generate codes and dispatch rewards
type Admin struct {
	ID           uint           `gorm:"primarykey" json:"id"`                 // primary key
	Username     string         `gorm:"uniqueIndex;not null" json:"username"` // login name
	PasswordHash string         `gorm:"not null" json:"-"`                    // bcrypt hash, never serialised
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`          // bumped to revoke issued tokens
	LastLoginAt  *time.Time     `json:"last_login_at"`                        // last login
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`              // created at
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                       // soft delete
}

// TableName table name
func (Admin) TableName() string {
	return "admins"
}
