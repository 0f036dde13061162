package models

import (
	"time"
)

// StoredCredential is a sample's cached OAuth token, one row per user
type StoredCredential struct {
	UserID       string `gorm:"primaryKey"`
	AccessToken  string `gorm:"not null"`
	RefreshToken string
	TokenType    string
	Expiry       *time.Time // Nullable, a token without expiry never expires
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (StoredCredential) TableName() string {
	return "stored_credentials"
}
