package models

import (
	"time"
)

// OAuthToken is an issued access token with its optional refresh token
type OAuthToken struct {
	ID              uint   `gorm:"primaryKey"`
	ClientID        string `gorm:"not null"`
	UserID          string
	AccessToken     string `gorm:"uniqueIndex;not null"`
	RefreshToken    string `gorm:"index"`
	Scopes          string
	RedirectURI     string
	AccessIssuedAt  time.Time `gorm:"not null"`
	AccessExpiresAt time.Time `gorm:"not null"`
	// Zero when no refresh token was issued
	RefreshIssuedAt  time.Time
	RefreshExpiresAt time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
