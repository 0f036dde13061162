package models

import (
	"time"
)

// OAuthCode is an issued authorization code, deleted once exchanged
type OAuthCode struct {
	Code                string `gorm:"primaryKey"`
	ClientID            string `gorm:"not null"`
	UserID              string `gorm:"not null"`
	Scopes              string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	IssuedAt            time.Time `gorm:"not null"`
	ExpiresAt           time.Time `gorm:"not null"`
	CreatedAt           time.Time
}

func (OAuthCode) TableName() string {
	return "oauth_codes"
}
