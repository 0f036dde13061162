package models

import (
	"net/url"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is a registered application. Installed clients are registered with
// the loopback domain and may redirect to any port on it.
type OAuthClient struct {
	ID          string `gorm:"primaryKey"`
	Secret      string `gorm:"not null"` // bcrypt hash, the plain secret is shown once at registration
	Name        string
	Domain      string
	UserID      uint   // Owner, for client management
	Scopes      string // Space-separated list of allowed scopes
	GrantTypes  string // Space-separated list: "authorization_code refresh_token"
	RedirectURI string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string {
	return c.ID
}

// GetSecret returns the hash; secrets are checked through VerifyPassword
func (c *OAuthClient) GetSecret() string {
	return c.Secret
}

// GetDomain is the base URI redirect URIs are validated against
func (c *OAuthClient) GetDomain() string {
	if c.Domain != "" {
		return c.Domain
	}
	if u, err := url.Parse(c.RedirectURI); err == nil && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return ""
}

// IsPublic reports false: installed clients still carry a (non-confidential) secret
func (c *OAuthClient) IsPublic() bool {
	return false
}

func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword implements oauth2.ClientPasswordVerifier against the bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
