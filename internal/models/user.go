package models

import (
	"strings"
	"time"
)

// User is a resource owner of the development provider
type User struct {
	ID            uint   `gorm:"primaryKey"`
	Email         string `gorm:"uniqueIndex;not null"`
	Name          string
	Picture       string
	Locale        string `gorm:"default:'en'"`
	VerifiedEmail bool   `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GivenName is the first word of Name
func (u *User) GivenName() string {
	given, _, _ := strings.Cut(u.Name, " ")
	return given
}

// FamilyName is everything after the first word of Name
func (u *User) FamilyName() string {
	_, family, _ := strings.Cut(u.Name, " ")
	return family
}
