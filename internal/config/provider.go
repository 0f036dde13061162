package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProviderConfig holds the development OAuth provider configuration
type ProviderConfig struct {
	// Server Configuration
	Port int    `json:"port"`
	Host string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBPath     string `json:"db_path"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`

	// Security Configuration
	JWTSecret      string        `json:"jwt_secret"`
	AccessTokenTTL time.Duration `json:"access_token_ttl"`

	// Development user that every approved authorization is issued to
	AutoApprove  bool   `json:"auto_approve"`
	DevUserEmail string `json:"dev_user_email"`
	DevUserName  string `json:"dev_user_name"`

	LogLevel string `json:"log_level"`
}

// String returns a string representation of ProviderConfig with sensitive data masked
func (c *ProviderConfig) String() string {
	return fmt.Sprintf("ProviderConfig{Port: %d, Host: %s, DBDriver: %s, DBPath: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], JWTSecret: [REDACTED], AccessTokenTTL: %s, AutoApprove: %t, DevUserEmail: %s, LogLevel: %s}",
		c.Port, c.Host, c.DBDriver, c.DBPath, c.DBHost, c.DBName, c.DBUser, c.AccessTokenTTL, c.AutoApprove, c.DevUserEmail, c.LogLevel)
}

// LoadProviderConfig reads the development provider configuration from environment variables
func LoadProviderConfig() (*ProviderConfig, error) {
	log.Info("Loading provider configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(GetEnvWithDefault("ACCESS_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}

	config := &ProviderConfig{
		Port:           port,
		Host:           GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:       strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DBPath:         GetEnvWithDefault("DB_PATH", "devprovider.sqlite"),
		DBHost:         GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:         GetEnvWithDefault("DB_PORT", "5432"),
		DBName:         GetEnvWithDefault("DB_NAME", "devprovider"),
		DBUser:         GetEnvWithDefault("DB_USER", "user"),
		DBPassword:     GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:      GetEnvWithDefault("DB_SSLMODE", "disable"),
		JWTSecret:      GetEnvWithDefault("JWT_SECRET", ""),
		AccessTokenTTL: ttl,
		AutoApprove:    GetEnvAsType("DEV_AUTO_APPROVE", false),
		DevUserEmail:   GetEnvWithDefault("DEV_USER_EMAIL", "dev@example.com"),
		DevUserName:    GetEnvWithDefault("DEV_USER_NAME", "Dev User"),
		LogLevel:       GetEnvWithDefault("LOG_LEVEL", ""),
	}

	if len(config.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET environment variable is required and must be at least 32 characters")
	}

	log.Infof("Provider configuration loaded: %s", config.String())
	return config, nil
}
