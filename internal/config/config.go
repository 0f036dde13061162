package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

// Redirect modes for the installed application flow
const (
	RedirectModeLocal  = "local"
	RedirectModeManual = "manual"
)

// Google endpoints used when neither the environment nor client_secrets.json provide one
const (
	DefaultAuthURL    = "https://accounts.google.com/o/oauth2/auth"
	DefaultTokenURL   = "https://oauth2.googleapis.com/token"
	DefaultRevokeURL  = "https://oauth2.googleapis.com/revoke"
	DefaultAPIBaseURL = "https://www.googleapis.com"
	DefaultScopes     = "https://www.googleapis.com/auth/userinfo.profile https://www.googleapis.com/auth/userinfo.email"
)

// Config used for the sample application configuration, loading the input from environment variables
type Config struct {
	// Client credentials
	ClientSecretsPath string `json:"client_secrets_path"`
	ClientID          string `json:"client_id"`
	ClientSecret      string `json:"client_secret"`

	// Provider endpoints, empty means "take it from client_secrets.json or the Google default"
	AuthURL    string `json:"auth_url"`
	TokenURL   string `json:"token_url"`
	RevokeURL  string `json:"revoke_url"`
	APIBaseURL string `json:"api_base_url"`

	// Authorization request
	Scopes     []string `json:"scopes"`
	AccessType string   `json:"access_type"`
	UsePKCE    bool     `json:"use_pkce"`

	// Verification code receiver
	RedirectMode string        `json:"redirect_mode"`
	CallbackHost string        `json:"callback_host"`
	CallbackPort int           `json:"callback_port"`
	CallbackPath string        `json:"callback_path"`
	WaitTimeout  time.Duration `json:"wait_timeout"`
	Browser      string        `json:"browser"`

	// Credential storage
	TokenStore     string `json:"token_store"`
	TokenStorePath string `json:"token_store_path"`
	DatabaseURL    string `json:"database_url"`

	// Logging configuration
	LogLevel string `json:"log_level"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{ClientSecretsPath: %s, ClientID: %s, ClientSecret: [REDACTED], AuthURL: %s, TokenURL: %s, RevokeURL: %s, APIBaseURL: %s, Scopes: %v, AccessType: %s, UsePKCE: %t, RedirectMode: %s, CallbackHost: %s, CallbackPort: %d, CallbackPath: %s, WaitTimeout: %s, Browser: %s, TokenStore: %s, TokenStorePath: %s, DatabaseURL: %s, LogLevel: %s}",
		c.ClientSecretsPath, c.ClientID, c.AuthURL, c.TokenURL, c.RevokeURL, c.APIBaseURL, c.Scopes, c.AccessType, c.UsePKCE,
		c.RedirectMode, c.CallbackHost, c.CallbackPort, c.CallbackPath, c.WaitTimeout, c.Browser,
		c.TokenStore, c.TokenStorePath, maskDatabaseURL(c.DatabaseURL), c.LogLevel)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig reads the sample configuration from environment variables and returns a Config struct
// Returns an error if any value is present but invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")

	port, err := strconv.Atoi(GetEnvWithDefault("OAUTH_CALLBACK_PORT", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid OAUTH_CALLBACK_PORT: %w", err)
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid OAUTH_CALLBACK_PORT: %d out of range", port)
	}

	timeout, err := time.ParseDuration(GetEnvWithDefault("OAUTH_WAIT_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OAUTH_WAIT_TIMEOUT: %w", err)
	}

	mode := strings.ToLower(GetEnvWithDefault("OAUTH_REDIRECT_MODE", RedirectModeLocal))
	if mode != RedirectModeLocal && mode != RedirectModeManual {
		return nil, fmt.Errorf("invalid OAUTH_REDIRECT_MODE %q (supported: local, manual)", mode)
	}

	accessType := strings.ToLower(GetEnvWithDefault("OAUTH_ACCESS_TYPE", "online"))
	if accessType != "online" && accessType != "offline" {
		return nil, fmt.Errorf("invalid OAUTH_ACCESS_TYPE %q (supported: online, offline)", accessType)
	}

	callbackPath := GetEnvWithDefault("OAUTH_CALLBACK_PATH", "/Callback")
	if !strings.HasPrefix(callbackPath, "/") {
		return nil, errors.New("OAUTH_CALLBACK_PATH must start with /")
	}

	for _, key := range []string{"OAUTH_AUTH_URL", "OAUTH_TOKEN_URL", "OAUTH_REVOKE_URL", "API_BASE_URL"} {
		if value := os.Getenv(key); value != "" {
			if _, err := url.ParseRequestURI(value); err != nil {
				return nil, fmt.Errorf("invalid %s format: %w", key, err)
			}
		}
	}

	config := &Config{
		ClientSecretsPath: GetEnvWithDefault("OAUTH_CLIENT_SECRETS", "client_secrets.json"),
		ClientID:          os.Getenv("OAUTH_CLIENT_ID"),
		ClientSecret:      os.Getenv("OAUTH_CLIENT_SECRET"),
		AuthURL:           os.Getenv("OAUTH_AUTH_URL"),
		TokenURL:          os.Getenv("OAUTH_TOKEN_URL"),
		RevokeURL:         GetEnvWithDefault("OAUTH_REVOKE_URL", DefaultRevokeURL),
		APIBaseURL:        GetEnvWithDefault("API_BASE_URL", DefaultAPIBaseURL),
		Scopes:            strings.Fields(GetEnvWithDefault("OAUTH_SCOPES", DefaultScopes)),
		AccessType:        accessType,
		UsePKCE:           GetEnvAsType("OAUTH_PKCE", true),
		RedirectMode:      mode,
		CallbackHost:      GetEnvWithDefault("OAUTH_CALLBACK_HOST", "localhost"),
		CallbackPort:      port,
		CallbackPath:      callbackPath,
		WaitTimeout:       timeout,
		Browser:           GetEnvWithDefault("OAUTH_BROWSER", "google-chrome"),
		TokenStore:        strings.ToLower(GetEnvWithDefault("TOKEN_STORE", "file")),
		TokenStorePath:    GetEnvWithDefault("TOKEN_STORE_PATH", defaultTokenStorePath()),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LogLevel:          GetEnvWithDefault("LOG_LEVEL", ""),
	}

	if config.TokenStore == "postgres" && config.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required for the postgres token store")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// defaultTokenStorePath is ~/.store/oauth2_sample, or a relative .store when the home directory is unknown
func defaultTokenStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".store", "oauth2_sample")
	}
	return filepath.Join(home, ".store", "oauth2_sample")
}

// LevelForEnvironment maps APP_ENV to a logrus level
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		// Default to info level for other environments
		return logrus.InfoLevel
	}
}

// ResolveLogLevel returns the LOG_LEVEL override when one is set, otherwise the APP_ENV level
func ResolveLogLevel(environment, override string) (logrus.Level, error) {
	if override == "" {
		return LevelForEnvironment(environment), nil
	}
	return logrus.ParseLevel(override)
}

// SetLogLevel aligns the package logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		durationValue, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(durationValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
