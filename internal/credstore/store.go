// Package credstore persists OAuth 2.0 credentials between runs of a sample.
package credstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the package logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// ErrNotFound is returned when no credential is stored for the user.
var ErrNotFound = errors.New("credential not found")

// Store provides persistent storage for OAuth credentials keyed by user.
type Store interface {
	// Load retrieves the token stored for userID.
	Load(ctx context.Context, userID string) (*oauth2.Token, error)
	// Save stores the token for userID, replacing any previous one.
	Save(ctx context.Context, userID string, token *oauth2.Token) error
	// Delete removes the token stored for userID.
	Delete(ctx context.Context, userID string) error
}

// Store kinds accepted by Open
const (
	KindNone     = "none"
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindKeyring  = "keyring"
)

// Options carries what each store kind needs
type Options struct {
	// Path is the directory for the file store or the database file for sqlite.
	Path string
	// DatabaseURL is the postgres DSN.
	DatabaseURL string
	// Service namespaces keyring entries.
	Service string
}

// Open returns the store for kind. KindNone yields a nil Store, which disables caching.
func Open(kind string, opts Options) (Store, error) {
	switch strings.ToLower(kind) {
	case KindNone, "":
		return nil, nil
	case KindFile:
		return NewFileStore(opts.Path)
	case KindSQLite, KindPostgres:
		return OpenGormStore(kind, opts)
	case KindKeyring:
		return NewKeyringStore(opts.Service), nil
	default:
		return nil, fmt.Errorf("unsupported token store: %s (supported: none, file, sqlite, postgres, keyring)", kind)
	}
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("empty user id")
	}
	return nil
}
