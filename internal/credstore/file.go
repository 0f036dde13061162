package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FileStore keeps one JSON file per user in a private directory.
type FileStore struct {
	Dir string
}

// NewFileStore creates the directory with 0700 permissions if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file store: create directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(userID string) string {
	return filepath.Join(s.Dir, url.PathEscape(userID)+".json")
}

func (s *FileStore) Load(_ context.Context, userID string) (*oauth2.Token, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(userID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("file store: decode: %w", err)
	}
	return &token, nil
}

// Save writes to a temporary file first and renames it, so a crash never leaves a partial token.
func (s *FileStore) Save(_ context.Context, userID string, token *oauth2.Token) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if token == nil {
		return errors.New("file store: nil token")
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("file store: create: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(userID)); err != nil {
		return fmt.Errorf("file store: rename: %w", err)
	}

	log.WithField("user_id", userID).Debug("Credential saved to file")
	return nil
}

func (s *FileStore) Delete(_ context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	err := os.Remove(s.path(userID))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("file store: delete: %w", err)
	}
	return nil
}
