package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

// DefaultKeyringService namespaces the keychain entries written by the samples
const DefaultKeyringService = "gin-oauth-samples"

// KeyringStore keeps each credential as a JSON secret in the OS keychain
type KeyringStore struct {
	Service string
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{Service: service}
}

func (s *KeyringStore) Load(_ context.Context, userID string) (*oauth2.Token, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	secret, err := keyring.Get(s.Service, userID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keyring store: get: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(secret), &token); err != nil {
		return nil, fmt.Errorf("keyring store: decode: %w", err)
	}
	return &token, nil
}

func (s *KeyringStore) Save(_ context.Context, userID string, token *oauth2.Token) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if token == nil {
		return errors.New("keyring store: nil token")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("keyring store: encode: %w", err)
	}
	if err := keyring.Set(s.Service, userID, string(data)); err != nil {
		return fmt.Errorf("keyring store: set: %w", err)
	}
	log.WithField("user_id", userID).Debug("Credential saved to keyring")
	return nil
}

func (s *KeyringStore) Delete(_ context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	err := keyring.Delete(s.Service, userID)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("keyring store: delete: %w", err)
	}
	return nil
}
