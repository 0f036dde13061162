package nativeapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/credstore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Flow runs the installed application authorization code flow.
type Flow struct {
	Secrets  *ClientSecrets
	Endpoint oauth2.Endpoint
	Scopes   []string

	Receiver VerificationCodeReceiver
	Browser  Browser
	// Store caches credentials across runs, nil disables caching.
	Store credstore.Store

	AccessType     string
	ApprovalPrompt string
	UsePKCE        bool

	// HTTPClient is used for token requests, http.DefaultClient when nil.
	HTTPClient *http.Client
}

// stateVerifier is implemented by receivers that can check the state echoed by the redirect.
type stateVerifier interface {
	ExpectState(state string)
}

// Authorize returns a stored credential for userID when one is still usable. Otherwise it asks
// the user to grant access in the browser and exchanges the received code for a new credential.
// The receiver is always stopped before Authorize returns.
func (f *Flow) Authorize(ctx context.Context, userID string) (*Credential, error) {
	logger := log.WithField("user_id", userID)

	if credential := f.loadStored(ctx, userID, logger); credential != nil {
		return credential, nil
	}

	defer func() {
		if err := f.Receiver.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to stop verification code receiver")
		}
	}()

	redirectURI, err := f.Receiver.Start()
	if err != nil {
		return nil, err
	}

	state := uuid.New().String()
	if verifier, ok := f.Receiver.(stateVerifier); ok {
		verifier.ExpectState(state)
	}

	req := f.Secrets.Request(f.Endpoint, redirectURI, f.Scopes)
	urlOpts := AuthURLOptions{
		State:          state,
		AccessType:     f.AccessType,
		ApprovalPrompt: f.ApprovalPrompt,
	}
	if f.UsePKCE {
		urlOpts.CodeVerifier = oauth2.GenerateVerifier()
	}

	authURL := BuildAuthorizationURL(req, urlOpts)
	logger.WithField("redirect_uri", redirectURI).Info("Requesting user authorization")
	if err := f.Browser.Open(authURL); err != nil {
		logger.WithError(err).Warn("Could not open browser")
	}

	code, err := f.Receiver.WaitForCode(ctx)
	if err != nil {
		return nil, err
	}

	credential, err := Exchange(ctx, req, code, ExchangeOptions{
		CodeVerifier: urlOpts.CodeVerifier,
		HTTPClient:   f.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	if f.Store != nil {
		if err := f.Store.Save(ctx, userID, credential.Token()); err != nil {
			return nil, fmt.Errorf("store credential: %w", err)
		}
	}
	return credential, nil
}

// loadStored returns the cached credential when it is unexpired or refreshable.
func (f *Flow) loadStored(ctx context.Context, userID string, logger *logrus.Entry) *Credential {
	if f.Store == nil {
		return nil
	}

	token, err := f.Store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, credstore.ErrNotFound) {
			logger.WithError(err).Warn("Failed to load stored credential")
		}
		return nil
	}

	config := f.Secrets.Request(f.Endpoint, "", f.Scopes).oauthConfig()
	credential := newCredential(token, config)
	if credential.Expired() && credential.RefreshToken == "" {
		logger.Info("Stored credential expired")
		return nil
	}
	logger.Info("Using stored credential")
	return credential
}

// Forget revokes the credential at the provider and removes it from the store.
func (f *Flow) Forget(ctx context.Context, userID, revokeURL string, credential *Credential) error {
	var errs []error
	if credential != nil && revokeURL != "" {
		token := credential.RefreshToken
		if token == "" {
			token = credential.AccessToken
		}
		if err := Revoke(ctx, f.HTTPClient, revokeURL, token); err != nil {
			errs = append(errs, fmt.Errorf("revoke: %w", err))
		}
	}
	if f.Store != nil {
		if err := f.Store.Delete(ctx, userID); err != nil && !errors.Is(err, credstore.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete stored credential: %w", err))
		}
	}
	return errors.Join(errs...)
}
