package nativeapp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// AuthorizationRequest is the immutable input of a single authorization flow.
type AuthorizationRequest struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	RedirectURI  string
	Endpoint     oauth2.Endpoint
}

// oauthConfig converts the request into the x/oauth2 configuration used for URL building and exchange.
// Client credentials always travel in the form body.
func (r AuthorizationRequest) oauthConfig() *oauth2.Config {
	endpoint := r.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &oauth2.Config{
		ClientID:     r.ClientID,
		ClientSecret: r.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  r.RedirectURI,
		Scopes:       r.Scopes,
	}
}

// ClientSecrets holds the client details of a Google APIs Console client_secrets.json file.
type ClientSecrets struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	RedirectURIs []string `json:"redirect_uris"`
}

type clientSecretsFile struct {
	Installed *ClientSecrets `json:"installed"`
	Web       *ClientSecrets `json:"web"`
}

// LoadClientSecrets reads client_secrets.json, preferring the "installed" section over "web".
func LoadClientSecrets(path string) (*ClientSecrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	return ParseClientSecrets(data)
}

// ParseClientSecrets parses the contents of a client_secrets.json file.
func ParseClientSecrets(data []byte) (*ClientSecrets, error) {
	var file clientSecretsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	secrets := file.Installed
	if secrets == nil {
		secrets = file.Web
	}
	if secrets == nil {
		return nil, fmt.Errorf("parse client secrets: no \"installed\" or \"web\" section")
	}
	if err := secrets.Validate(); err != nil {
		return nil, err
	}
	return secrets, nil
}

// Validate rejects missing values and the placeholders shipped with the sample file.
func (s *ClientSecrets) Validate() error {
	if s.ClientID == "" || s.ClientSecret == "" {
		return fmt.Errorf("client secrets: client_id and client_secret are required")
	}
	if isPlaceholder(s.ClientID) || isPlaceholder(s.ClientSecret) {
		return fmt.Errorf("%w: enter the client ID and secret from the Google APIs Console", ErrPlaceholderSecrets)
	}
	return nil
}

func isPlaceholder(value string) bool {
	return strings.HasPrefix(value, "[[") || strings.HasPrefix(value, "Enter")
}

// Endpoint returns the provider endpoint, overriding the fallback with auth_uri and token_uri when present.
func (s *ClientSecrets) Endpoint(fallback oauth2.Endpoint) oauth2.Endpoint {
	endpoint := fallback
	if s.AuthURI != "" {
		endpoint.AuthURL = s.AuthURI
	}
	if s.TokenURI != "" {
		endpoint.TokenURL = s.TokenURI
	}
	return endpoint
}

// Request builds the AuthorizationRequest for the given redirect URI and scopes.
func (s *ClientSecrets) Request(endpoint oauth2.Endpoint, redirectURI string, scopes []string) AuthorizationRequest {
	return AuthorizationRequest{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Scopes:       append([]string(nil), scopes...),
		RedirectURI:  redirectURI,
		Endpoint:     s.Endpoint(endpoint),
	}
}
