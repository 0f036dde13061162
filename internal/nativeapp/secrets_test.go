package nativeapp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestParseClientSecrets(t *testing.T) {
	testCases := []struct {
		name        string
		data        string
		expectedID  string
		expectError bool
		placeholder bool
	}{
		{
			name:       "installed section",
			data:       `{"installed":{"client_id":"abc","client_secret":"s3cret","redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]}}`,
			expectedID: "abc",
		},
		{
			name:       "installed wins over web",
			data:       `{"web":{"client_id":"web","client_secret":"w"},"installed":{"client_id":"native","client_secret":"n"}}`,
			expectedID: "native",
		},
		{
			name:       "web only",
			data:       `{"web":{"client_id":"web","client_secret":"w"}}`,
			expectedID: "web",
		},
		{
			name:        "template placeholders",
			data:        `{"installed":{"client_id":"[[INSERT CLIENT ID HERE]]","client_secret":"[[INSERT CLIENT SECRET HERE]]"}}`,
			expectError: true,
			placeholder: true,
		},
		{
			name:        "enter placeholder",
			data:        `{"installed":{"client_id":"Enter Client ID","client_secret":"Enter Client Secret"}}`,
			expectError: true,
			placeholder: true,
		},
		{
			name:        "no section",
			data:        `{"other":{}}`,
			expectError: true,
		},
		{
			name:        "missing secret",
			data:        `{"installed":{"client_id":"abc"}}`,
			expectError: true,
		},
		{
			name:        "not json",
			data:        `client_id=abc`,
			expectError: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			secrets, err := ParseClientSecrets([]byte(tt.data))
			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, tt.placeholder, errors.Is(err, ErrPlaceholderSecrets))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, secrets.ClientID)
		})
	}
}

func TestLoadClientSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secrets.json")
	data := `{"installed":{"client_id":"abc","client_secret":"s3cret","auth_uri":"http://localhost:9096/oauth/authorize","token_uri":"http://localhost:9096/oauth/token"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	secrets, err := LoadClientSecrets(path)
	require.NoError(t, err)

	fallback := oauth2.Endpoint{AuthURL: "https://accounts.google.com/o/oauth2/auth", TokenURL: "https://oauth2.googleapis.com/token"}
	endpoint := secrets.Endpoint(fallback)
	assert.Equal(t, "http://localhost:9096/oauth/authorize", endpoint.AuthURL)
	assert.Equal(t, "http://localhost:9096/oauth/token", endpoint.TokenURL)

	scopes := []string{"profile"}
	req := secrets.Request(fallback, "http://localhost:1/Callback", scopes)
	scopes[0] = "changed"
	assert.Equal(t, []string{"profile"}, req.Scopes, "request keeps its own copy of the scopes")
	assert.Equal(t, "abc", req.ClientID)
	assert.Equal(t, "http://localhost:1/Callback", req.RedirectURI)

	_, err = LoadClientSecrets(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestClientSecretsEndpointFallback(t *testing.T) {
	secrets := &ClientSecrets{ClientID: "abc", ClientSecret: "s"}
	fallback := oauth2.Endpoint{AuthURL: "https://a", TokenURL: "https://t"}
	assert.Equal(t, fallback, secrets.Endpoint(fallback))
}
