package nativeapp

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testRequest(tokenURL string) AuthorizationRequest {
	return AuthorizationRequest{
		ClientID:     "abc",
		ClientSecret: "s3cret",
		Scopes:       []string{"s1", "s2"},
		RedirectURI:  "http://localhost:8080/Callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example.com/o/oauth2/auth",
			TokenURL: tokenURL,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestBuildAuthorizationURL(t *testing.T) {
	authURL := BuildAuthorizationURL(testRequest(""), AuthURLOptions{
		State:          "st4te",
		AccessType:     "offline",
		ApprovalPrompt: "force",
	})

	assert.True(t, strings.HasPrefix(authURL, "https://accounts.example.com/o/oauth2/auth?"))
	assert.Contains(t, authURL, "client_id=abc")
	assert.Contains(t, authURL, "redirect_uri="+url.QueryEscape("http://localhost:8080/Callback"))
	assert.Contains(t, authURL, "response_type=code")
	assert.Equal(t, 1, strings.Count(authURL, "client_id="))

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	query := parsed.Query()
	assert.Equal(t, "s1 s2", query.Get("scope"))
	assert.Equal(t, "st4te", query.Get("state"))
	assert.Equal(t, "offline", query.Get("access_type"))
	assert.Equal(t, "force", query.Get("approval_prompt"))
	assert.Empty(t, query.Get("code_challenge"))
}

func TestBuildAuthorizationURLWithPKCE(t *testing.T) {
	verifier := oauth2.GenerateVerifier()
	authURL := BuildAuthorizationURL(testRequest(""), AuthURLOptions{CodeVerifier: verifier})

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "S256", parsed.Query().Get("code_challenge_method"))
	assert.Equal(t, oauth2.S256ChallengeFromVerifier(verifier), parsed.Query().Get("code_challenge"))
	assert.Empty(t, parsed.Query().Get("access_type"))
}

func TestExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "4/abc", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost:8080/Callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "abc", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))
		assert.Empty(t, r.Header.Get("Authorization"))

		writeJSON(w, http.StatusOK, `{"access_token":"T","refresh_token":"R","expires_in":3600,"token_type":"Bearer","id_token":"I"}`)
	}))
	defer server.Close()

	credential, err := Exchange(testContext(t), testRequest(server.URL), "4/abc", ExchangeOptions{HTTPClient: server.Client()})
	require.NoError(t, err)

	assert.Equal(t, "T", credential.AccessToken)
	assert.Equal(t, "R", credential.RefreshToken)
	assert.Equal(t, "Bearer", credential.TokenType)
	assert.Equal(t, "I", credential.IDToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), credential.Expiry, time.Minute)
	assert.False(t, credential.Expired())
}

func TestExchangeSendsCodeVerifier(t *testing.T) {
	verifier := oauth2.GenerateVerifier()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, verifier, r.PostForm.Get("code_verifier"))
		writeJSON(w, http.StatusOK, `{"access_token":"T","token_type":"Bearer"}`)
	}))
	defer server.Close()

	credential, err := Exchange(testContext(t), testRequest(server.URL), "4/abc", ExchangeOptions{
		CodeVerifier: verifier,
		HTTPClient:   server.Client(),
	})
	require.NoError(t, err)
	assert.Empty(t, credential.RefreshToken)
	assert.True(t, credential.Expiry.IsZero())
	assert.False(t, credential.Expired())
}

func TestExchangeProviderErrors(t *testing.T) {
	testCases := []struct {
		name                string
		status              int
		contentType         string
		body                string
		expectedCode        string
		expectedDescription string
	}{
		{
			name:                "invalid grant",
			status:              http.StatusBadRequest,
			contentType:         "application/json",
			body:                `{"error":"invalid_grant","error_description":"Bad Request"}`,
			expectedCode:        "invalid_grant",
			expectedDescription: "Bad Request",
		},
		{
			name:         "invalid client",
			status:       http.StatusUnauthorized,
			contentType:  "application/json",
			body:         `{"error":"invalid_client"}`,
			expectedCode: "invalid_client",
		},
		{
			name:                "non json failure",
			status:              http.StatusInternalServerError,
			contentType:         "text/html",
			body:                "<html>oops</html>",
			expectedCode:        "internal_server_error",
			expectedDescription: "<html>oops</html>",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			credential, err := Exchange(testContext(t), testRequest(server.URL), "4/abc", ExchangeOptions{HTTPClient: server.Client()})
			assert.Nil(t, credential)

			var providerErr *ProviderError
			require.True(t, errors.As(err, &providerErr), "got %T: %v", err, err)
			assert.Equal(t, tt.status, providerErr.StatusCode)
			assert.Equal(t, tt.expectedCode, providerErr.Code)
			assert.Equal(t, tt.expectedDescription, providerErr.Description)
		})
	}
}

func TestExchangeTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	tokenURL := server.URL
	server.Close()

	_, err := Exchange(testContext(t), testRequest(tokenURL), "4/abc", ExchangeOptions{})

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %T: %v", err, err)
	assert.Equal(t, "token exchange", transportErr.Op)

	var providerErr *ProviderError
	assert.False(t, errors.As(err, &providerErr))
}

func TestExchangeEmptyCode(t *testing.T) {
	_, err := Exchange(testContext(t), testRequest("http://127.0.0.1:1"), "  ", ExchangeOptions{})
	assert.ErrorIs(t, err, ErrEmptyCode)
}

func TestRevoke(t *testing.T) {
	var revoked []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		token := r.PostForm.Get("token")
		if token != "R" {
			writeJSON(w, http.StatusBadRequest, `{"error":"invalid_token"}`)
			return
		}
		revoked = append(revoked, token)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, Revoke(testContext(t), server.Client(), server.URL, "R"))
	assert.Equal(t, []string{"R"}, revoked)

	err := Revoke(testContext(t), server.Client(), server.URL, "unknown")
	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
	assert.Equal(t, "invalid_token", providerErr.Code)
}

func TestCredential(t *testing.T) {
	token := (&oauth2.Token{
		AccessToken: "T",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(-time.Minute),
	}).WithExtra(map[string]any{"id_token": "I"})

	credential := newCredential(token, nil)
	assert.True(t, credential.Expired())
	assert.Equal(t, "I", credential.IDToken)

	stored := credential.Token()
	assert.Equal(t, "T", stored.AccessToken)
	assert.Equal(t, "Bearer", stored.TokenType)

	source, err := credential.TokenSource(testContext(t)).Token()
	require.NoError(t, err)
	assert.Equal(t, "T", source.AccessToken)
}

func TestCredentialClientAuthorizesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	credential := newCredential(&oauth2.Token{AccessToken: "T", TokenType: "Bearer"}, nil)
	resp, err := credential.Client(testContext(t)).Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
