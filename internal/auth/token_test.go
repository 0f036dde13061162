package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	Error        string `json:"error"`
}

func setupRouter(t *testing.T, autoApprove bool) (*gin.Engine, *OAuthService) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	user := seedClient(t, db)
	oauthService := NewOAuthService(db, Options{JWTSecret: testJWTSecret, DevUserID: user.ID, AutoApprove: autoApprove})

	router := gin.New()
	router.GET("/oauth/authorize", oauthService.HandleAuthorize)
	router.POST("/oauth/authorize", oauthService.HandleAuthorize)
	router.POST("/oauth/token", oauthService.HandleToken)
	router.POST("/oauth/revoke", oauthService.HandleRevoke)
	return router, oauthService
}

func authorizeQuery(redirectURI, challenge string) url.Values {
	q := url.Values{
		"client_id":     {testClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {"profile email"},
		"state":         {"xyzzy"},
		"access_type":   {"offline"},
	}
	if challenge != "" {
		q.Set("code_challenge", challenge)
		q.Set("code_challenge_method", "S256")
	}
	return q
}

func s256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeToken(t *testing.T, w *httptest.ResponseRecorder) tokenResponse {
	var tr tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr), w.Body.String())
	return tr
}

func TestAuthorizationCodeFlow(t *testing.T) {
	router, oauthService := setupRouter(t, true)
	redirectURI := "http://127.0.0.1:54321/Callback"
	verifier := "a-code-verifier-that-is-long-enough-to-satisfy-rfc-7636"

	req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+authorizeQuery(redirectURI, s256(verifier)).Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:54321", location.Host)
	assert.Equal(t, "/Callback", location.Path)
	assert.Equal(t, "xyzzy", location.Query().Get("state"))
	code := location.Query().Get("code")
	require.NotEmpty(t, code)

	exchange := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {testClientID},
		"client_secret": {testClientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"code_verifier": {verifier},
	}
	w = postForm(router, "/oauth/token", exchange)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tokens := decodeToken(t, w)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Positive(t, tokens.ExpiresIn)

	// a code is single use
	w = postForm(router, "/oauth/token", exchange)
	assert.Equal(t, "invalid_grant", decodeToken(t, w).Error)

	w = postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {testClientID},
		"client_secret": {testClientSecret},
		"refresh_token": {tokens.RefreshToken},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refreshed := decodeToken(t, w)
	assert.NotEqual(t, tokens.AccessToken, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken, "the refresh token is unchanged, so the response leaves it out")

	_, err = oauthService.LoadAccessToken(context.Background(), tokens.AccessToken)
	assert.Error(t, err, "refreshing removes the previous access token")
	_, err = oauthService.LoadAccessToken(context.Background(), refreshed.AccessToken)
	require.NoError(t, err)

	w = postForm(router, "/oauth/revoke", url.Values{"token": {tokens.RefreshToken}})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, err = oauthService.LoadAccessToken(context.Background(), refreshed.AccessToken)
	assert.Error(t, err, "revoking the refresh token revokes the whole grant")

	// revoking an already revoked token still succeeds
	w = postForm(router, "/oauth/revoke", url.Values{"token": {tokens.RefreshToken}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	w = postForm(router, "/oauth/revoke", url.Values{"token": {"never-issued"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenExchangeFailures(t *testing.T) {
	router, _ := setupRouter(t, true)
	redirectURI := "http://localhost:8123/Callback"
	verifier := "another-code-verifier-that-is-long-enough-for-s256-checks"

	issue := func() string {
		req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+authorizeQuery(redirectURI, s256(verifier)).Encode(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusFound, w.Code)
		location, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		return location.Query().Get("code")
	}

	testCases := []struct {
		name     string
		mutate   func(url.Values)
		expected string
	}{
		{
			name:     "wrong client secret",
			mutate:   func(v url.Values) { v.Set("client_secret", "wrong") },
			expected: "invalid_client",
		},
		{
			name:     "wrong code verifier",
			mutate:   func(v url.Values) { v.Set("code_verifier", "not-the-verifier-that-was-used-for-the-challenge") },
			expected: "invalid_grant",
		},
		{
			name:     "unknown code",
			mutate:   func(v url.Values) { v.Set("code", "4/not-a-code") },
			expected: "invalid_grant",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{
				"grant_type":    {"authorization_code"},
				"client_id":     {testClientID},
				"client_secret": {testClientSecret},
				"code":          {issue()},
				"redirect_uri":  {redirectURI},
				"code_verifier": {verifier},
			}
			tt.mutate(form)

			w := postForm(router, "/oauth/token", form)
			assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)
			tr := decodeToken(t, w)
			assert.Equal(t, tt.expected, tr.Error)
			assert.Empty(t, tr.AccessToken)
		})
	}
}

func TestAuthorizeRejectsUnregisteredRedirect(t *testing.T) {
	router, _ := setupRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+authorizeQuery("http://evil.example.com/Callback", "").Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestAuthorizeUnknownClient(t *testing.T) {
	router, _ := setupRouter(t, true)

	q := authorizeQuery("http://localhost:9999/Callback", "")
	q.Set("client_id", "nobody")
	req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var oauthErr models.OAuth2Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &oauthErr))
	assert.Equal(t, models.ErrInvalidClient, oauthErr.Error)
}

func TestConsentPage(t *testing.T) {
	router, _ := setupRouter(t, false)
	redirectURI := "http://localhost:40123/Callback"

	req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+authorizeQuery(redirectURI, "").Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sample Installed App")
	assert.Contains(t, w.Body.String(), "dev@example.com")
	assert.Contains(t, w.Body.String(), `name="state" value="xyzzy"`)

	t.Run("deny", func(t *testing.T) {
		form := authorizeQuery(redirectURI, "")
		form.Set("decision", "deny")
		w := postForm(router, "/oauth/authorize", form)
		require.Equal(t, http.StatusFound, w.Code)

		location, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "access_denied", location.Query().Get("error"))
		assert.Equal(t, "xyzzy", location.Query().Get("state"))
		assert.Empty(t, location.Query().Get("code"))
	})

	t.Run("approve", func(t *testing.T) {
		form := authorizeQuery(redirectURI, "")
		form.Set("decision", "approve")
		w := postForm(router, "/oauth/authorize", form)
		require.Equal(t, http.StatusFound, w.Code)

		location, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "localhost:40123", location.Host)
		assert.NotEmpty(t, location.Query().Get("code"))
	})
}

func TestOutOfBandCodePage(t *testing.T) {
	router, _ := setupRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+authorizeQuery(OOBRedirectURI, "").Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), "Please copy this code")
}

func TestRevokeMissingToken(t *testing.T) {
	router, _ := setupRouter(t, true)

	w := postForm(router, "/oauth/revoke", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
