package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/auth"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/middleware"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testJWTSecret = "controllers-test-secret-0123456789"

func init() {
	log.SetLevel(logrus.PanicLevel)
	auth.SetLogLevel(logrus.PanicLevel)
}

type testProvider struct {
	router  *gin.Engine
	clients services.ClientService
	client  *models.OAuthClient
	secret  string
}

func setupProvider(t *testing.T) *testProvider {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "provider.sqlite")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, auth.Migrate(db))

	users := services.NewUserService(db)
	clients := services.NewClientService(db)
	user, err := users.EnsureUser("dev@example.com", "Dev User")
	require.NoError(t, err)
	client, secret, err := clients.RegisterInstalledClient("Sample", user.ID)
	require.NoError(t, err)

	oauthService := auth.NewOAuthService(db, auth.Options{JWTSecret: testJWTSecret, DevUserID: user.ID, AutoApprove: true})
	oauthController := NewOAuthController(oauthService, users)
	clientController := NewClientController(clients, "http://localhost:8080")
	bearer := middleware.OAuth2Auth([]byte(testJWTSecret), oauthService)

	router := gin.New()
	router.GET("/oauth/authorize", oauthService.HandleAuthorize)
	router.POST("/oauth/token", oauthService.HandleToken)
	router.POST("/oauth/revoke", oauthService.HandleRevoke)
	router.GET("/oauth2/v2/tokeninfo", oauthController.TokenInfo)
	router.GET("/oauth2/v2/userinfo", bearer, oauthController.UserInfo)
	api := router.Group("/api/v1/clients", bearer, middleware.RequireScope("clients"))
	api.POST("", clientController.CreateClient)
	api.GET("", clientController.ListClients)
	api.DELETE("/:id", clientController.DeleteClient)

	return &testProvider{router: router, clients: clients, client: client, secret: secret}
}

// obtainToken runs authorize and token exchange for scope with a loopback redirect on port
func (p *testProvider) obtainToken(t *testing.T, scope, port string) (string, string) {
	redirectURI := "http://localhost:" + port + "/Callback"
	query := url.Values{
		"client_id":     {p.client.ID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {scope},
		"state":         {"s"},
	}
	w := p.do(httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+query.Encode(), nil))
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {p.client.ID},
		"client_secret": {p.secret},
		"code":          {location.Query().Get("code")},
		"redirect_uri":  {redirectURI},
	}
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = p.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	return tokens.AccessToken, tokens.RefreshToken
}

func (p *testProvider) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)
	return w
}

func (p *testProvider) get(path, accessToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return p.do(req)
}

func TestTokenInfoAndUserInfo(t *testing.T) {
	p := setupProvider(t)
	access, refresh := p.obtainToken(t, "https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/userinfo.profile", "61001")
	require.NotEmpty(t, refresh)

	w := p.get("/oauth2/v2/tokeninfo?access_token="+url.QueryEscape(access), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var info tokenInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, p.client.ID, info.Audience)
	assert.Equal(t, p.client.ID, info.IssuedTo)
	assert.Equal(t, "dev@example.com", info.Email)
	assert.Equal(t, "offline", info.AccessType)
	assert.InDelta(t, 3600, info.ExpiresIn, 5)

	w = p.get("/oauth2/v2/userinfo", access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var user userInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "1", user.ID)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.Equal(t, "Dev User", user.Name)
	assert.Equal(t, "Dev", user.GivenName)
	assert.Equal(t, "User", user.FamilyName)

	form := url.Values{"token": {access}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/revoke", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, p.do(req).Code)

	assert.Equal(t, http.StatusUnauthorized, p.get("/oauth2/v2/userinfo", access).Code)
	w = p.get("/oauth2/v2/tokeninfo?access_token="+url.QueryEscape(access), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid_token","error_description":"Invalid Value"}`, w.Body.String())
}

func TestUserInfoWithoutProfileScope(t *testing.T) {
	p := setupProvider(t)
	access, _ := p.obtainToken(t, "email", "61002")

	w := p.get("/oauth2/v2/userinfo", access)
	require.Equal(t, http.StatusOK, w.Code)
	var user userInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "dev@example.com", user.Email)
	assert.Empty(t, user.Name)
}

func TestTokenInfoMissingToken(t *testing.T) {
	p := setupProvider(t)

	w := p.get("/oauth2/v2/tokeninfo", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientRegistration(t *testing.T) {
	p := setupProvider(t)

	profileOnly, _ := p.obtainToken(t, "profile", "61003")
	assert.Equal(t, http.StatusForbidden, p.get("/api/v1/clients", profileOnly).Code)

	access, _ := p.obtainToken(t, "profile clients", "61004")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(`{"name":"Second sample"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	w := p.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var secrets InstalledClientSecrets
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &secrets))
	assert.Equal(t, "http://localhost:8080/oauth/authorize", secrets.Installed.AuthURI)
	assert.Equal(t, "http://localhost:8080/oauth/token", secrets.Installed.TokenURI)
	assert.NotEmpty(t, secrets.Installed.ClientSecret)

	w = p.get("/api/v1/clients", access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$", "secret hashes are not listed")
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/clients/"+secrets.Installed.ClientID, nil)
	req.Header.Set("Authorization", "Bearer "+access)
	assert.Equal(t, http.StatusNoContent, p.do(req).Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/clients/"+secrets.Installed.ClientID, nil)
	req.Header.Set("Authorization", "Bearer "+access)
	assert.Equal(t, http.StatusNotFound, p.do(req).Code)
}
