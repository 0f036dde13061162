package auth

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
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

// ErrUnknownToken is returned by RevokeToken for tokens that were never issued or are already gone
var ErrUnknownToken = errors.New("unknown token")

// Options configures the development authorization server
type Options struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// AutoApprove skips the consent page and grants every request to DevUserID
	AutoApprove bool
	// DevUserID is the resource owner every approved authorization is issued to
	DevUserID uint
}

type OAuthService struct {
	server  *server.Server
	manager *manage.Manager
	tokens  *GormTokenStore
	db      *gorm.DB
	opts    Options
}

// Migrate creates the tables of the authorization server
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.OAuthCode{}, &models.OAuthToken{})
}

func NewOAuthService(db *gorm.DB, opts Options) *OAuthService {
	if opts.AccessTokenTTL <= 0 {
		opts.AccessTokenTTL = time.Hour
	}
	if opts.RefreshTokenTTL <= 0 {
		opts.RefreshTokenTTL = 30 * 24 * time.Hour
	}

	manager := manage.NewDefaultManager()
	manager.SetAuthorizeCodeExp(10 * time.Minute)
	manager.SetAuthorizeCodeTokenCfg(&manage.Config{
		AccessTokenExp:    opts.AccessTokenTTL,
		RefreshTokenExp:   opts.RefreshTokenTTL,
		IsGenerateRefresh: true,
	})
	manager.SetRefreshTokenCfg(&manage.RefreshingConfig{
		AccessTokenExp:     opts.AccessTokenTTL,
		IsGenerateRefresh:  false,
		IsRemoveAccess:     true,
		IsRemoveRefreshing: false,
	})

	// Use JWT for access tokens
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(opts.JWTSecret), jwt.SigningMethodHS512, db))

	// Configure token store
	tokenStore := NewGormTokenStore(db)
	manager.MapTokenStorage(tokenStore)

	// Configure client store
	manager.MapClientStorage(NewGormClientStore(db))
	manager.SetValidateURIHandler(ValidateRedirectURI)

	cfg := server.NewConfig()
	cfg.AllowedGrantTypes = []oauth2.GrantType{oauth2.AuthorizationCode, oauth2.Refreshing}
	cfg.AllowedResponseTypes = []oauth2.ResponseType{oauth2.Code}

	srv := server.NewServer(cfg, manager)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	o := &OAuthService{
		server:  srv,
		manager: manager,
		tokens:  tokenStore,
		db:      db,
		opts:    opts,
	}
	srv.SetUserAuthorizationHandler(o.authorizeUser)
	srv.SetInternalErrorHandler(func(err error) *oauth2errors.Response {
		log.WithError(err).Error("OAuth server internal error")
		return nil
	})
	srv.SetResponseErrorHandler(func(re *oauth2errors.Response) {
		log.WithFields(logrus.Fields{
			"error":  re.Error,
			"status": re.StatusCode,
		}).Warn("OAuth request rejected")
	})

	return o
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// LoadAccessToken returns the stored token info for a live (issued, unexpired, unrevoked) access token
func (o *OAuthService) LoadAccessToken(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	return o.manager.LoadAccessToken(ctx, access)
}

// RevokeToken deletes the grant an access or refresh token belongs to
func (o *OAuthService) RevokeToken(ctx context.Context, token string) error {
	removed, err := o.tokens.RemoveGrant(ctx, token)
	if err != nil {
		return err
	}
	if !removed {
		return ErrUnknownToken
	}
	log.Info("Token revoked")
	return nil
}
