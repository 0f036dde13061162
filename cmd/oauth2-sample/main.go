package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/config"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/credstore"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/database"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/googleapi"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/nativeapp"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/transport"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// the credential store key of the single local user
const storeUserID = "default"

var errWrongAudience = errors.New("access token was issued to another client")

// Runs the installed application flow, then prints what tokeninfo and userinfo say about the credential.
// On a provider error the credential is revoked and forgotten and the sample exits 1.
func main() {
	loadDotenvFile()
	setUpLogger()

	conf, err := config.LoadConfig()
	if err != nil {
		fatal(err, "Invalid configuration")
	}
	applyLogLevel(conf.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secrets, err := loadSecrets(conf)
	if err != nil {
		fatal(err, "Could not load client secrets")
	}

	store, err := credstore.Open(conf.TokenStore, credstore.Options{
		Path:        conf.TokenStorePath,
		DatabaseURL: conf.DatabaseURL,
		Service:     "oauth2-sample",
	})
	if err != nil {
		fatal(err, "Could not open credential store")
	}

	// every request, token endpoint included, goes through the legacy interceptors
	httpClient := &http.Client{
		Transport: transport.NewSessionTransport(transport.NewMethodOverrideTransport(http.DefaultTransport)),
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	flow := &nativeapp.Flow{
		Secrets:    secrets,
		Endpoint:   oauth2.Endpoint{AuthURL: config.DefaultAuthURL, TokenURL: config.DefaultTokenURL},
		Scopes:     conf.Scopes,
		Receiver:   newReceiver(conf),
		Browser:    nativeapp.NewSystemBrowser(conf.Browser, os.Stdout),
		Store:      store,
		AccessType: conf.AccessType,
		UsePKCE:    conf.UsePKCE,
		HTTPClient: httpClient,
	}

	credential, err := flow.Authorize(ctx, storeUserID)
	if err != nil {
		var denied *nativeapp.AuthorizationDeniedError
		if errors.As(err, &denied) {
			fmt.Fprintln(os.Stderr, "Authorization was denied:", denied.Code)
		}
		fatal(err, "Authorization failed")
	}

	if err := run(ctx, conf, secrets, credential, store); err != nil {
		var apiErr *googleapi.APIError
		var providerErr *nativeapp.ProviderError
		if errors.As(err, &apiErr) || errors.As(err, &providerErr) || errors.Is(err, errWrongAudience) {
			log.WithError(err).Warn("The provider rejected the credential, revoking it")
			if forgetErr := flow.Forget(ctx, storeUserID, conf.RevokeURL, credential); forgetErr != nil {
				log.WithError(forgetErr).Warn("Could not forget the credential")
			}
		}
		fatal(err, "Sample failed")
	}
}

// run calls the OAuth2 API with the credential and stores a refreshed token afterwards
func run(ctx context.Context, conf *config.Config, secrets *nativeapp.ClientSecrets, credential *nativeapp.Credential, store credstore.Store) error {
	tokens := oauth2.ReuseTokenSource(credential.Token(), credential.TokenSource(ctx))
	service := googleapi.NewOAuth2Service(oauth2.NewClient(ctx, tokens), conf.APIBaseURL)

	token, err := tokens.Token()
	if err != nil {
		return fmt.Errorf("refresh credential: %w", err)
	}

	info, err := service.TokenInfo(ctx, token.AccessToken)
	if err != nil {
		return fmt.Errorf("tokeninfo: %w", err)
	}
	if info.Audience != secrets.ClientID {
		return fmt.Errorf("%w: %s", errWrongAudience, info.Audience)
	}
	fmt.Printf("Token info:\n  audience:   %s\n  scope:      %s\n  expires_in: %d\n", info.Audience, info.Scope, info.ExpiresIn)
	if info.Email != "" {
		fmt.Printf("  email:      %s\n", info.Email)
	}

	if claims, err := googleapi.DecodeAccessTokenClaims(token.AccessToken); err == nil {
		log.WithField("claims", claims).Debug("Access token is a JWT")
	}

	user, err := service.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("userinfo: %w", err)
	}
	fmt.Printf("User info:\n  id:    %s\n  name:  %s\n  email: %s\n", user.ID, user.Name, user.Email)

	if store != nil {
		latest, err := tokens.Token()
		if err == nil && latest.AccessToken != credential.AccessToken {
			if err := store.Save(ctx, storeUserID, latest); err != nil {
				log.WithError(err).Warn("Could not store the refreshed credential")
			}
		}
	}
	return nil
}

// loadSecrets prefers OAUTH_CLIENT_ID/OAUTH_CLIENT_SECRET over client_secrets.json;
// OAUTH_AUTH_URL and OAUTH_TOKEN_URL override the endpoints of either
func loadSecrets(conf *config.Config) (*nativeapp.ClientSecrets, error) {
	var secrets *nativeapp.ClientSecrets
	if conf.ClientID != "" && conf.ClientSecret != "" {
		secrets = &nativeapp.ClientSecrets{ClientID: conf.ClientID, ClientSecret: conf.ClientSecret}
		if err := secrets.Validate(); err != nil {
			return nil, err
		}
	} else {
		var err error
		if secrets, err = nativeapp.LoadClientSecrets(conf.ClientSecretsPath); err != nil {
			return nil, err
		}
	}

	if conf.AuthURL != "" {
		secrets.AuthURI = conf.AuthURL
	}
	if conf.TokenURL != "" {
		secrets.TokenURI = conf.TokenURL
	}
	return secrets, nil
}

func newReceiver(conf *config.Config) nativeapp.VerificationCodeReceiver {
	if conf.RedirectMode == config.RedirectModeManual {
		return &nativeapp.PromptReceiver{In: os.Stdin, Out: os.Stdout}
	}
	return nativeapp.NewLocalServerReceiver(
		nativeapp.WithHost(conf.CallbackHost),
		nativeapp.WithPort(conf.CallbackPort),
		nativeapp.WithCallbackPath(conf.CallbackPath),
		nativeapp.WithTimeout(conf.WaitTimeout),
	)
}

// fatal logs the error and exits 1
func fatal(err error, message string) {
	log.WithError(err).Error(message)
	os.Exit(1)
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", "production")))
}

// applyLogLevel hands the APP_ENV level, or the LOG_LEVEL override when set, to this program and its packages
func applyLogLevel(override string) {
	level, err := config.ResolveLogLevel(config.GetEnvWithDefault("APP_ENV", "production"), override)
	if err != nil {
		log.WithField("log_level", override).Warn("Ignoring invalid LOG_LEVEL")
		level = log.GetLevel()
	}
	log.SetLevel(level)
	config.SetLogLevel(level)
	credstore.SetLogLevel(level)
	database.SetLogLevel(level)
	nativeapp.SetLogLevel(level)
	transport.SetLogLevel(level)
}
