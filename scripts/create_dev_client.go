package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/auth"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/config"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/controllers"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/database"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Registers an installed client with the development provider and writes a client_secrets.json
// the sample can use as is:
//
//	go run scripts/create_dev_client.go -out client_secrets.json
func main() {
	name := flag.String("name", "OAuth2 sample", "Client name shown on the consent page")
	out := flag.String("out", "client_secrets.json", "Where to write the client secrets file")
	baseURL := flag.String("base-url", "", "Provider base URL, defaults to http://APP_HOST:APP_PORT")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	conf, err := config.LoadProviderConfig()
	if err != nil {
		log.WithError(err).Fatal("Invalid provider configuration")
	}
	if *baseURL == "" {
		*baseURL = fmt.Sprintf("http://%s:%d", conf.Host, conf.Port)
	}

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		Path:     conf.DBPath,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := auth.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	user, err := services.NewUserService(db).EnsureUser(conf.DevUserEmail, conf.DevUserName)
	if err != nil {
		log.WithError(err).Fatal("Failed to get development user")
	}

	client, secret, err := services.NewClientService(db).RegisterInstalledClient(*name, user.ID)
	if err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	data, err := json.MarshalIndent(controllers.NewInstalledClientSecrets(*baseURL, client.ID, secret), "", "  ")
	if err != nil {
		log.WithError(err).Fatal("Failed to encode client secrets")
	}
	if err := os.WriteFile(*out, append(data, '\n'), 0o600); err != nil {
		log.WithError(err).Fatal("Failed to write client secrets")
	}

	fmt.Printf("✓ Installed client created for %s\n", user.Email)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client secrets written to %s\n", *out)
	fmt.Println("\nRun the sample against the development provider:")
	fmt.Printf("OAUTH_CLIENT_SECRETS=%s OAUTH_REVOKE_URL=%s/oauth/revoke API_BASE_URL=%s go run ./cmd/oauth2-sample\n", *out, *baseURL, *baseURL)
}
