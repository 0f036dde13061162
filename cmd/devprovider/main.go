package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/franciscosanchezn/gin-oauth-samples/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-oauth-samples/internal/auth"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/config"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/controllers"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/database"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/middleware"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db               *gorm.DB
	configuration    *config.ProviderConfig
	oauthService     *auth.OAuthService
	oauthController  *controllers.OAuthController
	clientController *controllers.ClientController
)

// @title Development OAuth 2.0 Provider
// @version 1.0
// @description A local OAuth 2.0 provider for installed applications, with Google-compatible tokeninfo and userinfo
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()
	applyLogLevel(configuration.LogLevel)

	// Initialize database connection
	setupDatabase(configuration)

	// The development user every approved authorization is issued to
	userService := services.NewUserService(db)
	devUser, err := userService.EnsureUser(configuration.DevUserEmail, configuration.DevUserName)
	checkFatalErr(err, "Failed to create development user")

	// Initialize services and controllers
	oauthService = auth.NewOAuthService(db, auth.Options{
		JWTSecret:      configuration.JWTSecret,
		AccessTokenTTL: configuration.AccessTokenTTL,
		AutoApprove:    configuration.AutoApprove,
		DevUserID:      devUser.ID,
	})
	oauthController = controllers.NewOAuthController(oauthService, userService)
	clientController = controllers.NewClientController(services.NewClientService(db),
		fmt.Sprintf("http://%s:%d", configuration.Host, configuration.Port))

	router := setupRouter()

	log.WithFields(log.Fields{
		"dev_user":     devUser.Email,
		"auto_approve": configuration.AutoApprove,
	}).Infof("Starting development provider on %s:%d", configuration.Host, configuration.Port)
	if err := router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)); err != nil {
		checkFatalErr(err, "Server stopped")
	}
}

// checkFatalErr logs the error and exits when it is set
func checkFatalErr(err error, message string) {
	if err != nil {
		log.WithError(err).Error(message)
		os.Exit(1)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", "development")))
}

// applyLogLevel hands the APP_ENV level, or the LOG_LEVEL override when set, to this program and its packages
func applyLogLevel(override string) {
	level, err := config.ResolveLogLevel(config.GetEnvWithDefault("APP_ENV", "development"), override)
	if err != nil {
		log.WithField("log_level", override).Warn("Ignoring invalid LOG_LEVEL")
		level = log.GetLevel()
	}
	log.SetLevel(level)
	config.SetLogLevel(level)
	auth.SetLogLevel(level)
	controllers.SetLogLevel(level)
	database.SetLogLevel(level)
}

// loadConfig loads the provider configuration from environment variables
func loadConfig() *config.ProviderConfig {
	conf, err := config.LoadProviderConfig()
	checkFatalErr(err, "Invalid provider configuration")
	return conf
}

// setupDatabase initializes the database connection and migrates the provider schema
func setupDatabase(conf *config.ProviderConfig) {
	var err error
	db, err = database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		Path:     conf.DBPath,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
	})
	checkFatalErr(err, "Failed to connect to database")

	checkFatalErr(auth.Migrate(db), "Failed to migrate database")
}

// setupRouter initializes the Gin router and sets up the routes
func setupRouter() *gin.Engine {
	router := gin.Default()
	setupRoutes(router)
	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	bearer := middleware.OAuth2Auth([]byte(configuration.JWTSecret), oauthService)

	// Authorization server endpoints
	oauth := router.Group("/oauth")
	{
		oauth.GET("/authorize", oauthService.HandleAuthorize)
		oauth.POST("/authorize", oauthService.HandleAuthorize)
		oauth.POST("/token", oauthService.HandleToken)
		oauth.POST("/revoke", oauthService.HandleRevoke)
	}

	// Google-compatible OAuth2 v2 API
	oauth2API := router.Group("/oauth2/v2")
	{
		oauth2API.GET("/tokeninfo", oauthController.TokenInfo)
		oauth2API.POST("/tokeninfo", oauthController.TokenInfo)
		oauth2API.GET("/userinfo", bearer, oauthController.UserInfo)
	}

	// Client management, requires a token with the clients scope
	clientsAPI := router.Group("/api/v1/clients")
	clientsAPI.Use(bearer, middleware.RequireScope("clients"))
	{
		clientsAPI.POST("", clientController.CreateClient)
		clientsAPI.GET("", clientController.ListClients)
		clientsAPI.DELETE("/:id", clientController.DeleteClient)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-oauth-samples-devprovider",
	})
}
