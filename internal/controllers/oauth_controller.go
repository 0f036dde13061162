package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/middleware"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
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

// OAuthController serves the Google-compatible OAuth2 v2 API of the development provider
type OAuthController struct {
	tokens middleware.AccessTokenLoader
	users  services.UserService
}

func NewOAuthController(tokens middleware.AccessTokenLoader, users services.UserService) *OAuthController {
	return &OAuthController{tokens: tokens, users: users}
}

// tokenInfoResponse mirrors GET https://www.googleapis.com/oauth2/v2/tokeninfo
type tokenInfoResponse struct {
	IssuedTo      string `json:"issued_to"`
	Audience      string `json:"audience"`
	UserID        string `json:"user_id,omitempty"`
	Scope         string `json:"scope"`
	ExpiresIn     int64  `json:"expires_in"`
	Email         string `json:"email,omitempty"`
	VerifiedEmail bool   `json:"verified_email,omitempty"`
	AccessType    string `json:"access_type"`
}

// userInfoResponse mirrors GET https://www.googleapis.com/oauth2/v2/userinfo
type userInfoResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	VerifiedEmail bool   `json:"verified_email,omitempty"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// TokenInfo godoc
// @Summary Describe an access token
// @Description Validate an access token and return the client it was issued to, its scopes and remaining lifetime
// @Tags OAuth2 API
// @Produce json
// @Param access_token query string true "Access token"
// @Success 200 {object} tokenInfoResponse
// @Failure 400 {object} models.OAuth2Error
// @Router /oauth2/v2/tokeninfo [get]
func (oc *OAuthController) TokenInfo(c *gin.Context) {
	accessToken := c.Query("access_token")
	if accessToken == "" {
		accessToken = c.PostForm("access_token")
	}
	if accessToken == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "missing access_token parameter"))
		return
	}

	info, err := oc.tokens.LoadAccessToken(c, accessToken)
	if err != nil {
		log.WithError(err).Debug("Token info requested for an invalid token")
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidToken, "Invalid Value"))
		return
	}

	expiresIn := time.Until(info.GetAccessCreateAt().Add(info.GetAccessExpiresIn()))
	response := tokenInfoResponse{
		IssuedTo:   info.GetClientID(),
		Audience:   info.GetClientID(),
		UserID:     info.GetUserID(),
		Scope:      info.GetScope(),
		ExpiresIn:  int64(expiresIn.Seconds()),
		AccessType: "online",
	}
	if info.GetRefresh() != "" {
		response.AccessType = "offline"
	}

	if middleware.HasScope(info.GetScope(), "email") {
		if user, err := oc.lookupUser(info.GetUserID()); err == nil {
			response.Email = user.Email
			response.VerifiedEmail = user.VerifiedEmail
		}
	}

	c.JSON(http.StatusOK, response)
}

// UserInfo godoc
// @Summary Get the authorizing user's profile
// @Description Return the profile of the user who granted the bearer token. Email fields need the email scope, name fields the profile scope.
// @Tags OAuth2 API
// @Produce json
// @Success 200 {object} userInfoResponse
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /oauth2/v2/userinfo [get]
func (oc *OAuthController) UserInfo(c *gin.Context) {
	user, err := oc.users.GetUserByID(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidToken, "token subject no longer exists"))
		return
	}

	scopes := c.GetString("scopes")
	response := userInfoResponse{ID: strconv.FormatUint(uint64(user.ID), 10)}
	if middleware.HasScope(scopes, "email") {
		response.Email = user.Email
		response.VerifiedEmail = user.VerifiedEmail
	}
	if middleware.HasScope(scopes, "profile") {
		response.Name = user.Name
		response.GivenName = user.GivenName()
		response.FamilyName = user.FamilyName()
		response.Picture = user.Picture
		response.Locale = user.Locale
	}

	c.JSON(http.StatusOK, response)
}

func (oc *OAuthController) lookupUser(userID string) (*models.User, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(userID), 10, 32)
	if err != nil {
		return nil, err
	}
	return oc.users.GetUserByID(uint(id))
}
