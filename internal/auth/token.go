package auth

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/gin-gonic/gin"
)

// HandleToken handles the token endpoint for the authorization code and refresh token grants
// @Summary Token Endpoint
// @Description Exchange an authorization code, or refresh an access token. Client credentials travel in the form body.
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: authorization_code or refresh_token"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param code formData string false "Authorization code (required for authorization_code grant)"
// @Param redirect_uri formData string false "Redirect URI used in the authorization request (required for authorization_code grant)"
// @Param code_verifier formData string false "PKCE verifier"
// @Param refresh_token formData string false "Refresh token (required for refresh_token grant)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	// go-oauth2 writes both the token and the RFC 6749 error JSON itself
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).Error("Token request failed")
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, models.NewOAuth2Error(models.ErrServerError, err.Error()))
		}
	}
}

// HandleRevoke handles the revocation endpoint
// @Summary Revocation Endpoint
// @Description Revoke an access or refresh token, removing the whole grant (RFC 7009)
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Access or refresh token"
// @Success 200 "Token revoked, or already unknown"
// @Failure 400 {object} models.OAuth2Error
// @Router /oauth/revoke [post]
func (o *OAuthService) HandleRevoke(c *gin.Context) {
	token := c.PostForm("token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "missing token parameter"))
		return
	}

	if err := o.RevokeToken(c, token); err != nil {
		if errors.Is(err, ErrUnknownToken) {
			// RFC 7009 treats an unknown or already revoked token as revoked
			log.Debug("Revocation of unknown token")
			c.Status(http.StatusOK)
			return
		}
		log.WithError(err).Error("Token revocation failed")
		c.JSON(http.StatusInternalServerError, models.NewOAuth2Error(models.ErrServerError, "revocation failed"))
		return
	}

	c.Status(http.StatusOK)
}
