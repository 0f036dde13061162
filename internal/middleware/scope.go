package middleware

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireScope is a middleware that checks the access token was granted at least one of the scopes.
// Scopes match on their full value or their last URL/dot segment, so "email" is satisfied by
// "https://www.googleapis.com/auth/userinfo.email".
func RequireScope(anyOf ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user info from context (set by OAuth2Auth middleware)
		if _, exists := c.Get("userID"); !exists {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required", "User not authenticated")
			return
		}

		granted := c.GetString("scopes")
		for _, want := range anyOf {
			if HasScope(granted, want) {
				c.Next()
				return
			}
		}

		c.Header("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(anyOf, " ")+`"`)
		c.JSON(http.StatusForbidden, gin.H{
			"error":             models.ErrInsufficientScope,
			"error_description": "Request requires one of the scopes: " + strings.Join(anyOf, ", "),
			"granted_scope":     granted,
		})
		c.Abort()
	}
}

// HasScope reports whether a space separated scope list contains want
func HasScope(scopes, want string) bool {
	for _, scope := range strings.Fields(scopes) {
		if scope == want || strings.HasSuffix(scope, "."+want) || strings.HasSuffix(scope, "/"+want) {
			return true
		}
	}
	return false
}
