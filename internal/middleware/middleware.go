package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenLoader reports whether an access token is still live in the token store
type AccessTokenLoader interface {
	LoadAccessToken(ctx context.Context, access string) (oauth2.TokenInfo, error)
}

// OAuth2Auth middleware that handles OAuth2 JWT access tokens
// This middleware validates JWT tokens and extracts user information from claims
// following RFC 6750 (Bearer usage) and RFC 7519 (JWT). When tokens is not nil a
// signature-valid JWT must also still be in the store, so revoked tokens are refused.
func OAuth2Auth(jwtSecret []byte, tokens AccessTokenLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			return
		}

		// Parse and validate the JWT token
		claims, err := ParseAccessToken(tokenString, jwtSecret)
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}

		if tokens != nil {
			if _, err := tokens.LoadAccessToken(c, tokenString); err != nil {
				respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "Token expired or revoked")
				return
			}
		}

		// Extract and validate required claims, setting context
		if err := extractAndSetClaims(c, claims); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}
		c.Set("accessToken", tokenString)

		c.Next()
	}
}

// BearerToken extracts the RFC 6750 bearer token from the Authorization header, aborting the request when absent or malformed
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
			"Missing Authorization header. A valid Bearer token is required.")
		return "", false
	}

	// Validate Bearer scheme format
	if !strings.HasPrefix(authHeader, "Bearer ") {
		respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_request",
			"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
		return "", false
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "Bearer token is empty")
		return "", false
	}
	return tokenString, true
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q`, errorCode))
	}
	c.JSON(status, gin.H{
		"error":             errorCode,
		"error_description": description,
	})
	c.Abort()
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC so the alg header cannot pick the verification method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}

	return claims, nil
}

// ParseAccessToken parses the JWT and checks its exp, nbf and iat claims
func ParseAccessToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token missing required 'exp' claim")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("token not yet valid")
	}

	// tokens issued in the future point at clock skew or forgery
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now.Add(time.Minute)) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractAndSetClaims sets userID, clientID and scopes in the Gin context
func extractAndSetClaims(c *gin.Context, claims jwt.MapClaims) error {
	userID, err := extractUserID(claims)
	if err != nil {
		return err
	}
	c.Set("userID", userID)

	clientID, err := extractAudience(claims)
	if err != nil {
		return err
	}
	c.Set("clientID", clientID)

	if scope, ok := claims["scope"].(string); ok && scope != "" {
		c.Set("scopes", scope)
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		c.Set("email", email)
	}

	return nil
}

// extractUserID reads the resource owner id from the sub claim
func extractUserID(claims jwt.MapClaims) (uint, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("token missing required 'sub' claim. This token is not valid for this API")
	}

	parsedID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid sub claim format: must be a numeric string, got: %s", sub)
	}
	if parsedID == 0 {
		return 0, fmt.Errorf("invalid user identifier: cannot be zero")
	}
	return uint(parsedID), nil
}

// extractAudience reads the client id the token was issued to
func extractAudience(claims jwt.MapClaims) (string, error) {
	aud, err := claims.GetAudience()
	if err != nil || len(aud) == 0 || aud[0] == "" {
		return "", fmt.Errorf("token missing required 'aud' claim")
	}
	return aud[0], nil
}
