package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/middleware"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issuer is the iss claim of every access token
const Issuer = "gin-oauth-samples-devprovider"

// CustomJWTAccessGenerate generates JWT access tokens carrying the resource owner's id and email
type CustomJWTAccessGenerate struct {
	SignedKey    []byte
	SignedMethod jwt.SigningMethod
	DB           *gorm.DB // Database connection to fetch user information
}

// NewCustomJWTAccessGenerate creates a new custom JWT access token generator
func NewCustomJWTAccessGenerate(key []byte, method jwt.SigningMethod, db *gorm.DB) *CustomJWTAccessGenerate {
	return &CustomJWTAccessGenerate{
		SignedKey:    key,
		SignedMethod: method,
		DB:           db,
	}
}

// Token is called by the manager for code exchanges and refreshes
func (g *CustomJWTAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	userID := data.UserID
	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token: no user ID available")
	}

	user, err := g.getUser(ctx, userID)
	if err != nil {
		return "", "", err
	}

	issuedAt := data.TokenInfo.GetAccessCreateAt()
	claims := jwt.MapClaims{
		"iss": Issuer,
		"sub": userID,
		"aud": data.Client.GetID(),
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(data.TokenInfo.GetAccessExpiresIn()).Unix(),
		"jti": uuid.New().String(),
	}
	scope := data.TokenInfo.GetScope()
	if scope != "" {
		claims["scope"] = scope
	}
	if middleware.HasScope(scope, "email") {
		claims["email"] = user.Email
	}

	access, err := jwt.NewWithClaims(g.SignedMethod, claims).SignedString(g.SignedKey)
	if err != nil {
		return "", "", err
	}

	// Refresh tokens are opaque, they are only ever looked up in the token store
	refresh := ""
	if isGenRefresh {
		sum := sha256.Sum256([]byte(uuid.New().String() + access))
		refresh = "1//" + base64.RawURLEncoding.EncodeToString(sum[:])
	}

	return access, refresh, nil
}

func (g *CustomJWTAccessGenerate) getUser(ctx context.Context, userIDStr string) (*models.User, error) {
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	if err := g.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d not found", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
