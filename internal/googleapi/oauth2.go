// Package googleapi is a small hand-written client for the Google OAuth2 v2 API used by the sample.
package googleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is the answer of GET /oauth2/v2/tokeninfo
type TokenInfo struct {
	IssuedTo      string `json:"issued_to,omitempty"`
	Audience      string `json:"audience"`
	UserID        string `json:"user_id,omitempty"`
	Scope         string `json:"scope"`
	ExpiresIn     int64  `json:"expires_in"`
	Email         string `json:"email,omitempty"`
	VerifiedEmail bool   `json:"verified_email,omitempty"`
	AccessType    string `json:"access_type,omitempty"`
}

// UserInfo is the answer of GET /oauth2/v2/userinfo
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	VerifiedEmail bool   `json:"verified_email,omitempty"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// APIError is a non-2xx answer of the API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Code)
}

// OAuth2Service calls the OAuth2 API with an authorized client
type OAuth2Service struct {
	client  *http.Client
	baseURL string
}

// NewOAuth2Service uses client for every request; it should carry the credential
func NewOAuth2Service(client *http.Client, baseURL string) *OAuth2Service {
	return &OAuth2Service{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// TokenInfo validates accessToken and describes it
func (s *OAuth2Service) TokenInfo(ctx context.Context, accessToken string) (*TokenInfo, error) {
	query := url.Values{}
	query.Set("access_token", accessToken)

	var info TokenInfo
	if err := s.get(ctx, "/oauth2/v2/tokeninfo?"+query.Encode(), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UserInfo returns the profile of the user that granted the credential
func (s *OAuth2Service) UserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := s.get(ctx, "/oauth2/v2/userinfo", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *OAuth2Service) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseAPIError accepts the Google {"error":{"code","message","status"}} shape and the OAuth
// {"error","error_description"} shape, falling back to the raw body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var payload struct {
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		var code string
		if err := json.Unmarshal(payload.Error, &code); err == nil {
			apiErr.Code = code
			apiErr.Message = payload.ErrorDescription
			return apiErr
		}

		var googleErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		}
		if err := json.Unmarshal(payload.Error, &googleErr); err == nil {
			apiErr.Code = googleErr.Status
			apiErr.Message = googleErr.Message
			if apiErr.Code == "" {
				apiErr.Code = http.StatusText(statusCode)
			}
			return apiErr
		}
	}

	apiErr.Code = http.StatusText(statusCode)
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// DecodeAccessTokenClaims returns the claims of a JWT access token without verifying the signature.
// Opaque (non-JWT) tokens return an error.
func DecodeAccessTokenClaims(accessToken string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("access token is not a JWT: %w", err)
	}
	return claims, nil
}
