package nativeapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrEmptyCode is returned when there is no authorization code to exchange.
var ErrEmptyCode = errors.New("empty authorization code")

// ExchangeOptions are the optional parameters of the token request.
type ExchangeOptions struct {
	// CodeVerifier must match the verifier used to build the authorization URL when PKCE is on.
	CodeVerifier string
	// HTTPClient overrides http.DefaultClient for the token request.
	HTTPClient *http.Client
}

// Exchange trades the authorization code for a Credential with a single POST to the token endpoint.
// Failures are either a *ProviderError (the provider answered with an error) or a *TransportError.
func Exchange(ctx context.Context, req AuthorizationRequest, code string, opts ExchangeOptions) (*Credential, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}

	config := req.oauthConfig()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	var params []oauth2.AuthCodeOption
	if opts.CodeVerifier != "" {
		params = append(params, oauth2.VerifierOption(opts.CodeVerifier))
	}

	log.WithField("token_url", config.Endpoint.TokenURL).Debug("Exchanging authorization code for token")
	token, err := config.Exchange(ctx, code, params...)
	if err != nil {
		classified := classifyTokenError("token exchange", err)
		log.WithError(classified).Error("Token exchange failed")
		return nil, classified
	}

	log.WithFields(logrus.Fields{
		"token_type":  token.Type(),
		"has_refresh": token.RefreshToken != "",
		"has_expiry":  !token.Expiry.IsZero(),
	}).Info("Authorization code exchanged")
	return newCredential(token, config), nil
}

func classifyTokenError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return &TransportError{Op: op, Err: err}
	}

	providerErr := &ProviderError{
		Code:        retrieveErr.ErrorCode,
		Description: retrieveErr.ErrorDescription,
		URI:         retrieveErr.ErrorURI,
	}
	if retrieveErr.Response != nil {
		providerErr.StatusCode = retrieveErr.Response.StatusCode
	}
	if providerErr.Code == "" {
		fillProviderError(providerErr, retrieveErr.Body)
	}
	return providerErr
}

// fillProviderError reads an RFC 6749 error body, falling back to the status text for non-JSON bodies.
func fillProviderError(providerErr *ProviderError, body []byte) {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorURI         string `json:"error_uri"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		providerErr.Code = payload.Error
		providerErr.Description = payload.ErrorDescription
		providerErr.URI = payload.ErrorURI
		return
	}
	providerErr.Code = strings.ToLower(strings.ReplaceAll(http.StatusText(providerErr.StatusCode), " ", "_"))
	if text := strings.TrimSpace(string(body)); text != "" {
		providerErr.Description = text
	}
}

// Revoke invalidates a token at the provider's revocation endpoint (RFC 7009).
func Revoke(ctx context.Context, httpClient *http.Client, revokeURL, token string) error {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	form := url.Values{}
	form.Set("token", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &TransportError{Op: "revoke", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "revoke", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		providerErr := &ProviderError{StatusCode: resp.StatusCode}
		fillProviderError(providerErr, body)
		return providerErr
	}

	log.Info("Token revoked")
	return nil
}
