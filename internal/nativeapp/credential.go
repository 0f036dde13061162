package nativeapp

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Credential is the access/refresh token pair obtained by the flow. It is passed explicitly to
// every caller that needs authorized requests.
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	// IDToken is set when the provider returned an OpenID Connect id_token.
	IDToken string

	config *oauth2.Config
}

func newCredential(token *oauth2.Token, config *oauth2.Config) *Credential {
	credential := &Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
		Expiry:       token.Expiry,
		config:       config,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		credential.IDToken = idToken
	}
	return credential
}

// Token converts the credential back into an oauth2.Token for storage.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// Expired reports whether the access token is past its expiry. A zero expiry never expires.
func (c *Credential) Expired() bool {
	return !c.Expiry.IsZero() && time.Now().After(c.Expiry)
}

// TokenSource returns a source that refreshes the access token through the originating client.
func (c *Credential) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.config == nil || c.RefreshToken == "" {
		return oauth2.StaticTokenSource(c.Token())
	}
	return c.config.TokenSource(ctx, c.Token())
}

// Client returns an HTTP client that authorizes every request with the credential.
// Pass a base client through ctx with oauth2.HTTPClient to customize the transport.
func (c *Credential) Client(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c.TokenSource(ctx))
}
