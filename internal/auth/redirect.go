package auth

import (
	"net"
	"net/url"
	"strings"

	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
)

// OOBRedirectURI asks for the code to be displayed instead of redirected
const OOBRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

// ValidateRedirectURI accepts the out-of-band URI and, for clients registered on a loopback
// domain, any port on the same loopback host (RFC 8252 §7.3). Other redirects must match
// the client's domain host.
func ValidateRedirectURI(baseURI, redirectURI string) error {
	if redirectURI == OOBRedirectURI {
		return nil
	}

	base, err := url.Parse(baseURI)
	if err != nil {
		return oauth2errors.ErrInvalidRedirectURI
	}
	redirect, err := url.Parse(redirectURI)
	if err != nil {
		return oauth2errors.ErrInvalidRedirectURI
	}

	if isLoopback(base.Hostname()) {
		if redirect.Scheme != "http" || !isLoopback(redirect.Hostname()) {
			return oauth2errors.ErrInvalidRedirectURI
		}
		if base.Port() != "" && base.Port() != redirect.Port() {
			return oauth2errors.ErrInvalidRedirectURI
		}
		return nil
	}

	return manage.DefaultValidateURI(baseURI, redirectURI)
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
