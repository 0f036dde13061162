// Package transport holds the http.RoundTripper interceptors some legacy Google APIs need.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

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

// SessionIDParam is the session affinity query parameter of the GData APIs.
const SessionIDParam = "gsessionid"

// SessionTransport handles the gsessionid redirect protocol: a 302 whose Location carries a
// gsessionid is replayed once against that Location, and the id is added to every later request.
// See http://code.google.com/apis/calendar/faq.html#redirect_handling.
type SessionTransport struct {
	Base http.RoundTripper

	mu        sync.RWMutex
	sessionID string
}

// NewSessionTransport wraps base, http.DefaultTransport when nil.
func NewSessionTransport(base http.RoundTripper) *SessionTransport {
	return &SessionTransport{Base: base}
}

// SessionID returns the id recorded from the last session redirect.
func (t *SessionTransport) SessionID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionID
}

// Reset forgets the recorded session id.
func (t *SessionTransport) Reset() {
	t.mu.Lock()
	t.sessionID = ""
	t.mu.Unlock()
}

func (t *SessionTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *SessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(t.withSession(req, t.SessionID()))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusFound {
		return resp, nil
	}

	location, err := resp.Location()
	if err != nil {
		return resp, nil
	}
	sessionID := location.Query().Get(SessionIDParam)
	if sessionID == "" {
		return resp, nil
	}

	retry, err := rewind(req)
	if err != nil {
		return resp, nil
	}
	// force the redirected connection to close before replaying
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	t.mu.Lock()
	t.sessionID = sessionID
	t.mu.Unlock()
	log.WithField("host", location.Host).Debug("Following gsessionid redirect")

	retry.URL = location
	retry.Host = ""
	return t.base().RoundTrip(retry)
}

// withSession clones req with the gsessionid query parameter set, leaving req untouched.
func (t *SessionTransport) withSession(req *http.Request, sessionID string) *http.Request {
	if sessionID == "" {
		return req
	}
	clone := req.Clone(req.Context())
	query := clone.URL.Query()
	query.Set(SessionIDParam, sessionID)
	clone.URL.RawQuery = query.Encode()
	return clone
}

// rewind clones req with a fresh body so it can be sent again.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("replay request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}
