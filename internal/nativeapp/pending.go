package nativeapp

import (
	"crypto/subtle"
	"sync"
)

// PendingAuthorization correlates one in-flight authorization with the code or error
// carried by the redirect. It completes at most once: the first redirect wins and
// later ones are ignored.
type PendingAuthorization struct {
	RedirectURI string

	mu    sync.Mutex
	state string

	once sync.Once
	done chan struct{}

	code        string
	errCode     string
	description string
}

// NewPendingAuthorization creates an uncompleted PendingAuthorization.
func NewPendingAuthorization(redirectURI string) *PendingAuthorization {
	return &PendingAuthorization{
		RedirectURI: redirectURI,
		done:        make(chan struct{}),
	}
}

// ExpectState requires redirects to carry state. An empty state accepts any redirect.
func (p *PendingAuthorization) ExpectState(state string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// MatchesState reports whether a redirect carrying state belongs to this authorization.
func (p *PendingAuthorization) MatchesState(state string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == "" || subtle.ConstantTimeCompare([]byte(p.state), []byte(state)) == 1
}

// Complete records the redirect outcome. It reports false when an earlier redirect already completed it.
func (p *PendingAuthorization) Complete(code, errCode, description string) bool {
	completed := false
	p.once.Do(func() {
		p.code = code
		p.errCode = errCode
		p.description = description
		completed = true
		close(p.done)
	})
	return completed
}

// Done is closed once the authorization has completed.
func (p *PendingAuthorization) Done() <-chan struct{} {
	return p.done
}

// Result returns the received code, or an *AuthorizationDeniedError. Only valid after Done is closed.
func (p *PendingAuthorization) Result() (string, error) {
	if p.errCode != "" {
		return "", &AuthorizationDeniedError{Code: p.errCode, Description: p.description}
	}
	return p.code, nil
}
