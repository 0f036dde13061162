package nativeapp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the package logger with the application level.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// VerificationCodeReceiver obtains the authorization code that the provider hands back to the user.
type VerificationCodeReceiver interface {
	// Start prepares the receiver and returns the redirect URI to put in the authorization request.
	Start() (string, error)
	// WaitForCode blocks until the code arrives, the user denies access, or ctx ends.
	WaitForCode(ctx context.Context) (string, error)
	// Stop releases any resources. It is safe to call more than once.
	Stop() error
}

// DefaultCallbackPath is the path of the local redirect endpoint.
const DefaultCallbackPath = "/Callback"

const landingPage = `<html>
<head><title>OAuth 2.0 Authentication Token Received</title></head>
<body>
Received verification code. Closing...
<script type='text/javascript'>
window.setTimeout(function() {
    window.open('', '_self', ''); window.close(); }, 1000);
if (window.opener) { window.opener.checkToken(); }
</script>
</body>
</html>
`

// LocalServerReceiver captures the redirect on a short-lived loopback HTTP listener.
type LocalServerReceiver struct {
	// Host is the loopback host name to bind and to advertise, "localhost" by default.
	Host string
	// Port to bind, 0 picks a free one.
	Port int
	// CallbackPath is the redirect endpoint path.
	CallbackPath string
	// Timeout bounds WaitForCode, zero waits until ctx ends.
	Timeout time.Duration

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	served   chan struct{}
	pending  *PendingAuthorization
	stopped  chan struct{}
}

// ReceiverOption configures a LocalServerReceiver
type ReceiverOption func(*LocalServerReceiver)

// WithHost sets the host to bind
func WithHost(host string) ReceiverOption {
	return func(r *LocalServerReceiver) { r.Host = host }
}

// WithPort sets a fixed port
func WithPort(port int) ReceiverOption {
	return func(r *LocalServerReceiver) { r.Port = port }
}

// WithCallbackPath sets the redirect endpoint path
func WithCallbackPath(path string) ReceiverOption {
	return func(r *LocalServerReceiver) { r.CallbackPath = path }
}

// WithTimeout bounds how long WaitForCode blocks
func WithTimeout(timeout time.Duration) ReceiverOption {
	return func(r *LocalServerReceiver) { r.Timeout = timeout }
}

// NewLocalServerReceiver creates a receiver on localhost with an ephemeral port.
func NewLocalServerReceiver(options ...ReceiverOption) *LocalServerReceiver {
	r := &LocalServerReceiver{
		Host:         "localhost",
		CallbackPath: DefaultCallbackPath,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Start binds the listener, starts serving and returns http://<host>:<port><path>.
func (r *LocalServerReceiver) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server != nil {
		return r.pending.RedirectURI, nil
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(r.Host, strconv.Itoa(r.Port)))
	if err != nil {
		return "", fmt.Errorf("bind callback listener: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	redirectURI := "http://" + net.JoinHostPort(r.Host, strconv.Itoa(port)) + r.CallbackPath

	r.pending = NewPendingAuthorization(redirectURI)
	r.stopped = make(chan struct{})
	r.served = make(chan struct{})
	r.listener = listener
	r.server = &http.Server{
		Handler:           r.router(r.pending),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func(server *http.Server, served chan struct{}) {
		defer close(served)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Callback listener stopped unexpectedly")
		}
	}(r.server, r.served)

	log.WithField("redirect_uri", redirectURI).Debug("Callback listener started")
	return redirectURI, nil
}

func (r *LocalServerReceiver) router(pending *PendingAuthorization) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(r.CallbackPath, func(c *gin.Context) {
		code := c.Query("code")
		errCode := c.Query("error")
		if code == "" && errCode == "" {
			c.String(http.StatusBadRequest, "missing code or error parameter")
			return
		}

		if !pending.MatchesState(c.Query("state")) {
			log.Warn("Rejecting redirect with unexpected state")
			c.String(http.StatusBadRequest, "state mismatch")
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPage))

		if !pending.Complete(code, errCode, c.Query("error_description")) {
			log.Warn("Ignoring repeated redirect, authorization already received")
			return
		}
		if errCode != "" {
			log.WithField("error", errCode).Warn("Authorization denied")
		} else {
			log.Debug("Authorization code received")
		}
	})
	return router
}

// ExpectState makes the running receiver reject redirects whose state differs.
func (r *LocalServerReceiver) ExpectState(state string) {
	r.mu.Lock()
	pending := r.pending
	r.mu.Unlock()
	if pending != nil {
		pending.ExpectState(state)
	}
}

// WaitForCode blocks until the redirect arrives, the timeout elapses, ctx ends or Stop is called.
func (r *LocalServerReceiver) WaitForCode(ctx context.Context) (string, error) {
	r.mu.Lock()
	pending, stopped := r.pending, r.stopped
	r.mu.Unlock()
	if pending == nil {
		return "", ErrReceiverNotStarted
	}

	var timeout <-chan time.Time
	if r.Timeout > 0 {
		timer := time.NewTimer(r.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-pending.Done():
		return pending.Result()
	case <-timeout:
		return "", ErrWaitTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	case <-stopped:
		// a redirect may have completed just before Stop
		select {
		case <-pending.Done():
			return pending.Result()
		default:
			return "", ErrReceiverStopped
		}
	}
}

// Stop shuts the listener down and releases the port. Calling it again is a no-op.
func (r *LocalServerReceiver) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := r.server.Shutdown(ctx)
	// Serve may not have taken the listener yet, so Shutdown alone can leave the port bound
	if closeErr := r.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) && err == nil {
		err = closeErr
	}
	<-r.served
	close(r.stopped)
	r.server = nil
	r.listener = nil
	if err != nil {
		return fmt.Errorf("stop callback listener: %w", err)
	}
	log.Debug("Callback listener stopped")
	return nil
}
