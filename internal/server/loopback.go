package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultLoopbackTimeout bounds how long [RunLoopback] waits for the browser.
const DefaultLoopbackTimeout = 2 * time.Minute

// LoopbackConfig describes one browser authorization round trip.
type LoopbackConfig struct {
	// Listener accepts the callback. When nil, Addr is listened on.
	Listener net.Listener
	Addr     string
	AuthURL  string
	Handler  *CallbackHandler
	Open     func(url string) error
	Timeout  time.Duration
	Logger   *log.Logger
}

// RunLoopback serves the callback handler, opens the browser and waits for the authorization result.
func RunLoopback(ctx context.Context, cfg LoopbackConfig) (*oauth2.Token, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLoopbackTimeout
	}
	open := cfg.Open
	if open == nil {
		open = shared.OpenBrowser
	}

	ln := cfg.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", cfg.Addr); err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
		}
	}

	router := NewBasicRouter()
	router.Use(LogRequests(logger))
	router.Handler(cfg.Handler)
	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("starting sign-in callback server at %v", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down server", "error", err)
		}
	}()

	if err := open(cfg.AuthURL); err != nil {
		logger.Warnf("failed to open browser automatically %v", err)
		logger.Infof("open this URL in your browser to sign in: %s", cfg.AuthURL)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result OAuthResult
	select {
	case result = <-cfg.Handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: sign-in timed out after %v", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
