package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/identity"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/session"
	"github.com/desertthunder/cinehint/internal/shared"
)

// State is a [Controller] lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StatePrompting
	StateButtonFallback
	StateSignedOut
	StateSignedIn
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StatePrompting:
		return "prompting"
	case StateButtonFallback:
		return "button_fallback"
	case StateSignedOut:
		return "signed_out"
	case StateSignedIn:
		return "signed_in"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Backend is the part of the API client the controller needs.
type Backend interface {
	GoogleAuth(ctx context.Context, credential string) (*models.AuthResponse, error)
	Profile(ctx context.Context) (*models.UserProfile, error)
}

// forgetter is implemented by providers that can drop their cached session.
type forgetter interface {
	Forget() error
}

// Options configures a [Controller].
type Options struct {
	ClientID string
	Logger   *log.Logger
}

// attempt settles exactly once.
type attempt struct {
	once sync.Once
	done chan struct{}
	user *models.UserProfile
	err  error
}

func newAttempt() *attempt { return &attempt{done: make(chan struct{})} }

func (a *attempt) resolve(user *models.UserProfile, err error) {
	a.once.Do(func() {
		a.user, a.err = user, err
		close(a.done)
	})
}

// Controller owns the sign-in lifecycle.
type Controller struct {
	session  *session.Session
	backend  Backend
	provider identity.Provider
	clientID string
	logger   *log.Logger

	lifetime context.Context
	stop     context.CancelFunc

	mu          sync.Mutex
	state       State
	authErr     error
	pending     *attempt
	initialized bool
	onSignOut   []func()
}

// New creates a controller. Call [Controller.Mount] before use and [Controller.Close] when done.
func New(sess *session.Session, backend Backend, provider identity.Provider, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	lifetime, stop := context.WithCancel(context.Background())
	return &Controller{
		session:  sess,
		backend:  backend,
		provider: provider,
		clientID: opts.ClientID,
		logger:   shared.WithLogger(logger, "component", "auth"),
		lifetime: lifetime,
		stop:     stop,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AuthError returns the last sign-in or session error, or nil.
func (c *Controller) AuthError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authErr
}

// User returns the signed-in user, or nil.
func (c *Controller) User() *models.UserProfile {
	return c.session.User()
}

// Authenticated reports whether a user is signed in.
func (c *Controller) Authenticated() bool {
	return c.session.Authenticated()
}

// OnSignOut registers fn to run after every explicit sign-out.
func (c *Controller) OnSignOut(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSignOut = append(c.onSignOut, fn)
}

// Mount loads and initializes the provider and restores a stored session.
//
// A provider failure is returned only when no stored session could be restored.
func (c *Controller) Mount(ctx context.Context) error {
	c.setState(StateInitializing, nil)

	providerErr := c.initProvider(ctx)
	if providerErr == nil {
		c.setState(StateReady, nil)
	} else {
		c.logger.Warn("identity provider unavailable", "error", providerErr)
	}

	var restoreErr error
	if c.session.HasToken(ctx) {
		user, err := c.backend.Profile(ctx)
		if err == nil {
			c.session.SetUser(user)
			c.setState(StateSignedIn, nil)
			c.logger.Info("session restored", "email", user.Email)
			return nil
		}
		c.logger.Warn("stored session rejected", "error", err)
		if err := c.session.Destroy(ctx); err != nil {
			c.logger.Error("failed to clear session", "error", err)
		}
		restoreErr = &AuthError{Reason: ReasonSessionExpired, Err: shared.ErrSessionExpired}
	}

	if providerErr != nil {
		authErr := &AuthError{Reason: ReasonProviderUnavailable, Err: providerErr}
		c.setState(StateError, authErr)
		return authErr
	}
	c.setState(StateSignedOut, restoreErr)
	return nil
}

func (c *Controller) initProvider(ctx context.Context) error {
	c.mu.Lock()
	done := c.initialized
	c.mu.Unlock()
	if done {
		return nil
	}
	if c.provider == nil {
		return shared.ErrProviderNotReady
	}

	if err := c.provider.Load(ctx); err != nil {
		return err
	}
	if err := c.provider.Initialize(identity.NewInitConfig(c.clientID, c.onCredential)); err != nil {
		return err
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// onCredential is the provider callback.
func (c *Controller) onCredential(resp identity.CredentialResponse) {
	if _, err := c.HandleCredentialResponse(c.lifetime, resp); err != nil {
		c.logger.Warn("sign-in failed", "error", err)
	}
}

// HandleCredentialResponse exchanges a provider credential for a backend session.
//
// On failure the session is left signed out and the error is recorded.
func (c *Controller) HandleCredentialResponse(ctx context.Context, resp identity.CredentialResponse) (*models.UserProfile, error) {
	credential := resp.Extract()
	if credential == "" {
		err := &AuthError{Reason: ReasonNoCredential, Err: shared.ErrNoCredential}
		c.settle(StateSignedOut, nil, err)
		return nil, err
	}

	authResp, err := c.backend.GoogleAuth(ctx, credential)
	if err != nil {
		authErr := &AuthError{Reason: ReasonExchangeFailed, Err: err}
		c.settle(StateSignedOut, nil, authErr)
		return nil, authErr
	}

	if err := c.session.Establish(ctx, authResp.Token, authResp.User); err != nil {
		authErr := &AuthError{Reason: ReasonExchangeFailed, Err: err}
		c.settle(StateSignedOut, nil, authErr)
		return nil, authErr
	}

	user := c.session.User()
	c.settle(StateSignedIn, user, nil)
	c.logger.Info("signed in", "email", user.Email, "via", resp.SelectBy)
	return user, nil
}

// SignIn runs the provider prompt and, when it is not shown or is skipped, the explicit button flow.
func (c *Controller) SignIn(ctx context.Context) (*models.UserProfile, error) {
	if err := c.initProvider(ctx); err != nil {
		authErr := &AuthError{Reason: ReasonProviderUnavailable, Err: err}
		c.setState(StateError, authErr)
		return nil, authErr
	}

	c.mu.Lock()
	switch c.state {
	case StateSignedIn:
		c.mu.Unlock()
		return c.session.User(), nil
	case StatePrompting, StateButtonFallback:
		c.mu.Unlock()
		return nil, shared.ErrBusy
	}
	a := newAttempt()
	c.pending = a
	c.state = StatePrompting
	c.authErr = nil
	c.mu.Unlock()

	notes := make(chan identity.Notification, 4)
	c.provider.Prompt(ctx, func(n identity.Notification) {
		select {
		case notes <- n:
		default:
		}
	})

	for {
		select {
		case <-a.done:
			return a.user, a.err

		case n := <-notes:
			c.logger.Debug("prompt notification", "moment", n.Moment, "reason", n.Reason)
			switch {
			case n.NeedsFallback():
				return c.fallback(ctx, a)
			case n.Moment == identity.MomentDismissed && n.Reason != identity.ReasonCredentialReturned:
				c.settleAttempt(a, StateSignedOut, nil, shared.ErrSignInDeclined)
				return nil, shared.ErrSignInDeclined
			}

		case <-ctx.Done():
			c.provider.Cancel()
			c.settleAttempt(a, StateSignedOut, nil, ctx.Err())
			return nil, ctx.Err()
		}
	}
}

func (c *Controller) fallback(ctx context.Context, a *attempt) (*models.UserProfile, error) {
	c.mu.Lock()
	if c.pending == a {
		c.state = StateButtonFallback
	}
	c.mu.Unlock()

	err := c.provider.RenderButton(ctx)

	select {
	case <-a.done:
		return a.user, a.err
	default:
	}

	switch {
	case ctx.Err() != nil:
		c.settleAttempt(a, StateSignedOut, nil, ctx.Err())
		return nil, ctx.Err()
	case err != nil:
		authErr := &AuthError{Reason: ReasonFlowFailed, Err: err}
		c.settleAttempt(a, StateSignedOut, nil, authErr)
		return nil, authErr
	default:
		authErr := &AuthError{Reason: ReasonNoCredential, Err: shared.ErrNoCredential}
		c.settleAttempt(a, StateSignedOut, nil, authErr)
		return nil, authErr
	}
}

// VerifyAuth re-fetches the profile to check the stored token.
//
// A false return means the session has been cleared and the pending action must be abandoned.
func (c *Controller) VerifyAuth(ctx context.Context) bool {
	if !c.session.HasToken(ctx) {
		c.expire(ctx, nil)
		return false
	}

	user, err := c.backend.Profile(ctx)
	if err != nil {
		c.expire(ctx, err)
		return false
	}

	c.session.SetUser(user)
	c.setState(StateSignedIn, nil)
	return true
}

func (c *Controller) expire(ctx context.Context, cause error) {
	if cause != nil {
		c.logger.Warn("session verification failed", "error", cause)
	}
	if err := c.session.Destroy(ctx); err != nil {
		c.logger.Error("failed to clear session", "error", err)
	}
	c.setState(StateSignedOut, &AuthError{Reason: ReasonSessionExpired, Err: shared.ErrSessionExpired})
}

// SignOut clears the session and the provider's cached account, then runs the sign-out hooks.
func (c *Controller) SignOut(ctx context.Context) error {
	if c.provider != nil {
		c.provider.Cancel()
	}

	var errs []error
	if err := c.session.Destroy(ctx); err != nil {
		errs = append(errs, err)
	}
	if f, ok := c.provider.(forgetter); ok {
		if err := f.Forget(); err != nil {
			errs = append(errs, err)
		}
	}

	c.mu.Lock()
	if c.pending != nil {
		c.pending.resolve(nil, shared.ErrNotAuthenticated)
		c.pending = nil
	}
	c.state = StateSignedOut
	c.authErr = nil
	hooks := append([]func(){}, c.onSignOut...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	c.logger.Info("signed out")
	return errors.Join(errs...)
}

// Close cancels any outstanding prompt so no callback fires afterwards.
func (c *Controller) Close() {
	if c.provider != nil {
		c.provider.Cancel()
	}
	c.stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.resolve(nil, context.Canceled)
		c.pending = nil
	}
}

func (c *Controller) setState(s State, authErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.authErr = authErr
}

// settle records the outcome of a credential exchange and resolves the pending attempt, if any.
func (c *Controller) settle(s State, user *models.UserProfile, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.authErr = err
	if c.pending != nil {
		c.pending.resolve(user, err)
		c.pending = nil
	}
}

// settleAttempt resolves a only if it is still the pending attempt.
func (c *Controller) settleAttempt(a *attempt, s State, user *models.UserProfile, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != a {
		return
	}
	c.state = s
	if !errors.Is(err, shared.ErrSignInDeclined) && !errors.Is(err, context.Canceled) {
		c.authErr = err
	}
	a.resolve(user, err)
	c.pending = nil
}
