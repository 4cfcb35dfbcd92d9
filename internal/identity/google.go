package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/server"
	"github.com/desertthunder/cinehint/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultDiscoveryURL is Google's OpenID Connect discovery document.
const DefaultDiscoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

// Discovery is the subset of the OpenID discovery document the client uses.
type Discovery struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
}

// GoogleOptions configures [Google].
type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	DiscoveryURL string
	RedirectHost string
	RedirectPort int
	Cache        TokenCache
	HTTPClient   *http.Client
	// Confirm asks the user whether to continue as the cached account. Nil means no one can be
	// asked, and the prompt is skipped.
	Confirm func(hint string) bool
	Open    func(url string) error
	Timeout time.Duration
	Logger  *log.Logger
}

// Google is the [Provider] for Google Sign-In.
type Google struct {
	opts   GoogleOptions
	loader *Loader
	logger *log.Logger

	mu        sync.Mutex
	discovery *Discovery
	init      *InitConfig
	oauth     *oauth2.Config
	cancel    context.CancelFunc
	gen       uint64
}

// NewGoogle creates a provider. Nothing is fetched until [Google.Load].
func NewGoogle(opts GoogleOptions) *Google {
	if opts.DiscoveryURL == "" {
		opts.DiscoveryURL = DefaultDiscoveryURL
	}
	if opts.RedirectHost == "" {
		opts.RedirectHost = "127.0.0.1"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	g := &Google{opts: opts, logger: shared.WithLogger(logger, "component", "identity")}
	g.loader = NewLoader(g.fetchDiscovery)
	return g
}

// Load fetches the discovery document once per provider.
func (g *Google) Load(ctx context.Context) error {
	return g.loader.Load(ctx)
}

func (g *Google) fetchDiscovery(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.opts.DiscoveryURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: discovery request failed: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: discovery returned HTTP %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	var d Discovery
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if d.AuthorizationEndpoint == "" || d.TokenEndpoint == "" {
		return fmt.Errorf("%w: discovery document missing endpoints", shared.ErrServiceUnavailable)
	}

	g.mu.Lock()
	g.discovery = &d
	g.mu.Unlock()
	g.logger.Debug("loaded discovery document", "issuer", d.Issuer)
	return nil
}

// Initialize registers the client id and callback. Requires a successful [Google.Load].
func (g *Google) Initialize(cfg InitConfig) error {
	if cfg.ClientID == "" {
		return fmt.Errorf("%w: google client id", shared.ErrMissingCredentials)
	}
	if cfg.Callback == nil {
		return fmt.Errorf("%w: credential callback", shared.ErrMissingArgument)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.discovery == nil {
		return shared.ErrProviderNotReady
	}

	g.init = &cfg
	g.oauth = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: g.opts.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  g.discovery.AuthorizationEndpoint,
			TokenURL: g.discovery.TokenEndpoint,
		},
		Scopes: []string{"openid", "email", "profile"},
	}
	return nil
}

// Prompt attempts a silent sign-in from the cached provider session.
func (g *Google) Prompt(ctx context.Context, notify func(Notification)) {
	opCtx, gen := g.begin(ctx)
	if notify == nil {
		notify = func(Notification) {}
	}

	go func() {
		defer g.end(gen)

		n, resp := g.prompt(opCtx)
		if opCtx.Err() != nil {
			return
		}
		notify(n)
		if resp == nil {
			return
		}
		g.deliver(opCtx, *resp)
		if opCtx.Err() == nil {
			notify(Notification{Moment: MomentDismissed, Reason: ReasonCredentialReturned})
		}
	}()
}

func (g *Google) prompt(ctx context.Context) (Notification, *CredentialResponse) {
	g.mu.Lock()
	cfg, oauthCfg := g.init, g.oauth
	g.mu.Unlock()

	if cfg == nil {
		return Notification{Moment: MomentNotDisplayed, Reason: ReasonMissingClientID}, nil
	}
	if g.opts.Cache == nil {
		return Notification{Moment: MomentNotDisplayed, Reason: ReasonNoSession}, nil
	}

	cached, err := g.opts.Cache.Load()
	if err != nil {
		g.logger.Warn("failed to read provider session", "error", err)
	}
	if cached == nil {
		return Notification{Moment: MomentNotDisplayed, Reason: ReasonNoSession}, nil
	}

	if !cfg.AutoSelect {
		if g.opts.Confirm == nil {
			return Notification{Moment: MomentSkipped, Reason: ReasonAutoCancel}, nil
		}
		if !g.opts.Confirm(cached.Hint()) {
			return Notification{Moment: MomentSkipped, Reason: ReasonUserCancel}, nil
		}
	}

	src := oauthCfg.TokenSource(g.clientContext(ctx), &oauth2.Token{RefreshToken: cached.Token.RefreshToken})
	token, err := src.Token()
	if err != nil && ctx.Err() != nil {
		return Notification{Moment: MomentSkipped, Reason: ReasonAutoCancel}, nil
	}
	if err != nil {
		g.logger.Warn("cached provider session rejected", "error", err)
		if clearErr := g.opts.Cache.Clear(); clearErr != nil {
			g.logger.Warn("failed to clear provider session", "error", clearErr)
		}
		return Notification{Moment: MomentSkipped, Reason: ReasonIssuingFailed}, nil
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return Notification{Moment: MomentSkipped, Reason: ReasonIssuingFailed}, nil
	}
	if token.RefreshToken == "" {
		token.RefreshToken = cached.Token.RefreshToken
	}
	g.save(token, idToken)

	return Notification{Moment: MomentDisplayed}, &CredentialResponse{Credential: idToken, SelectBy: "auto"}
}

// RenderButton runs the loopback authorization code flow in the system browser.
func (g *Google) RenderButton(ctx context.Context) error {
	g.mu.Lock()
	oauthCfg := g.oauth
	g.mu.Unlock()
	if oauthCfg == nil {
		return shared.ErrProviderNotReady
	}

	opCtx, gen := g.begin(ctx)
	defer g.end(gen)

	ln, err := net.Listen("tcp", net.JoinHostPort(g.opts.RedirectHost, strconv.Itoa(g.opts.RedirectPort)))
	if err != nil {
		return fmt.Errorf("failed to start callback listener: %w", err)
	}

	flowCfg := *oauthCfg
	flowCfg.RedirectURL = "http://" + ln.Addr().String() + server.CallbackPath

	state, err := shared.GenerateState()
	if err != nil {
		ln.Close()
		return err
	}
	verifier := oauth2.GenerateVerifier()
	authURL := flowCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	token, err := server.RunLoopback(opCtx, server.LoopbackConfig{
		Listener: ln,
		AuthURL:  authURL,
		Handler:  server.NewCallbackHandler(&flowCfg, state, verifier),
		Open:     g.opts.Open,
		Timeout:  g.opts.Timeout,
		Logger:   g.logger,
	})
	if err != nil {
		return err
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return fmt.Errorf("%w: provider returned no id token", shared.ErrNoCredential)
	}
	g.save(token, idToken)

	if opCtx.Err() != nil {
		return opCtx.Err()
	}
	g.deliver(opCtx, CredentialResponse{Credential: idToken, SelectBy: "btn"})
	return nil
}

// Cancel stops any outstanding prompt or button flow.
func (g *Google) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Forget drops the cached provider session so the next prompt cannot sign in silently.
func (g *Google) Forget() error {
	if g.opts.Cache == nil {
		return nil
	}
	return g.opts.Cache.Clear()
}

// begin cancels any operation in progress and starts a new one.
func (g *Google) begin(ctx context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	opCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.gen++
	return opCtx, g.gen
}

func (g *Google) end(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen == gen && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *Google) deliver(ctx context.Context, resp CredentialResponse) {
	g.mu.Lock()
	cfg := g.init
	g.mu.Unlock()
	if cfg == nil || ctx.Err() != nil {
		return
	}
	cfg.Callback(resp)
}

func (g *Google) save(token *oauth2.Token, idToken string) {
	if g.opts.Cache == nil {
		return
	}
	if err := g.opts.Cache.Save(&CachedSession{Token: token, IDToken: idToken}); err != nil {
		g.logger.Warn("failed to cache provider session", "error", err)
	}
}

func (g *Google) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.opts.HTTPClient)
}
