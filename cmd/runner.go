package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/api"
	"github.com/desertthunder/cinehint/internal/auth"
	"github.com/desertthunder/cinehint/internal/identity"
	"github.com/desertthunder/cinehint/internal/session"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/toggle"
	"github.com/desertthunder/cinehint/internal/wizard"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	opts       RunnerOpts
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader

	session  *session.Session
	api      *api.Client
	provider identity.Provider
	auth     *auth.Controller
	flow     *wizard.Flow
	updates  chan wizard.Transition

	// forceButton skips the cached-account confirmation so sign-in goes straight to the browser.
	forceButton bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      session.Store
	API        *api.Client
	Provider   identity.Provider
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore("")
	}

	r := &Runner{
		opts:       opts,
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		session:    session.New(opts.Store),
	}
	r.wire()
	return r
}

// wire builds the session-scoped components with the current logger.
func (r *Runner) wire() {
	if r.auth != nil {
		r.auth.Close()
	}

	r.api = r.opts.API
	if r.api == nil {
		r.api = api.NewClient(api.Options{
			BaseURL: r.config.API.BaseURL,
			Timeout: time.Duration(r.config.API.TimeoutSeconds) * time.Second,
			Tokens:  r.session,
			Logger:  r.logger,
		})
	}

	r.provider = r.opts.Provider
	if r.provider == nil {
		r.provider = r.newGoogle()
	}

	r.auth = auth.New(r.session, r.api, r.provider, auth.Options{
		ClientID: r.config.Google.ClientID,
		Logger:   r.logger,
	})
	r.updates = make(chan wizard.Transition, 16)
	r.flow = wizard.New(r.api, r.auth, wizard.Options{Logger: r.logger, Updates: r.updates})
	r.auth.OnSignOut(r.flow.StartOver)
}

func (r *Runner) newGoogle() *identity.Google {
	g := r.config.Google
	cachePath, err := shared.ExpandHome(g.TokenCache)
	if err != nil {
		r.logger.Warn("token cache path not usable, provider sessions will not be cached", "path", g.TokenCache, "error", err)
	}

	var cache identity.TokenCache
	if cachePath != "" {
		cache = identity.FileTokenCache{Path: cachePath}
	}

	return identity.NewGoogle(identity.GoogleOptions{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		DiscoveryURL: g.DiscoveryURL,
		RedirectHost: g.RedirectHost,
		RedirectPort: g.RedirectPort,
		Cache:        cache,
		Confirm:      r.confirm,
		Timeout:      5 * time.Minute,
		Logger:       r.logger,
	})
}

// SetLogger replaces the logger and rebuilds the components that captured the old one.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.wire()
}

// confirm asks on the terminal whether to continue as the cached provider account.
func (r *Runner) confirm(hint string) bool {
	if r.forceButton || r.input == nil {
		return false
	}
	if hint == "" {
		hint = "your saved Google account"
	}
	r.writePlain("Continue as %s? [Y/n] ", hint)

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}

// checkOptions bounds batch watchlist checks with the configured gallery limits.
func (r *Runner) checkOptions() toggle.CheckOptions {
	return toggle.CheckOptions{
		Limit:     r.config.Gallery.StatusCheckLimit,
		RateLimit: r.config.Gallery.StatusCheckRate,
	}
}

// requireAuth restores the stored session and fails when it is missing or expired.
func (r *Runner) requireAuth(ctx context.Context) error {
	if !r.auth.VerifyAuth(ctx) {
		return fmt.Errorf("%w: run 'cinehint auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, recommendCommand, moviesCommand, watchlistCommand, profileCommand,
		likedCommand, dislikedCommand, preferencesCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
