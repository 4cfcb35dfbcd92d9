package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/api"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/preferences"
	"github.com/desertthunder/cinehint/internal/shared"
)

// API is the remote surface the flow uses.
type API interface {
	PopularMovies(ctx context.Context, genres string) ([]models.Movie, error)
	UpdatePreferences(ctx context.Context, prefs models.Preferences) error
	Recommend(ctx context.Context, req models.RecommendationRequest) (*models.Recommendation, error)
	SubmitFeedback(ctx context.Context, fb models.Feedback) error
}

// Verifier checks the session before authenticated actions.
type Verifier interface {
	VerifyAuth(ctx context.Context) bool
	Authenticated() bool
}

// Failure is what the error step shows.
type Failure struct {
	Message        string
	RateLimited    bool
	ResetTime      time.Time
	HoursRemaining int
}

// View is a copy of the flow's state for rendering.
type View struct {
	Step           Step
	Preferences    models.Preferences
	Popular        []models.Movie
	Recommendation *models.Recommendation
	Failure        *Failure
	SelectedMovie  int
	Loading        bool
	SessionExpired bool
}

// Options configures a [Flow].
type Options struct {
	Logger  *log.Logger
	Updates chan<- Transition
	Now     func() time.Time
}

// Flow is the wizard state machine. Its mutex is never held across a remote call.
type Flow struct {
	api     API
	auth    Verifier
	draft   *preferences.Draft
	logger  *log.Logger
	updates chan<- Transition
	now     func() time.Time

	mu               sync.Mutex
	step             Step
	popular          []models.Movie
	rec              *models.Recommendation
	failure          *Failure
	selected         int
	origin           Step
	loading          bool
	expired          bool
	feedbackInFlight bool
}

// New creates a flow at the welcome step with an empty draft.
func New(remote API, auth Verifier, opts Options) *Flow {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Flow{
		api:     remote,
		auth:    auth,
		draft:   preferences.NewDraft(),
		logger:  shared.WithLogger(logger, "component", "wizard"),
		updates: opts.Updates,
		now:     now,
		step:    StepWelcome,
		origin:  StepDealBreakers,
	}
}

// Draft returns the flow's preference draft.
func (f *Flow) Draft() *preferences.Draft { return f.draft }

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Snapshot returns a copy of the current state.
func (f *Flow) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		Step:           f.step,
		Preferences:    f.draft.Snapshot(),
		Popular:        append([]models.Movie(nil), f.popular...),
		SelectedMovie:  f.selected,
		Loading:        f.loading,
		SessionExpired: f.expired,
	}
	if f.rec != nil {
		rec := *f.rec
		v.Recommendation = &rec
	}
	if f.failure != nil {
		failure := *f.failure
		v.Failure = &failure
	}
	return v
}

// CanContinue reports whether Next would advance from the current step.
func (f *Flow) CanContinue() bool {
	switch f.Step() {
	case StepWelcome, StepGenres, StepMovies, StepDealBreakers:
		return true
	case StepContext:
		return f.draft.CanContinueContext()
	default:
		return false
	}
}

// Next advances the forward path of the wizard.
func (f *Flow) Next(ctx context.Context) error {
	switch step := f.Step(); step {
	case StepWelcome:
		f.moveFrom(step, StepGenres, TriggerNext)
		return nil

	case StepGenres:
		if err := f.loadPopular(ctx); err != nil {
			return err
		}
		f.moveFrom(step, StepMovies, TriggerNext)
		return nil

	case StepMovies:
		f.persistPreferences(ctx)
		f.moveFrom(step, StepContext, TriggerNext)
		return nil

	case StepContext:
		if !f.draft.CanContinueContext() {
			return fmt.Errorf("%w: choose a social context and at least one mood", shared.ErrStepBlocked)
		}
		f.moveFrom(step, StepDealBreakers, TriggerNext)
		return nil

	case StepDealBreakers:
		return f.requestRecommendation(ctx, step, false, TriggerNext)

	default:
		return fmt.Errorf("%w: next from %s", shared.ErrNoTransition, step)
	}
}

// loadPopular fetches the seed movies for the selected genres. Only a lost session is fatal.
func (f *Flow) loadPopular(ctx context.Context) error {
	query := f.draft.GenreQuery()

	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()

	movies, err := f.api.PopularMovies(ctx, query)

	f.mu.Lock()
	f.loading = false
	if err == nil {
		f.popular = movies
	}
	f.mu.Unlock()

	if err == nil {
		return nil
	}
	f.logger.Warn("failed to load popular movies", "genres", query, "error", err)
	if api.IsUnauthorized(err) && !f.auth.VerifyAuth(ctx) {
		f.expire()
		return shared.ErrSessionExpired
	}

	f.mu.Lock()
	f.popular = nil
	f.mu.Unlock()
	return nil
}

func (f *Flow) persistPreferences(ctx context.Context) {
	if err := f.api.UpdatePreferences(ctx, f.draft.Snapshot()); err != nil {
		f.logger.Warn("failed to save preferences", "step", StepMovies, "error", err)
	}
}

// requestRecommendation verifies the session, then requests a recommendation through the processing step.
func (f *Flow) requestRecommendation(ctx context.Context, origin Step, alternative bool, trigger Trigger) error {
	f.mu.Lock()
	f.origin = origin
	f.failure = nil
	f.mu.Unlock()
	f.move(StepProcessing, trigger)

	if !f.auth.VerifyAuth(ctx) {
		f.expire()
		return shared.ErrSessionExpired
	}

	rec, err := f.api.Recommend(ctx, f.draft.RecommendationRequest(alternative))
	if err == nil {
		f.mu.Lock()
		f.rec = rec
		f.mu.Unlock()
		f.move(StepRecommendation, TriggerRecommended)
		f.logger.Info("recommendation received", "tmdbId", rec.Key(), "title", rec.Title, "alternative", alternative)
		return nil
	}

	if api.IsUnauthorized(err) {
		if !f.auth.VerifyAuth(ctx) {
			f.expire()
			return shared.ErrSessionExpired
		}
		f.move(origin, TriggerUnauthorized)
		return err
	}

	failure := f.failureFor(err)
	f.mu.Lock()
	f.failure = failure
	f.mu.Unlock()
	f.move(StepError, TriggerFailed)
	f.logger.Warn("recommendation failed", "alternative", alternative, "rateLimited", failure.RateLimited, "error", err)
	return err
}

func (f *Flow) failureFor(err error) *Failure {
	var rl *api.RateLimitError
	if !errors.As(err, &rl) {
		return &Failure{Message: err.Error()}
	}

	hours := rl.HoursRemaining(f.now())
	msg := "Daily recommendation limit reached. Please try again later."
	switch {
	case hours == 1:
		msg = "Daily recommendation limit reached. Come back in 1 hour."
	case hours > 1:
		msg = fmt.Sprintf("Daily recommendation limit reached. Come back in %d hours.", hours)
	}
	return &Failure{Message: msg, RateLimited: true, ResetTime: rl.ResetTime, HoursRemaining: hours}
}

// NotForMe rejects the current recommendation and replaces it with an alternative.
func (f *Flow) NotForMe(ctx context.Context) error {
	if step := f.Step(); step != StepRecommendation {
		return fmt.Errorf("%w: not for me from %s", shared.ErrNoTransition, step)
	}
	if _, err := f.SubmitFeedback(ctx, false); err != nil {
		switch {
		case errors.Is(err, shared.ErrSessionExpired):
			return err
		case !errors.Is(err, shared.ErrNoTransition):
			f.logger.Warn("negative feedback not recorded", "error", err)
		}
	}
	return f.requestRecommendation(ctx, StepRecommendation, true, TriggerNotForMe)
}

// Perfect accepts the current recommendation. Repeated calls submit nothing.
func (f *Flow) Perfect(ctx context.Context) error {
	_, err := f.SubmitFeedback(ctx, true)
	return err
}

// SubmitFeedback sends feedback for the current recommendation once and reports whether a call was made.
func (f *Flow) SubmitFeedback(ctx context.Context, accepted bool) (bool, error) {
	f.mu.Lock()
	rec := f.rec
	if rec == nil {
		f.mu.Unlock()
		return false, fmt.Errorf("%w: no recommendation", shared.ErrNoTransition)
	}
	if rec.FeedbackGiven || f.feedbackInFlight {
		f.mu.Unlock()
		return false, nil
	}
	f.feedbackInFlight = true
	ref := rec.Ref()
	f.mu.Unlock()

	err := f.api.SubmitFeedback(ctx, models.FeedbackFor(ref, accepted))

	f.mu.Lock()
	f.feedbackInFlight = false
	if err == nil && f.rec == rec {
		rec.FeedbackGiven = true
	}
	f.mu.Unlock()

	if err != nil {
		if api.IsUnauthorized(err) && !f.auth.VerifyAuth(ctx) {
			f.expire()
			return true, shared.ErrSessionExpired
		}
		return true, err
	}
	return true, nil
}

// FeedbackForMovie submits feedback from a details screen. Feedback for the current recommendation
// goes through its once-only guard.
func (f *Flow) FeedbackForMovie(ctx context.Context, movie models.Movie, accepted bool) (bool, error) {
	f.mu.Lock()
	current := f.rec != nil && f.rec.Key() == movie.Key()
	f.mu.Unlock()
	if current {
		return f.SubmitFeedback(ctx, accepted)
	}

	if !f.auth.Authenticated() {
		return false, shared.ErrNotAuthenticated
	}
	return true, f.api.SubmitFeedback(ctx, models.FeedbackFor(movie.Ref(), accepted))
}

// Retry re-issues the recommendation request from the error step.
func (f *Flow) Retry(ctx context.Context) error {
	f.mu.Lock()
	step, origin := f.step, f.origin
	f.mu.Unlock()
	if step != StepError {
		return fmt.Errorf("%w: retry from %s", shared.ErrNoTransition, step)
	}
	if origin == StepRecommendation {
		origin = StepDealBreakers
	}
	return f.requestRecommendation(ctx, origin, false, TriggerRetry)
}

// StartOver empties the draft and returns to welcome.
func (f *Flow) StartOver() {
	f.draft.Reset()
	f.mu.Lock()
	f.popular = nil
	f.rec = nil
	f.failure = nil
	f.selected = 0
	f.expired = false
	f.mu.Unlock()
	f.move(StepWelcome, TriggerStartOver)
}

// Navigate opens a side screen. The user must be signed in.
func (f *Flow) Navigate(to Step) error {
	if !to.IsScreen() {
		return fmt.Errorf("%w: %s is not a screen", shared.ErrInvalidArgument, to)
	}
	if !f.auth.Authenticated() {
		return shared.ErrNotAuthenticated
	}
	f.move(to, TriggerNavigate)
	return nil
}

// ShowMovie opens the details screen for tmdbID.
func (f *Flow) ShowMovie(tmdbID int) error {
	if tmdbID <= 0 {
		return fmt.Errorf("%w: movie id %d", shared.ErrInvalidArgument, tmdbID)
	}
	if !f.auth.Authenticated() {
		return shared.ErrNotAuthenticated
	}
	f.mu.Lock()
	f.selected = tmdbID
	f.mu.Unlock()
	f.move(StepMovieDetails, TriggerShowMovie)
	return nil
}

// Back leaves the details screen for the gallery and the side screens for welcome.
func (f *Flow) Back() error {
	switch step := f.Step(); {
	case step == StepMovieDetails:
		f.mu.Lock()
		f.selected = 0
		f.mu.Unlock()
		f.moveFrom(step, StepGallery, TriggerBack)
	case step.IsScreen():
		f.moveFrom(step, StepWelcome, TriggerBack)
	default:
		return fmt.Errorf("%w: back from %s", shared.ErrNoTransition, step)
	}
	return nil
}

func (f *Flow) expire() {
	f.mu.Lock()
	f.expired = true
	f.loading = false
	f.mu.Unlock()
	f.move(StepWelcome, TriggerExpired)
}

// moveFrom changes step only if the flow is still at from.
func (f *Flow) moveFrom(from, to Step, trigger Trigger) {
	f.mu.Lock()
	if f.step != from {
		f.mu.Unlock()
		return
	}
	f.step = to
	f.mu.Unlock()
	f.publish(Transition{From: from, To: to, Trigger: trigger})
}

func (f *Flow) move(to Step, trigger Trigger) {
	f.mu.Lock()
	from := f.step
	f.step = to
	if to != StepWelcome {
		f.expired = false
	}
	f.mu.Unlock()
	f.publish(Transition{From: from, To: to, Trigger: trigger})
}

func (f *Flow) publish(t Transition) {
	f.logger.Debug("transition", "from", t.From, "to", t.To, "trigger", t.Trigger)
	if f.updates == nil {
		return
	}
	select {
	case f.updates <- t:
	default:
	}
}
