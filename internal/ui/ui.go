package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/library"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/preferences"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/toggle"
	"github.com/desertthunder/cinehint/internal/wizard"
)

// DefaultPageSize is the number of gallery movies loaded per screen.
const DefaultPageSize = 20

// Session is the sign-in surface the TUI drives.
type Session interface {
	SignIn(ctx context.Context) (*models.UserProfile, error)
	SignOut(ctx context.Context) error
	User() *models.UserProfile
	Authenticated() bool
}

// Backend is the remote surface used by the side screens.
type Backend interface {
	library.ProfileAPI
	toggle.WatchlistAPI
	toggle.RatingsAPI
	Gallery(ctx context.Context, page, limit int) ([]models.Movie, error)
	MovieDetails(ctx context.Context, tmdbID int) (*models.Movie, error)
}

// Options configures a [Model].
type Options struct {
	Updates  <-chan wizard.Transition
	Logger   *log.Logger
	PageSize int
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	flow     *wizard.Flow
	session  Session
	backend  Backend
	logger   *log.Logger
	updates  <-chan wizard.Transition
	pageSize int

	width  int
	height int
	step   wizard.Step
	list   list.Model

	movie     *models.Movie
	profile   *library.Profile
	watchlist *toggle.Movies
	liked     *toggle.Movies
	disliked  *toggle.Movies

	busy      bool
	status    string
	statusErr bool

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model over flow.
func NewModel(ctx context.Context, flow *wizard.Flow, sess Session, backend Backend, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.accent

	m := &Model{
		ctx:      ctx,
		flow:     flow,
		session:  sess,
		backend:  backend,
		logger:   shared.WithLogger(logger, "component", "ui"),
		updates:  opts.Updates,
		pageSize: pageSize,
		step:     flow.Step(),
		spinner:  s,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.newCollections()
	m.setList("", nil)
	return m
}

// Init starts the spinner and the transition listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForTransition(), m.enter(m.step))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.listSize())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTransition:
		return m, tea.Batch(m.sync(), m.waitForTransition())

	case MsgActionDone:
		m.busy = false
		if err := errOf(msg); err != nil {
			m.fail(err)
		}
		return m, m.sync()

	case MsgSignedIn:
		m.busy = false
		d := msg.data.(signInData)
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.notify(fmt.Sprintf("Signed in as %s", displayName(d.user)))
		return m, nil

	case MsgSignedOut:
		m.busy = false
		if err := errOf(msg); err != nil {
			m.fail(err)
		} else {
			m.notify("Signed out")
		}
		return m, m.sync()

	case MsgGalleryLoaded:
		d := msg.data.(galleryData)
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.setList(fmt.Sprintf("Gallery (%d)", len(d.movies)), movieItems(d.movies, m.savedMark))
		return m, nil

	case MsgWatchlistLoaded:
		d := msg.data.(watchlistData)
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.watchlist.Seed(d.refs)
		m.setList(fmt.Sprintf("Watchlist (%d)", len(d.refs)), refItems(d.refs, "watchlist"))
		return m, nil

	case MsgProfileLoaded:
		d := msg.data.(profileData)
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.profile = d.profile
		m.watchlist.Seed(d.profile.Watchlist)
		m.liked.Seed(d.profile.Liked)
		m.disliked.Seed(d.profile.Disliked)
		items := append(refItems(d.profile.Liked, m.liked.Name()), refItems(d.profile.Disliked, m.disliked.Name())...)
		m.setList("Rated movies", items)
		return m, nil

	case MsgMovieLoaded:
		d := msg.data.(movieData)
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.movie = d.movie
		return m, nil

	case MsgToggled:
		d := msg.data.(toggleData)
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		if d.member {
			m.notify(fmt.Sprintf("Added %s to %s", d.title, d.collection))
		} else {
			m.notify(fmt.Sprintf("Removed %s from %s", d.title, d.collection))
		}
		switch m.step {
		case wizard.StepProfile:
			return m, m.loadProfile()
		case wizard.StepWatchlist:
			return m, m.loadWatchlist()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.list.FilterState() == list.Filtering {
		return m.updateList(msg)
	}
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.step {
	case wizard.StepWelcome:
		return m.handleWelcomeKeys(msg)
	case wizard.StepGenres, wizard.StepContext, wizard.StepDealBreakers:
		return m.handleOptionKeys(msg)
	case wizard.StepMovies:
		return m.handleMovieKeys(msg)
	case wizard.StepRecommendation:
		return m.handleRecommendationKeys(msg)
	case wizard.StepError:
		return m.handleErrorKeys(msg)
	case wizard.StepGallery, wizard.StepWatchlist, wizard.StepProfile:
		return m.handleScreenKeys(msg)
	case wizard.StepMovieDetails:
		return m.handleDetailsKeys(msg)
	}
	return m, nil
}

func (m *Model) handleWelcomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if !m.session.Authenticated() {
			return m, m.signIn()
		}
		return m, m.run(m.flow.Next)
	case key.Matches(msg, m.keys.signIn):
		if m.session.Authenticated() {
			return m, nil
		}
		return m, m.signIn()
	case key.Matches(msg, m.keys.signOut):
		if !m.session.Authenticated() {
			return m, nil
		}
		return m, m.signOut()
	case key.Matches(msg, m.keys.gallery):
		return m, m.navigate(wizard.StepGallery)
	case key.Matches(msg, m.keys.profile):
		return m, m.navigate(wizard.StepProfile)
	case key.Matches(msg, m.keys.watchlist):
		return m, m.navigate(wizard.StepWatchlist)
	}
	return m, nil
}

func (m *Model) handleOptionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.toggle):
		if it, ok := m.list.SelectedItem().(optionItem); ok {
			m.toggleOption(it)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if !m.flow.CanContinue() {
			m.fail(errors.New(m.missingPick()))
			return m, nil
		}
		return m, m.run(m.flow.Next)
	case key.Matches(msg, m.keys.restart):
		return m, m.startOver()
	}
	return m.updateList(msg)
}

// missingPick names what the context step still needs.
func (m *Model) missingPick() string {
	d := m.flow.Draft()
	if _, ok := d.SocialContext(); !ok {
		return "pick who you are watching with first"
	}
	return "pick at least one mood first"
}

func (m *Model) toggleOption(it optionItem) {
	d := m.flow.Draft()
	switch it.kind {
	case preferences.KindGenre:
		d.ToggleGenre(it.option.ID)
	case preferences.KindMood:
		d.ToggleMood(it.option.ID)
	case preferences.KindContext:
		d.ToggleSocialContext(it.option.ID)
	case preferences.KindDealBreaker:
		d.ToggleDealBreaker(it.option.ID)
	}
}

func (m *Model) handleMovieKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.like), key.Matches(msg, m.keys.dislike):
		it, ok := m.list.SelectedItem().(movieItem)
		if !ok {
			return m, nil
		}
		liked := key.Matches(msg, m.keys.like)
		d := m.flow.Draft()
		id := it.movie.Key()
		if (liked && d.IsLiked(id)) || (!liked && d.IsDisliked(id)) {
			d.Unrate(id)
		} else {
			d.Rate(it.movie.Ref(), liked)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.run(m.flow.Next)
	case key.Matches(msg, m.keys.restart):
		return m, m.startOver()
	}
	return m.updateList(msg)
}

func (m *Model) handleRecommendationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rec := m.flow.Snapshot().Recommendation
	switch {
	case key.Matches(msg, m.keys.perfect):
		return m, m.run(m.flow.Perfect)
	case key.Matches(msg, m.keys.notForMe):
		return m, m.run(m.flow.NotForMe)
	case key.Matches(msg, m.keys.save):
		if rec == nil {
			return m, nil
		}
		return m, m.toggleRef(m.watchlist, rec.Ref())
	case key.Matches(msg, m.keys.restart):
		return m, m.startOver()
	}
	return m, nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		return m, m.run(m.flow.Retry)
	case key.Matches(msg, m.keys.restart):
		return m, m.startOver()
	}
	return m, nil
}

func (m *Model) handleScreenKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.back()
	case key.Matches(msg, m.keys.enter):
		if id := m.selectedID(); id != 0 {
			if err := m.flow.ShowMovie(id); err != nil {
				m.fail(err)
				return m, nil
			}
			return m, m.sync()
		}
		return m, nil
	case key.Matches(msg, m.keys.save):
		if ref, ok := m.selectedRef(); ok && m.step != wizard.StepProfile {
			return m, m.toggleRef(m.watchlist, ref)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		return m, m.removeSelected()
	case key.Matches(msg, m.keys.move):
		it, ok := m.list.SelectedItem().(refItem)
		if !ok || m.step != wizard.StepProfile {
			return m, nil
		}
		from, to := m.liked, m.disliked
		if it.section == m.disliked.Name() {
			from, to = m.disliked, m.liked
		}
		return m, m.moveRef(from, to, it.ref)
	}
	return m.updateList(msg)
}

func (m *Model) removeSelected() tea.Cmd {
	it, ok := m.list.SelectedItem().(refItem)
	if !ok {
		return nil
	}
	c := m.watchlist
	switch it.section {
	case m.liked.Name():
		c = m.liked
	case m.disliked.Name():
		c = m.disliked
	}
	return func() tea.Msg {
		err := c.Remove(m.ctx, it.ref)
		return toggledMsg(c.Name(), it.ref.Title, false, err)
	}
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.back()
	case key.Matches(msg, m.keys.save):
		if m.movie == nil {
			return m, nil
		}
		return m, m.toggleRef(m.watchlist, m.movie.Ref())
	case key.Matches(msg, m.keys.like), key.Matches(msg, m.keys.dislike):
		if m.movie == nil {
			return m, nil
		}
		movie, accepted := *m.movie, key.Matches(msg, m.keys.like)
		return m, func() tea.Msg {
			sent, err := m.flow.FeedbackForMovie(m.ctx, movie, accepted)
			if err == nil && !sent {
				err = errors.New("feedback already recorded")
			}
			collection := m.disliked.Name()
			if accepted {
				collection = m.liked.Name()
			}
			return toggledMsg(collection, movie.Title, true, err)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// sync enters the flow's current step when it differs from the rendered one.
func (m *Model) sync() tea.Cmd {
	step := m.flow.Step()
	if step == m.step {
		return nil
	}
	return m.enter(step)
}

// enter prepares the screen for step and returns the command that loads its data.
func (m *Model) enter(step wizard.Step) tea.Cmd {
	m.step = step
	d := m.flow.Draft()

	switch step {
	case wizard.StepGenres:
		m.setList("What are you in the mood for?", optionItems(preferences.KindGenre, genreOptions(), d.HasGenre))
	case wizard.StepMovies:
		popular := m.flow.Snapshot().Popular
		if len(popular) == 0 {
			m.notify("No popular movies to rate, press enter to skip")
		}
		m.setList("Rate a few movies", movieItems(popular, m.ratingMark))
	case wizard.StepContext:
		isContext := func(id string) bool {
			sc, ok := d.SocialContext()
			return ok && sc == id
		}
		items := append(
			optionItems(preferences.KindContext, preferences.Contexts(), isContext),
			optionItems(preferences.KindMood, preferences.Moods(), d.HasMood)...,
		)
		m.setList("Who's watching and how do you feel?", items)
	case wizard.StepDealBreakers:
		m.setList("Anything to avoid?", optionItems(preferences.KindDealBreaker, preferences.DealBreakers(), d.HasDealBreaker))
	case wizard.StepRecommendation:
		if rec := m.flow.Snapshot().Recommendation; rec != nil {
			return m.checkSaved(rec.Key())
		}
	case wizard.StepGallery:
		m.newCollections()
		m.setList("Gallery", nil)
		return m.loadGallery()
	case wizard.StepWatchlist:
		m.newCollections()
		m.setList("Watchlist", nil)
		return m.loadWatchlist()
	case wizard.StepProfile:
		m.newCollections()
		m.profile = nil
		m.setList("Rated movies", nil)
		return m.loadProfile()
	case wizard.StepMovieDetails:
		m.movie = nil
		return m.loadMovie(m.flow.Snapshot().SelectedMovie)
	}
	return nil
}

// newCollections resets the toggle state scoped to a screen.
func (m *Model) newCollections() {
	m.watchlist = toggle.NewWatchlist(m.backend, m.logger)
	m.liked = toggle.NewLiked(m.backend, m.logger)
	m.disliked = toggle.NewDisliked(m.backend, m.logger)
}

func (m *Model) setList(title string, items []list.Item) {
	w, h := m.listSize()
	m.list = list.New(items, list.NewDefaultDelegate(), w, h)
	m.list.Title = title
	m.list.SetShowHelp(false)
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) selectedRef() (models.MovieRef, bool) {
	switch it := m.list.SelectedItem().(type) {
	case movieItem:
		return it.movie.Ref(), true
	case refItem:
		return it.ref, true
	}
	return models.MovieRef{}, false
}

func (m *Model) selectedID() int {
	if ref, ok := m.selectedRef(); ok {
		return ref.TMDBID
	}
	return 0
}

func (m *Model) savedMark(id int) string {
	if m.watchlist.Status(id) {
		return "★ "
	}
	return ""
}

func (m *Model) ratingMark(id int) string {
	d := m.flow.Draft()
	switch {
	case d.IsLiked(id):
		return "👍 "
	case d.IsDisliked(id):
		return "👎 "
	}
	return ""
}

func (m *Model) notify(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) fail(err error) {
	m.logger.Warn("action failed", "step", m.step, "error", err)
	m.status = describe(err)
	m.statusErr = true
}

func (m *Model) run(fn func(context.Context) error) tea.Cmd {
	m.busy = true
	m.status = ""
	return func() tea.Msg {
		return actionDoneMsg(fn(m.ctx))
	}
}

func (m *Model) startOver() tea.Cmd {
	m.flow.StartOver()
	m.notify("")
	return m.sync()
}

func (m *Model) navigate(to wizard.Step) tea.Cmd {
	if err := m.flow.Navigate(to); err != nil {
		m.fail(err)
		return nil
	}
	return m.sync()
}

func (m *Model) back() tea.Cmd {
	if err := m.flow.Back(); err != nil {
		m.fail(err)
		return nil
	}
	return m.sync()
}

func (m *Model) signIn() tea.Cmd {
	m.busy = true
	m.notify("Waiting for Google sign-in...")
	return func() tea.Msg {
		user, err := m.session.SignIn(m.ctx)
		return signedInMsg(user, err)
	}
}

func (m *Model) signOut() tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		return signedOutMsg(m.session.SignOut(m.ctx))
	}
}

func (m *Model) toggleRef(c *toggle.Movies, ref models.MovieRef) tea.Cmd {
	return func() tea.Msg {
		member, err := c.Toggle(m.ctx, ref)
		return toggledMsg(c.Name(), ref.Title, member, err)
	}
}

func (m *Model) moveRef(from, to *toggle.Movies, ref models.MovieRef) tea.Cmd {
	return func() tea.Msg {
		err := toggle.Move(m.ctx, from, to, ref)
		return toggledMsg(to.Name(), ref.Title, true, err)
	}
}

func (m *Model) checkSaved(id int) tea.Cmd {
	c := m.watchlist
	return func() tea.Msg {
		c.CheckAll(m.ctx, []models.MovieRef{{TMDBID: id}}, toggle.CheckOptions{})
		return nil
	}
}

func (m *Model) loadGallery() tea.Cmd {
	c := m.watchlist
	return func() tea.Msg {
		movies, err := m.backend.Gallery(m.ctx, 1, m.pageSize)
		if err != nil {
			return galleryLoadedMsg(nil, err)
		}
		c.CheckAll(m.ctx, library.Refs(movies), toggle.CheckOptions{Limit: m.pageSize})
		return galleryLoadedMsg(movies, nil)
	}
}

func (m *Model) loadWatchlist() tea.Cmd {
	return func() tea.Msg {
		refs, err := m.backend.Watchlist(m.ctx)
		return watchlistLoadedMsg(refs, err)
	}
}

func (m *Model) loadProfile() tea.Cmd {
	return func() tea.Msg {
		p, err := library.LoadProfile(m.ctx, m.backend)
		return profileLoadedMsg(p, err)
	}
}

func (m *Model) loadMovie(id int) tea.Cmd {
	c := m.watchlist
	return func() tea.Msg {
		movie, err := m.backend.MovieDetails(m.ctx, id)
		if err != nil {
			return movieLoadedMsg(nil, err)
		}
		c.CheckAll(m.ctx, []models.MovieRef{movie.Ref()}, toggle.CheckOptions{})
		return movieLoadedMsg(movie, nil)
	}
}

// waitForTransition blocks on the flow's update channel and re-arms after each message.
func (m *Model) waitForTransition() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-m.updates
		if !ok {
			return nil
		}
		return transitionMsg(t)
	}
}

func genreOptions() []preferences.Option {
	genres := preferences.Genres()
	opts := make([]preferences.Option, len(genres))
	for i, g := range genres {
		opts[i] = g.Option
	}
	return opts
}
