package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinehint/internal/api"
	"github.com/desertthunder/cinehint/internal/auth"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/preferences"
	"github.com/desertthunder/cinehint/internal/session"
	"github.com/desertthunder/cinehint/internal/shared"
	tu "github.com/desertthunder/cinehint/internal/testing"
	"github.com/desertthunder/cinehint/internal/wizard"
)

type fakeSession struct {
	mu      sync.Mutex
	user    *models.UserProfile
	signIn  error
	signOut int
}

func (s *fakeSession) SignIn(context.Context) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signIn != nil {
		return nil, s.signIn
	}
	s.user = &models.UserProfile{ID: "1", Name: "Ada", Email: "ada@example.com"}
	return s.user, nil
}

func (s *fakeSession) SignOut(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.signOut++
	return nil
}

func (s *fakeSession) User() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *fakeSession) Authenticated() bool { return s.User() != nil }

func (s *fakeSession) VerifyAuth(context.Context) bool { return s.Authenticated() }

func newTestModel(t *testing.T, sess *fakeSession, routes map[string]http.HandlerFunc) (*Model, *wizard.Flow, *tu.APIServer) {
	t.Helper()
	srv := tu.NewAPIServer(t, routes)
	client := api.NewClient(api.Options{
		BaseURL: srv.URL,
		Tokens:  session.New(session.NewMemoryStore("token")),
		Logger:  shared.DiscardLogger(),
	})
	flow := wizard.New(client, sess, wizard.Options{Logger: shared.DiscardLogger()})
	m := NewModel(context.Background(), flow, sess, client, Options{Logger: shared.DiscardLogger()})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	return m, flow, srv
}

func signedIn() *fakeSession {
	return &fakeSession{user: &models.UserProfile{ID: "1", Name: "Ada"}}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends k and feeds every message produced by the returned command back into the model.
func press(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(k)
	drain(m, cmd)
}

func drain(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func TestWelcome(t *testing.T) {
	t.Run("enter signs in when signed out", func(t *testing.T) {
		sess := &fakeSession{}
		m, _, _ := newTestModel(t, sess, nil)

		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if !sess.Authenticated() {
			t.Fatal("expected sign-in")
		}
		if m.busy {
			t.Error("busy not cleared")
		}
		if !strings.Contains(m.status, "Signed in as Ada") {
			t.Errorf("status = %q", m.status)
		}
	})

	t.Run("failed sign-in shows the error", func(t *testing.T) {
		sess := &fakeSession{signIn: fmt.Errorf("%w: closed", shared.ErrSignInDeclined)}
		m, _, _ := newTestModel(t, sess, nil)

		press(t, m, runes("s"))

		if !m.statusErr || m.status != "Sign-in was cancelled." {
			t.Errorf("status = %q (err %v)", m.status, m.statusErr)
		}
	})

	t.Run("enter starts the wizard when signed in", func(t *testing.T) {
		m, flow, _ := newTestModel(t, signedIn(), nil)

		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if flow.Step() != wizard.StepGenres || m.step != wizard.StepGenres {
			t.Fatalf("step = %v / %v, want genres", flow.Step(), m.step)
		}
		if got := len(m.list.Items()); got != len(preferences.Genres()) {
			t.Errorf("genre items = %d", got)
		}
	})

	t.Run("side screens need a session", func(t *testing.T) {
		m, flow, _ := newTestModel(t, &fakeSession{}, nil)

		press(t, m, runes("g"))

		if flow.Step() != wizard.StepWelcome {
			t.Errorf("step = %v", flow.Step())
		}
		if m.status != "Sign in first." {
			t.Errorf("status = %q", m.status)
		}
	})

	t.Run("sign out", func(t *testing.T) {
		sess := signedIn()
		m, _, _ := newTestModel(t, sess, nil)

		press(t, m, runes("o"))

		if sess.signOut != 1 || m.status != "Signed out" {
			t.Errorf("signOut = %d, status = %q", sess.signOut, m.status)
		}
	})
}

func TestWizardScreens(t *testing.T) {
	routes := func() map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"GET /movies/popular/action": tu.JSON(http.StatusOK, []map[string]any{
				{"tmdbId": 949, "title": "Heat", "genres": []string{"Crime"}},
				{"tmdbId": 680, "title": "Pulp Fiction"},
			}),
			"PUT /users/preferences": tu.JSON(http.StatusOK, map[string]any{}),
		}
	}

	t.Run("space toggles the selected genre", func(t *testing.T) {
		m, flow, _ := newTestModel(t, signedIn(), routes())
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		if !flow.Draft().HasGenre("action") {
			t.Fatal("action not selected")
		}
		if title := m.list.SelectedItem().(optionItem).Title(); title != "[x] Action" {
			t.Errorf("Title() = %q", title)
		}

		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		if flow.Draft().HasGenre("action") {
			t.Error("action still selected")
		}
	})

	t.Run("rating popular movies", func(t *testing.T) {
		m, flow, srv := newTestModel(t, signedIn(), routes())
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.step != wizard.StepMovies {
			t.Fatalf("step = %v, want movies", m.step)
		}
		if len(srv.CallsTo(http.MethodGet, "/movies/popular/action")) != 1 {
			t.Fatalf("calls = %+v", srv.Calls())
		}

		press(t, m, runes("l"))
		if !flow.Draft().IsLiked(949) {
			t.Fatal("Heat not liked")
		}
		press(t, m, runes("d"))
		if flow.Draft().IsLiked(949) || !flow.Draft().IsDisliked(949) {
			t.Error("Heat not moved to disliked")
		}
		press(t, m, runes("d"))
		if flow.Draft().IsDisliked(949) {
			t.Error("second dislike did not clear the rating")
		}
	})

	t.Run("context step is gated", func(t *testing.T) {
		m, flow, _ := newTestModel(t, signedIn(), routes())
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.step != wizard.StepContext {
			t.Fatalf("step = %v, want context", m.step)
		}
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if flow.Step() != wizard.StepContext || !m.statusErr || !strings.Contains(m.status, "who you are watching") {
			t.Fatalf("step = %v, status = %q", flow.Step(), m.status)
		}

		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		if sc, ok := flow.Draft().SocialContext(); !ok || sc != preferences.Contexts()[0].ID {
			t.Fatalf("SocialContext() = %q, %v", sc, ok)
		}
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if flow.Step() != wizard.StepContext || !strings.Contains(m.status, "mood") {
			t.Fatalf("context without a mood: step = %v, status = %q", flow.Step(), m.status)
		}

		m.list.Select(len(preferences.Contexts()))
		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		if !flow.Draft().HasMood(preferences.Moods()[0].ID) {
			t.Fatalf("HasMood(%q) = false", preferences.Moods()[0].ID)
		}
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.step != wizard.StepDealBreakers {
			t.Errorf("step = %v, want dealbreakers", m.step)
		}
	})

	t.Run("start over clears the draft", func(t *testing.T) {
		m, flow, _ := newTestModel(t, signedIn(), routes())
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		press(t, m, tea.KeyMsg{Type: tea.KeySpace})

		press(t, m, runes("r"))

		if m.step != wizard.StepWelcome || !flow.Draft().IsEmpty() {
			t.Errorf("step = %v, empty = %v", m.step, flow.Draft().IsEmpty())
		}
	})
}

func TestSideScreens(t *testing.T) {
	t.Run("gallery marks saved movies", func(t *testing.T) {
		m, flow, _ := newTestModel(t, signedIn(), map[string]http.HandlerFunc{
			"GET /movies/gallery": tu.JSON(http.StatusOK, []map[string]any{
				{"tmdbId": 550, "title": "Fight Club"},
				{"tmdbId": 13, "title": "Forrest Gump"},
			}),
			"GET /users/watchlist/check/550": tu.JSON(http.StatusOK, map[string]any{"isInWatchlist": true}),
			"GET /users/watchlist/check/13":  tu.JSON(http.StatusOK, map[string]any{"isInWatchlist": false}),
			"DELETE /users/watchlist/550":    tu.JSON(http.StatusOK, map[string]any{}),
		})

		press(t, m, runes("g"))

		if flow.Step() != wizard.StepGallery {
			t.Fatalf("step = %v", flow.Step())
		}
		items := m.list.Items()
		if len(items) != 2 {
			t.Fatalf("items = %d", len(items))
		}
		if got := items[0].(movieItem).Title(); got != "★ Fight Club" {
			t.Errorf("Title() = %q", got)
		}
		if got := items[1].(movieItem).Title(); got != "Forrest Gump" {
			t.Errorf("Title() = %q", got)
		}

		press(t, m, runes("a"))
		if m.watchlist.Status(550) {
			t.Error("Fight Club still saved")
		}
		if m.status != "Removed Fight Club from watchlist" {
			t.Errorf("status = %q", m.status)
		}

		press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if flow.Step() != wizard.StepWelcome {
			t.Errorf("step = %v after back", flow.Step())
		}
	})

	t.Run("failed toggle keeps the status", func(t *testing.T) {
		m, _, _ := newTestModel(t, signedIn(), map[string]http.HandlerFunc{
			"GET /movies/gallery":            tu.JSON(http.StatusOK, []map[string]any{{"tmdbId": 550, "title": "Fight Club"}}),
			"GET /users/watchlist/check/550": tu.JSON(http.StatusOK, map[string]any{"isInWatchlist": false}),
			"POST /users/watchlist":          tu.JSON(http.StatusInternalServerError, map[string]any{"error": "boom"}),
		})
		press(t, m, runes("g"))

		press(t, m, runes("a"))

		if m.watchlist.Status(550) {
			t.Error("status changed after failure")
		}
		if !m.statusErr || m.status != "boom" {
			t.Errorf("status = %q", m.status)
		}
	})

	t.Run("profile loads rated movies", func(t *testing.T) {
		m, _, srv := newTestModel(t, signedIn(), map[string]http.HandlerFunc{
			"GET /users/watchlist": tu.JSON(http.StatusOK, []map[string]any{}),
			"GET /users/preferences": tu.JSON(http.StatusOK, map[string]any{
				"likedMovies":    []map[string]any{{"tmdbId": 1, "title": "A"}},
				"dislikedMovies": []map[string]any{{"tmdbId": 2, "title": "B"}},
			}),
			"GET /users/history":                tu.JSON(http.StatusOK, []map[string]any{}),
			"DELETE /users/preferences/liked/1": tu.JSON(http.StatusOK, map[string]any{}),
		})

		press(t, m, runes("p"))

		if m.profile == nil {
			t.Fatalf("profile not loaded, status %q", m.status)
		}
		items := m.list.Items()
		if len(items) != 2 || items[0].(refItem).section != "liked" || items[1].(refItem).section != "disliked" {
			t.Fatalf("items = %+v", items)
		}

		press(t, m, runes("x"))
		if len(srv.CallsTo(http.MethodDelete, "/users/preferences/liked/1")) != 1 {
			t.Errorf("calls = %+v", srv.Calls())
		}
		if got := len(srv.CallsTo(http.MethodGet, "/users/history")); got != 2 {
			t.Errorf("profile reloads = %d, want 2", got)
		}
	})

	t.Run("details", func(t *testing.T) {
		m, flow, _ := newTestModel(t, signedIn(), map[string]http.HandlerFunc{
			"GET /movies/gallery":            tu.JSON(http.StatusOK, []map[string]any{{"tmdbId": 550, "title": "Fight Club"}}),
			"GET /users/watchlist/check/550": tu.JSON(http.StatusOK, map[string]any{"isInWatchlist": false}),
			"GET /movies/database/550": tu.JSON(http.StatusOK, map[string]any{
				"tmdbId": 550, "title": "Fight Club", "year": 1999, "runtime": 139, "director": "David Fincher",
			}),
		})
		press(t, m, runes("g"))

		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if flow.Step() != wizard.StepMovieDetails || m.movie == nil {
			t.Fatalf("step = %v, movie = %v, status = %q", flow.Step(), m.movie, m.status)
		}
		view := m.View()
		for _, want := range []string{"Fight Club (1999)", "2h 19m", "David Fincher"} {
			if !strings.Contains(view, want) {
				t.Errorf("View() missing %q", want)
			}
		}

		press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if flow.Step() != wizard.StepGallery {
			t.Errorf("step = %v, want gallery", flow.Step())
		}
	})
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limit", &api.RateLimitError{Message: "Daily limit"}, "Daily limit"},
		{"expired", shared.ErrSessionExpired, "Your session expired. Sign in again."},
		{"expired auth error", &auth.AuthError{Reason: auth.ReasonSessionExpired}, "Your session expired. Sign in again."},
		{"busy", fmt.Errorf("%w: 550", shared.ErrBusy), "Still working on that one."},
		{"network", &api.NetworkError{Err: errors.New("refused")}, "Could not reach the server. Check your connection."},
		{"other", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describe(tt.err); got != tt.want {
				t.Errorf("describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	err := errors.New("boom")

	tests := []struct {
		name string
		msg  Msg
		kind MsgKind
	}{
		{"action", actionDoneMsg(err), MsgActionDone},
		{"sign in", signedInMsg(nil, err), MsgSignedIn},
		{"gallery", galleryLoadedMsg(nil, err), MsgGalleryLoaded},
		{"watchlist", watchlistLoadedMsg(nil, err), MsgWatchlistLoaded},
		{"profile", profileLoadedMsg(nil, err), MsgProfileLoaded},
		{"movie", movieLoadedMsg(nil, err), MsgMovieLoaded},
		{"toggle", toggledMsg("watchlist", "Heat", false, err), MsgToggled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.msg.kind != tt.kind {
				t.Errorf("kind = %v, want %v", tt.msg.kind, tt.kind)
			}
			if got := errOf(tt.msg); !errors.Is(got, err) {
				t.Errorf("errOf() = %v", got)
			}
		})
	}

	if errOf(transitionMsg(wizard.Transition{})) != nil {
		t.Error("transition carries no error")
	}
}
