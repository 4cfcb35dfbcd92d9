package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/cinehint/internal/api"
	"github.com/desertthunder/cinehint/internal/auth"
	"github.com/desertthunder/cinehint/internal/formatter"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/wizard"
)

// View renders the UI based on the current wizard step.
func (m *Model) View() string {
	v := m.flow.Snapshot()

	var body string
	switch m.step {
	case wizard.StepWelcome:
		body = m.renderWelcome(v)
	case wizard.StepGenres, wizard.StepMovies, wizard.StepContext, wizard.StepDealBreakers:
		body = m.renderWizardList()
	case wizard.StepProcessing:
		body = fmt.Sprintf("%s Finding something for you to watch...", m.spinner.View())
	case wizard.StepRecommendation:
		body = m.renderRecommendation(v)
	case wizard.StepError:
		body = m.renderFailure(v)
	case wizard.StepGallery, wizard.StepWatchlist:
		body = m.renderScreenList(m.keys.enter, m.keys.save, m.keys.back)
	case wizard.StepProfile:
		body = m.renderProfile()
	case wizard.StepMovieDetails:
		body = m.renderDetails()
	}

	return fmt.Sprintf("%s\n%s%s", m.renderHeader(), body, m.renderStatus())
}

func (m *Model) renderHeader() string {
	header := styles.title.Render("cinehint")
	if u := m.session.User(); u != nil {
		header = fmt.Sprintf("%s  %s", header, styles.help.Render(displayName(u)))
	}
	return header
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return "\n\n" + styles.err.Render(m.status)
	}
	return "\n\n" + styles.ok.Render(m.status)
}

func (m *Model) renderWelcome(v wizard.View) string {
	var b strings.Builder
	if v.SessionExpired {
		b.WriteString(styles.warn.Render("Your session expired. Sign in again to continue."))
		b.WriteString("\n\n")
	}

	if m.busy {
		fmt.Fprintf(&b, "%s Complete sign-in in your browser", m.spinner.View())
		return b.String()
	}

	if !m.session.Authenticated() {
		b.WriteString("Answer a few questions and get one movie picked for tonight.\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.signIn, m.keys.quit}))
		return b.String()
	}

	fmt.Fprintf(&b, "Welcome back, %s.\n\n", displayName(m.session.User()))
	start := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "get a recommendation"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{
		start, m.keys.gallery, m.keys.watchlist, m.keys.profile, m.keys.signOut, m.keys.quit,
	}))
	return b.String()
}

func (m *Model) renderWizardList() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.restart, m.keys.quit}
	if m.step == wizard.StepMovies {
		helpKeys = []key.Binding{m.keys.like, m.keys.dislike, m.keys.enter, m.keys.restart, m.keys.quit}
	}
	if m.busy {
		return fmt.Sprintf("%s\n\n%s Saving your picks...", m.list.View(), m.spinner.View())
	}
	return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRecommendation(v wizard.View) string {
	rec := v.Recommendation
	if rec == nil {
		return styles.err.Render("No recommendation available")
	}

	saved := ""
	if m.watchlist.Status(rec.Key()) {
		saved = styles.ok.Render(" ★ on your watchlist")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n", styles.accent.Bold(true).Render(movieHeading(rec.Movie)), saved)
	b.WriteString(movieFacts(rec.Movie))
	if rec.Overview != "" {
		fmt.Fprintf(&b, "\n\n%s", rec.Overview)
	}
	if rec.Reason != "" {
		fmt.Fprintf(&b, "\n\n%s %s", styles.help.Render("Why:"), rec.Reason)
	}

	footer := m.help.ShortHelpView([]key.Binding{m.keys.perfect, m.keys.notForMe, m.keys.save, m.keys.restart, m.keys.quit})
	if rec.FeedbackGiven {
		footer = styles.ok.Render("Thanks for the feedback!") + "\n" + footer
	}
	if m.busy {
		footer = fmt.Sprintf("%s Working...", m.spinner.View())
	}
	return fmt.Sprintf("%s\n\n%s", styles.box.Render(b.String()), footer)
}

func (m *Model) renderFailure(v wizard.View) string {
	msg := "Something went wrong."
	if v.Failure != nil {
		msg = v.Failure.Message
	}

	var b strings.Builder
	b.WriteString(styles.err.Render(msg))
	if v.Failure != nil && v.Failure.RateLimited && !v.Failure.ResetTime.IsZero() {
		fmt.Fprintf(&b, "\n%s", styles.warn.Render("Resets at "+v.Failure.ResetTime.Local().Format("Jan 2 15:04")))
	}
	retry := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "retry"))
	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView([]key.Binding{retry, m.keys.restart, m.keys.quit}))
	return b.String()
}

func (m *Model) renderScreenList(keys ...key.Binding) string {
	return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.ShortHelpView(append(keys, m.keys.quit)))
}

func (m *Model) renderProfile() string {
	if m.profile == nil {
		return fmt.Sprintf("%s Loading profile...", m.spinner.View())
	}
	s := m.profile.Stats()
	stats := fmt.Sprintf("Watchlist %d • Liked %d • Disliked %d • Accepted %d • Rejected %d",
		s.Watchlist, s.Liked, s.Disliked, s.Accepted, s.Rejected)
	return fmt.Sprintf("%s\n\n%s", styles.help.Render(stats), m.renderScreenList(m.keys.enter, m.keys.remove, m.keys.move, m.keys.back))
}

func (m *Model) renderDetails() string {
	if m.movie == nil {
		return fmt.Sprintf("%s Loading movie...", m.spinner.View())
	}
	mv := *m.movie

	var b strings.Builder
	heading := movieHeading(mv)
	if m.watchlist.Status(mv.Key()) {
		heading += " ★"
	}
	fmt.Fprintf(&b, "%s\n", styles.accent.Bold(true).Render(heading))
	b.WriteString(movieFacts(mv))
	if mv.Director != "" {
		fmt.Fprintf(&b, "\nDirected by %s", mv.Director)
	}
	if len(mv.Cast) > 0 {
		fmt.Fprintf(&b, "\nStarring %s", strings.Join(mv.Cast, ", "))
	}
	if mv.Overview != "" {
		fmt.Fprintf(&b, "\n\n%s", mv.Overview)
	}
	if mv.PosterPath != "" {
		fmt.Fprintf(&b, "\n\n%s", styles.help.Render(formatter.PosterURL(mv.PosterPath)))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.save, m.keys.like, m.keys.dislike, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", styles.box.Render(b.String()), helpView)
}

func movieHeading(mv models.Movie) string {
	if y := mv.ReleaseYear(); y != 0 {
		return fmt.Sprintf("%s (%d)", mv.Title, y)
	}
	return mv.Title
}

func movieFacts(mv models.Movie) string {
	var facts []string
	if len(mv.Genres) > 0 {
		facts = append(facts, strings.Join(mv.Genres, ", "))
	}
	if mv.Runtime > 0 {
		facts = append(facts, formatter.FormatRuntime(mv.Runtime))
	}
	if r := mv.Score(); r != nil {
		facts = append(facts, "⭐ "+formatter.FormatRating(r))
	}
	return styles.help.Render(strings.Join(facts, " • "))
}

func displayName(u *models.UserProfile) string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	default:
		return u.Email
	}
}

// describe turns an error into a status line.
func describe(err error) string {
	var rl *api.RateLimitError
	switch {
	case errors.As(err, &rl):
		return rl.Message
	case errors.Is(err, shared.ErrSessionExpired), auth.IsAuthError(err, auth.ReasonSessionExpired):
		return "Your session expired. Sign in again."
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "Sign in first."
	case errors.Is(err, shared.ErrSignInDeclined):
		return "Sign-in was cancelled."
	case errors.Is(err, shared.ErrBusy):
		return "Still working on that one."
	case api.IsNetwork(err):
		return "Could not reach the server. Check your connection."
	}
	return err.Error()
}
