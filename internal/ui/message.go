package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinehint/internal/library"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/wizard"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTransition MsgKind = iota
	MsgActionDone
	MsgSignedIn
	MsgSignedOut
	MsgGalleryLoaded
	MsgWatchlistLoaded
	MsgProfileLoaded
	MsgMovieLoaded
	MsgToggled
)

type galleryData struct {
	movies []models.Movie
	err    error
}

type watchlistData struct {
	refs []models.MovieRef
	err  error
}

type profileData struct {
	profile *library.Profile
	err     error
}

type movieData struct {
	movie *models.Movie
	err   error
}

type toggleData struct {
	collection string
	title      string
	member     bool
	err        error
}

type signInData struct {
	user *models.UserProfile
	err  error
}

// transitionMsg is the constructor for [MsgTransition]
func transitionMsg(t wizard.Transition) Msg {
	return Msg{kind: MsgTransition, data: t}
}

// actionDoneMsg is the constructor for [MsgActionDone]; err is nil when the flow action succeeded.
func actionDoneMsg(err error) Msg {
	return Msg{kind: MsgActionDone, data: err}
}

// signedInMsg is the constructor for [MsgSignedIn]
func signedInMsg(user *models.UserProfile, err error) Msg {
	return Msg{kind: MsgSignedIn, data: signInData{user, err}}
}

// signedOutMsg is the constructor for [MsgSignedOut]
func signedOutMsg(err error) Msg {
	return Msg{kind: MsgSignedOut, data: err}
}

// galleryLoadedMsg is the constructor for [MsgGalleryLoaded]
func galleryLoadedMsg(movies []models.Movie, err error) Msg {
	return Msg{kind: MsgGalleryLoaded, data: galleryData{movies, err}}
}

// watchlistLoadedMsg is the constructor for [MsgWatchlistLoaded]
func watchlistLoadedMsg(refs []models.MovieRef, err error) Msg {
	return Msg{kind: MsgWatchlistLoaded, data: watchlistData{refs, err}}
}

// profileLoadedMsg is the constructor for [MsgProfileLoaded]
func profileLoadedMsg(p *library.Profile, err error) Msg {
	return Msg{kind: MsgProfileLoaded, data: profileData{p, err}}
}

// movieLoadedMsg is the constructor for [MsgMovieLoaded]
func movieLoadedMsg(movie *models.Movie, err error) Msg {
	return Msg{kind: MsgMovieLoaded, data: movieData{movie, err}}
}

// toggledMsg is the constructor for [MsgToggled]
func toggledMsg(collection, title string, member bool, err error) Msg {
	return Msg{kind: MsgToggled, data: toggleData{collection, title, member, err}}
}

// errOf returns the error carried by msg, if any.
func errOf(msg Msg) error {
	switch d := msg.data.(type) {
	case error:
		return d
	case signInData:
		return d.err
	case galleryData:
		return d.err
	case watchlistData:
		return d.err
	case profileData:
		return d.err
	case movieData:
		return d.err
	case toggleData:
		return d.err
	}
	return nil
}
