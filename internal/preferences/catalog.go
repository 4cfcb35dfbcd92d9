package preferences

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cinehint/internal/shared"
)

// Option is a selectable token and its display label.
type Option struct {
	ID    string
	Label string
}

// Genre is a genre token with its TMDB genre id.
type Genre struct {
	Option
	TMDBID int
}

var genres = []Genre{
	genre("action", 28),
	genre("adventure", 12),
	genre("animation", 16),
	genre("comedy", 35),
	genre("crime", 80),
	genre("documentary", 99),
	genre("drama", 18),
	genre("family", 10751),
	genre("fantasy", 14),
	genre("history", 36),
	genre("horror", 27),
	genre("music", 10402),
	genre("mystery", 9648),
	genre("romance", 10749),
	genre("scifi", 878),
	genre("tvmovie", 10770),
	genre("thriller", 53),
	genre("war", 10752),
	genre("western", 37),
}

var moods = []Option{
	{"feel-good", "Feel Good"},
	{"mind-bending", "Mind-Bending"},
	{"thoughtful", "Thoughtful"},
	{"exciting", "Exciting"},
	{"relaxing", "Relaxing"},
	{"dark", "Dark & Gritty"},
	{"romantic", "Romantic"},
	{"funny", "Laugh Out Loud"},
}

var contexts = []Option{
	{"alone", "Solo Chill"},
	{"date", "Date Night"},
	{"family", "Family Night"},
	{"friends", "With Friends"},
	{"hangover", "Hungover & Fragile"},
	{"high", "Feeling... Elevated"},
	{"late-night", "Late Night Vibes"},
	{"background", "Just Background Noise"},
}

var dealBreakers = []Option{
	{"No Horror", "Horror Movies"},
	{"No Sad Endings", "Sad Endings"},
	{"No Violence", "Violence"},
	{"No Adult Content", "Adult Content"},
	{"No Subtitles", "Subtitles"},
	{"No Old Movies (Pre-2000)", "Old Movies (Pre-2000)"},
	{"No Long Movies (3+ hours)", "Long Movies (3+ hrs)"},
	{"No Animated Movies", "Animated Movies"},
	{"No Musicals", "Musical Movies"},
}

func genre(id string, tmdbID int) Genre {
	return Genre{Option: Option{ID: id, Label: GenreLabel(id)}, TMDBID: tmdbID}
}

// GenreLabel formats a genre token for display.
func GenreLabel(id string) string {
	switch id {
	case "scifi":
		return "Sci-Fi"
	case "tvmovie":
		return "TV Movie"
	case "":
		return ""
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// Genres returns the selectable genres in display order.
func Genres() []Genre { return append([]Genre(nil), genres...) }

// Moods returns the selectable moods in display order.
func Moods() []Option { return append([]Option(nil), moods...) }

// Contexts returns the selectable social contexts in display order.
func Contexts() []Option { return append([]Option(nil), contexts...) }

// DealBreakers returns the selectable deal-breakers in display order.
func DealBreakers() []Option { return append([]Option(nil), dealBreakers...) }

// GenreByTMDBID maps a TMDB genre id back to its token.
func GenreByTMDBID(id int) (string, bool) {
	for _, g := range genres {
		if g.TMDBID == id {
			return g.ID, true
		}
	}
	return "", false
}

// Kind names a token catalog.
type Kind string

const (
	KindGenre       Kind = "genre"
	KindMood        Kind = "mood"
	KindContext     Kind = "context"
	KindDealBreaker Kind = "deal-breaker"
)

// Validate checks that every value is a known token of kind.
//
// Deal-breakers also match on their label, case-insensitively, and are returned as canonical tokens.
func Validate(kind Kind, values ...string) ([]string, error) {
	var opts []Option
	switch kind {
	case KindGenre:
		for _, g := range genres {
			opts = append(opts, g.Option)
		}
	case KindMood:
		opts = moods
	case KindContext:
		opts = contexts
	case KindDealBreaker:
		opts = dealBreakers
	default:
		return nil, fmt.Errorf("%w: unknown catalog %q", shared.ErrInvalidInput, kind)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		id, ok := lookup(opts, v, kind == KindDealBreaker)
		if !ok {
			return nil, fmt.Errorf("%w: unknown %s %q", shared.ErrInvalidInput, kind, v)
		}
		out = append(out, id)
	}
	return out, nil
}

func lookup(opts []Option, v string, byLabel bool) (string, bool) {
	for _, o := range opts {
		if o.ID == v {
			return o.ID, true
		}
		if byLabel && (strings.EqualFold(o.ID, v) || strings.EqualFold(o.Label, v)) {
			return o.ID, true
		}
	}
	return "", false
}
