package library

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/cinehint/internal/models"
	"golang.org/x/sync/errgroup"
)

// ProfileAPI is the remote surface behind [LoadProfile].
type ProfileAPI interface {
	Watchlist(ctx context.Context) ([]models.MovieRef, error)
	Preferences(ctx context.Context) (*models.StoredPreferences, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
}

// Profile is everything the profile screen shows.
type Profile struct {
	Watchlist   []models.MovieRef
	Liked       []models.MovieRef
	Disliked    []models.MovieRef
	Preferences models.StoredPreferences
	History     []models.HistoryEntry
}

// Stats counts a profile's collections.
type Stats struct {
	Watchlist int
	Liked     int
	Disliked  int
	Accepted  int
	Rejected  int
}

// LoadProfile fetches the watchlist, stored preferences and history concurrently.
//
// All three must succeed; the first failure cancels the others. History is returned newest first.
func LoadProfile(ctx context.Context, remote ProfileAPI) (*Profile, error) {
	var (
		p     Profile
		prefs *models.StoredPreferences
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := remote.Watchlist(ctx)
		if err != nil {
			return fmt.Errorf("failed to load watchlist: %w", err)
		}
		p.Watchlist = w
		return nil
	})
	g.Go(func() error {
		sp, err := remote.Preferences(ctx)
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		prefs = sp
		return nil
	})
	g.Go(func() error {
		h, err := remote.History(ctx)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		p.History = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if prefs != nil {
		p.Preferences = *prefs
		p.Liked = []models.MovieRef(prefs.LikedMovies)
		p.Disliked = []models.MovieRef(prefs.DislikedMovies)
	}
	SortHistory(p.History)
	return &p, nil
}

// Stats summarizes the profile.
func (p *Profile) Stats() Stats {
	s := Stats{Watchlist: len(p.Watchlist), Liked: len(p.Liked), Disliked: len(p.Disliked)}
	for _, h := range p.History {
		if h.Accepted == nil {
			continue
		}
		if *h.Accepted {
			s.Accepted++
		} else {
			s.Rejected++
		}
	}
	return s
}

// SortHistory orders entries newest first, in place.
func SortHistory(entries []models.HistoryEntry) {
	slices.SortStableFunc(entries, func(a, b models.HistoryEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// FilterMovies returns the movies whose title or any genre contains query, ignoring case.
// An empty query returns every movie.
func FilterMovies(movies []models.Movie, query string) []models.Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]models.Movie(nil), movies...)
	}

	var out []models.Movie
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), q) {
			out = append(out, m)
			continue
		}
		if slices.ContainsFunc(m.Genres, func(g string) bool { return strings.Contains(strings.ToLower(g), q) }) {
			out = append(out, m)
		}
	}
	return out
}

// Refs projects movies into refs, in order.
func Refs(movies []models.Movie) []models.MovieRef {
	refs := make([]models.MovieRef, 0, len(movies))
	for _, m := range movies {
		refs = append(refs, m.Ref())
	}
	return refs
}

// FindRef returns the ref with tmdbID.
func FindRef(refs []models.MovieRef, tmdbID int) (models.MovieRef, bool) {
	i := slices.IndexFunc(refs, func(r models.MovieRef) bool { return r.TMDBID == tmdbID })
	if i < 0 {
		return models.MovieRef{}, false
	}
	return refs[i], true
}
