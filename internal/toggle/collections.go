package toggle

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/models"
)

// Movies is a toggle controller over movie refs keyed by tmdbId.
type Movies = Controller[int, models.MovieRef]

// WatchlistAPI is the remote surface of the watchlist.
type WatchlistAPI interface {
	AddToWatchlist(ctx context.Context, ref models.MovieRef) error
	RemoveFromWatchlist(ctx context.Context, tmdbID int) error
	InWatchlist(ctx context.Context, tmdbID int) (bool, error)
}

// RatingsAPI is the remote surface of the liked and disliked lists.
type RatingsAPI interface {
	SubmitFeedback(ctx context.Context, fb models.Feedback) error
	RemoveLiked(ctx context.Context, tmdbID int) error
	RemoveDisliked(ctx context.Context, tmdbID int) error
}

func refKey(r models.MovieRef) int { return r.TMDBID }

// NewWatchlist builds the watchlist toggle.
func NewWatchlist(api WatchlistAPI, logger *log.Logger) *Movies {
	return New(Options[int, models.MovieRef]{
		Name:   "watchlist",
		Key:    refKey,
		Add:    api.AddToWatchlist,
		Remove: api.RemoveFromWatchlist,
		Check:  api.InWatchlist,
		Logger: logger,
	})
}

// NewLiked builds the liked-movies toggle. Adding submits accepted feedback.
func NewLiked(api RatingsAPI, logger *log.Logger) *Movies {
	return New(Options[int, models.MovieRef]{
		Name: "liked",
		Key:  refKey,
		Add: func(ctx context.Context, r models.MovieRef) error {
			return api.SubmitFeedback(ctx, models.FeedbackFor(r, true))
		},
		Remove: api.RemoveLiked,
		Logger: logger,
	})
}

// NewDisliked builds the disliked-movies toggle. Adding submits rejected feedback without a rating.
func NewDisliked(api RatingsAPI, logger *log.Logger) *Movies {
	return New(Options[int, models.MovieRef]{
		Name: "disliked",
		Key:  refKey,
		Add: func(ctx context.Context, r models.MovieRef) error {
			return api.SubmitFeedback(ctx, models.FeedbackFor(r, false))
		},
		Remove: api.RemoveDisliked,
		Logger: logger,
	})
}
