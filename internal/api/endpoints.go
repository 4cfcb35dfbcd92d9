package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/shared"
)

// GoogleAuth exchanges an identity-provider credential for a session token.
//
// The credential is sent under both the "token" and "credential" keys.
func (c *Client) GoogleAuth(ctx context.Context, credential string) (*models.AuthResponse, error) {
	body := map[string]string{"token": credential, "credential": credential}

	var resp models.AuthResponse
	if err := c.Request(ctx, "/auth/google", RequestOptions{Method: http.MethodPost, Body: body}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: sign-in response carried no token", shared.ErrAuthFailed)
	}
	return &resp, nil
}

// Profile fetches the current user.
func (c *Client) Profile(ctx context.Context) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.Request(ctx, "/users/profile", RequestOptions{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Preferences fetches the server copy of the user's preferences.
func (c *Client) Preferences(ctx context.Context) (*models.StoredPreferences, error) {
	var prefs models.StoredPreferences
	if err := c.Request(ctx, "/users/preferences", RequestOptions{}, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences replaces the server copy of the user's preferences.
func (c *Client) UpdatePreferences(ctx context.Context, prefs models.Preferences) error {
	return c.Request(ctx, "/users/preferences", RequestOptions{Method: http.MethodPut, Body: prefs}, nil)
}

// ClearPreference clears one preference field, e.g. "moods".
func (c *Client) ClearPreference(ctx context.Context, field string) error {
	if field == "" {
		return fmt.Errorf("%w: preference field", shared.ErrMissingArgument)
	}
	return c.Request(ctx, "/users/preferences/"+url.PathEscape(field), RequestOptions{Method: http.MethodDelete}, nil)
}

// RemoveLiked removes a movie from the liked list.
func (c *Client) RemoveLiked(ctx context.Context, tmdbID int) error {
	return c.Request(ctx, "/users/preferences/liked/"+strconv.Itoa(tmdbID), RequestOptions{Method: http.MethodDelete}, nil)
}

// RemoveDisliked removes a movie from the disliked list.
func (c *Client) RemoveDisliked(ctx context.Context, tmdbID int) error {
	return c.Request(ctx, "/users/preferences/disliked/"+strconv.Itoa(tmdbID), RequestOptions{Method: http.MethodDelete}, nil)
}

// History fetches past recommendations.
func (c *Client) History(ctx context.Context) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := c.Request(ctx, "/users/history", RequestOptions{}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Watchlist lists saved movies.
func (c *Client) Watchlist(ctx context.Context) ([]models.MovieRef, error) {
	var refs []models.MovieRef
	if err := c.Request(ctx, "/users/watchlist", RequestOptions{}, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// AddToWatchlist saves a movie.
func (c *Client) AddToWatchlist(ctx context.Context, ref models.MovieRef) error {
	return c.Request(ctx, "/users/watchlist", RequestOptions{Method: http.MethodPost, Body: ref}, nil)
}

// RemoveFromWatchlist removes a saved movie.
func (c *Client) RemoveFromWatchlist(ctx context.Context, tmdbID int) error {
	return c.Request(ctx, "/users/watchlist/"+strconv.Itoa(tmdbID), RequestOptions{Method: http.MethodDelete}, nil)
}

// InWatchlist reports whether a movie is saved.
func (c *Client) InWatchlist(ctx context.Context, tmdbID int) (bool, error) {
	var resp struct {
		IsInWatchlist bool `json:"isInWatchlist"`
	}
	if err := c.Request(ctx, "/users/watchlist/check/"+strconv.Itoa(tmdbID), RequestOptions{}, &resp); err != nil {
		return false, err
	}
	return resp.IsInWatchlist, nil
}

// PopularMovies fetches the rating seed list for a genre query such as "action,comedy" or "all".
func (c *Client) PopularMovies(ctx context.Context, genres string) ([]models.Movie, error) {
	if genres == "" {
		genres = "all"
	}
	var movies []models.Movie
	if err := c.Request(ctx, "/movies/popular/"+url.PathEscape(genres), RequestOptions{}, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Recommend requests a recommendation. Set IsAlternative to ask for a replacement.
func (c *Client) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := c.Request(ctx, "/movies/recommend", RequestOptions{Method: http.MethodPost, Body: req}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SubmitFeedback records whether the user accepted a movie.
func (c *Client) SubmitFeedback(ctx context.Context, fb models.Feedback) error {
	return c.Request(ctx, "/movies/feedback", RequestOptions{Method: http.MethodPost, Body: fb}, nil)
}

// MovieFromDatabase fetches a movie the backend already knows.
func (c *Client) MovieFromDatabase(ctx context.Context, tmdbID int) (*models.Movie, error) {
	var m models.Movie
	if err := c.Request(ctx, "/movies/database/"+strconv.Itoa(tmdbID), RequestOptions{}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// FetchFromTMDB asks the backend to fetch and store a movie from TMDB.
func (c *Client) FetchFromTMDB(ctx context.Context, tmdbID int) (*models.Movie, error) {
	var m models.Movie
	if err := c.Request(ctx, "/movies/fetch-tmdb/"+strconv.Itoa(tmdbID), RequestOptions{Method: http.MethodPost}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MovieDetails looks a movie up in the database and falls back to a TMDB fetch when that fails.
func (c *Client) MovieDetails(ctx context.Context, tmdbID int) (*models.Movie, error) {
	m, err := c.MovieFromDatabase(ctx, tmdbID)
	if err == nil {
		return m, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	c.logger.Debug("database lookup failed, fetching from tmdb", "tmdbId", tmdbID, "error", err)
	m, fetchErr := c.FetchFromTMDB(ctx, tmdbID)
	if fetchErr != nil {
		if IsNotFound(fetchErr) {
			return nil, fmt.Errorf("%w: %d", shared.ErrMovieNotFound, tmdbID)
		}
		return nil, fetchErr
	}
	return m, nil
}

// Gallery fetches one page of the public movie list.
func (c *Client) Gallery(ctx context.Context, page, limit int) ([]models.Movie, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var movies []models.Movie
	if err := c.Request(ctx, "/movies/gallery", RequestOptions{Query: q}, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// SearchMovies searches the catalog by title.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	var movies []models.Movie
	if err := c.Request(ctx, "/movies/search", RequestOptions{Query: url.Values{"q": {query}}}, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Health returns the backend's health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var doc map[string]any
	if err := c.Request(ctx, "/health", RequestOptions{}, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
