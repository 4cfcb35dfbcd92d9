package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/cinehint/internal/formatter"
	"github.com/desertthunder/cinehint/internal/library"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/preferences"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/toggle"
	"github.com/urfave/cli/v3"
)

// MoviesPopular lists popular movies for the given genres
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	genres, err := preferences.Validate(preferences.KindGenre, cmd.StringSlice("genre")...)
	if err != nil {
		return err
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	query := "all"
	if len(genres) > 0 {
		query = strings.Join(genres, ",")
	}

	r.logger.Info("fetching popular movies", "genres", query)
	movies, err := r.api.PopularMovies(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to fetch popular movies: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, true)
	}
	r.writePlainHeader(fmt.Sprintf("Popular movies (%s)", query))
	r.writeMovies(movies, nil)
	return nil
}

// MoviesGallery lists one page of the gallery, optionally filtered and marked with watchlist status
func (r *Runner) MoviesGallery(ctx context.Context, cmd *cli.Command) error {
	page := cmd.Int("page")
	limit := cmd.Int("limit")
	if page < 1 || limit < 1 {
		return fmt.Errorf("%w: --page and --limit must be positive", shared.ErrInvalidFlag)
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movies, err := r.api.Gallery(ctx, page, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch gallery: %w", err)
	}
	movies = library.FilterMovies(movies, cmd.String("filter"))

	var saved map[int]bool
	if cmd.Bool("saved") {
		watchlist := toggle.NewWatchlist(r.api, r.logger)
		saved = watchlist.CheckAll(ctx, library.Refs(movies), r.checkOptions())
	}

	if cmd.Bool("json") {
		if saved == nil {
			return r.writeJSON(movies, true)
		}
		out := make([]map[string]any, 0, len(movies))
		for _, m := range movies {
			out = append(out, map[string]any{"movie": m, "saved": saved[m.Key()]})
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(fmt.Sprintf("Gallery page %d", page))
	r.writeMovies(movies, saved)
	return nil
}

// MoviesShow prints one movie's details
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movie, err := r.api.MovieDetails(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, true)
	}

	r.writePlainHeader(movieTitle(*movie))
	r.writePlain("%s\n", movieSummary(*movie))
	if movie.Director != "" {
		r.writePlain("Directed by %s\n", movie.Director)
	}
	if len(movie.Cast) > 0 {
		r.writePlain("Starring %s\n", strings.Join(movie.Cast, ", "))
	}
	if movie.Overview != "" {
		r.writePlainln("%s", movie.Overview)
	}
	if movie.PosterPath != "" {
		r.writePlain("Poster: %s\n", formatter.PosterURL(movie.PosterPath))
	}
	return nil
}

// MoviesSearch searches the catalog by title
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movies, err := r.api.SearchMovies(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, true)
	}
	if len(movies) == 0 {
		return r.writePlain("No movies match %q\n", query)
	}
	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	r.writeMovies(movies, nil)
	return nil
}

func (r *Runner) writeMovies(movies []models.Movie, saved map[int]bool) {
	if len(movies) == 0 {
		r.writePlain("No movies found\n")
		return
	}
	for i, m := range movies {
		mark := " "
		if saved[m.Key()] {
			mark = "★"
		}
		r.writePlain("%s %3d. %s [%d]\n", mark, i+1, movieTitle(m), m.Key())
		if summary := movieSummary(m); summary != "" {
			r.writePlain("       %s\n", summary)
		}
	}
}

func movieTitle(m models.Movie) string {
	if y := m.ReleaseYear(); y != 0 {
		return fmt.Sprintf("%s (%d)", m.Title, y)
	}
	return m.Title
}

func movieSummary(m models.Movie) string {
	var facts []string
	if len(m.Genres) > 0 {
		facts = append(facts, strings.Join(m.Genres, ", "))
	}
	if m.Runtime > 0 {
		facts = append(facts, formatter.FormatRuntime(m.Runtime))
	}
	if s := m.Score(); s != nil {
		facts = append(facts, "⭐ "+formatter.FormatRating(s))
	}
	return strings.Join(facts, " • ")
}

// parseID parses a positive TMDB id argument.
func parseID(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a TMDB id", shared.ErrInvalidArgument, s)
	}
	return id, nil
}
