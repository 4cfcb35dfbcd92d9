package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/cinehint/internal/formatter"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/toggle"
	"github.com/urfave/cli/v3"
)

// WatchlistList prints the saved movies
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	refs, err := r.api.Watchlist(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(refs, true)
	}
	r.writePlainHeader(fmt.Sprintf("Watchlist (%d)", len(refs)))
	r.writeRefs(refs)
	return nil
}

// WatchlistAdd saves a movie unless it is already on the watchlist
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
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
	ref := movie.Ref()

	watchlist := toggle.NewWatchlist(r.api, r.logger)
	watchlist.CheckAll(ctx, []models.MovieRef{ref}, r.checkOptions())
	if watchlist.Status(ref.TMDBID) {
		return r.writePlain("%s is already on your watchlist\n", movieTitle(*movie))
	}

	if err := watchlist.Add(ctx, ref); err != nil {
		return fmt.Errorf("failed to save %s: %w", movie.Title, err)
	}
	return r.writePlain("✓ Saved %s\n", movieTitle(*movie))
}

// WatchlistRemove removes a saved movie
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	watchlist := toggle.NewWatchlist(r.api, r.logger)
	if err := watchlist.Remove(ctx, models.MovieRef{TMDBID: id}); err != nil {
		return fmt.Errorf("failed to remove %d: %w", id, err)
	}
	return r.writePlain("✓ Removed %d from your watchlist\n", id)
}

// WatchlistCheck reports the watchlist status of each id
func (r *Runner) WatchlistCheck(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one movie id", shared.ErrMissingArgument)
	}

	refs := make([]models.MovieRef, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return err
		}
		refs = append(refs, models.MovieRef{TMDBID: id})
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	opts := r.checkOptions()
	opts.Limit = len(refs)
	saved := toggle.NewWatchlist(r.api, r.logger).CheckAll(ctx, refs, opts)

	for _, ref := range refs {
		if saved[ref.TMDBID] {
			r.writePlain("★ %d saved\n", ref.TMDBID)
		} else {
			r.writePlain("  %d not saved\n", ref.TMDBID)
		}
	}
	return nil
}

// WatchlistExport writes the watchlist to a file or stdout
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	output := cmd.String("output")
	posters := cmd.Bool("posters")
	if posters && format != formatter.FormatMarkdown {
		return fmt.Errorf("%w: --posters requires --format markdown", shared.ErrInvalidFlag)
	}
	if posters && output == "" {
		return fmt.Errorf("%w: --posters requires --output directory", shared.ErrMissingArgument)
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	refs, err := r.api.Watchlist(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}
	collection := formatter.Collection{Name: "Watchlist", Movies: refs}

	if posters {
		result, err := formatter.WriteMarkdownExport(ctx, collection, output, formatter.MarkdownExportOpts{
			HTTPClient:      r.httpClient,
			DownloadPosters: true,
			Warn:            func(msg string, kv ...any) { r.logger.Warn(msg, kv...) },
		})
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d movies and %d posters to %s\n", len(refs), result.Posters, result.Directory)
	}

	data, err := formatter.ExportCollection(collection, format)
	if err != nil {
		return err
	}
	if output == "" {
		_, err := r.output.Write(data)
		return err
	}
	if filepath.Ext(output) == "" {
		output += format.Ext()
	}
	if err := formatter.WriteExport(output, data); err != nil {
		return err
	}
	return r.writePlain("✓ Exported %d movies to %s\n", len(refs), output)
}

func (r *Runner) writeRefs(refs []models.MovieRef) {
	if len(refs) == 0 {
		r.writePlain("Nothing here yet\n")
		return
	}
	for i, ref := range refs {
		title := ref.Title
		if ref.Year != nil {
			title = fmt.Sprintf("%s (%d)", ref.Title, *ref.Year)
		}
		r.writePlain("%3d. %s [%d]\n", i+1, title, ref.TMDBID)
		if len(ref.Genres) > 0 {
			r.writePlain("     %s\n", strings.Join(ref.Genres, ", "))
		}
	}
}
