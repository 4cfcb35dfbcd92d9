package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/cinehint/internal/formatter"
	"github.com/desertthunder/cinehint/internal/library"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/preferences"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/toggle"
	"github.com/urfave/cli/v3"
)

// preferenceFields are the stored preference fields that can be cleared one at a time.
var preferenceFields = []string{"genres", "likedMovies", "dislikedMovies", "moods", "socialContext", "dealBreakers"}

// ProfileShow prints collection counts and stored preferences
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	profile, err := library.LoadProfile(ctx, r.api)
	if err != nil {
		return err
	}
	stats := profile.Stats()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"user":        r.auth.User(),
			"stats":       stats,
			"preferences": profile.Preferences,
			"watchlist":   profile.Watchlist,
			"history":     profile.History,
		}, true)
	}

	r.writePlainHeader(userLabel(r.auth.User()))
	r.writePlain("Watchlist: %d\nLiked:     %d\nDisliked:  %d\n", stats.Watchlist, stats.Liked, stats.Disliked)
	r.writePlain("Accepted:  %d\nRejected:  %d\n", stats.Accepted, stats.Rejected)
	r.writePreferences(profile.Preferences)

	if len(profile.Liked) > 0 {
		r.writePlainln("Liked")
		r.writeRefs(profile.Liked)
	}
	if len(profile.Disliked) > 0 {
		r.writePlainln("Disliked")
		r.writeRefs(profile.Disliked)
	}
	return nil
}

// ProfileHistory exports recommendation history, newest first
func (r *Runner) ProfileHistory(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	entries, err := r.api.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	library.SortHistory(entries)

	data, err := formatter.ExportHistory(entries, format)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		_, err := r.output.Write(data)
		return err
	}
	if err := formatter.WriteExport(output, data); err != nil {
		return err
	}
	return r.writePlain("✓ Exported %d entries to %s\n", len(entries), output)
}

// ratedRemove returns the action removing a movie from the liked or disliked list.
func (r *Runner) ratedRemove(liked bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := parseID(cmd.StringArg("id"))
		if err != nil {
			return err
		}
		if err := r.requireAuth(ctx); err != nil {
			return err
		}

		list, name := toggle.NewDisliked(r.api, r.logger), "disliked"
		if liked {
			list, name = toggle.NewLiked(r.api, r.logger), "liked"
		}
		if err := list.Remove(ctx, models.MovieRef{TMDBID: id}); err != nil {
			return fmt.Errorf("failed to remove %d from %s: %w", id, name, err)
		}
		return r.writePlain("✓ Removed %d from %s movies\n", id, name)
	}
}

// ratedMove returns the action moving a rated movie to the opposite list.
func (r *Runner) ratedMove(liked bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := parseID(cmd.StringArg("id"))
		if err != nil {
			return err
		}
		if err := r.requireAuth(ctx); err != nil {
			return err
		}

		profile, err := library.LoadProfile(ctx, r.api)
		if err != nil {
			return err
		}

		likedList := toggle.NewLiked(r.api, r.logger)
		dislikedList := toggle.NewDisliked(r.api, r.logger)
		likedList.Seed(profile.Liked)
		dislikedList.Seed(profile.Disliked)

		from, to, refs := dislikedList, likedList, profile.Disliked
		if liked {
			from, to, refs = likedList, dislikedList, profile.Liked
		}

		ref, ok := library.FindRef(refs, id)
		if !ok {
			return fmt.Errorf("%w: %d is not in %s movies", shared.ErrMovieNotFound, id, from.Name())
		}
		if err := toggle.Move(ctx, from, to, ref); err != nil {
			return err
		}
		return r.writePlain("✓ Moved %s to %s movies\n", ref.Title, to.Name())
	}
}

// PreferencesShow prints the stored preferences
func (r *Runner) PreferencesShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	prefs, err := r.api.Preferences(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch preferences: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(prefs, true)
	}
	r.writePlainHeader("Preferences")
	r.writePreferences(*prefs)
	return nil
}

// PreferencesClear clears one stored preference field
func (r *Runner) PreferencesClear(ctx context.Context, cmd *cli.Command) error {
	field := cmd.StringArg("field")
	if field == "" {
		return fmt.Errorf("%w: field (one of %s)", shared.ErrMissingArgument, strings.Join(preferenceFields, ", "))
	}
	if !slices.Contains(preferenceFields, field) {
		return fmt.Errorf("%w: unknown preference field %q (use %s)", shared.ErrInvalidArgument, field, strings.Join(preferenceFields, ", "))
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	if err := r.api.ClearPreference(ctx, field); err != nil {
		return fmt.Errorf("failed to clear %s: %w", field, err)
	}
	return r.writePlain("✓ Cleared %s\n", field)
}

func (r *Runner) writePreferences(p models.StoredPreferences) {
	genres := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		genres = append(genres, preferences.GenreLabel(g))
	}
	social := ""
	if p.SocialContext != nil {
		social = optionLabel(preferences.Contexts(), *p.SocialContext)
	}

	r.writePlainln("Genres:        %s", orDash(genres))
	r.writePlain("Moods:         %s\n", orDash(optionLabels(preferences.Moods(), p.Moods)))
	r.writePlain("Context:       %s\n", orDash([]string{social}))
	r.writePlain("Deal-breakers: %s\n", orDash(optionLabels(preferences.DealBreakers(), p.DealBreakers)))
}

// optionLabel returns the display label for id, or id itself when it is not in opts.
func optionLabel(opts []preferences.Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.Label
		}
	}
	return id
}

func optionLabels(opts []preferences.Option, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, optionLabel(opts, id))
	}
	return out
}

func orDash(values []string) string {
	values = slices.DeleteFunc(values, func(v string) bool { return v == "" })
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
