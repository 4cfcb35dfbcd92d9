package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/preferences"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/wizard"
	"github.com/urfave/cli/v3"
)

// Recommend walks the wizard non-interactively with the preferences given as flags.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	genres, err := preferences.Validate(preferences.KindGenre, cmd.StringSlice("genre")...)
	if err != nil {
		return err
	}
	moods, err := preferences.Validate(preferences.KindMood, cmd.StringSlice("mood")...)
	if err != nil {
		return err
	}
	social, err := preferences.Validate(preferences.KindContext, cmd.String("context"))
	if err != nil {
		return err
	}
	dealBreakers, err := preferences.Validate(preferences.KindDealBreaker, cmd.StringSlice("no")...)
	if err != nil {
		return err
	}
	if len(moods) == 0 {
		return fmt.Errorf("%w: at least one --mood", shared.ErrMissingArgument)
	}

	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	draft := r.flow.Draft()
	for step := r.flow.Step(); step != wizard.StepRecommendation; step = r.flow.Step() {
		switch step {
		case wizard.StepGenres:
			for _, g := range genres {
				draft.ToggleGenre(g)
			}
		case wizard.StepContext:
			draft.ToggleSocialContext(social[0])
			for _, m := range moods {
				draft.ToggleMood(m)
			}
		case wizard.StepDealBreakers:
			for _, d := range dealBreakers {
				draft.ToggleDealBreaker(d)
			}
		}

		r.logger.Debug("advancing wizard", "step", step)
		if err := r.flow.Next(ctx); err != nil {
			return r.recommendFailure(err)
		}
	}

	v := r.flow.Snapshot()
	if v.Recommendation == nil {
		return fmt.Errorf("%w: no recommendation returned", shared.ErrAPIRequest)
	}

	if cmd.Bool("json") {
		return r.writeJSON(v.Recommendation, true)
	}
	return r.writeRecommendation(v.Recommendation)
}

// recommendFailure adds the reset time to a rate-limit failure.
func (r *Runner) recommendFailure(err error) error {
	v := r.flow.Snapshot()
	if v.Failure == nil || !v.Failure.RateLimited {
		return err
	}
	if v.Failure.ResetTime.IsZero() {
		return fmt.Errorf("%s: %w", v.Failure.Message, err)
	}
	return fmt.Errorf("%s Resets at %s: %w", v.Failure.Message, v.Failure.ResetTime.Local().Format("Jan 2 15:04"), err)
}

func (r *Runner) writeRecommendation(rec *models.Recommendation) error {
	r.writePlainHeader(movieTitle(rec.Movie))
	if summary := movieSummary(rec.Movie); summary != "" {
		r.writePlain("%s\n", summary)
	}
	if rec.Overview != "" {
		r.writePlainln("%s", rec.Overview)
	}
	if rec.Reason != "" {
		r.writePlainln("Why: %s", rec.Reason)
	}
	return r.writePlainln("TMDB id: %d", rec.Key())
}
