package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/desertthunder/cinehint/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive recommendation wizard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logFile := r.config.Log.File
	if logFile == "" {
		logFile = "./tmp/cinehint-tui.log"
	}
	fileLogger, closer, err := shared.NewFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	fileLogger.SetLevel(r.logger.GetLevel())

	// The terminal belongs to bubbletea, so sign-in goes straight to the browser button.
	r.input = nil
	r.SetLogger(fileLogger)
	defer r.auth.Close()

	if err := r.auth.Mount(ctx); err != nil {
		r.logger.Warn("sign-in unavailable", "error", err)
	}

	model := ui.NewModel(ctx, r.flow, r.auth, r.api, ui.Options{
		Updates:  r.updates,
		Logger:   r.logger,
		PageSize: r.config.Gallery.StatusCheckLimit,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
