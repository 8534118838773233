package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/shared"
	"github.com/northis/ym-api-organizer/internal/tasks"
	"github.com/northis/ym-api-organizer/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI: review the plan, then sync.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if !r.isTerminal() {
		return fmt.Errorf("%w: the interactive view needs a terminal, use 'ymsync sync'", shared.ErrInvalidArgument)
	}

	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if err := r.redirectLogs(); err != nil {
		return err
	}

	engine, err := r.engine(ctx, cmd)
	if err != nil {
		return fmt.Errorf("could not sync: %w", err)
	}
	if err := r.ensureTargetDir(); err != nil {
		return fmt.Errorf("could not sync: %w", err)
	}

	if _, err := r.runTUI(ctx, engine); err != nil {
		return fmt.Errorf("could not sync: %w", err)
	}
	return nil
}

// redirectLogs sends log output to the configured log file (or a temp file) so it does not interfere with
// TUI rendering. It must run before the engine and the Yandex client are built.
func (r *Runner) redirectLogs() error {
	path := r.config.Log.File
	if path == "" {
		path = filepath.Join(os.TempDir(), "ymsync-tui.log")
	}
	fileLogger, err := shared.NewFileLogger(path)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.logger = fileLogger
	return nil
}

// runTUI drives engine through the bubbletea view. The summary is nil when the user quits before syncing.
func (r *Runner) runTUI(ctx context.Context, engine tasks.SyncEngine) (*models.RunSummary, error) {
	model := ui.NewModel(ctx, engine)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	return model.Summary()
}
