package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/northis/ym-api-organizer/internal/catalog"
	"github.com/northis/ym-api-organizer/internal/formatter"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/services"
	"github.com/northis/ym-api-organizer/internal/shared"
	"github.com/northis/ym-api-organizer/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync runs one incremental sync pass and prints the summary.
//
// Fatal errors are reported as "could not sync: <reason>"; per-track failures only appear in the summary.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	interactive := cmd.Bool("tui") && r.isTerminal()
	if interactive {
		if err := r.redirectLogs(); err != nil {
			return err
		}
	}

	engine, err := r.engine(ctx, cmd)
	if err != nil {
		return fmt.Errorf("could not sync: %w", err)
	}
	if err := r.ensureTargetDir(); err != nil {
		return fmt.Errorf("could not sync: %w", err)
	}

	var summary *models.RunSummary
	if interactive {
		summary, err = r.runTUI(ctx, engine)
	} else {
		summary, err = r.runPlain(ctx, engine, format == formatter.FormatText)
	}
	if err != nil {
		return fmt.Errorf("could not sync: %w", err)
	}
	if summary == nil {
		return nil
	}

	data, err := formatter.RenderSummary(summary, format)
	if err != nil {
		return err
	}
	if format == formatter.FormatText {
		r.writePlainHeader("Sync Complete")
	}
	if err := r.write(data); err != nil {
		return err
	}

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteReport(path, summary, reportFormat(path)); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
	}
	return nil
}

// runPlain runs the engine, echoing progress messages when verbose.
func (r *Runner) runPlain(ctx context.Context, engine tasks.SyncEngine, verbose bool) (*models.RunSummary, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			if !verbose {
				continue
			}
			switch update.Phase {
			case tasks.ScanCatalog, tasks.FetchPlaylist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Reconciling:
				r.writePlain("\n🔍 %s\n", update.Message)
			case tasks.TrackAcquired, tasks.TrackFailed:
				r.writePlain("   %s\n", update.Message)
			case tasks.Finished:
				r.writePlain("\n📝 %s\n\n", update.Message)
			}
		}
	}()

	summary, err := engine.Run(ctx, progressCh)
	close(progressCh)
	wg.Wait()
	return summary, err
}

// ensureTargetDir creates the target directory when create_target_dir is set.
func (r *Runner) ensureTargetDir() error {
	if !r.config.Sync.CreateTargetDir {
		return nil
	}
	dir, err := r.targetDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCatalogUnreadable, err)
	}
	return nil
}

// reportFormat picks the report encoding from the file extension.
func reportFormat(path string) formatter.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatter.FormatJSON
	case ".csv":
		return formatter.FormatCSV
	default:
		return formatter.FormatText
	}
}

// Plan prints the tracks the next sync would acquire.
func (r *Runner) Plan(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.engine(ctx, cmd)
	if err != nil {
		return fmt.Errorf("could not plan sync: %w", err)
	}

	plan, err := engine.Plan(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not plan sync: %w", err)
	}

	if format == formatter.FormatText {
		r.writePlain("Playlist: %s (%d tracks)\n", plan.Playlist.Title, len(plan.Playlist.Tracks))
		r.writePlain("Local: %d tracks in %s\n", plan.Catalog.Len(), plan.Catalog.Dir)
	}
	data, err := formatter.RenderPending(plan.Pending, len(plan.Missing), format)
	if err != nil {
		return err
	}
	return r.write(data)
}

// Catalog lists the local catalog without contacting the remote service.
func (r *Runner) Catalog(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if cmd.IsSet("dir") {
		r.config.Sync.TargetDir = cmd.String("dir")
	}

	dir, err := r.targetDir()
	if err != nil {
		return err
	}
	c, err := catalog.Scan(dir)
	if err != nil {
		return err
	}

	data, err := formatter.RenderCatalog(c, format)
	if err != nil {
		return err
	}
	return r.write(data)
}

// accountChecker is implemented by services that can report the account behind their credentials.
type accountChecker interface {
	AccountStatus(ctx context.Context) (*services.YandexAccountStatus, error)
}

// Status verifies the token by fetching the account it belongs to.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	svc, err := r.yandex(ctx)
	if err != nil {
		return err
	}
	checker, ok := svc.(accountChecker)
	if !ok {
		return fmt.Errorf("%w: %s cannot report account status", shared.ErrNotImplemented, svc.Name())
	}

	status, err := checker.AccountStatus(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		r.writePlain("✗ The token was rejected. Run 'ymsync setup token' to get a new one.\n")
		return err
	}
	if err != nil {
		return err
	}

	name := status.Account.DisplayName
	if name == "" {
		name = status.Account.Login
	}
	r.writePlain("✓ Authenticated as %s (uid %s)\n", name, status.Account.UID)
	if !status.Plus.HasPlus {
		r.writePlain("No Plus subscription: only previews may be available for download\n")
	}
	return nil
}
