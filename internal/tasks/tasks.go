// package tasks implements the incremental playlist mirror.
//
// The core abstraction is SyncEngine, which reconciles a remote playlist against the local catalog and acquires
// the missing tracks. Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/northis/ym-api-organizer/internal/catalog"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/services"
	"github.com/northis/ym-api-organizer/internal/shared"
)

// LockFilename is the advisory lock taken in the target directory for the duration of a run.
const LockFilename = ".ymsync.lock"

// DefaultMaxDownloads is the per-run quota used when none is configured.
const DefaultMaxDownloads = 20

// Options configures a sync.
type Options struct {
	PlaylistRef  string  // playlist URL or "owner:kind"
	TargetDir    string  // directory holding the numbered tracks
	MaxDownloads int     // per-run quota; zero or less acquires nothing
	RateLimit    float64 // tracks started per second; zero or less disables the delay
}

// PlanResult is everything a run would do, computed without downloading.
type PlanResult struct {
	Playlist *models.Playlist     // Remote snapshot
	Catalog  *models.Catalog      // Local catalog at scan time
	Missing  []models.RemoteTrack // Remote tracks absent locally, in remote order
	Pending  []models.PendingTrack
}

// SyncEngine defines the mirror operations.
type SyncEngine interface {
	// Run scans the target directory, fetches the playlist and acquires up to MaxDownloads missing tracks.
	//
	// Only an unreadable catalog, an unavailable playlist or a concurrent run abort it; per-track failures end up in
	// the summary.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.RunSummary, error)

	// Plan computes the tracks Run would acquire without touching the directory.
	Plan(ctx context.Context, progress chan<- ProgressUpdate) (*PlanResult, error)
}

// PlaylistEngine implements SyncEngine for a single playlist and directory.
type PlaylistEngine struct {
	svc    services.Service
	tags   TagWriter
	opts   Options
	logger *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided service and tag writer.
func NewPlaylistEngine(svc services.Service, tags TagWriter, opts Options, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PlaylistEngine{svc: svc, tags: tags, opts: opts, logger: logger}
}

// Run performs one sync pass.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.RunSummary, error) {
	started := time.Now()

	if e.svc == nil || e.tags == nil {
		return nil, fmt.Errorf("%w: engine not initialized", shared.ErrServiceUnavailable)
	}

	lock := flock.New(filepath.Join(e.opts.TargetDir, LockFilename))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnreadable, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", shared.ErrSyncInProgress, e.opts.TargetDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release lock", "err", err)
		}
	}()

	plan, err := e.plan(ctx, progress, true)
	if err != nil {
		return nil, err
	}

	driver := NewDriver(e.svc, e.tags, e.opts.TargetDir, e.opts.RateLimit, e.logger)
	summary := driver.Acquire(ctx, plan.Pending, progress)

	summary.Playlist = plan.Playlist.Title
	summary.RemoteCount = len(plan.Playlist.Tracks)
	summary.LocalCount = plan.Catalog.Len()
	summary.Missing = len(plan.Missing)
	summary.StartedAt = started

	e.logger.Info("sync finished",
		"acquired", len(summary.Succeeded),
		"failed", len(summary.Failed),
		"remaining", summary.Remaining(),
		"interrupted", summary.Interrupted)
	sendProgress(progress, finishedUpdate(summary))
	return summary, nil
}

// Plan computes the pending list without downloading.
func (e *PlaylistEngine) Plan(ctx context.Context, progress chan<- ProgressUpdate) (*PlanResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	return e.plan(ctx, progress, false)
}

// plan runs the scanner before any network activity, then fetches, reconciles, selects and assigns.
func (e *PlaylistEngine) plan(ctx context.Context, progress chan<- ProgressUpdate, cleanup bool) (*PlanResult, error) {
	sendProgress(progress, scanUpdate(e.opts.TargetDir))
	c, err := catalog.Scan(e.opts.TargetDir)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, scannedUpdate(c))
	e.logger.Debug("catalog scanned", "dir", c.Dir, "entries", c.Len(), "next_id", c.NextID())

	for id, dups := range c.Duplicates() {
		names := make([]string, len(dups))
		for i, d := range dups {
			names[i] = d.Filename
		}
		e.logger.Warn("duplicate sequence id", "id", id, "files", names)
	}

	if cleanup && len(c.Stale) > 0 {
		removed, err := catalog.RemoveStale(c)
		if err != nil {
			e.logger.Warn("failed to remove stale temp files", "err", err)
		}
		if len(removed) > 0 {
			e.logger.Info("removed stale temp files", "count", len(removed))
		}
	}

	sendProgress(progress, fetchingPlaylistUpdate(e.opts.PlaylistRef))
	pl, err := e.svc.FetchPlaylist(ctx, e.opts.PlaylistRef)
	if err != nil {
		if errors.Is(err, shared.ErrRemoteUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrRemoteUnavailable, err)
	}
	sendProgress(progress, fetchedPlaylistUpdate(pl))

	missing := Reconcile(pl.Tracks, c)
	selected := Select(missing, e.opts.MaxDownloads)
	pending := Assign(selected, c.NextID())
	sendProgress(progress, reconcileUpdate(len(missing), len(selected)))

	e.logger.Info("reconciled",
		"playlist", pl.Title,
		"remote", len(pl.Tracks),
		"local", c.Len(),
		"missing", len(missing),
		"selected", len(selected))

	return &PlanResult{Playlist: pl, Catalog: c, Missing: missing, Pending: pending}, nil
}
