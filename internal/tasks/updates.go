package tasks

import (
	"fmt"

	"github.com/northis/ym-api-organizer/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanCatalog Phase = iota
	FetchPlaylist
	Reconciling
	AcquireTrack
	TrackAcquired
	TrackFailed
	Finished
)

func (p Phase) String() string {
	switch p {
	case ScanCatalog:
		return "scan_catalog"
	case FetchPlaylist:
		return "fetch_playlist"
	case Reconciling:
		return "reconcile"
	case AcquireTrack:
		return "acquire_track"
	case TrackAcquired:
		return "track_acquired"
	case TrackFailed:
		return "track_failed"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func scanUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scanning %s...", dir),
	}
}

func scannedUpdate(c *models.Catalog) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d local tracks (next id %d)", c.Len(), c.NextID()),
		Data:    c,
	}
}

func fetchingPlaylistUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", ref),
	}
}

func fetchedPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", pl.Title, len(pl.Tracks)),
		Data:    pl,
	}
}

func reconcileUpdate(missing, selected int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconciling,
		Step:    selected,
		Total:   missing,
		Message: fmt.Sprintf("%d tracks missing, %d selected for this run", missing, selected),
	}
}

func acquireUpdate(step, total int, p models.PendingTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %04d. %s", step, total, p.SequenceID, p.Track),
		Data:    p,
	}
}

func acquiredUpdate(step, total int, a models.Acquired) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackAcquired,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, a.Filename),
		Data:    a,
	}
}

func failedUpdate(step, total int, f models.Failure) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s – %s: %s", step, total, f.Artist, f.Title, f.Reason),
		Data:    f,
	}
}

func finishedUpdate(s *models.RunSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finished,
		Step:    len(s.Succeeded),
		Total:   s.Selected,
		Message: fmt.Sprintf("Done: %d acquired, %d failed, %d remaining", len(s.Succeeded), len(s.Failed), s.Remaining()),
		Data:    s,
	}
}
