package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/northis/ym-api-organizer/internal/catalog"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/services"
	"github.com/northis/ym-api-organizer/internal/shared"
	"golang.org/x/time/rate"
)

// TagWriter embeds track metadata into a downloaded file before it gets its final name.
type TagWriter interface {
	Write(path, ext string, seq int, track models.RemoteTrack, media *models.Media) error
}

// Driver downloads pending tracks into a directory one at a time.
type Driver struct {
	svc     services.Service
	tags    TagWriter
	dir     string
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewDriver creates a driver writing into dir. ratePerSecond bounds how often a new track is started;
// zero or less disables the delay.
func NewDriver(svc services.Service, tags TagWriter, dir string, ratePerSecond float64, logger *log.Logger) *Driver {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{
		svc:     svc,
		tags:    tags,
		dir:     dir,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Acquire processes pending in order and reports what was written.
//
// A failed track is recorded and skipped without consuming its id: every later track moves down by one so the
// files written in a run stay consecutive. Cancelling ctx stops the driver before the next track and marks the
// summary as interrupted.
func (d *Driver) Acquire(ctx context.Context, pending []models.PendingTrack, progress chan<- ProgressUpdate) *models.RunSummary {
	summary := &models.RunSummary{
		Selected:   len(pending),
		Succeeded:  []models.Acquired{},
		Failed:     []models.Failure{},
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	total := len(pending)

	for i, p := range pending {
		if err := d.limiter.Wait(ctx); err != nil {
			summary.Interrupted = true
			break
		}

		p.SequenceID -= len(summary.Failed)
		sendProgress(progress, acquireUpdate(i+1, total, p))

		acquired, err := d.acquireOne(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Warn("interrupted", "id", p.SequenceID, "track", p.Track.String())
				summary.Interrupted = true
				break
			}

			f := models.Failure{
				Artist: p.Track.Artist,
				Title:  p.Track.Title,
				Key:    p.Track.IdentityKey(),
				Reason: err.Error(),
				Err:    fmt.Errorf("%w: %w", shared.ErrTrackAcquisition, err),
			}
			summary.Failed = append(summary.Failed, f)
			d.logger.Error("track failed", "artist", f.Artist, "title", f.Title, "err", err)
			sendProgress(progress, failedUpdate(i+1, total, f))
			continue
		}

		summary.Succeeded = append(summary.Succeeded, acquired)
		d.logger.Info("track acquired", "id", acquired.SequenceID, "file", acquired.Filename)
		sendProgress(progress, acquiredUpdate(i+1, total, acquired))
	}

	summary.FinishedAt = time.Now()
	return summary
}

// acquireOne fetches, tags and places a single track. The temp file never survives a failure.
func (d *Driver) acquireOne(ctx context.Context, p models.PendingTrack) (acquired models.Acquired, err error) {
	media, err := d.svc.FetchMedia(ctx, p.Track)
	if err != nil {
		return acquired, fmt.Errorf("fetch media: %w", err)
	}
	defer media.Close()

	ext := media.Ext()
	entry := catalog.EntryFor(p, ext)
	final := filepath.Join(d.dir, entry.Filename)
	if _, statErr := os.Lstat(final); statErr == nil {
		return acquired, fmt.Errorf("%s already exists", entry.Filename)
	}

	tmp := filepath.Join(d.dir, catalog.TempFilename())
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			err = errors.Join(err, fmt.Errorf("remove temp file: %w", rmErr))
		}
	}()

	if err = writeStream(tmp, media.Audio); err != nil {
		return acquired, err
	}

	if err = d.tags.Write(tmp, ext, p.SequenceID, p.Track, media); err != nil {
		return acquired, fmt.Errorf("tag: %w", err)
	}

	if _, statErr := os.Lstat(final); statErr == nil {
		return acquired, fmt.Errorf("%s already exists", entry.Filename)
	}
	if err = os.Rename(tmp, final); err != nil {
		return acquired, fmt.Errorf("rename: %w", err)
	}

	return models.Acquired{
		SequenceID: p.SequenceID,
		Artist:     entry.Artist,
		Title:      entry.Title,
		Key:        p.Track.IdentityKey(),
		Filename:   entry.Filename,
	}, nil
}

func writeStream(path string, r io.Reader) error {
	if r == nil {
		return fmt.Errorf("download: empty audio stream")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("download: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}
