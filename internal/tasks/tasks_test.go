package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gofrs/flock"
	"github.com/northis/ym-api-organizer/internal/catalog"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/shared"
	ytesting "github.com/northis/ym-api-organizer/internal/testing"
)

func newEngine(svc *ytesting.MockService, dir string, quota int) *PlaylistEngine {
	return NewPlaylistEngine(svc, ytesting.NewMockTagWriter(), Options{
		PlaylistRef:  "owner:3",
		TargetDir:    dir,
		MaxDownloads: quota,
	}, nil)
}

func manyTracks(n int) []models.RemoteTrack {
	tracks := make([]models.RemoteTrack, n)
	for i := range tracks {
		tracks[i] = ytesting.MockTrack(fmt.Sprintf("Artist %02d", i+1), fmt.Sprintf("Song %02d", i+1))
	}
	return tracks
}

func mustRun(t *testing.T, e *PlaylistEngine) *models.RunSummary {
	t.Helper()
	summary, err := e.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return summary
}

func mustScan(t *testing.T, dir string) *models.Catalog {
	t.Helper()
	c, err := catalog.Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return c
}

func TestPlaylistEngineRun(t *testing.T) {
	t.Run("Appends After Existing Tracks", func(t *testing.T) {
		dir := t.TempDir()
		ytesting.MustWriteFiles(t, dir, "0001. A – X.mp3", "0002. B – Y.mp3")
		svc := ytesting.NewMockService(ytesting.MockTracks("A", "X", "B", "Y", "C", "Z")...)

		summary := mustRun(t, newEngine(svc, dir, 20))

		assertDirFiles(t, dir, "0001. A – X.mp3", "0002. B – Y.mp3", "0003. C – Z.mp3")
		if summary.RemoteCount != 3 || summary.LocalCount != 2 || summary.Missing != 1 || len(summary.Succeeded) != 1 {
			t.Errorf("unexpected summary %+v", summary)
		}
		if summary.Playlist != "Mock" {
			t.Errorf("Playlist = %q", summary.Playlist)
		}
		if got := svc.MediaCalls(); !equalStrings(got, []string{"C-Z"}) {
			t.Errorf("only the missing track should be fetched, got %v", got)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		dir := t.TempDir()
		svc := ytesting.NewMockService(ytesting.MockTracks("A", "X", "B", "Y")...)
		e := newEngine(svc, dir, 20)

		mustRun(t, e)
		second := mustRun(t, e)

		if len(second.Succeeded) != 0 || second.Missing != 0 {
			t.Errorf("second run should be a no-op, got %+v", second)
		}
		assertDirFiles(t, dir, "0001. A – X.mp3", "0002. B – Y.mp3")
		if len(svc.MediaCalls()) != 2 {
			t.Errorf("expected 2 media calls over both runs, got %d", len(svc.MediaCalls()))
		}
	})

	t.Run("Quota", func(t *testing.T) {
		dir := t.TempDir()
		tracks := manyTracks(50)
		e := newEngine(ytesting.NewMockService(tracks...), dir, 20)

		first := mustRun(t, e)
		if len(first.Succeeded) != 20 || first.Remaining() != 30 {
			t.Fatalf("expected 20 acquired and 30 remaining, got %d and %d", len(first.Succeeded), first.Remaining())
		}
		for i, a := range first.Succeeded {
			if a.SequenceID != i+1 || a.Key != tracks[i].IdentityKey() {
				t.Errorf("acquired[%d] = %+v, want id %d for %s", i, a, i+1, tracks[i])
			}
		}

		second := mustRun(t, e)
		if len(second.Succeeded) != 20 || second.Succeeded[0].SequenceID != 21 || second.Remaining() != 10 {
			t.Errorf("unexpected second run %+v", second)
		}
		if second.Succeeded[0].Key != tracks[20].IdentityKey() {
			t.Errorf("second run should continue in remote order")
		}
	})

	t.Run("Zero Quota", func(t *testing.T) {
		dir := t.TempDir()
		svc := ytesting.NewMockService(ytesting.MockTracks("A", "X")...)

		summary := mustRun(t, newEngine(svc, dir, 0))

		if summary.Missing != 1 || summary.Selected != 0 || len(svc.MediaCalls()) != 0 {
			t.Errorf("zero quota should acquire nothing, got %+v", summary)
		}
		assertDirFiles(t, dir)
	})

	t.Run("Partial Failure Retried Next Run", func(t *testing.T) {
		dir := t.TempDir()
		svc := ytesting.NewMockService(ytesting.MockTracks("A", "X", "B", "Y", "C", "Z")...)
		svc.MediaErrs["B-Y"] = errors.New("stream unavailable")
		e := newEngine(svc, dir, 20)

		first := mustRun(t, e)
		if len(first.Failed) != 1 || len(first.Succeeded) != 2 {
			t.Fatalf("unexpected first run %+v", first)
		}
		assertDirFiles(t, dir, "0001. A – X.mp3", "0002. C – Z.mp3")

		delete(svc.MediaErrs, "B-Y")
		second := mustRun(t, e)
		if second.Missing != 1 || len(second.Succeeded) != 1 {
			t.Fatalf("unexpected second run %+v", second)
		}
		assertDirFiles(t, dir, "0001. A – X.mp3", "0002. C – Z.mp3", "0003. B – Y.mp3")
	})

	t.Run("No Duplicate Ids", func(t *testing.T) {
		dir := t.TempDir()
		ytesting.MustWriteFiles(t, dir, "0004. Old – One.mp3", "0009. Old – Two.mp3")
		e := newEngine(ytesting.NewMockService(manyTracks(5)...), dir, 20)

		mustRun(t, e)

		c := mustScan(t, dir)
		if len(c.Duplicates()) != 0 {
			t.Errorf("duplicate ids after run: %v", c.Duplicates())
		}
		if c.Len() != 7 || c.MaxID() != 14 {
			t.Errorf("expected 7 entries up to id 14, got %d up to %d", c.Len(), c.MaxID())
		}
	})

	t.Run("Catalog Unreadable", func(t *testing.T) {
		svc := ytesting.NewMockService(ytesting.MockTracks("A", "X")...)

		_, err := newEngine(svc, filepath.Join(t.TempDir(), "missing"), 20).Run(context.Background(), nil)

		if !errors.Is(err, shared.ErrCatalogUnreadable) {
			t.Errorf("expected ErrCatalogUnreadable, got %v", err)
		}
		if svc.PlaylistCalls() != 0 {
			t.Error("the playlist must not be fetched when the catalog is unreadable")
		}
	})

	t.Run("Remote Unavailable", func(t *testing.T) {
		dir := t.TempDir()
		ytesting.MustWriteFiles(t, dir, "0001. A – X.mp3")
		svc := ytesting.NewMockService()
		svc.PlaylistErr = shared.ErrNotAuthenticated

		_, err := newEngine(svc, dir, 20).Run(context.Background(), nil)

		if !errors.Is(err, shared.ErrRemoteUnavailable) || !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrRemoteUnavailable wrapping the cause, got %v", err)
		}
		assertDirFiles(t, dir, "0001. A – X.mp3")
	})

	t.Run("Sync In Progress", func(t *testing.T) {
		dir := t.TempDir()
		held := flock.New(filepath.Join(dir, LockFilename))
		ok, err := held.TryLock()
		if err != nil || !ok {
			t.Fatalf("failed to take lock: %v", err)
		}
		defer held.Unlock()

		svc := ytesting.NewMockService(ytesting.MockTracks("A", "X")...)
		_, err = newEngine(svc, dir, 20).Run(context.Background(), nil)

		if !errors.Is(err, shared.ErrSyncInProgress) {
			t.Errorf("expected ErrSyncInProgress, got %v", err)
		}
		if svc.PlaylistCalls() != 0 {
			t.Error("a locked directory must not trigger a fetch")
		}
	})

	t.Run("Removes Stale Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		stale := ".ymsync-1b4e28ba-2fa1-11d2-883f-0016d3cca427.part"
		ytesting.MustWriteFiles(t, dir, stale)

		mustRun(t, newEngine(ytesting.NewMockService(), dir, 20))

		if _, err := os.Stat(filepath.Join(dir, stale)); !os.IsNotExist(err) {
			t.Error("stale temp file should be removed")
		}
	})

	t.Run("Progress", func(t *testing.T) {
		dir := t.TempDir()
		progress := make(chan ProgressUpdate, 64)
		e := newEngine(ytesting.NewMockService(ytesting.MockTracks("A", "X")...), dir, 20)

		if _, err := e.Run(context.Background(), progress); err != nil {
			t.Fatal(err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) == 0 || phases[0] != ScanCatalog || phases[len(phases)-1] != Finished {
			t.Errorf("unexpected phase sequence %v", phases)
		}
		if !slices.Contains(phases, Reconciling) {
			t.Errorf("expected a %s update, got %v", Reconciling, phases)
		}
		if Reconciling.String() != "reconcile" {
			t.Errorf("Reconciling.String() = %q", Reconciling.String())
		}
	})

	t.Run("Uninitialized", func(t *testing.T) {
		_, err := NewPlaylistEngine(nil, nil, Options{TargetDir: t.TempDir()}, nil).Run(context.Background(), nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestPlaylistEnginePlan(t *testing.T) {
	dir := t.TempDir()
	stale := ".ymsync-1b4e28ba-2fa1-11d2-883f-0016d3cca427.part"
	ytesting.MustWriteFiles(t, dir, "0001. A – X.mp3", stale)
	svc := ytesting.NewMockService(ytesting.MockTracks("A", "X", "B", "Y", "C", "Z")...)

	plan, err := newEngine(svc, dir, 1).Plan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(plan.Missing) != 2 || len(plan.Pending) != 1 {
		t.Fatalf("expected 2 missing and 1 pending, got %d and %d", len(plan.Missing), len(plan.Pending))
	}
	if p := plan.Pending[0]; p.SequenceID != 2 || p.Track.ID != "B-Y" {
		t.Errorf("unexpected pending %+v", p)
	}
	if plan.Catalog.Len() != 1 || plan.Playlist.Title != "Mock" {
		t.Errorf("unexpected plan %+v", plan)
	}
	if len(svc.MediaCalls()) != 0 {
		t.Error("plan must not download")
	}
	assertDirFiles(t, dir, "0001. A – X.mp3", stale)
}
