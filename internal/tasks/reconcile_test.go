package tasks

import (
	"testing"

	"github.com/northis/ym-api-organizer/internal/catalog"
	"github.com/northis/ym-api-organizer/internal/models"
	ytesting "github.com/northis/ym-api-organizer/internal/testing"
)

func catalogOf(t *testing.T, names ...string) *models.Catalog {
	t.Helper()
	var entries []models.LocalEntry
	for _, name := range names {
		e, ok := catalog.ParseFilename(name)
		if !ok {
			t.Fatalf("bad fixture name %q", name)
		}
		entries = append(entries, e)
	}
	return models.NewCatalog("test", entries, nil)
}

func titles(tracks []models.RemoteTrack) []string {
	out := make([]string, len(tracks))
	for i, tr := range tracks {
		out[i] = tr.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name   string
		local  []string
		remote []models.RemoteTrack
		want   []string
	}{
		{
			name:   "empty catalog",
			remote: ytesting.MockTracks("A", "X", "B", "Y"),
			want:   []string{"X", "Y"},
		},
		{
			name:   "all present",
			local:  []string{"0001. A – X.mp3", "0002. B – Y.mp3"},
			remote: ytesting.MockTracks("A", "X", "B", "Y"),
			want:   []string{},
		},
		{
			name:   "keeps remote order",
			local:  []string{"0001. B – Y.mp3"},
			remote: ytesting.MockTracks("D", "W", "A", "X", "B", "Y", "C", "Z"),
			want:   []string{"W", "X", "Z"},
		},
		{
			name:   "formatting insensitive identity",
			local:  []string{"0005. The Band – Song.mp3"},
			remote: []models.RemoteTrack{{Artist: " the band ", Title: "SONG"}},
			want:   []string{},
		},
		{
			name:   "gaps do not matter",
			local:  []string{"0001. A – X.mp3", "0010. C – Z.mp3"},
			remote: ytesting.MockTracks("A", "X", "B", "Y", "C", "Z"),
			want:   []string{"Y"},
		},
		{
			name:   "legacy names count as present",
			local:  []string{"0003. Old - Song.mp3"},
			remote: ytesting.MockTracks("Old", "Song", "New", "Song"),
			want:   []string{"Song"},
		},
		{
			name:   "sanitized names match",
			local:  []string{"0001. AC-DC – What- Why.mp3"},
			remote: ytesting.MockTracks("AC/DC", "What? Why"),
			want:   []string{},
		},
		{
			name:   "remote duplicates emitted once",
			remote: ytesting.MockTracks("A", "X", "B", "Y", "a", "x"),
			want:   []string{"X", "Y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(Reconcile(tt.remote, catalogOf(t, tt.local...)))
			if !equalStrings(got, tt.want) {
				t.Errorf("Reconcile() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nil catalog", func(t *testing.T) {
		if got := Reconcile(ytesting.MockTracks("A", "X"), nil); len(got) != 1 {
			t.Errorf("expected 1 missing track, got %d", len(got))
		}
	})
}

func TestSelect(t *testing.T) {
	fifty := make([]models.RemoteTrack, 50)
	for i := range fifty {
		fifty[i] = ytesting.MockTrack("Artist", string(rune('A'+i%26))+string(rune('a'+i/26)))
	}

	tests := []struct {
		name    string
		missing []models.RemoteTrack
		quota   int
		want    int
	}{
		{name: "quota below missing", missing: fifty, quota: 20, want: 20},
		{name: "quota equals missing", missing: fifty, quota: 50, want: 50},
		{name: "quota above missing", missing: fifty[:3], quota: 20, want: 3},
		{name: "zero quota", missing: fifty, quota: 0, want: 0},
		{name: "negative quota", missing: fifty, quota: -1, want: 0},
		{name: "nothing missing", quota: 20, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.missing, tt.quota)
			if len(got) != tt.want {
				t.Fatalf("Select() returned %d tracks, want %d", len(got), tt.want)
			}
			for i := range got {
				if got[i].ID != tt.missing[i].ID {
					t.Errorf("track %d = %s, want leading track %s", i, got[i].ID, tt.missing[i].ID)
				}
			}
		})
	}
}

func TestAssign(t *testing.T) {
	selected := ytesting.MockTracks("A", "X", "B", "Y", "C", "Z")

	pending := Assign(selected, 7)
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending tracks, got %d", len(pending))
	}
	for i, p := range pending {
		if p.SequenceID != 7+i {
			t.Errorf("pending[%d].SequenceID = %d, want %d", i, p.SequenceID, 7+i)
		}
		if p.Track.ID != selected[i].ID {
			t.Errorf("pending[%d] = %s, want %s", i, p.Track.ID, selected[i].ID)
		}
	}

	if got := Assign(nil, 1); len(got) != 0 {
		t.Errorf("expected no pending tracks, got %d", len(got))
	}
}
