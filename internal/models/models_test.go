package models

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestTrackKey(t *testing.T) {
	local := LocalEntry{SequenceID: 5, Artist: "The Band", Title: "Song"}
	remote := RemoteTrack{Artist: " the band ", Title: "SONG"}

	if local.Key() != remote.IdentityKey() {
		t.Errorf("expected keys to match: %q vs %q", local.Key(), remote.IdentityKey())
	}

	t.Run("sanitized characters match", func(t *testing.T) {
		remote := RemoteTrack{Artist: "AC/DC", Title: "T.N.T?"}
		local := LocalEntry{Artist: "AC-DC", Title: "T.N.T-"}
		if local.Key() != remote.IdentityKey() {
			t.Errorf("expected sanitized keys to match: %q vs %q", local.Key(), remote.IdentityKey())
		}
	})

	t.Run("empty artist uses placeholder", func(t *testing.T) {
		remote := RemoteTrack{Artist: "", Title: "Intro"}
		local := LocalEntry{Artist: "Unknown Artist", Title: "Intro"}
		if local.Key() != remote.IdentityKey() {
			t.Errorf("expected placeholder keys to match: %q vs %q", local.Key(), remote.IdentityKey())
		}
	})

	t.Run("precomputed key wins", func(t *testing.T) {
		remote := RemoteTrack{Key: "custom", Artist: "A", Title: "B"}
		if remote.IdentityKey() != "custom" {
			t.Errorf("expected precomputed key, got %q", remote.IdentityKey())
		}
	})
}

func TestRemoteTrack_FullTitle(t *testing.T) {
	tests := []struct {
		track RemoteTrack
		want  string
	}{
		{track: RemoteTrack{Title: "Song"}, want: "Song"},
		{track: RemoteTrack{Title: "Song", Version: "Remastered 2011"}, want: "Song (Remastered 2011)"},
	}

	for _, tt := range tests {
		if got := tt.track.FullTitle(); got != tt.want {
			t.Errorf("FullTitle() = %q, want %q", got, tt.want)
		}
	}
}

func TestCatalog(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		c := NewCatalog("/music", nil, nil)
		if c.MaxID() != 0 || c.NextID() != 1 {
			t.Errorf("expected max 0 and next 1, got %d and %d", c.MaxID(), c.NextID())
		}
		if len(c.Keys()) != 0 {
			t.Error("expected no keys")
		}
		if len(c.Duplicates()) != 0 {
			t.Error("expected no duplicates")
		}
	})

	t.Run("nil catalog", func(t *testing.T) {
		var c *Catalog
		if c.Len() != 0 || c.NextID() != 1 {
			t.Errorf("expected nil catalog to behave as empty")
		}
	})

	t.Run("sorted with gaps", func(t *testing.T) {
		c := NewCatalog("/music", []LocalEntry{
			{SequenceID: 12, Artist: "C", Title: "Z", Filename: "0012. C – Z.mp3"},
			{SequenceID: 1, Artist: "A", Title: "X", Filename: "0001. A – X.mp3"},
			{SequenceID: 7, Artist: "B", Title: "Y", Filename: "0007. B – Y.mp3"},
		}, nil)

		if c.MaxID() != 12 || c.NextID() != 13 {
			t.Errorf("expected max 12 and next 13, got %d and %d", c.MaxID(), c.NextID())
		}
		for i, want := range []int{1, 7, 12} {
			if c.Entries[i].SequenceID != want {
				t.Errorf("entry %d has id %d, want %d", i, c.Entries[i].SequenceID, want)
			}
		}
		if _, ok := c.Keys()[TrackKey("b", "y")]; !ok {
			t.Error("expected key for B/Y")
		}
	})

	t.Run("duplicates grouped", func(t *testing.T) {
		c := NewCatalog("/music", []LocalEntry{
			{SequenceID: 2, Artist: "A", Title: "X", Filename: "0002. A – X.mp3"},
			{SequenceID: 2, Artist: "B", Title: "Y", Filename: "0002. B – Y.mp3"},
			{SequenceID: 2, Artist: "C", Title: "Z", Filename: "0002. C – Z.mp3"},
			{SequenceID: 3, Artist: "D", Title: "W", Filename: "0003. D – W.mp3"},
		}, nil)

		dups := c.Duplicates()
		if len(dups) != 1 || len(dups[2]) != 3 {
			t.Errorf("expected three entries sharing id 2, got %v", dups)
		}
	})
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return errors.New("closed")
}

func TestMedia(t *testing.T) {
	tests := []struct {
		codec string
		want  string
	}{
		{codec: "", want: "mp3"},
		{codec: "MP3", want: "mp3"},
		{codec: "aac", want: "m4a"},
		{codec: "flac", want: "flac"},
	}
	for _, tt := range tests {
		m := &Media{Codec: tt.codec}
		if got := m.Ext(); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.codec, got, tt.want)
		}
	}

	t.Run("Close", func(t *testing.T) {
		var nilMedia *Media
		if err := nilMedia.Close(); err != nil {
			t.Errorf("expected nil media close to succeed, got %v", err)
		}

		rec := &closeRecorder{Reader: strings.NewReader("x")}
		m := &Media{Audio: rec}
		if err := m.Close(); err == nil || !rec.closed {
			t.Error("expected Close to reach the audio stream")
		}
	})
}

func TestRunSummary_Remaining(t *testing.T) {
	s := &RunSummary{Missing: 50, Succeeded: make([]Acquired, 20)}
	if s.Remaining() != 30 {
		t.Errorf("Remaining() = %d, want 30", s.Remaining())
	}
}
