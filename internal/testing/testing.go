// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/northis/ym-api-organizer/internal/models"
)

// MockTrack builds a remote track with an id derived from artist and title.
func MockTrack(artist, title string) models.RemoteTrack {
	id := fmt.Sprintf("%s-%s", artist, title)
	t := models.RemoteTrack{
		ID:        id,
		Artist:    artist,
		Title:     title,
		Artists:   []string{artist},
		StreamRef: id,
		WebURL:    "https://music.yandex.ru/track/" + id,
	}
	t.Key = t.IdentityKey()
	return t
}

// MockTracks builds one track per "artist", "title" pair.
func MockTracks(pairs ...string) []models.RemoteTrack {
	tracks := make([]models.RemoteTrack, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		tracks = append(tracks, MockTrack(pairs[i], pairs[i+1]))
	}
	return tracks
}

// MockService is a test double for [services.Service]
type MockService struct {
	Playlist    *models.Playlist
	PlaylistErr error
	MediaErrs   map[string]error // by track id
	Broken      map[string]bool  // audio streams that fail mid-read
	Codec       string

	// BeforeMedia runs before each FetchMedia call.
	BeforeMedia func(track models.RemoteTrack)

	mu            sync.Mutex
	playlistCalls int
	mediaCalls    []string
}

// NewMockService returns a service whose playlist holds tracks in order.
func NewMockService(tracks ...models.RemoteTrack) *MockService {
	return &MockService{
		Playlist:  &models.Playlist{Owner: "owner", Kind: "3", Title: "Mock", TrackCount: len(tracks), Tracks: tracks},
		MediaErrs: map[string]error{},
		Broken:    map[string]bool{},
		Codec:     "mp3",
	}
}

func (m *MockService) FetchPlaylist(ctx context.Context, ref string) (*models.Playlist, error) {
	m.mu.Lock()
	m.playlistCalls++
	m.mu.Unlock()

	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pl := *m.Playlist
	pl.Tracks = append([]models.RemoteTrack(nil), m.Playlist.Tracks...)
	return &pl, nil
}

func (m *MockService) FetchMedia(ctx context.Context, track models.RemoteTrack) (*models.Media, error) {
	if m.BeforeMedia != nil {
		m.BeforeMedia(track)
	}

	m.mu.Lock()
	m.mediaCalls = append(m.mediaCalls, track.ID)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.MediaErrs[track.ID]; err != nil {
		return nil, err
	}

	var audio io.ReadCloser = io.NopCloser(bytes.NewReader(MockAudio(track.ID)))
	if m.Broken[track.ID] {
		audio = &FCloser{}
	}
	return &models.Media{Audio: audio, Codec: m.Codec, Bitrate: 320}, nil
}

func (m *MockService) Name() string { return "mock" }

// PlaylistCalls returns how many times FetchPlaylist was called.
func (m *MockService) PlaylistCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlistCalls
}

// MediaCalls returns the track ids passed to FetchMedia, in call order.
func (m *MockService) MediaCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.mediaCalls...)
}

// MockAudio returns the bytes MockService serves for a track id.
func MockAudio(id string) []byte {
	return []byte("AUDIO:" + id)
}

// TagCall records one [MockTagWriter.Write] call.
type TagCall struct {
	Path string
	Ext  string
	Seq  int
	ID   string
}

// MockTagWriter records tag writes instead of touching files.
type MockTagWriter struct {
	Errs map[string]error // by track id

	mu    sync.Mutex
	calls []TagCall
}

func NewMockTagWriter() *MockTagWriter {
	return &MockTagWriter{Errs: map[string]error{}}
}

func (w *MockTagWriter) Write(path, ext string, seq int, track models.RemoteTrack, media *models.Media) error {
	w.mu.Lock()
	w.calls = append(w.calls, TagCall{Path: path, Ext: ext, Seq: seq, ID: track.ID})
	w.mu.Unlock()
	return w.Errs[track.ID]
}

// Calls returns the recorded writes in call order.
func (w *MockTagWriter) Calls() []TagCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]TagCall(nil), w.calls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustWriteFiles creates each named file in dir with placeholder content.
func MustWriteFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

// MustListDir returns the names of the regular files in dir.
func MustListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
