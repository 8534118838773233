// package models defines the data model for the playlist mirror
package models

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/northis/ym-api-organizer/internal/shared"
)

// TrackKey derives the identity key for an artist/title pair.
//
// Both parts go through the same sanitizing used for file names, so a remote track and the file it was saved as
// always produce the same key.
func TrackKey(artist, title string) string {
	return shared.NormalizeTrackKey(shared.SanitizeTitle(title), shared.SanitizeArtist(artist))
}

// LocalEntry is a track already present in the target directory, parsed from its file name.
type LocalEntry struct {
	SequenceID int    `json:"id"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Ext        string `json:"ext"`
	Filename   string `json:"filename"`
	Legacy     bool   `json:"legacy,omitempty"` // named with the old " - " separator
}

// Key returns the identity key of the entry.
func (e LocalEntry) Key() string {
	return TrackKey(e.Artist, e.Title)
}

// RemoteTrack is a track of the remote playlist as supplied by a [services.Service].
type RemoteTrack struct {
	Key          string   `json:"key"`
	ID           string   `json:"id"`
	AlbumID      string   `json:"album_id,omitempty"`
	Artist       string   `json:"artist"` // primary artist, used for naming and identity
	Title        string   `json:"title"`  // title without version suffix, used for naming and identity
	Version      string   `json:"version,omitempty"`
	Artists      []string `json:"artists,omitempty"`
	Album        string   `json:"album,omitempty"`
	AlbumArtists []string `json:"album_artists,omitempty"`
	Year         int      `json:"year,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	StreamRef    string   `json:"-"` // opaque handle understood by the service
	CoverRef     string   `json:"-"`
	Lyrics       string   `json:"-"`
	HasLyrics    bool     `json:"has_lyrics,omitempty"`
	WebURL       string   `json:"web_url,omitempty"`
}

// IdentityKey returns the precomputed key or derives it from Artist and Title.
func (t RemoteTrack) IdentityKey() string {
	if t.Key != "" {
		return t.Key
	}
	return TrackKey(t.Artist, t.Title)
}

// FullTitle returns the title with its version in parentheses, if any.
func (t RemoteTrack) FullTitle() string {
	if t.Version == "" {
		return t.Title
	}
	return fmt.Sprintf("%s (%s)", t.Title, t.Version)
}

// String formats the track as "Artist – Title" for logs and reports.
func (t RemoteTrack) String() string {
	return fmt.Sprintf("%s – %s", t.Artist, t.Title)
}

// Playlist is an ordered snapshot of a remote playlist.
type Playlist struct {
	Owner      string        `json:"owner"`
	Kind       string        `json:"kind"`
	Title      string        `json:"title"`
	TrackCount int           `json:"track_count"`
	Tracks     []RemoteTrack `json:"tracks"`
}

// PendingTrack is a selected remote track with its assigned sequence id.
type PendingTrack struct {
	SequenceID int         `json:"id"`
	Track      RemoteTrack `json:"track"`
}

// Media holds everything fetched for a single track.
//
// Audio must be closed by the consumer; [Media.Close] does so.
type Media struct {
	Audio   io.ReadCloser
	Codec   string
	Bitrate int
	Cover   []byte
	Lyrics  string
}

// Ext returns the file extension (without dot) for the media's codec.
func (m *Media) Ext() string {
	switch strings.ToLower(m.Codec) {
	case "", "mp3":
		return "mp3"
	case "aac", "he-aac":
		return "m4a"
	default:
		return strings.ToLower(m.Codec)
	}
}

// Close releases the audio stream.
func (m *Media) Close() error {
	if m == nil || m.Audio == nil {
		return nil
	}
	return m.Audio.Close()
}

// Catalog is the set of tracks present in the target directory at scan time.
//
// Entries are sorted by sequence id, then by file name. A Catalog is never modified after a scan.
type Catalog struct {
	Dir     string       `json:"dir"`
	Entries []LocalEntry `json:"entries"`
	Stale   []string     `json:"stale,omitempty"` // leftovers of interrupted runs
}

// NewCatalog builds a Catalog with entries in canonical order.
func NewCatalog(dir string, entries []LocalEntry, stale []string) *Catalog {
	sorted := make([]LocalEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SequenceID != sorted[j].SequenceID {
			return sorted[i].SequenceID < sorted[j].SequenceID
		}
		return sorted[i].Filename < sorted[j].Filename
	})
	return &Catalog{Dir: dir, Entries: sorted, Stale: stale}
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// MaxID returns the highest sequence id in the catalog, or 0 when empty.
func (c *Catalog) MaxID() int {
	if c.Len() == 0 {
		return 0
	}
	return c.Entries[len(c.Entries)-1].SequenceID
}

// NextID returns the first sequence id available for new tracks.
func (c *Catalog) NextID() int {
	return c.MaxID() + 1
}

// Keys returns the set of identity keys present in the catalog.
func (c *Catalog) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, c.Len())
	if c == nil {
		return keys
	}
	for _, e := range c.Entries {
		keys[e.Key()] = struct{}{}
	}
	return keys
}

// Duplicates returns entries that share a sequence id with another entry, grouped by id.
func (c *Catalog) Duplicates() map[int][]LocalEntry {
	dups := make(map[int][]LocalEntry)
	if c == nil {
		return dups
	}
	for i := 1; i < len(c.Entries); i++ {
		prev, cur := c.Entries[i-1], c.Entries[i]
		if prev.SequenceID != cur.SequenceID {
			continue
		}
		if len(dups[cur.SequenceID]) == 0 {
			dups[cur.SequenceID] = append(dups[cur.SequenceID], prev)
		}
		dups[cur.SequenceID] = append(dups[cur.SequenceID], cur)
	}
	return dups
}

// Acquired describes a track written to the target directory.
type Acquired struct {
	SequenceID int    `json:"id"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Key        string `json:"key"`
	Filename   string `json:"filename"`
}

// Failure describes a track that could not be acquired.
type Failure struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// RunSummary is the outcome of one sync run.
type RunSummary struct {
	Playlist    string     `json:"playlist"`
	RemoteCount int        `json:"remote_count"`
	LocalCount  int        `json:"local_count"`
	Missing     int        `json:"missing"`
	Selected    int        `json:"selected"`
	Succeeded   []Acquired `json:"succeeded"`
	Failed      []Failure  `json:"failed"`
	Interrupted bool       `json:"interrupted,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  time.Time  `json:"finished_at"`
}

// Remaining returns how many missing tracks are left for later runs.
func (s *RunSummary) Remaining() int {
	return s.Missing - len(s.Succeeded)
}
