// package shared defines shared helpers
package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] that appends to the file at path, creating parent directories as needed.
//
// Used by the TUI so log lines do not interfere with rendering.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f), nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// ParseLevel converts a level name (debug, info, warn, error) to a [log.Level].
//
// Empty input yields [log.InfoLevel].
func ParseLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	ll, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
	}
	return ll, nil
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

var folder = cases.Fold()

// normalizeField composes, case-folds and collapses whitespace in s.
func normalizeField(s string) string {
	s = norm.NFC.String(s)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeTrackKey builds the identity key of a track from its title and artist.
//
// Matching is case-insensitive (Unicode case folding), ignores surrounding and repeated whitespace, and treats
// composed and decomposed forms of the same characters as equal.
func NormalizeTrackKey(title, artist string) string {
	return normalizeField(title) + "|" + normalizeField(artist)
}

// MarshalJSON encodes data as JSON, indented when pretty is set.
func MarshalJSON(data any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// ExpandHome replaces a leading "~" in path with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

const (
	UnknownArtist = "Unknown Artist"
	UntitledTrack = "Untitled"
)

var illegalFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// SanitizeComponent makes s safe for use inside a file name.
//
// Characters illegal on common filesystems become "-", control characters become spaces, and surrounding
// whitespace is trimmed.
func SanitizeComponent(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(illegalFilenameChars.ReplaceAllString(s, "-"))
}

// SanitizeArtist sanitizes an artist name for a file name.
//
// The en dash separates artist from title in file names, so it may not appear in the artist part.
func SanitizeArtist(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(SanitizeComponent(s), "–", "-"))
	if s == "" {
		return UnknownArtist
	}
	return s
}

// SanitizeTitle sanitizes a track title for a file name.
func SanitizeTitle(s string) string {
	if s = SanitizeComponent(s); s == "" {
		return UntitledTrack
	}
	return s
}
