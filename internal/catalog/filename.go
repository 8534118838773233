package catalog

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/shared"
)

// Separator joins artist and title in file names.
const Separator = " – "

// TempPrefix and TempSuffix frame the names of in-flight downloads.
const (
	TempPrefix = ".ymsync-"
	TempSuffix = ".part"
)

var (
	filenameRe       = regexp.MustCompile(`^(\d+)\. (.+?) – (.+)\.([A-Za-z0-9]{1,5})$`)
	legacyFilenameRe = regexp.MustCompile(`(?i)^(\d+)\.\s*(.+?) - (.+)\.(mp3)$`)
	tempFilenameRe   = regexp.MustCompile(`^\.ymsync-[0-9a-f-]+\.part$`)
)

// ParseFilename parses a track file name of the form "NNNN. Artist – Title.ext".
//
// Names written with the older " - " separator are accepted and flagged as legacy. ok is false for anything else.
func ParseFilename(name string) (entry models.LocalEntry, ok bool) {
	m := filenameRe.FindStringSubmatch(name)
	legacy := false
	if m == nil {
		if m = legacyFilenameRe.FindStringSubmatch(name); m == nil {
			return models.LocalEntry{}, false
		}
		legacy = true
	}

	id, err := strconv.Atoi(m[1])
	if err != nil || id < 0 {
		return models.LocalEntry{}, false
	}

	return models.LocalEntry{
		SequenceID: id,
		Artist:     m[2],
		Title:      m[3],
		Ext:        m[4],
		Filename:   name,
		Legacy:     legacy,
	}, true
}

// FormatFilename builds the canonical file name for entry.
//
// It is the inverse of [ParseFilename] for canonical names only. The id is zero-padded to at least four digits,
// so "01. A – X.mp3" or "00012. A – X.mp3" parse fine but format back as "0001. …" and "0012. …".
func FormatFilename(entry models.LocalEntry) string {
	return fmt.Sprintf("%04d. %s%s%s.%s", entry.SequenceID, entry.Artist, Separator, entry.Title, entry.Ext)
}

// EntryFor returns the entry a pending track will be stored as.
func EntryFor(p models.PendingTrack, ext string) models.LocalEntry {
	entry := models.LocalEntry{
		SequenceID: p.SequenceID,
		Artist:     shared.SanitizeArtist(p.Track.Artist),
		Title:      shared.SanitizeTitle(p.Track.Title),
		Ext:        ext,
	}
	entry.Filename = FormatFilename(entry)
	return entry
}

// TempFilename returns a fresh name for an in-flight download.
func TempFilename() string {
	return TempPrefix + shared.GenerateID() + TempSuffix
}

// IsTempFilename reports whether name was produced by [TempFilename].
func IsTempFilename(name string) bool {
	return tempFilenameRe.MatchString(name)
}
