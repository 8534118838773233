// package tags writes ID3v2.4 metadata into downloaded tracks
package tags

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/shared"
)

// multi-value text frames are null separated in ID3v2.4
const valueSeparator = "\x00"

// Writer tags MP3 files in place.
type Writer struct {
	// LyricsLanguage is the ISO-639-2 code stored in USLT frames.
	LyricsLanguage string
}

// NewWriter returns a Writer with default settings.
func NewWriter() *Writer {
	return &Writer{LyricsLanguage: "eng"}
}

// Write replaces the tag of the file at path with the metadata of track.
//
// ext is the extension the file will be stored under; anything but mp3 fails with
// [shared.ErrUnsupportedContainer] before the file is touched.
func (w *Writer) Write(path, ext string, seq int, track models.RemoteTrack, media *models.Media) error {
	if !strings.EqualFold(ext, "mp3") {
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedContainer, ext)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetVersion(4)

	tag.SetTitle(track.FullTitle())
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}

	artists := track.Artists
	if len(artists) == 0 && track.Artist != "" {
		artists = []string{track.Artist}
	}
	if len(artists) > 0 {
		tag.SetArtist(strings.Join(artists, valueSeparator))
	}
	if len(track.AlbumArtists) > 0 {
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, strings.Join(track.AlbumArtists, valueSeparator))
	}

	if ts := recordingTime(track); ts != "" {
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, ts)
	}
	if seq > 0 {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(seq))
	}

	if media != nil && media.Lyrics != "" {
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: w.language(),
			Lyrics:   media.Lyrics,
		})
	}

	if media != nil && len(media.Cover) > 0 {
		if mime := mimetype.Detect(media.Cover); strings.HasPrefix(mime.String(), "image/") {
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    mime.String(),
				PictureType: id3v2.PTFrontCover,
				Description: "Front cover",
				Picture:     media.Cover,
			})
		}
	}

	if track.WebURL != "" {
		tag.AddFrame("WOAF", id3v2.UnknownFrame{Body: []byte(track.WebURL)})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tag of %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (w *Writer) language() string {
	if len(w.LyricsLanguage) != 3 {
		return "eng"
	}
	return w.LyricsLanguage
}

// recordingTime returns the TDRC value: the full release timestamp in UTC when known, else the year.
func recordingTime(track models.RemoteTrack) string {
	if track.ReleaseDate != "" {
		if t, err := time.Parse(time.RFC3339, track.ReleaseDate); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05")
		}
	}
	if track.Year > 0 {
		return strconv.Itoa(track.Year)
	}
	return ""
}
