package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/northis/ym-api-organizer/internal/shared"
)

var (
	playlistURLRe   = regexp.MustCompile(`^https?://music\.yandex\.(?:ru|com|by|kz|uz)/users/([^/?#]+)/playlists/(\d+)(?:[/?#].*)?$`)
	playlistShortRe = regexp.MustCompile(`^([^/:\s]+):(\d+)$`)
)

// PlaylistRef identifies a user playlist on Yandex Music.
type PlaylistRef struct {
	Owner string
	Kind  string
}

// String returns the ref in its "owner:kind" shorthand form.
func (r PlaylistRef) String() string {
	return r.Owner + ":" + r.Kind
}

// URL returns the public web address of the playlist.
func (r PlaylistRef) URL() string {
	return fmt.Sprintf("https://music.yandex.ru/users/%s/playlists/%s", r.Owner, r.Kind)
}

// ParsePlaylistRef accepts a playlist URL (https://music.yandex.ru/users/{owner}/playlists/{kind}) or the
// "owner:kind" shorthand.
func ParsePlaylistRef(s string) (PlaylistRef, error) {
	s = strings.TrimSpace(s)
	if m := playlistURLRe.FindStringSubmatch(s); m != nil {
		return PlaylistRef{Owner: m[1], Kind: m[2]}, nil
	}
	if m := playlistShortRe.FindStringSubmatch(s); m != nil {
		return PlaylistRef{Owner: m[1], Kind: m[2]}, nil
	}
	return PlaylistRef{}, fmt.Errorf("%w: unsupported playlist reference %q", shared.ErrInvalidArgument, s)
}
