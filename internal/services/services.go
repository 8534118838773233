// package services defines interface Service for fetching playlists and track media from a music provider
//
// Yandex Music
package services

import (
	"context"

	"github.com/northis/ym-api-organizer/internal/models"
)

// Service defines the remote side of a sync: an ordered playlist snapshot and per-track media.
type Service interface {
	// FetchPlaylist returns the playlist identified by ref with its tracks in the provider's order.
	// Any error means the snapshot is incomplete and must not be used.
	FetchPlaylist(ctx context.Context, ref string) (*models.Playlist, error)

	// FetchMedia opens the audio stream of track and fetches its cover and lyrics when the track has them.
	// The caller closes the returned [models.Media].
	FetchMedia(ctx context.Context, track models.RemoteTrack) (*models.Media, error)

	// Name returns the name of the service (e.g., "Yandex Music")
	Name() string
}
