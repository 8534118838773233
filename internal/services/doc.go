// Package services defines the [Service] interface for music providers and implements it for Yandex Music.
//
// # Service Interface
//
// A sync only needs two things from a provider: an ordered snapshot of a playlist and, per track, an audio
// stream with its cover art and lyrics. Everything else (naming, numbering, tagging) happens locally.
//
// # Yandex Music Implementation
//
// [YandexService] talks to https://api.music.yandex.net with a user OAuth token. The token is sent as
// "Authorization: OAuth <token>" by an [oauth2] static token source; there is no refresh flow.
//
// Playlists are addressed by URL (https://music.yandex.ru/users/{owner}/playlists/{kind}) or by the
// "owner:kind" shorthand, see [ParsePlaylistRef]. Large playlists come back without embedded track
// objects; those are resolved through POST /tracks in concurrent batches while keeping playlist order.
//
// Audio is located in three steps: /tracks/{id}/download-info lists the variants, the chosen variant's
// downloadInfoUrl returns an XML location, and the location is signed into a direct storage URL.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : no token configured
//   - [shared.ErrNotAuthenticated] : token rejected (401/403)
//   - [shared.ErrPlaylistNotFound] : playlist does not exist or is private
//   - [shared.ErrNoDownloadInfo] : track has no downloadable variant
//   - [shared.ErrServiceUnavailable] : 5xx from the API
//   - [shared.ErrAPIRequest] : any other transport or API failure
package services
