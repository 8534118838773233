// Yandex Music API implementation of [Service]
//
// Response shapes follow the unofficial API used by the Yandex Music mobile clients (https://api.music.yandex.net).
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const (
	yandexBaseURL  = "https://api.music.yandex.net"
	yandexWebURL   = "https://music.yandex.ru"
	yandexTokenURL = "https://oauth.yandex.ru/authorize?response_type=token&client_id=23cabbbdc6cd418abb4b39c32c41195d"

	// tracks without an embedded object are resolved through POST /tracks in batches of this size
	trackBatchSize  = 50
	trackBatchLimit = 4
)

// TokenPageURL is the OAuth page that issues a Yandex Music token for the official client id.
const TokenPageURL = yandexTokenURL

// flexID accepts ids the API sends either as JSON numbers or strings.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

// YandexArtist is an artist reference inside a track or album.
type YandexArtist struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

// YandexAlbum is the album part of a track.
type YandexAlbum struct {
	ID          flexID         `json:"id"`
	Title       string         `json:"title"`
	Version     string         `json:"version"`
	Year        int            `json:"year"`
	ReleaseDate string         `json:"releaseDate"`
	Artists     []YandexArtist `json:"artists"`
}

type lyricsInfo struct {
	HasAvailableTextLyrics bool `json:"hasAvailableTextLyrics"`
}

// YandexTrack is a full track object.
type YandexTrack struct {
	ID         flexID         `json:"id"`
	Title      string         `json:"title"`
	Version    string         `json:"version"`
	Available  *bool          `json:"available"`
	Artists    []YandexArtist `json:"artists"`
	Albums     []YandexAlbum  `json:"albums"`
	CoverURI   string         `json:"coverUri"`
	LyricsInfo *lyricsInfo    `json:"lyricsInfo"`
}

// YandexTrackShort is a playlist item. Track is absent for large playlists and must be fetched separately.
type YandexTrackShort struct {
	ID      flexID       `json:"id"`
	AlbumID flexID       `json:"albumId"`
	Track   *YandexTrack `json:"track"`
}

type playlistOwner struct {
	UID   flexID `json:"uid"`
	Login string `json:"login"`
}

// YandexPlaylist is a user playlist with its items in playlist order.
type YandexPlaylist struct {
	Kind       flexID             `json:"kind"`
	Title      string             `json:"title"`
	TrackCount int                `json:"trackCount"`
	Owner      playlistOwner      `json:"owner"`
	Tracks     []YandexTrackShort `json:"tracks"`
}

// YandexAccount is the account part of /account/status.
type YandexAccount struct {
	UID         flexID `json:"uid"`
	Login       string `json:"login"`
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName"`
}

type plus struct {
	HasPlus bool `json:"hasPlus"`
}

// YandexAccountStatus is the result of /account/status.
type YandexAccountStatus struct {
	Account YandexAccount `json:"account"`
	Plus    plus          `json:"plus"`
}

// envelope wraps every JSON answer of the API.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// YandexService implements the Service interface for Yandex Music.
// Requests carry the "OAuth <token>" authorization header through an [oauth2] static token source.
type YandexService struct {
	baseURL      string
	codec        string
	directScheme string
	httpClient   *http.Client
	logger       *log.Logger
	now          func() time.Time
}

// NewYandexService creates a Yandex Music client for the configured token.
//
// An *http.Client stored in ctx under [oauth2.HTTPClient] is used as the base transport.
func NewYandexService(ctx context.Context, cfg shared.YandexConfig, logger *log.Logger) (*YandexService, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: yandex token is empty", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = yandexBaseURL
	}
	codec := strings.ToLower(strings.TrimSpace(cfg.Codec))
	if codec == "" {
		codec = shared.CodecMP3
	}
	if codec != shared.CodecMP3 {
		return nil, fmt.Errorf("%w: codec %q is not supported, only mp3 files can be tagged", shared.ErrInvalidConfig, cfg.Codec)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "OAuth"})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = cfg.Timeout()

	return &YandexService{
		baseURL:      baseURL,
		codec:        codec,
		directScheme: "https",
		httpClient:   client,
		logger:       logger.WithPrefix("yandex"),
		now:          time.Now,
	}, nil
}

func (s *YandexService) Name() string {
	return "Yandex Music"
}

// doRequest performs an authenticated request against the API and decodes the "result" member into result.
func (s *YandexService) doRequest(ctx context.Context, method, endpoint string, form url.Values, result any) error {
	apiURL := s.baseURL + endpoint

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("request", "method", method, "endpoint", endpoint)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, endpoint); err != nil {
		return err
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Error != nil {
		return fmt.Errorf("%w: %s: %s", shared.ErrAPIRequest, env.Error.Name, env.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

// fetchRaw performs an authenticated GET against an absolute URL and returns the open response.
func (s *YandexService) fetchRaw(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := statusError(resp, rawURL); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (s *YandexService) fetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := s.fetchRaw(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	return data, nil
}

func statusError(resp *http.Response, target string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, target)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
}

// AccountStatus returns the account the token belongs to.
func (s *YandexService) AccountStatus(ctx context.Context) (*YandexAccountStatus, error) {
	var status YandexAccountStatus
	if err := s.doRequest(ctx, http.MethodGet, "/account/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// FetchPlaylist retrieves the playlist referenced by ref, a playlist URL or "owner:kind".
func (s *YandexService) FetchPlaylist(ctx context.Context, ref string) (*models.Playlist, error) {
	pref, err := ParsePlaylistRef(ref)
	if err != nil {
		return nil, err
	}

	var pl YandexPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists/%s", url.PathEscape(pref.Owner), url.PathEscape(pref.Kind))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &pl); err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, pref)
		}
		return nil, err
	}

	tracks, err := s.resolveTracks(ctx, pl.Tracks)
	if err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		Owner:      pref.Owner,
		Kind:       pref.Kind,
		Title:      pl.Title,
		TrackCount: pl.TrackCount,
		Tracks:     make([]models.RemoteTrack, 0, len(tracks)),
	}
	for _, t := range tracks {
		if t.Available != nil && !*t.Available {
			s.logger.Warn("skipping unavailable track", "id", t.ID, "title", t.Title)
			continue
		}
		playlist.Tracks = append(playlist.Tracks, toRemoteTrack(t))
	}

	s.logger.Info("fetched playlist", "playlist", pref, "title", pl.Title, "tracks", len(playlist.Tracks))
	return playlist, nil
}

// resolveTracks returns full track objects for items in playlist order,
// fetching the ones the playlist response did not embed.
func (s *YandexService) resolveTracks(ctx context.Context, items []YandexTrackShort) ([]YandexTrack, error) {
	tracks := make([]YandexTrack, len(items))
	var missing []int
	for i, item := range items {
		if item.Track != nil {
			tracks[i] = *item.Track
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return tracks, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trackBatchLimit)

	for start := 0; start < len(missing); start += trackBatchSize {
		batch := missing[start:min(start+trackBatchSize, len(missing))]
		g.Go(func() error {
			ids := make([]string, len(batch))
			for j, idx := range batch {
				ids[j] = trackRef(items[idx])
			}

			fetched, err := s.Tracks(gctx, ids)
			if err != nil {
				return err
			}

			byID := make(map[string]YandexTrack, len(fetched))
			for _, t := range fetched {
				byID[string(t.ID)] = t
			}
			for _, idx := range batch {
				id := string(items[idx].ID)
				if i := strings.IndexByte(id, ':'); i >= 0 {
					id = id[:i]
				}
				t, ok := byID[id]
				if !ok {
					return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
				}
				tracks[idx] = t
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tracks, nil
}

func trackRef(item YandexTrackShort) string {
	id := string(item.ID)
	if item.AlbumID != "" && !strings.Contains(id, ":") {
		return id + ":" + string(item.AlbumID)
	}
	return id
}

// Tracks fetches full track objects by id ("trackID" or "trackID:albumID").
func (s *YandexService) Tracks(ctx context.Context, ids []string) ([]YandexTrack, error) {
	form := url.Values{}
	form.Set("track-ids", strings.Join(ids, ","))
	form.Set("with-positions", "false")

	var tracks []YandexTrack
	if err := s.doRequest(ctx, http.MethodPost, "/tracks", form, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func toRemoteTrack(t YandexTrack) models.RemoteTrack {
	rt := models.RemoteTrack{
		ID:        string(t.ID),
		Title:     t.Title,
		Version:   t.Version,
		CoverRef:  t.CoverURI,
		HasLyrics: t.LyricsInfo != nil && t.LyricsInfo.HasAvailableTextLyrics,
	}

	for _, a := range t.Artists {
		rt.Artists = append(rt.Artists, a.Name)
	}
	if len(rt.Artists) > 0 {
		rt.Artist = rt.Artists[0]
	}

	if len(t.Albums) > 0 {
		album := t.Albums[0]
		rt.AlbumID = string(album.ID)
		rt.Album = album.Title
		if album.Version != "" {
			rt.Album = fmt.Sprintf("%s (%s)", album.Title, album.Version)
		}
		rt.Year = album.Year
		rt.ReleaseDate = album.ReleaseDate
		for _, a := range album.Artists {
			rt.AlbumArtists = append(rt.AlbumArtists, a.Name)
		}
		if rt.Year == 0 && len(rt.ReleaseDate) >= 4 {
			rt.Year, _ = strconv.Atoi(rt.ReleaseDate[:4])
		}
	}

	rt.StreamRef = rt.ID
	if rt.AlbumID != "" {
		rt.WebURL = fmt.Sprintf("%s/album/%s/track/%s", yandexWebURL, rt.AlbumID, rt.ID)
	} else {
		rt.WebURL = fmt.Sprintf("%s/track/%s", yandexWebURL, rt.ID)
	}
	rt.Key = rt.IdentityKey()
	return rt
}

// FetchMedia opens the best stream of the preferred codec and loads cover art and lyrics.
func (s *YandexService) FetchMedia(ctx context.Context, track models.RemoteTrack) (*models.Media, error) {
	info, err := s.bestDownloadInfo(ctx, track.StreamRef)
	if err != nil {
		return nil, err
	}

	direct, err := s.directLink(ctx, info)
	if err != nil {
		return nil, err
	}

	media := &models.Media{Codec: info.Codec, Bitrate: info.BitrateInKbps}

	if track.CoverRef != "" {
		cover, err := s.fetchBytes(ctx, coverURL(track.CoverRef))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch cover: %w", err)
		}
		media.Cover = cover
	}

	if track.HasLyrics {
		lyrics, err := s.Lyrics(ctx, track.StreamRef)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch lyrics: %w", err)
		}
		media.Lyrics = lyrics
	}

	resp, err := s.fetchRaw(ctx, direct)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	media.Audio = resp.Body

	s.logger.Debug("media ready", "track", track.ID, "codec", media.Codec, "bitrate", media.Bitrate,
		"cover", len(media.Cover) > 0, "lyrics", media.Lyrics != "")
	return media, nil
}

// coverURL expands a coverUri template to the original-size image.
func coverURL(ref string) string {
	u := strings.ReplaceAll(ref, "%%", "orig")
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}
