package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/northis/ym-api-organizer/internal/shared"
)

const (
	downloadSignSalt = "XGRlBW9FXlekgbPrRHuSiA"
	lyricsSignKey    = "p93jhgh689SBReK6ghtw62"
)

// DownloadInfo is one downloadable variant of a track.
type DownloadInfo struct {
	Codec           string `json:"codec"`
	BitrateInKbps   int    `json:"bitrateInKbps"`
	DownloadInfoURL string `json:"downloadInfoUrl"`
	Direct          bool   `json:"direct"`
	Preview         bool   `json:"preview"`
}

// downloadLocation is the XML document served at DownloadInfo.DownloadInfoURL.
type downloadLocation struct {
	XMLName xml.Name `xml:"download-info"`
	Host    string   `xml:"host"`
	Path    string   `xml:"path"`
	TS      string   `xml:"ts"`
	Region  string   `xml:"region"`
	S       string   `xml:"s"`
}

type lyricsResult struct {
	DownloadURL string   `json:"downloadUrl"`
	LyricID     int      `json:"lyricId"`
	Writers     []string `json:"writers"`
}

// DownloadInfo lists the variants available for trackID.
func (s *YandexService) DownloadInfo(ctx context.Context, trackID string) ([]DownloadInfo, error) {
	var infos []DownloadInfo
	endpoint := fmt.Sprintf("/tracks/%s/download-info", url.PathEscape(trackID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (s *YandexService) bestDownloadInfo(ctx context.Context, trackID string) (DownloadInfo, error) {
	infos, err := s.DownloadInfo(ctx, trackID)
	if err != nil {
		return DownloadInfo{}, err
	}
	best, ok := pickDownloadInfo(infos, s.codec)
	if !ok {
		return DownloadInfo{}, fmt.Errorf("%w: track %s has no full-length %s variant", shared.ErrNoDownloadInfo, trackID, s.codec)
	}
	return best, nil
}

// pickDownloadInfo returns the highest-bitrate full-length variant of codec.
// Other codecs are never picked since the tag writer only handles mp3.
func pickDownloadInfo(infos []DownloadInfo, codec string) (DownloadInfo, bool) {
	var candidates []DownloadInfo
	for _, info := range infos {
		if !info.Preview && strings.EqualFold(info.Codec, codec) {
			candidates = append(candidates, info)
		}
	}

	if len(candidates) == 0 {
		return DownloadInfo{}, false
	}
	best := candidates[0]
	for _, info := range candidates[1:] {
		if info.BitrateInKbps > best.BitrateInKbps {
			best = info
		}
	}
	return best, true
}

// directLink resolves a download variant to the signed storage URL of the audio file.
func (s *YandexService) directLink(ctx context.Context, info DownloadInfo) (string, error) {
	data, err := s.fetchBytes(ctx, info.DownloadInfoURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch download location: %w", err)
	}

	var loc downloadLocation
	if err := xml.Unmarshal(data, &loc); err != nil {
		return "", fmt.Errorf("failed to decode download location: %w", err)
	}
	if loc.Host == "" || loc.Path == "" {
		return "", fmt.Errorf("%w: incomplete download location", shared.ErrNoDownloadInfo)
	}

	return fmt.Sprintf("%s://%s/get-%s/%s/%s%s",
		s.directScheme, loc.Host, info.Codec, signDownload(loc.Path, loc.S), loc.TS, loc.Path), nil
}

func signDownload(path, salt string) string {
	sum := md5.Sum([]byte(downloadSignSalt + strings.TrimPrefix(path, "/") + salt))
	return hex.EncodeToString(sum[:])
}

func signLyrics(trackID string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(lyricsSignKey))
	mac.Write([]byte(trackID + strconv.FormatInt(ts, 10)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Lyrics returns the plain-text lyrics of trackID.
func (s *YandexService) Lyrics(ctx context.Context, trackID string) (string, error) {
	if i := strings.IndexByte(trackID, ':'); i >= 0 {
		trackID = trackID[:i]
	}

	ts := s.now().Unix()
	q := url.Values{}
	q.Set("format", "TEXT")
	q.Set("timeStamp", strconv.FormatInt(ts, 10))
	q.Set("sign", signLyrics(trackID, ts))

	var res lyricsResult
	endpoint := fmt.Sprintf("/tracks/%s/lyrics?%s", url.PathEscape(trackID), q.Encode())
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return "", err
	}
	if res.DownloadURL == "" {
		return "", fmt.Errorf("%w: no lyrics for track %s", shared.ErrTrackNotFound, trackID)
	}

	data, err := s.fetchBytes(ctx, res.DownloadURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(trimBOM(data))), nil
}

// trimBOM drops a leading UTF-8 byte order mark.
func trimBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
}
