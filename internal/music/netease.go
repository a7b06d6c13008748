package music

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// DefaultNeteaseBaseURL is the public NetEase web API endpoint
const DefaultNeteaseBaseURL = "https://music.163.com"

// NeteaseProvider searches the NetEase Cloud Music web API
type NeteaseProvider struct {
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*NeteaseProvider)(nil)

// NewNeteaseProvider creates a NetEase provider. An empty baseURL selects
// the public endpoint.
func NewNeteaseProvider(baseURL string) *NeteaseProvider {
	if baseURL == "" {
		baseURL = DefaultNeteaseBaseURL
	}
	return &NeteaseProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// Name returns the provider identifier
func (p *NeteaseProvider) Name() string { return string(PlatformNetease) }

// DisplayName returns the human-readable source name
func (p *NeteaseProvider) DisplayName() string { return PlatformNetease.DisplayName() }

// Search performs a form-encoded keyword search and normalizes the nested
// song list into tracks.
func (p *NeteaseProvider) Search(ctx context.Context, keyword string) []Track {
	form := url.Values{}
	form.Set("s", keyword)
	form.Set("type", "1") // songs
	form.Set("limit", fmt.Sprintf("%d", constants.MaxSearchResults))
	form.Set("offset", "0")

	req, err := http.NewRequestWithContext(ctx, "POST",
		p.baseURL+"/api/search/get/web", strings.NewReader(form.Encode()))
	if err != nil {
		logger.WithField("error", err).Error("netease-search-request-build-failed")
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://music.163.com")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"error":   err,
		}).Error("netease-search-request-failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"status":  resp.StatusCode,
		}).Error("netease-search-unexpected-status")
		return nil
	}

	var result struct {
		Result struct {
			Songs []struct {
				ID      int64  `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name string `json:"name"`
				} `json:"album"`
			} `json:"songs"`
		} `json:"result"`
		Code int `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"error":   err,
		}).Error("netease-search-decode-failed")
		return nil
	}
	if result.Code != 200 {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"code":    result.Code,
		}).Error("netease-search-api-error")
		return nil
	}

	tracks := make([]Track, 0, len(result.Result.Songs))
	for _, song := range result.Result.Songs {
		if len(tracks) >= constants.MaxSearchResults {
			break
		}

		artistNames := make([]string, 0, len(song.Artists))
		for _, artist := range song.Artists {
			artistNames = append(artistNames, artist.Name)
		}

		id := fmt.Sprintf("%d", song.ID)
		tracks = append(tracks, Track{
			ID:       id,
			Name:     song.Name,
			Artist:   strings.Join(artistNames, "/"),
			Album:    song.Album.Name,
			Platform: PlatformNetease,
			URL:      "https://music.163.com/#/song?id=" + id,
			EmbedURL: "https://music.163.com/outchain/player?type=2&id=" + id + "&auto=1&height=66",
		})
	}

	logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"results": len(tracks),
	}).Debug("netease-search-completed")

	return tracks
}
