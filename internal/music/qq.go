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

// DefaultQQBaseURL is the public QQ Music search endpoint host
const DefaultQQBaseURL = "https://c.y.qq.com"

// QQProvider searches the QQ Music web API
type QQProvider struct {
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*QQProvider)(nil)

// NewQQProvider creates a QQ Music provider. An empty baseURL selects
// the public endpoint.
func NewQQProvider(baseURL string) *QQProvider {
	if baseURL == "" {
		baseURL = DefaultQQBaseURL
	}
	return &QQProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// Name returns the provider identifier
func (p *QQProvider) Name() string { return string(PlatformQQ) }

// DisplayName returns the human-readable source name
func (p *QQProvider) DisplayName() string { return PlatformQQ.DisplayName() }

// Search performs a query-string keyword search and normalizes the song
// list into tracks keyed by the songmid media identifier.
func (p *QQProvider) Search(ctx context.Context, keyword string) []Track {
	query := url.Values{}
	query.Set("w", keyword)
	query.Set("format", "json")
	query.Set("p", "1")
	query.Set("n", fmt.Sprintf("%d", constants.MaxSearchResults))

	req, err := http.NewRequestWithContext(ctx, "GET",
		p.baseURL+"/soso/fcgi-bin/client_search_cp?"+query.Encode(), nil)
	if err != nil {
		logger.WithField("error", err).Error("qq-search-request-build-failed")
		return nil
	}
	req.Header.Set("Referer", "https://y.qq.com")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"error":   err,
		}).Error("qq-search-request-failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"status":  resp.StatusCode,
		}).Error("qq-search-unexpected-status")
		return nil
	}

	var result struct {
		Code int `json:"code"`
		Data struct {
			Song struct {
				List []struct {
					SongMid   string `json:"songmid"`
					SongName  string `json:"songname"`
					AlbumName string `json:"albumname"`
					Singer    []struct {
						Name string `json:"name"`
					} `json:"singer"`
				} `json:"list"`
			} `json:"song"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"error":   err,
		}).Error("qq-search-decode-failed")
		return nil
	}
	if result.Code != 0 {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"code":    result.Code,
		}).Error("qq-search-api-error")
		return nil
	}

	tracks := make([]Track, 0, len(result.Data.Song.List))
	for _, song := range result.Data.Song.List {
		if len(tracks) >= constants.MaxSearchResults {
			break
		}

		singerNames := make([]string, 0, len(song.Singer))
		for _, singer := range song.Singer {
			singerNames = append(singerNames, singer.Name)
		}

		tracks = append(tracks, Track{
			ID:       song.SongMid,
			Name:     song.SongName,
			Artist:   strings.Join(singerNames, "/"),
			Album:    song.AlbumName,
			Platform: PlatformQQ,
			URL:      "https://y.qq.com/n/ryqq/songDetail/" + song.SongMid,
			EmbedURL: "https://i.y.qq.com/n2/m/outchain/player/index.html?songmid=" + song.SongMid,
		})
	}

	logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"results": len(tracks),
	}).Debug("qq-search-completed")

	return tracks
}
