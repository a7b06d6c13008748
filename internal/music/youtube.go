package music

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// DefaultYouTubeBaseURL is a public Invidious instance used for keyword
// search. YouTube's own data API needs a key; Invidious mirrors the search
// endpoint without one.
const DefaultYouTubeBaseURL = "https://inv.nadeko.net"

// YouTubeProvider searches YouTube through an Invidious-compatible mirror
type YouTubeProvider struct {
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*YouTubeProvider)(nil)

// NewYouTubeProvider creates a YouTube provider. An empty baseURL selects
// the default mirror.
func NewYouTubeProvider(baseURL string) *YouTubeProvider {
	if baseURL == "" {
		baseURL = DefaultYouTubeBaseURL
	}
	return &YouTubeProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// Name returns the provider identifier
func (p *YouTubeProvider) Name() string { return string(PlatformYouTube) }

// DisplayName returns the human-readable source name
func (p *YouTubeProvider) DisplayName() string { return PlatformYouTube.DisplayName() }

// Search performs a keyword search against the mirror and keeps only plain
// video results.
func (p *YouTubeProvider) Search(ctx context.Context, keyword string) []Track {
	query := url.Values{}
	query.Set("q", keyword)
	query.Set("type", "video")

	req, err := http.NewRequestWithContext(ctx, "GET",
		p.baseURL+"/api/v1/search?"+query.Encode(), nil)
	if err != nil {
		logger.WithField("error", err).Error("youtube-search-request-build-failed")
		return nil
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"error":   err,
		}).Error("youtube-search-request-failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"status":  resp.StatusCode,
		}).Error("youtube-search-unexpected-status")
		return nil
	}

	var items []struct {
		Type    string `json:"type"`
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
		Author  string `json:"author"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"error":   err,
		}).Error("youtube-search-decode-failed")
		return nil
	}

	var tracks []Track
	for _, item := range items {
		// The mirror mixes channels and playlists into search results
		if item.Type != "video" || item.VideoID == "" {
			continue
		}
		if len(tracks) >= constants.MaxSearchResults {
			break
		}

		tracks = append(tracks, Track{
			ID:       item.VideoID,
			Name:     item.Title,
			Artist:   item.Author,
			Platform: PlatformYouTube,
			URL:      "https://www.youtube.com/watch?v=" + item.VideoID,
			EmbedURL: "https://www.youtube.com/embed/" + item.VideoID,
		})
	}

	logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"results": len(tracks),
	}).Debug("youtube-search-completed")

	return tracks
}
