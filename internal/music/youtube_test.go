package music

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keepmind9/matrixbot/pkg/constants"
)

func TestYouTubeProvider_SearchFiltersNonVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.Equal(t, "lofi", r.URL.Query().Get("q"))

		w.Write([]byte(`[
			{"type": "video", "videoId": "abc123", "title": "lofi beats", "author": "ChillChannel"},
			{"type": "channel", "videoId": "", "title": "ChillChannel", "author": ""},
			{"type": "playlist", "videoId": "", "title": "lofi mix", "author": "Someone"},
			{"type": "video", "videoId": "def456", "title": "more lofi", "author": "OtherChannel"}
		]`))
	}))
	defer server.Close()

	p := NewYouTubeProvider(server.URL)
	tracks := p.Search(context.Background(), "lofi")

	if assert.Len(t, tracks, 2) {
		assert.Equal(t, "abc123", tracks[0].ID)
		assert.Equal(t, "lofi beats", tracks[0].Name)
		assert.Equal(t, "ChillChannel", tracks[0].Artist)
		assert.Equal(t, "https://www.youtube.com/watch?v=abc123", tracks[0].URL)
		assert.Equal(t, "https://www.youtube.com/embed/abc123", tracks[0].EmbedURL)
		assert.Equal(t, "def456", tracks[1].ID)
	}
}

func TestYouTubeProvider_SearchCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := make([]map[string]string, 0, 30)
		for i := 0; i < 30; i++ {
			items = append(items, map[string]string{
				"type":    "video",
				"videoId": fmt.Sprintf("vid%d", i),
				"title":   fmt.Sprintf("video %d", i),
			})
		}
		json.NewEncoder(w).Encode(items)
	}))
	defer server.Close()

	p := NewYouTubeProvider(server.URL)
	tracks := p.Search(context.Background(), "popular")
	assert.Len(t, tracks, constants.MaxSearchResults)
}

func TestYouTubeProvider_SearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewYouTubeProvider(server.URL)
	assert.Empty(t, p.Search(context.Background(), "anything"))
}

func TestYouTubeProvider_DefaultBaseURL(t *testing.T) {
	p := NewYouTubeProvider("")
	assert.Equal(t, DefaultYouTubeBaseURL, p.baseURL)
	assert.Equal(t, "youtube", p.Name())
	assert.Equal(t, "YouTube", p.DisplayName())
}
