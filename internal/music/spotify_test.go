package music

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSpotifyTrackID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "track URL with query string",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=1",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "bare track URL",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "bare 22-character ID",
			input:    "4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "track URL with trailing path",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC/extra",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "free text",
			input:    "never gonna give you up",
			expected: "",
		},
		{
			name:     "ID of wrong length",
			input:    "4uLU6hMCjMI75M1A2tKUQ",
			expected: "",
		},
		{
			name:     "URL without track segment",
			input:    "https://open.spotify.com/album/4uLU6hMCjMI75M1A2tKUQC",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSpotifyTrackID(tt.input))
		})
	}
}

func TestSpotifyProvider_Search(t *testing.T) {
	p := NewSpotifyProvider()

	tracks := p.Search(context.Background(), "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=1")
	if assert.Len(t, tracks, 1) {
		assert.Equal(t, "4uLU6hMCjMI75M1A2tKUQC", tracks[0].ID)
		assert.Equal(t, PlatformSpotify, tracks[0].Platform)
		assert.Equal(t, "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", tracks[0].URL)
		assert.Equal(t, "https://open.spotify.com/embed/track/4uLU6hMCjMI75M1A2tKUQC", tracks[0].EmbedURL)
	}

	assert.Empty(t, p.Search(context.Background(), "some song title"))
}
