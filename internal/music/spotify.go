package music

import (
	"context"
	"regexp"
	"strings"
)

// spotifyTrackIDPattern matches a bare Spotify track ID: exactly 22
// base62 characters.
var spotifyTrackIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// SpotifyProvider recognizes Spotify track links and bare track IDs.
// It performs no network search: Spotify's search API requires OAuth
// credentials, but embedding a known track does not.
type SpotifyProvider struct{}

var _ Provider = (*SpotifyProvider)(nil)

// NewSpotifyProvider creates a Spotify link recognizer
func NewSpotifyProvider() *SpotifyProvider {
	return &SpotifyProvider{}
}

// Name returns the provider identifier
func (p *SpotifyProvider) Name() string { return string(PlatformSpotify) }

// DisplayName returns the human-readable source name
func (p *SpotifyProvider) DisplayName() string { return PlatformSpotify.DisplayName() }

// Search accepts either an open.spotify.com track URL or a bare track ID
// and returns a single-element result list, or nothing when neither form
// matches.
func (p *SpotifyProvider) Search(_ context.Context, keyword string) []Track {
	trackID := extractSpotifyTrackID(strings.TrimSpace(keyword))
	if trackID == "" {
		return nil
	}

	return []Track{{
		ID:       trackID,
		Name:     "Spotify Track " + trackID,
		Platform: PlatformSpotify,
		URL:      "https://open.spotify.com/track/" + trackID,
		EmbedURL: "https://open.spotify.com/embed/track/" + trackID,
	}}
}

// extractSpotifyTrackID pulls the track ID out of a track URL, or
// validates input that already looks like an ID. Returns "" when neither
// form matches.
func extractSpotifyTrackID(input string) string {
	if idx := strings.Index(input, "/track/"); idx >= 0 {
		id := input[idx+len("/track/"):]
		// Drop query string and any trailing path segments
		if cut := strings.IndexAny(id, "?/#"); cut >= 0 {
			id = id[:cut]
		}
		if spotifyTrackIDPattern.MatchString(id) {
			return id
		}
		return ""
	}

	if spotifyTrackIDPattern.MatchString(input) {
		return input
	}
	return ""
}
