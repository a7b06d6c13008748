// Package music provides track search across several public music sources
// and the per-user session state the music commands operate on.
//
// Each source is wrapped in a Provider. Providers never surface transport
// or decoding errors to callers: a failed search is logged and yields an
// empty result list, so the command layer only has to distinguish "found
// something" from "found nothing".
package music

// Platform identifies a music source
type Platform string

const (
	PlatformNetease Platform = "netease"
	PlatformQQ      Platform = "qq"
	PlatformYouTube Platform = "youtube"
	PlatformSpotify Platform = "spotify"
)

// DisplayName returns the human-readable name of the platform
func (p Platform) DisplayName() string {
	switch p {
	case PlatformNetease:
		return "NetEase Music"
	case PlatformQQ:
		return "QQ Music"
	case PlatformYouTube:
		return "YouTube"
	case PlatformSpotify:
		return "Spotify"
	}
	return string(p)
}

// Track represents a single search result, immutable once created
type Track struct {
	ID       string
	Name     string
	Artist   string
	Album    string
	Platform Platform
	URL      string   // canonical page for the track
	EmbedURL string   // URL suitable for an embedded player widget
}
