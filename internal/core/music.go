package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/keepmind9/matrixbot/internal/bot"
	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/internal/matrix"
	"github.com/keepmind9/matrixbot/internal/music"
)

// MusicCommands orchestrates music search, per-user sessions, and playback
// delivery as either a widget or a plain link
type MusicCommands struct {
	resolver        ClientResolver
	registry        *music.Registry
	sessions        *music.SessionStore
	defaultPlatform music.Platform
}

// NewMusicCommands creates the music command handler
func NewMusicCommands(resolver ClientResolver, registry *music.Registry, sessions *music.SessionStore, defaultPlatform music.Platform) *MusicCommands {
	return &MusicCommands{
		resolver:        resolver,
		registry:        registry,
		sessions:        sessions,
		defaultPlatform: defaultPlatform,
	}
}

// Handle dispatches a music subcommand and returns the reply text
func (m *MusicCommands) Handle(ctx context.Context, args []string, msg bot.BotMessage) string {
	if len(args) == 0 {
		return "❌ Missing subcommand\nUsage: music <search|netease|qq|youtube|spotify|play|mode>"
	}

	userKey := getUserKey(msg.Platform, msg.UserID)

	switch args[0] {
	case "netease", "qq", "youtube", "spotify":
		return m.search(ctx, userKey, music.Platform(args[0]), args[1:])
	case "search":
		if len(args) < 2 {
			return "❌ Missing keyword\nUsage: music search <keyword> [platform]"
		}
		platform := m.defaultPlatform
		if len(args) >= 3 {
			platform = music.Platform(args[2])
		}
		if m.registry.Get(string(platform)) == nil {
			return fmt.Sprintf("❌ Unsupported platform: %s\nSupported: %s", platform, strings.Join(m.registry.Names(), ", "))
		}
		return m.search(ctx, userKey, platform, args[1:2])
	case "mode":
		return m.setMode(userKey, args[1:])
	case "play":
		return m.play(ctx, userKey, msg, args[1:])
	default:
		return fmt.Sprintf("❌ Unknown music subcommand: %s\nUse 'help' to see available commands", args[0])
	}
}

// search dispatches to a provider, stores the results, and renders the
// numbered listing
func (m *MusicCommands) search(ctx context.Context, userKey string, platform music.Platform, args []string) string {
	if len(args) < 1 || args[0] == "" {
		return fmt.Sprintf("❌ Missing keyword\nUsage: music %s <keyword>", platform)
	}
	keyword := strings.Join(args, " ")

	provider := m.registry.Get(string(platform))
	if provider == nil {
		return fmt.Sprintf("❌ Unsupported platform: %s\nSupported: %s", platform, strings.Join(m.registry.Names(), ", "))
	}

	logger.WithFields(logrus.Fields{
		"platform": platform,
		"keyword":  keyword,
		"user":     userKey,
	}).Info("music-search")

	results := provider.Search(ctx, keyword)
	m.sessions.RecordResults(userKey, results)

	if len(results) == 0 {
		return fmt.Sprintf("🔍 No results on %s for: %s", provider.DisplayName(), keyword)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎵 %s results for '%s':\n\n", provider.DisplayName(), keyword))
	for i, track := range results {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, track.Name))
		if track.Artist != "" {
			sb.WriteString(" - " + track.Artist)
		}
		if track.Album != "" {
			sb.WriteString(" [" + track.Album + "]")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n💡 Use: music play <number> to play a song")
	sb.WriteString("\n💡 Use: music mode <widget|link> to change delivery")
	return sb.String()
}

// setMode validates and stores the user's delivery preference
func (m *MusicCommands) setMode(userKey string, args []string) string {
	if len(args) < 1 {
		return "❌ Invalid arguments\nUsage: music mode <widget|link>"
	}

	mode := music.OutputMode(args[0])
	if err := m.sessions.SetMode(userKey, mode); err != nil {
		return fmt.Sprintf("❌ Invalid mode: %s\nSupported: widget, link", args[0])
	}
	return fmt.Sprintf("✅ Music delivery mode set to: %s", mode)
}

// play resolves a stored search result and delivers it either as a room
// widget or as a plain link. Widget failures fall back to the link reply.
func (m *MusicCommands) play(ctx context.Context, userKey string, msg bot.BotMessage, args []string) string {
	if len(args) < 1 {
		return "❌ Invalid arguments\nUsage: music play <number>"
	}

	results := m.sessions.Results(userKey)
	if len(results) == 0 {
		return "❌ No search results yet\n💡 Use: music search <keyword> first"
	}

	index, err := strconv.Atoi(args[0])
	if err != nil || index < 1 || index > len(results) {
		return fmt.Sprintf("❌ Invalid number: %s\nPick a number between 1 and %d", args[0], len(results))
	}

	track := results[index-1]

	if m.sessions.Mode(userKey) == music.ModeLink {
		return linkReply(track)
	}

	client := m.resolver.ResolveWidgetClient(msg.Platform)
	if client == nil {
		// Widgets only exist on Matrix, deliver the link instead
		return linkReply(track)
	}

	widgetID := fmt.Sprintf("music_%s_%s", track.Platform, randomToken(4))
	widget := matrix.WidgetState{WidgetID: widgetID, Type: "customwidget", URL: track.EmbedURL, Name: track.Name}
	if _, err := client.AddWidget(ctx, msg.Channel, widget); err != nil {
		logger.WithFields(logrus.Fields{
			"room":      msg.Channel,
			"widget_id": widgetID,
			"track":     track.Name,
			"error":     err,
		}).Warn("music-widget-creation-failed-falling-back-to-link")
		return linkReply(track)
	}

	return fmt.Sprintf("▶️ Now playing: %s\nWidget ID: %s", track.Name, widgetID)
}

// linkReply formats the plain-link delivery for a track
func linkReply(track music.Track) string {
	reply := fmt.Sprintf("🎵 %s", track.Name)
	if track.Artist != "" {
		reply += " - " + track.Artist
	}
	reply += fmt.Sprintf("\nPlatform: %s\n%s", track.Platform.DisplayName(), track.URL)
	return reply
}
