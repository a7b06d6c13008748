package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/keepmind9/matrixbot/internal/bot"
	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/internal/matrix"
	"github.com/keepmind9/matrixbot/pkg/constants"
)

const (
	// widgetUnavailableMsg is returned for every widget command issued
	// outside a Matrix room
	widgetUnavailableMsg = "❌ Widget commands are only available on the Matrix platform"

	defaultWidgetType = "customwidget"

	jitsiDomain          = "meet.jit.si"
	jitsiURLTemplate     = "https://meet.jit.si/%s"
	etherpadURLTemplate  = "https://etherpad.wikimedia.org/p/%s"
	youtubeEmbedTemplate = "https://www.youtube.com/embed/%s"
)

// WidgetCommands translates widget chat commands into Matrix client calls
type WidgetCommands struct {
	resolver ClientResolver
}

// NewWidgetCommands creates the widget command handler
func NewWidgetCommands(resolver ClientResolver) *WidgetCommands {
	return &WidgetCommands{resolver: resolver}
}

// Handle dispatches a widget subcommand and returns the reply text
func (w *WidgetCommands) Handle(ctx context.Context, args []string, msg bot.BotMessage) string {
	client := w.resolver.ResolveWidgetClient(msg.Platform)
	if client == nil {
		return widgetUnavailableMsg
	}

	if len(args) == 0 {
		return "❌ Missing subcommand\nUsage: widget <list|add|remove|jitsi|etherpad|youtube|custom>"
	}

	switch args[0] {
	case "list":
		return w.listWidgets(ctx, client, msg.Channel)
	case "add":
		return w.addWidget(ctx, client, msg.Channel, args[1:])
	case "remove":
		return w.removeWidget(ctx, client, msg.Channel, args[1:])
	case "jitsi":
		return w.addJitsi(ctx, client, msg.Channel, args[1:])
	case "etherpad":
		return w.addEtherpad(ctx, client, msg.Channel, args[1:])
	case "youtube":
		return w.addYouTube(ctx, client, msg.Channel, args[1:])
	case "custom":
		return w.addCustom(ctx, client, msg.Channel, args[1:])
	default:
		return fmt.Sprintf("❌ Unknown widget subcommand: %s\nUse 'help' to see available commands", args[0])
	}
}

// listWidgets renders the widgets in a room, one block per widget
func (w *WidgetCommands) listWidgets(ctx context.Context, client *matrix.Client, roomID string) string {
	widgets, err := client.GetWidgets(ctx, roomID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"room":  roomID,
			"error": err,
		}).Error("failed-to-list-widgets")
		return fmt.Sprintf("❌ Failed to list widgets: %v", err)
	}

	if len(widgets) == 0 {
		return "📋 This room has no widgets"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Widgets in this room (%d):\n", len(widgets)))
	for _, widget := range widgets {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("ID: %s\n", widget.WidgetID))
		if widget.Name != "" {
			sb.WriteString(fmt.Sprintf("Name: %s\n", widget.Name))
		}
		sb.WriteString(fmt.Sprintf("Type: %s\n", widget.Type))
		sb.WriteString(fmt.Sprintf("URL: %s\n", truncateURL(widget.URL)))
		if widget.Creator != "" {
			sb.WriteString(fmt.Sprintf("Creator: %s\n", widget.Creator))
		}
	}
	sb.WriteString("\n💡 Use: widget remove <id> to remove a widget")
	return sb.String()
}

// addWidget creates a widget with a freshly generated ID
// Usage: widget add <name> <url> [type]
func (w *WidgetCommands) addWidget(ctx context.Context, client *matrix.Client, roomID string, args []string) string {
	if len(args) < 2 {
		return "❌ Invalid arguments\nUsage: widget add <name> <url> [type]"
	}

	name := args[0]
	url := args[1]
	widgetType := defaultWidgetType
	if len(args) >= 3 {
		widgetType = args[2]
	}

	widgetID := "matrixbot_" + randomToken(constants.WidgetTokenBytes)
	widget := matrix.WidgetState{WidgetID: widgetID, Type: widgetType, URL: url, Name: name}
	if _, err := client.AddWidget(ctx, roomID, widget); err != nil {
		logger.WithFields(logrus.Fields{
			"room":      roomID,
			"widget_id": widgetID,
			"error":     err,
		}).Error("failed-to-add-widget")
		return fmt.Sprintf("❌ Failed to add widget: %v", err)
	}

	return fmt.Sprintf("✅ Widget '%s' added\nID: %s", name, widgetID)
}

// removeWidget removes a widget by ID
func (w *WidgetCommands) removeWidget(ctx context.Context, client *matrix.Client, roomID string, args []string) string {
	if len(args) < 1 {
		return "❌ Invalid arguments\nUsage: widget remove <widget_id>"
	}

	widgetID := args[0]
	if err := client.RemoveWidget(ctx, roomID, widgetID); err != nil {
		logger.WithFields(logrus.Fields{
			"room":      roomID,
			"widget_id": widgetID,
			"error":     err,
		}).Error("failed-to-remove-widget")
		return fmt.Sprintf("❌ Failed to remove widget: %v", err)
	}

	return fmt.Sprintf("✅ Widget '%s' removed", widgetID)
}

// addJitsi creates a Jitsi conference widget. The conference name is
// synthesized from a random token when not supplied.
func (w *WidgetCommands) addJitsi(ctx context.Context, client *matrix.Client, roomID string, args []string) string {
	conferenceID := ""
	if len(args) >= 1 {
		conferenceID = args[0]
	}
	if conferenceID == "" {
		conferenceID = "matrixbot_" + randomToken(constants.RoomNameTokenBytes)
	}

	url := fmt.Sprintf(jitsiURLTemplate, conferenceID)
	widgetID := "jitsi_" + randomToken(constants.WidgetTokenBytes)
	data := map[string]interface{}{
		"domain":       jitsiDomain,
		"conferenceId": conferenceID,
	}

	widget := matrix.WidgetState{WidgetID: widgetID, Type: "jitsi", URL: url, Name: "Jitsi Meeting", Data: data}
	if _, err := client.AddWidget(ctx, roomID, widget); err != nil {
		logger.WithFields(logrus.Fields{
			"room":       roomID,
			"conference": conferenceID,
			"error":      err,
		}).Error("failed-to-add-jitsi-widget")
		return fmt.Sprintf("❌ Failed to add Jitsi widget: %v", err)
	}

	return fmt.Sprintf("✅ Jitsi meeting started\nConference: %s\nURL: %s", conferenceID, url)
}

// addEtherpad creates a collaborative Etherpad widget
func (w *WidgetCommands) addEtherpad(ctx context.Context, client *matrix.Client, roomID string, args []string) string {
	padName := ""
	if len(args) >= 1 {
		padName = args[0]
	}
	if padName == "" {
		padName = "matrixbot_" + randomToken(constants.RoomNameTokenBytes)
	}

	url := fmt.Sprintf(etherpadURLTemplate, padName)
	widgetID := "etherpad_" + randomToken(constants.WidgetTokenBytes)

	widget := matrix.WidgetState{WidgetID: widgetID, Type: "etherpad", URL: url, Name: "Etherpad"}
	if _, err := client.AddWidget(ctx, roomID, widget); err != nil {
		logger.WithFields(logrus.Fields{
			"room":  roomID,
			"pad":   padName,
			"error": err,
		}).Error("failed-to-add-etherpad-widget")
		return fmt.Sprintf("❌ Failed to add Etherpad widget: %v", err)
	}

	return fmt.Sprintf("✅ Etherpad created\nPad: %s\nURL: %s", padName, url)
}

// addYouTube creates an embedded YouTube player widget
func (w *WidgetCommands) addYouTube(ctx context.Context, client *matrix.Client, roomID string, args []string) string {
	if len(args) < 1 {
		return "❌ Invalid arguments\nUsage: widget youtube <video_id_or_url>"
	}

	videoID := extractYouTubeID(args[0])
	if videoID == "" {
		return fmt.Sprintf("❌ Could not recognize a YouTube video ID in: %s", args[0])
	}

	url := fmt.Sprintf(youtubeEmbedTemplate, videoID)
	widgetID := "youtube_" + randomToken(constants.WidgetTokenBytes)

	widget := matrix.WidgetState{WidgetID: widgetID, Type: "video", URL: url, Name: "YouTube"}
	if _, err := client.AddWidget(ctx, roomID, widget); err != nil {
		logger.WithFields(logrus.Fields{
			"room":  roomID,
			"video": videoID,
			"error": err,
		}).Error("failed-to-add-youtube-widget")
		return fmt.Sprintf("❌ Failed to add YouTube widget: %v", err)
	}

	return fmt.Sprintf("✅ YouTube player added\nVideo: %s", videoID)
}

// addCustom creates a widget with a caller-supplied ID.
// URL template variables like $matrix_room_id and $matrix_user_id are
// interpolated by the Matrix client, not here.
// Usage: widget custom <widget_id> <name> <url> [type]
func (w *WidgetCommands) addCustom(ctx context.Context, client *matrix.Client, roomID string, args []string) string {
	if len(args) < 3 {
		return "❌ Invalid arguments\nUsage: widget custom <widget_id> <name> <url> [type]"
	}

	widgetID := args[0]
	name := args[1]
	url := args[2]
	widgetType := defaultWidgetType
	if len(args) >= 4 {
		widgetType = args[3]
	}

	widget := matrix.WidgetState{WidgetID: widgetID, Type: widgetType, URL: url, Name: name}
	if _, err := client.AddWidget(ctx, roomID, widget); err != nil {
		logger.WithFields(logrus.Fields{
			"room":      roomID,
			"widget_id": widgetID,
			"error":     err,
		}).Error("failed-to-add-custom-widget")
		return fmt.Sprintf("❌ Failed to add widget: %v", err)
	}

	return fmt.Sprintf("✅ Widget '%s' added\nID: %s", name, widgetID)
}

// randomToken returns n random bytes as a lowercase hex string
func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the system entropy source is broken
		logger.WithField("error", err).Error("failed-to-read-random-bytes")
		return "00000000"
	}
	return hex.EncodeToString(buf)
}

// truncateURL shortens long URLs for display
func truncateURL(url string) string {
	if len(url) <= constants.MaxListedURLLength {
		return url
	}
	return url[:constants.MaxListedURLLength] + "..."
}

// extractYouTubeID pulls the video ID out of a YouTube URL. Bare IDs
// pass through unchanged.
func extractYouTubeID(arg string) string {
	if !strings.Contains(arg, "youtube.com") && !strings.Contains(arg, "youtu.be") {
		return arg
	}

	if idx := strings.Index(arg, "v="); idx >= 0 {
		id := arg[idx+2:]
		if amp := strings.IndexAny(id, "&#"); amp >= 0 {
			id = id[:amp]
		}
		return id
	}

	if idx := strings.Index(arg, "youtu.be/"); idx >= 0 {
		id := arg[idx+len("youtu.be/"):]
		if cut := strings.IndexAny(id, "?&#"); cut >= 0 {
			id = id[:cut]
		}
		return id
	}

	return ""
}
