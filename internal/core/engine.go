package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/keepmind9/matrixbot/internal/bot"
	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/internal/matrix"
	"github.com/keepmind9/matrixbot/internal/music"
	"github.com/keepmind9/matrixbot/pkg/constants"
)

// ClientResolver resolves the widget-capable client for a platform.
// Widgets only exist on Matrix, so most platforms resolve to nil.
type ClientResolver interface {
	ResolveWidgetClient(platform string) *matrix.Client
}

// Engine is the core scheduling engine that manages bot connections
// and dispatches user commands to the widget and music handlers
type Engine struct {
	config      *Config
	activeBots  map[string]bot.BotAdapter // Bot type -> adapter
	botMu       sync.RWMutex              // Mutex for bot registry access
	messageChan chan bot.BotMessage       // Bot message channel
	widgets     *WidgetCommands
	music       *MusicCommands
	ctx         context.Context    // Context for cancellation
	cancel      context.CancelFunc // Cancel function for graceful shutdown
}

// NewEngine creates a new Engine instance
func NewEngine(config *Config) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		config:      config,
		activeBots:  make(map[string]bot.BotAdapter),
		messageChan: make(chan bot.BotMessage, constants.MessageChannelBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	registry := music.NewRegistry()
	registry.Register(music.NewNeteaseProvider(config.Music.NeteaseAPI))
	registry.Register(music.NewQQProvider(config.Music.QQAPI))
	registry.Register(music.NewYouTubeProvider(config.Music.YouTubeAPI))
	registry.Register(music.NewSpotifyProvider())

	e.widgets = NewWidgetCommands(e)
	e.music = NewMusicCommands(e, registry, music.NewSessionStore(), music.Platform(config.Music.DefaultProvider))

	return e
}

// RegisterBotAdapter registers a bot adapter
func (e *Engine) RegisterBotAdapter(botType string, adapter bot.BotAdapter) {
	e.botMu.Lock()
	defer e.botMu.Unlock()
	e.activeBots[botType] = adapter
}

// ResolveWidgetClient returns the Matrix client behind a platform's bot
// adapter, or nil when the platform has no widget support
func (e *Engine) ResolveWidgetClient(platform string) *matrix.Client {
	e.botMu.RLock()
	adapter, exists := e.activeBots[platform]
	e.botMu.RUnlock()

	if !exists {
		return nil
	}
	capable, ok := adapter.(bot.WidgetCapable)
	if !ok {
		return nil
	}
	return capable.WidgetClient()
}

// Run starts the engine and begins processing messages
func (e *Engine) Run(ctx context.Context) error {
	logger.Info("starting-matrixbot-engine")

	started := 0
	for botType, botConfig := range e.config.Bots {
		if !botConfig.Enabled {
			continue
		}

		e.botMu.RLock()
		botAdapter, exists := e.activeBots[botType]
		e.botMu.RUnlock()
		if !exists {
			logger.WithField("bot_type", botType).Warn("bot-adapter-not-registered")
			continue
		}

		logger.WithField("bot_type", botType).Info("starting-bot")
		started++
		go func(bt string, ba bot.BotAdapter) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						"bot_type": bt,
						"panic":    r,
					}).Error("bot-start-panic-recovered")
				}
			}()
			if err := ba.Start(e.HandleBotMessage); err != nil {
				logger.WithFields(logrus.Fields{
					"bot_type": bt,
					"error":    err,
				}).Error("failed-to-start-bot")
			}
		}(botType, botAdapter)
	}

	if started == 0 {
		return fmt.Errorf("no bot adapters started")
	}

	e.runEventLoop(ctx)
	return nil
}

// runEventLoop runs the main event loop for processing messages
func (e *Engine) runEventLoop(ctx context.Context) {
	logger.Info("engine-event-loop-started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("event-loop-shutting-down")
			return
		case <-e.ctx.Done():
			logger.Info("event-loop-shutting-down")
			return
		case msg := <-e.messageChan:
			e.HandleUserMessage(msg)
		}
	}
}

// HandleBotMessage is the callback function for bots to deliver messages
func (e *Engine) HandleBotMessage(msg bot.BotMessage) {
	e.messageChan <- msg
}

// HandleUserMessage processes a message from a user
func (e *Engine) HandleUserMessage(msg bot.BotMessage) {
	logger.WithFields(logrus.Fields{
		"platform": msg.Platform,
		"user":     msg.UserID,
		"channel":  msg.Channel,
	}).Info("processing-user-message")

	// Security check: verify user is in whitelist
	if !e.config.IsUserAuthorized(msg.Platform, msg.UserID) {
		logger.WithFields(logrus.Fields{
			"platform": msg.Platform,
			"user":     msg.UserID,
		}).Warn("unauthorized-access-attempt")
		e.SendToBot(msg.Platform, msg.Channel, "❌ Unauthorized: Please contact the administrator to add your user ID")
		return
	}

	input := strings.TrimSpace(msg.Content)
	input = strings.TrimPrefix(input, "/")
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return
	}

	command := fields[0]
	args := fields[1:]

	switch command {
	case "widget":
		logger.WithFields(logrus.Fields{
			"command": command,
			"args":    args,
			"user":    msg.UserID,
		}).Info("widget-command-received")
		reply := e.widgets.Handle(e.ctx, args, msg)
		if reply != "" {
			e.SendToBot(msg.Platform, msg.Channel, reply)
		}
	case "music":
		logger.WithFields(logrus.Fields{
			"command": command,
			"args":    args,
			"user":    msg.UserID,
		}).Info("music-command-received")
		reply := e.music.Handle(e.ctx, args, msg)
		if reply != "" {
			e.SendToBot(msg.Platform, msg.Channel, reply)
		}
	case "help":
		e.showHelp(msg)
	default:
		// Not a bot command, ignore silently
		logger.WithFields(logrus.Fields{
			"user":  msg.UserID,
			"input": command,
		}).Debug("ignoring-non-command-message")
	}
}

// showHelp displays help information about available commands
func (e *Engine) showHelp(msg bot.BotMessage) {
	help := `📖 **matrixbot Help**

**Widget Commands** (Matrix rooms only):
  widget list                    - List widgets in the current room
  widget add <name> <url> [type] - Add a widget with a generated ID
  widget remove <id>             - Remove a widget by ID
  widget jitsi [room]            - Add a Jitsi video conference widget
  widget etherpad [name]         - Add a collaborative Etherpad widget
  widget youtube <url>           - Add an embedded YouTube player
  widget custom <id> <name> <url> [type] - Add a widget with your own ID

**Music Commands:**
  music search <keyword> [platform] - Search songs (netease/qq/youtube/spotify)
  music netease <keyword>  - Search NetEase Music
  music qq <keyword>       - Search QQ Music
  music youtube <keyword>  - Search YouTube
  music spotify <link>     - Resolve a Spotify track link
  music play <number>      - Play a result from your last search
  music mode <widget|link> - Choose how results are delivered

**Usage Examples:**
  widget jitsi standup     → Start a Jitsi call named 'standup'
  music search 海阔天空     → Search the default platform
  music play 1             → Play the first search result
  music mode link          → Always reply with plain links`

	e.SendToBot(msg.Platform, msg.Channel, help)
}

// SendToBot sends a message to a specific bot
func (e *Engine) SendToBot(platform, channel, message string) {
	e.botMu.RLock()
	botAdapter, exists := e.activeBots[platform]
	e.botMu.RUnlock()

	if !exists {
		logger.WithField("platform", platform).Warn("no-bot-adapter-for-platform")
		return
	}

	if err := botAdapter.SendMessage(channel, message); err != nil {
		logger.WithFields(logrus.Fields{
			"platform": platform,
			"channel":  channel,
			"error":    err,
		}).Error("failed-to-send-message-to-bot")
	} else {
		logger.WithFields(logrus.Fields{
			"platform": platform,
			"channel":  channel,
			"length":   len(message),
		}).Info("message-sent-to-bot")
	}
}

// getUserKey generates a unique key for a user across platforms
func getUserKey(platform, userID string) string {
	return fmt.Sprintf("%s:%s", platform, userID)
}

// Stop gracefully stops the engine
func (e *Engine) Stop() error {
	logger.Info("stopping-matrixbot-engine")

	if e.cancel != nil {
		e.cancel()
	}

	e.botMu.RLock()
	defer e.botMu.RUnlock()
	for botType, botAdapter := range e.activeBots {
		logger.WithField("bot_type", botType).Info("stopping-bot")
		if err := botAdapter.Stop(); err != nil {
			logger.WithFields(logrus.Fields{
				"bot_type": botType,
				"error":    err,
			}).Error("failed-to-stop-bot")
		}
	}

	logger.Info("engine-stopped")
	return nil
}
