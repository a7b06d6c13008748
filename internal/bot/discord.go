package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// DiscordSessionInterface defines the subset of discordgo.Session the bot
// needs, allowing tests to substitute a fake
type DiscordSessionInterface interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordBot implements BotAdapter for Discord
type DiscordBot struct {
	mu             sync.RWMutex
	token          string
	channelID      string
	session        DiscordSessionInterface
	messageHandler func(BotMessage)
}

// NewDiscordBot creates a new Discord bot instance
func NewDiscordBot(token, channelID string) *DiscordBot {
	return &DiscordBot{
		token:     token,
		channelID: channelID,
	}
}

// Start establishes the Discord gateway connection and begins listening
// for messages
func (d *DiscordBot) Start(messageHandler func(BotMessage)) error {
	d.SetMessageHandler(messageHandler)

	logger.WithFields(logrus.Fields{
		"token":   maskSecret(d.token),
		"channel": d.channelID,
	}).Info("starting-discord-bot")

	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	d.mu.Lock()
	d.session = session
	d.mu.Unlock()

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore messages from bots, including our own
		if m.Author.Bot {
			return
		}

		logger.WithFields(logrus.Fields{
			"platform": "discord",
			"user_id":  m.Author.ID,
			"username": m.Author.Username,
			"channel":  m.ChannelID,
			"content":  m.Content,
		}).Debug("received-discord-message")

		handler := d.GetMessageHandler()
		if handler != nil {
			handler(BotMessage{
				Platform:  "discord",
				UserID:    m.Author.ID,
				Channel:   m.ChannelID,
				Content:   m.Content,
				Timestamp: time.Now(),
			})
		}
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}

	return nil
}

// SendMessage sends a message to a Discord channel
func (d *DiscordBot) SendMessage(channel, message string) error {
	d.mu.RLock()
	session := d.session
	channelID := d.channelID
	d.mu.RUnlock()

	if session == nil {
		return fmt.Errorf("discord session not initialized")
	}

	targetChannel := channel
	if targetChannel == "" {
		targetChannel = channelID
	}

	if len(message) > constants.MaxDiscordMessageLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(message),
			"max_length":      constants.MaxDiscordMessageLength,
		}).Info("truncating-message-for-discord-limit")
		message = truncateUTF8(message, constants.MaxDiscordMessageLength-3) + "..."
	}

	if _, err := session.ChannelMessageSend(targetChannel, message); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": targetChannel,
			"error":   err,
		}).Error("failed-to-send-message-to-discord")
		return fmt.Errorf("failed to send message to channel %s: %w", targetChannel, err)
	}

	logger.WithField("channel", targetChannel).Info("message-sent-to-discord")
	return nil
}

// Stop closes the Discord connection and cleans up resources
func (d *DiscordBot) Stop() error {
	d.mu.Lock()
	session := d.session
	d.session = nil
	d.mu.Unlock()

	if session == nil {
		return nil
	}

	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}

	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (d *DiscordBot) SetMessageHandler(handler func(BotMessage)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (d *DiscordBot) GetMessageHandler() func(BotMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.messageHandler
}
