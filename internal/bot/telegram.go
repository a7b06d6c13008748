package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// TelegramBot implements BotAdapter for Telegram using long polling
type TelegramBot struct {
	mu             sync.RWMutex
	token          string
	bot            *tgbotapi.BotAPI
	messageHandler func(BotMessage)
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(token string) *TelegramBot {
	return &TelegramBot{
		token: token,
	}
}

// Start establishes the long polling connection to Telegram and begins
// listening for messages
func (t *TelegramBot) Start(messageHandler func(BotMessage)) error {
	t.SetMessageHandler(messageHandler)
	t.ctx, t.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"token": maskSecret(t.token),
	}).Info("starting-telegram-bot-with-long-polling")

	api, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		logger.WithField("error", err).Error("failed-to-initialize-telegram-bot")
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	t.mu.Lock()
	t.bot = api
	t.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_username": api.Self.UserName,
		"bot_id":       api.Self.ID,
	}).Info("telegram-bot-initialized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60 // long poll timeout in seconds

	updates := api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-t.ctx.Done():
				logger.Info("telegram-long-polling-stopped")
				return
			case update, ok := <-updates:
				if !ok {
					logger.Info("telegram-updates-channel-closed")
					return
				}
				if update.Message != nil {
					t.handleMessage(update.Message)
				}
			}
		}
	}()

	logger.Info("telegram-long-polling-connection-started")
	return nil
}

// handleMessage handles incoming message events from Telegram
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	if message == nil || message.Text == "" {
		return
	}

	var userID, chatID string
	if message.From != nil {
		userID = strconv.FormatInt(message.From.ID, 10)
	}
	if message.Chat != nil {
		chatID = strconv.FormatInt(message.Chat.ID, 10)
	}

	logger.WithFields(logrus.Fields{
		"platform":    "telegram",
		"user_id":     userID,
		"chat_id":     chatID,
		"message_id":  message.MessageID,
		"content_len": len(message.Text),
	}).Debug("received-telegram-message")

	handler := t.GetMessageHandler()
	if handler != nil {
		handler(BotMessage{
			Platform:  "telegram",
			UserID:    userID,
			Channel:   chatID,
			Content:   message.Text,
			Timestamp: time.Now(),
		})
	}
}

// SendMessage sends a message to a Telegram chat
func (t *TelegramBot) SendMessage(chatID, message string) error {
	t.mu.RLock()
	api := t.bot
	t.mu.RUnlock()

	if api == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	if chatID == "" {
		return fmt.Errorf("chat ID is required for Telegram")
	}

	if len(message) > constants.MaxTelegramMessageLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(message),
			"max_length":      constants.MaxTelegramMessageLength,
		}).Info("truncating-message-for-telegram-limit")
		message = truncateUTF8(message, constants.MaxTelegramMessageLength)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID format: %w", err)
	}

	msg := tgbotapi.NewMessage(chatIDInt, message)
	if _, err := api.Send(msg); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-message-to-telegram")
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}

	logger.WithField("chat_id", chatID).Info("message-sent-to-telegram")
	return nil
}

// Stop closes the Telegram long polling connection and cleans up resources
func (t *TelegramBot) Stop() error {
	if t.cancel != nil {
		t.cancel()
	}

	t.mu.Lock()
	api := t.bot
	t.bot = nil
	t.mu.Unlock()

	if api != nil {
		api.StopReceivingUpdates()
	}

	logger.Info("telegram-bot-stopped")
	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (t *TelegramBot) SetMessageHandler(handler func(BotMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (t *TelegramBot) GetMessageHandler() func(BotMessage) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.messageHandler
}
