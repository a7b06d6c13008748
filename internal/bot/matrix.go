package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/internal/matrix"
	"github.com/keepmind9/matrixbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// MatrixBot implements BotAdapter for Matrix using /sync long polling.
// It also implements WidgetCapable: the client it wraps is the one the
// widget and music commands use for room widget operations.
type MatrixBot struct {
	mu             sync.RWMutex
	client         *matrix.Client
	messageHandler func(BotMessage)
	ctx            context.Context
	cancel         context.CancelFunc
}

var _ WidgetCapable = (*MatrixBot)(nil)

// NewMatrixBot creates a new Matrix bot instance
func NewMatrixBot(homeserverURL, accessToken, userID string) *MatrixBot {
	return &MatrixBot{
		client: matrix.NewClient(homeserverURL, accessToken, userID),
	}
}

// WidgetClient returns the Matrix client used for widget operations
func (m *MatrixBot) WidgetClient() *matrix.Client {
	return m.client
}

// Start begins the /sync long-poll loop and dispatches incoming text
// messages to the handler
func (m *MatrixBot) Start(messageHandler func(BotMessage)) error {
	m.SetMessageHandler(messageHandler)
	m.ctx, m.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"user_id": m.client.UserID(),
	}).Info("starting-matrix-bot-with-sync-long-polling")

	go m.syncLoop()

	return nil
}

// syncLoop long-polls /sync until the bot is stopped
func (m *MatrixBot) syncLoop() {
	since := ""
	for {
		select {
		case <-m.ctx.Done():
			logger.Info("matrix-sync-loop-stopped")
			return
		default:
		}

		resp, err := m.client.Sync(m.ctx, since, constants.DefaultSyncTimeout)
		if err != nil {
			if m.ctx.Err() != nil {
				return
			}
			logger.WithField("error", err).Error("matrix-sync-failed")
			// Back off so a broken homeserver does not spin the loop
			select {
			case <-m.ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		if since != "" {
			m.dispatchEvents(resp)
		}
		since = resp.NextBatch
	}
}

// dispatchEvents forwards text messages from joined rooms to the handler
func (m *MatrixBot) dispatchEvents(resp *matrix.SyncResponse) {
	handler := m.GetMessageHandler()
	if handler == nil {
		return
	}

	for roomID, room := range resp.Rooms.Join {
		for _, ev := range room.Timeline.Events {
			if ev.Type != "m.room.message" || ev.Content.MsgType != "m.text" {
				continue
			}
			// Never react to the bot's own messages
			if ev.Sender == m.client.UserID() {
				continue
			}

			logger.WithFields(logrus.Fields{
				"platform":    "matrix",
				"user_id":     ev.Sender,
				"room_id":     roomID,
				"event_id":    ev.EventID,
				"content_len": len(ev.Content.Body),
			}).Debug("received-matrix-message")

			handler(BotMessage{
				Platform:  "matrix",
				UserID:    ev.Sender,
				Channel:   roomID,
				Content:   ev.Content.Body,
				Timestamp: time.Now(),
			})
		}
	}
}

// SendMessage sends a plain text message to a Matrix room
func (m *MatrixBot) SendMessage(roomID, message string) error {
	if roomID == "" {
		return fmt.Errorf("room ID is required for Matrix")
	}

	if len(message) > constants.MaxMatrixMessageLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(message),
			"max_length":      constants.MaxMatrixMessageLength,
		}).Info("truncating-message-for-matrix-limit")
		message = truncateUTF8(message, constants.MaxMatrixMessageLength)
	}

	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if err := m.client.SendText(ctx, roomID, message); err != nil {
		logger.WithFields(logrus.Fields{
			"room_id": roomID,
			"error":   err,
		}).Error("failed-to-send-message-to-matrix")
		return fmt.Errorf("failed to send message to room %s: %w", roomID, err)
	}

	logger.WithField("room_id", roomID).Info("message-sent-to-matrix")
	return nil
}

// Stop stops the sync loop
func (m *MatrixBot) Stop() error {
	if m.cancel != nil {
		m.cancel()
	}
	logger.Info("matrix-bot-stopped")
	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (m *MatrixBot) SetMessageHandler(handler func(BotMessage)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (m *MatrixBot) GetMessageHandler() func(BotMessage) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.messageHandler
}
