package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/pkg/constants"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/chatbot"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/client"
	"github.com/sirupsen/logrus"
)

// DingTalkBot implements BotAdapter for DingTalk using a WebSocket long
// connection
type DingTalkBot struct {
	mu             sync.RWMutex
	clientID       string
	clientSecret   string
	streamClient   *client.StreamClient
	messageHandler func(BotMessage)
	// sessionWebhooks maps conversation IDs to the reply webhook carried
	// on the most recent callback for that conversation
	sessionWebhooks map[string]string
	httpClient      *http.Client
	ctx             context.Context
	cancel          context.CancelFunc
}

// NewDingTalkBot creates a new DingTalk bot instance
func NewDingTalkBot(clientID, clientSecret string) *DingTalkBot {
	return &DingTalkBot{
		clientID:        clientID,
		clientSecret:    clientSecret,
		sessionWebhooks: make(map[string]string),
		httpClient:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

// Start establishes the WebSocket long connection to DingTalk and begins
// listening for messages
func (d *DingTalkBot) Start(messageHandler func(BotMessage)) error {
	d.SetMessageHandler(messageHandler)
	d.ctx, d.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"client_id": maskSecret(d.clientID),
	}).Info("starting-dingtalk-bot-with-websocket-long-connection")

	credential := client.NewAppCredentialConfig(d.clientID, d.clientSecret)

	d.mu.Lock()
	d.streamClient = client.NewStreamClient(client.WithAppCredential(credential))
	streamClient := d.streamClient
	d.mu.Unlock()

	streamClient.RegisterChatBotCallbackRouter(d.handleMessageReceive)

	go func() {
		if err := streamClient.Start(d.ctx); err != nil {
			logger.WithField("error", err).Error("dingtalk-websocket-connection-failed")
		}
	}()

	logger.Info("dingtalk-websocket-long-connection-started")
	return nil
}

// handleMessageReceive handles incoming message events from DingTalk
func (d *DingTalkBot) handleMessageReceive(_ context.Context, data *chatbot.BotCallbackDataModel) ([]byte, error) {
	if data == nil {
		return []byte(""), nil
	}

	content := ""
	if data.Msgtype == "text" {
		content = data.Text.Content
	}

	logger.WithFields(logrus.Fields{
		"platform":        "dingtalk",
		"conversation_id": data.ConversationId,
		"sender_staff_id": data.SenderStaffId,
		"msg_type":        data.Msgtype,
		"content_len":     len(content),
	}).Debug("received-dingtalk-message")

	if data.SessionWebhook != "" && data.ConversationId != "" {
		d.mu.Lock()
		d.sessionWebhooks[data.ConversationId] = data.SessionWebhook
		d.mu.Unlock()
	}

	handler := d.GetMessageHandler()
	if handler != nil && content != "" {
		handler(BotMessage{
			Platform:  "dingtalk",
			UserID:    data.SenderStaffId, // staffId identifies the sender
			Channel:   data.ConversationId,
			Content:   content,
			Timestamp: time.Now(),
		})
	}

	return []byte(""), nil
}

// SendMessage posts a text reply to the session webhook recorded for the
// conversation. Replies are only possible after at least one message has
// been received from that conversation.
func (d *DingTalkBot) SendMessage(conversationID, message string) error {
	if conversationID == "" {
		return fmt.Errorf("conversation ID is required for DingTalk")
	}

	d.mu.RLock()
	webhook := d.sessionWebhooks[conversationID]
	d.mu.RUnlock()
	if webhook == "" {
		return fmt.Errorf("no session webhook recorded for conversation %s", conversationID)
	}

	if len(message) > constants.MaxDingTalkMessageLength {
		message = truncateUTF8(message, constants.MaxDingTalkMessageLength)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"msgtype": "text",
		"text": map[string]string{
			"content": message,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode DingTalk reply: %w", err)
	}

	resp, err := d.httpClient.Post(webhook, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to send DingTalk reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("DingTalk webhook returned status %d", resp.StatusCode)
	}

	logger.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"message_length":  len(message),
	}).Info("message-sent-to-dingtalk")
	return nil
}

// Stop closes the DingTalk WebSocket connection and cleans up resources
func (d *DingTalkBot) Stop() error {
	if d.cancel != nil {
		d.cancel()
	}

	d.mu.Lock()
	streamClient := d.streamClient
	d.streamClient = nil
	d.mu.Unlock()

	if streamClient != nil {
		streamClient.Close()
	}

	logger.Info("dingtalk-bot-stopped")
	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (d *DingTalkBot) SetMessageHandler(handler func(BotMessage)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (d *DingTalkBot) GetMessageHandler() func(BotMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.messageHandler
}
