package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/keepmind9/matrixbot/pkg/constants"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/larksuite/oapi-sdk-go/v3/ws"
	"github.com/sirupsen/logrus"
)

// FeishuBot implements BotAdapter for Feishu (Lark) using a WebSocket
// long connection
type FeishuBot struct {
	mu                sync.RWMutex
	appID             string
	appSecret         string
	EncryptKey        string // optional, for encrypted events
	VerificationToken string // optional, for event verification
	wsClient          *ws.Client
	larkClient        *lark.Client
	messageHandler    func(BotMessage)
	ctx               context.Context
	cancel            context.CancelFunc
}

// NewFeishuBot creates a new Feishu bot instance
func NewFeishuBot(appID, appSecret string) *FeishuBot {
	return &FeishuBot{
		appID:      appID,
		appSecret:  appSecret,
		larkClient: lark.NewClient(appID, appSecret),
	}
}

// Start establishes the WebSocket long connection to Feishu and begins
// listening for messages
func (f *FeishuBot) Start(messageHandler func(BotMessage)) error {
	f.SetMessageHandler(messageHandler)
	f.ctx, f.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"app_id": maskSecret(f.appID),
	}).Info("starting-feishu-bot-with-websocket-long-connection")

	eventDispatcher := dispatcher.NewEventDispatcher(f.VerificationToken, f.EncryptKey)
	eventDispatcher.OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
		return f.handleMessageReceive(ctx, event)
	})

	f.wsClient = ws.NewClient(f.appID, f.appSecret,
		ws.WithEventHandler(eventDispatcher),
		ws.WithLogLevel(larkcore.LogLevelInfo),
		ws.WithAutoReconnect(true),
	)

	go func() {
		if err := f.wsClient.Start(f.ctx); err != nil {
			logger.WithField("error", err).Error("feishu-websocket-connection-failed")
		}
	}()

	logger.Info("feishu-websocket-long-connection-started")
	return nil
}

// handleMessageReceive handles incoming message events from Feishu
func (f *FeishuBot) handleMessageReceive(_ context.Context, event *larkim.P2MessageReceiveV1) error {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return nil
	}

	ev := event.Event

	var chatID, senderID, content string
	if ev.Message.ChatId != nil {
		chatID = *ev.Message.ChatId
	}
	if ev.Message.Content != nil {
		content = extractFeishuText(*ev.Message.Content)
	}
	if ev.Sender != nil && ev.Sender.SenderId != nil && ev.Sender.SenderId.UserId != nil {
		senderID = *ev.Sender.SenderId.UserId
	}

	logger.WithFields(logrus.Fields{
		"platform":    "feishu",
		"user_id":     senderID,
		"chat_id":     chatID,
		"content_len": len(content),
	}).Debug("received-feishu-message")

	handler := f.GetMessageHandler()
	if handler != nil && content != "" {
		handler(BotMessage{
			Platform:  "feishu",
			UserID:    senderID,
			Channel:   chatID,
			Content:   content,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// SendMessage sends a message to a Feishu chat
func (f *FeishuBot) SendMessage(chatID, message string) error {
	if chatID == "" {
		return fmt.Errorf("chat ID is required for Feishu")
	}

	f.mu.RLock()
	client := f.larkClient
	f.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("feishu client not initialized")
	}

	if len(message) > constants.MaxFeishuMessageLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(message),
			"max_length":      constants.MaxFeishuMessageLength,
		}).Info("truncating-message-for-feishu-limit")
		message = truncateUTF8(message, constants.MaxFeishuMessageLength)
	}

	// Text message content is itself a JSON document: {"text":"..."}
	contentJSON, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to encode message content: %w", err)
	}

	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(chatID).
		MsgType(larkim.MsgTypeText).
		Content(string(contentJSON)).
		Build()

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(body).
		Build()

	ctx := f.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := client.Im.Message.Create(ctx, req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-message-to-feishu")
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}

	if !resp.Success() {
		logger.WithFields(logrus.Fields{
			"chat_id":    chatID,
			"code":       resp.Code,
			"msg":        resp.Msg,
			"request_id": resp.RequestId,
		}).Error("failed-to-send-message-to-feishu-api-error")
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	logger.WithField("chat_id", chatID).Info("message-sent-to-feishu")
	return nil
}

// Stop closes the Feishu WebSocket connection and cleans up resources
func (f *FeishuBot) Stop() error {
	if f.cancel != nil {
		// The ws client has no Stop method; the connection follows the context
		f.cancel()
	}

	logger.Info("feishu-bot-stopped")
	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (f *FeishuBot) SetMessageHandler(handler func(BotMessage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (f *FeishuBot) GetMessageHandler() func(BotMessage) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.messageHandler
}

// extractFeishuText extracts the text field from a Feishu message content
// document, which for text messages looks like {"text":"actual message"}.
// Non-text content is returned unchanged.
func extractFeishuText(content string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err == nil && parsed.Text != "" {
		return parsed.Text
	}
	return content
}
