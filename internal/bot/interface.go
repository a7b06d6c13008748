// Package bot provides bot adapters for the chat platforms matrixbot can
// join.
//
// Each adapter handles platform-specific connection logic and message
// delivery behind a common BotAdapter interface. The Matrix adapter
// additionally exposes the room widget client through the WidgetCapable
// capability; the engine queries for that capability instead of inspecting
// adapter internals, so widget commands degrade cleanly on platforms that
// cannot host widgets.
//
// # Thread Safety
//
// All bot adapters are safe for concurrent use. The message handler
// callback may be invoked concurrently from multiple goroutines.
package bot

import (
	"time"

	"github.com/keepmind9/matrixbot/internal/matrix"
)

// BotAdapter defines the interface for bot adapters
type BotAdapter interface {
	// Start establishes the connection and begins listening for messages
	Start(messageHandler func(BotMessage)) error

	// SendMessage sends a plain text message to a channel/room.
	// Adapters truncate to their platform's message length limit.
	SendMessage(channel, message string) error

	// Stop stops the bot and cleans up resources
	Stop() error
}

// WidgetCapable is an optional capability of a BotAdapter. Adapters that
// can manage room widgets expose their Matrix client through it.
type WidgetCapable interface {
	// WidgetClient returns the Matrix client used for widget operations
	WidgetClient() *matrix.Client
}

// BotMessage represents an incoming chat message
type BotMessage struct {
	Platform  string // matrix/discord/telegram/feishu/dingtalk
	UserID    string // Unique sender identifier within the platform
	Channel   string // Channel / room / conversation ID
	Content   string // Message text
	Timestamp time.Time
}
