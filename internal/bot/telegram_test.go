package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestTelegramSendMessageWithoutStart(t *testing.T) {
	bot := NewTelegramBot("test-token")

	err := bot.SendMessage("12345", "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestTelegramHandleMessageDispatch(t *testing.T) {
	bot := NewTelegramBot("test-token")

	var dispatched []BotMessage
	bot.SetMessageHandler(func(msg BotMessage) {
		dispatched = append(dispatched, msg)
	})

	bot.handleMessage(&tgbotapi.Message{
		MessageID: 7,
		Text:      "music search hello",
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: -100123},
	})

	assert.Len(t, dispatched, 1)
	assert.Equal(t, "telegram", dispatched[0].Platform)
	assert.Equal(t, "42", dispatched[0].UserID)
	assert.Equal(t, "-100123", dispatched[0].Channel)
	assert.Equal(t, "music search hello", dispatched[0].Content)
}

func TestTelegramHandleMessageIgnoresEmpty(t *testing.T) {
	bot := NewTelegramBot("test-token")

	called := false
	bot.SetMessageHandler(func(msg BotMessage) {
		called = true
	})

	bot.handleMessage(nil)
	bot.handleMessage(&tgbotapi.Message{Text: ""})

	assert.False(t, called)
}

func TestTelegramStopWithoutStart(t *testing.T) {
	bot := NewTelegramBot("test-token")
	assert.NoError(t, bot.Stop())
	assert.NoError(t, bot.Stop())
}
