package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatrixBot(t *testing.T) {
	m := NewMatrixBot("https://matrix.example.org", "syt_token", "@bot:example.org")

	assert.NotNil(t, m.WidgetClient())
	assert.Equal(t, "@bot:example.org", m.WidgetClient().UserID())
}

func TestMatrixBot_ImplementsWidgetCapable(t *testing.T) {
	var adapter BotAdapter = NewMatrixBot("https://matrix.example.org", "token", "@bot:example.org")

	capable, ok := adapter.(WidgetCapable)
	assert.True(t, ok)
	assert.NotNil(t, capable.WidgetClient())
}

func TestMatrixBot_SendMessageRequiresRoom(t *testing.T) {
	m := NewMatrixBot("https://matrix.example.org", "token", "@bot:example.org")

	err := m.SendMessage("", "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "room ID is required")
}

func TestMatrixBot_StopWithoutStart(t *testing.T) {
	m := NewMatrixBot("https://matrix.example.org", "token", "@bot:example.org")
	assert.NoError(t, m.Stop())
}

func TestMatrixBot_MessageHandlerRoundTrip(t *testing.T) {
	m := NewMatrixBot("https://matrix.example.org", "token", "@bot:example.org")
	assert.Nil(t, m.GetMessageHandler())

	called := false
	m.SetMessageHandler(func(BotMessage) { called = true })
	m.GetMessageHandler()(BotMessage{})
	assert.True(t, called)
}

func TestOtherAdaptersAreNotWidgetCapable(t *testing.T) {
	adapters := []BotAdapter{
		NewDiscordBot("token", "channel"),
		NewTelegramBot("token"),
		NewFeishuBot("app-id", "app-secret"),
		NewDingTalkBot("client-id", "client-secret"),
	}

	for _, adapter := range adapters {
		_, ok := adapter.(WidgetCapable)
		assert.False(t, ok)
	}
}
