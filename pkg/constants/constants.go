package constants

import "time"

// Message length limits for different platforms
const (
	// MaxDiscordMessageLength is Discord's message character limit
	MaxDiscordMessageLength = 2000
	// MaxTelegramMessageLength is Telegram's message character limit
	MaxTelegramMessageLength = 4096
	// MaxFeishuMessageLength is Feishu's message character limit
	MaxFeishuMessageLength = 20000
	// MaxDingTalkMessageLength is DingTalk's message character limit
	MaxDingTalkMessageLength = 20000
	// MaxMatrixMessageLength keeps replies well under the homeserver event size limit
	MaxMatrixMessageLength = 32000
)

// Timeouts and delays
const (
	// DefaultHTTPTimeout is the timeout for music search API requests
	DefaultHTTPTimeout = 10 * time.Second
	// DefaultMatrixTimeout is the timeout for Matrix client-server API requests
	DefaultMatrixTimeout = 30 * time.Second
	// DefaultSyncTimeout is the long-poll timeout passed to /sync, in milliseconds
	DefaultSyncTimeout = 30000
	// SyncRequestGrace is added on top of the /sync hold window when bounding
	// the request deadline, so an idle long-poll is not cut off mid-hold
	SyncRequestGrace = 10 * time.Second
)

// Search and listing limits
const (
	// MaxSearchResults caps the number of tracks kept from a provider search
	MaxSearchResults = 10
	// MaxListedURLLength truncates widget URLs in listings for readability
	MaxListedURLLength = 50
)

// Widget ID token lengths, in bytes of random data (hex doubles them)
const (
	// WidgetTokenBytes is used for generated widget IDs (16 hex characters)
	WidgetTokenBytes = 8
	// RoomNameTokenBytes is used for generated Jitsi/Etherpad names (12 hex characters)
	RoomNameTokenBytes = 6
)

// Message buffer sizes
const (
	// MessageChannelBufferSize is the buffer size for the engine message channel
	MessageChannelBufferSize = 100
)

// Secret masking
const (
	// MinSecretLengthForMasking is the minimum secret length to apply masking
	MinSecretLengthForMasking = 10
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 7
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)
