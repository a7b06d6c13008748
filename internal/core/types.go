package core

// Config represents the complete matrixbot configuration structure
type Config struct {
	Security SecurityConfig       `yaml:"security"`
	Bots     map[string]BotConfig `yaml:"bots"`
	Music    MusicConfig          `yaml:"music"`
	Logging  LoggingConfig        `yaml:"logging"`
}

// SecurityConfig represents security and access control configuration
type SecurityConfig struct {
	WhitelistEnabled bool                `yaml:"whitelist_enabled"`
	AllowedUsers     map[string][]string `yaml:"allowed_users"`
}

// BotConfig represents a single platform bot configuration
type BotConfig struct {
	Enabled bool `yaml:"enabled"`

	// Matrix
	Homeserver  string `yaml:"homeserver"`
	AccessToken string `yaml:"access_token"`
	UserID      string `yaml:"user_id"`

	// Discord / Telegram
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"` // Discord: default channel ID

	// Feishu
	AppID             string `yaml:"app_id"`
	AppSecret         string `yaml:"app_secret"`
	EncryptKey        string `yaml:"encrypt_key"`        // Feishu: event encryption key (optional)
	VerificationToken string `yaml:"verification_token"` // Feishu: verification token (optional)

	// DingTalk
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// MusicConfig represents music search configuration
type MusicConfig struct {
	DefaultProvider string `yaml:"default_provider"` // netease/qq/youtube/spotify
	NeteaseAPI      string `yaml:"netease_api"`      // override for the NetEase search endpoint
	QQAPI           string `yaml:"qq_api"`           // override for the QQ Music search endpoint
	YouTubeAPI      string `yaml:"youtube_api"`      // Invidious-compatible mirror base URL
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs (default: true)
	EnableStdout bool   `yaml:"enable_stdout"` // Also output to stdout (default: true)
}
