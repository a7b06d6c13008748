package core

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/keepmind9/matrixbot/internal/music"
)

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables before parsing
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} placeholders with environment variable values.
// Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		return os.Getenv(name)
	})
}

// validateConfig validates the configuration and applies defaults
func validateConfig(config *Config) error {
	enabled := 0
	for platform, botConfig := range config.Bots {
		if !botConfig.Enabled {
			continue
		}
		enabled++

		switch platform {
		case "matrix":
			if botConfig.Homeserver == "" {
				return fmt.Errorf("matrix bot enabled but homeserver not set")
			}
			if botConfig.AccessToken == "" {
				return fmt.Errorf("matrix bot enabled but access_token not set")
			}
			if botConfig.UserID == "" {
				return fmt.Errorf("matrix bot enabled but user_id not set")
			}
		case "discord", "telegram":
			if botConfig.Token == "" {
				return fmt.Errorf("%s bot enabled but token not set", platform)
			}
		case "feishu":
			if botConfig.AppID == "" || botConfig.AppSecret == "" {
				return fmt.Errorf("feishu bot enabled but app_id or app_secret not set")
			}
		case "dingtalk":
			if botConfig.ClientID == "" || botConfig.ClientSecret == "" {
				return fmt.Errorf("dingtalk bot enabled but client_id or client_secret not set")
			}
		default:
			return fmt.Errorf("unknown bot platform: %s", platform)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("no bot platform enabled")
	}

	if config.Music.DefaultProvider == "" {
		config.Music.DefaultProvider = string(music.PlatformNetease)
	}
	switch music.Platform(config.Music.DefaultProvider) {
	case music.PlatformNetease, music.PlatformQQ, music.PlatformYouTube, music.PlatformSpotify:
	default:
		return fmt.Errorf("unknown default music provider: %s", config.Music.DefaultProvider)
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.File == "" {
		config.Logging.File = "logs/matrixbot.log"
	}
	if config.Logging.MaxSize <= 0 {
		config.Logging.MaxSize = 100
	}
	if config.Logging.MaxBackups <= 0 {
		config.Logging.MaxBackups = 5
	}
	if config.Logging.MaxAge <= 0 {
		config.Logging.MaxAge = 30
	}

	return nil
}

// IsUserAuthorized checks whether a user is allowed to issue commands.
// With the whitelist disabled everyone is authorized.
func (c *Config) IsUserAuthorized(platform, userID string) bool {
	if !c.Security.WhitelistEnabled {
		return true
	}
	allowed, ok := c.Security.AllowedUsers[platform]
	if !ok {
		return false
	}
	for _, id := range allowed {
		if strings.TrimSpace(id) == userID {
			return true
		}
	}
	return false
}
