package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/keepmind9/matrixbot/internal/bot"
	"github.com/keepmind9/matrixbot/internal/core"
	"github.com/keepmind9/matrixbot/internal/logger"
)

var (
	configFile string

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start matrixbot main process",
		Long:  "Start matrixbot main process, listen to bot messages and dispatch widget and music commands",
		Run: func(cmd *cobra.Command, args []string) {
			// Load configuration
			config, err := core.LoadConfig(configFile)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}

			fmt.Printf("Starting matrixbot with config: %s\n", configFile)
			fmt.Printf("Whitelist enabled: %v\n", config.Security.WhitelistEnabled)
			fmt.Printf("Default music provider: %s\n", config.Music.DefaultProvider)

			// Initialize logger
			logConfig := logger.Config{
				Level:        config.Logging.Level,
				File:         config.Logging.File,
				MaxSize:      config.Logging.MaxSize,
				MaxBackups:   config.Logging.MaxBackups,
				MaxAge:       config.Logging.MaxAge,
				Compress:     config.Logging.Compress,
				EnableStdout: config.Logging.EnableStdout,
			}
			if err := logger.InitLogger(logConfig); err != nil {
				log.Fatalf("Failed to initialize logger: %v", err)
			}

			logger.WithFields(logrus.Fields{
				"config_file": configFile,
				"log_level":   config.Logging.Level,
				"log_file":    config.Logging.File,
			}).Info("logger-initialized")

			// Create engine
			engine := core.NewEngine(config)

			// Register bot adapters
			for botType, botConfig := range config.Bots {
				if !botConfig.Enabled {
					log.Printf("Bot %s is disabled, skipping", botType)
					continue
				}

				switch botType {
				case "matrix":
					matrixBot := bot.NewMatrixBot(botConfig.Homeserver, botConfig.AccessToken, botConfig.UserID)
					engine.RegisterBotAdapter(botType, matrixBot)
					log.Printf("Registered %s bot adapter", botType)

				case "discord":
					discordBot := bot.NewDiscordBot(botConfig.Token, botConfig.ChannelID)
					engine.RegisterBotAdapter(botType, discordBot)
					log.Printf("Registered %s bot adapter", botType)

				case "telegram":
					telegramBot := bot.NewTelegramBot(botConfig.Token)
					engine.RegisterBotAdapter(botType, telegramBot)
					log.Printf("Registered %s bot adapter", botType)

				case "feishu":
					feishuBot := bot.NewFeishuBot(botConfig.AppID, botConfig.AppSecret)
					if botConfig.EncryptKey != "" {
						feishuBot.EncryptKey = botConfig.EncryptKey
					}
					if botConfig.VerificationToken != "" {
						feishuBot.VerificationToken = botConfig.VerificationToken
					}
					engine.RegisterBotAdapter(botType, feishuBot)
					log.Printf("Registered %s bot adapter (WebSocket long connection)", botType)

				case "dingtalk":
					dingtalkBot := bot.NewDingTalkBot(botConfig.ClientID, botConfig.ClientSecret)
					engine.RegisterBotAdapter(botType, dingtalkBot)
					log.Printf("Registered %s bot adapter", botType)

				default:
					log.Printf("Warning: Bot type '%s' not implemented yet", botType)
				}
			}

			// Setup signal handling for graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Start engine in a goroutine
			engineErrChan := make(chan error, 1)
			go func() {
				fmt.Println("\nmatrixbot engine starting...")
				fmt.Println("Press Ctrl+C to stop")
				engineErrChan <- engine.Run(ctx)
			}()

			// Wait for signal or engine error
			select {
			case sig := <-sigChan:
				log.Printf("\nReceived signal: %v, shutting down gracefully...", sig)
				cancel()
				if err := engine.Stop(); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			case err := <-engineErrChan:
				if err != nil {
					log.Fatalf("Engine error: %v", err)
				}
			}

			log.Println("matrixbot stopped")
		},
	}
)

func init() {
	startCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
}
