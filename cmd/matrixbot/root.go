package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matrixbot",
	Short: "matrixbot manages Matrix room widgets and music search from chat",
	Long: `matrixbot is a chat bot that manages Matrix room widgets (Jitsi,
Etherpad, YouTube, custom embeds) and searches music across several
streaming platforms (NetEase, QQ Music, YouTube, Spotify). It can also
relay music search to Discord, Telegram, Feishu, and DingTalk, where
results are delivered as plain links.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
