package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keepmind9/matrixbot/internal/core"
)

var (
	validateConfig string
	validateShow   bool
	validateJSON   bool
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Config   string   `json:"config"`
	Bots     int      `json:"bots"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate matrixbot configuration file",
	Long: `Validate the matrixbot configuration file without starting the service.

This command checks:
  - YAML syntax
  - Required fields
  - Bot credentials
  - Music provider settings

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	Run: func(cmd *cobra.Command, args []string) {
		// Get config file path
		configFile := validateConfig
		if configFile == "" {
			// Try default locations
			for _, loc := range []string{
				"config.yaml",
				filepath.Join(os.Getenv("HOME"), ".config/matrixbot/config.yaml"),
				"/etc/matrixbot/config.yaml",
			} {
				if _, err := os.Stat(loc); err == nil {
					configFile = loc
					break
				}
			}
		}

		if configFile == "" {
			fmt.Println("❌ No configuration file found")
			fmt.Println("\nSpecify a config file with --config or ensure one exists at:")
			fmt.Println("  - ./config.yaml")
			fmt.Println("  - ~/.config/matrixbot/config.yaml")
			fmt.Println("  - /etc/matrixbot/config.yaml")
			os.Exit(1)
		}

		// Load configuration
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			result := ValidationResult{
				Valid:  false,
				Config: configFile,
				Errors: []string{err.Error()},
			}
			outputValidationResult(result, validateJSON)
			os.Exit(1)
		}

		result := ValidationResult{
			Valid:    true,
			Config:   configFile,
			Bots:     len(cfg.Bots),
			Warnings: validateConfigDetails(cfg),
		}

		// Show full config if requested
		if validateShow {
			fmt.Printf("✓ Configuration loaded: %s\n\n", configFile)
			fmt.Printf("Bots (%d):\n", len(cfg.Bots))
			for name, bot := range cfg.Bots {
				status := "disabled"
				if bot.Enabled {
					status = "enabled"
				}
				fmt.Printf("  - %s: %s\n", name, status)
			}
			fmt.Printf("\nMusic:\n")
			fmt.Printf("  - default provider: %s\n", cfg.Music.DefaultProvider)
			fmt.Println()
		}

		outputValidationResult(result, validateJSON)

		if !result.Valid {
			os.Exit(1)
		}
	},
}

// validateConfigDetails performs soft checks that produce warnings
// rather than load failures
func validateConfigDetails(cfg *core.Config) []string {
	warnings := []string{}

	if !cfg.Security.WhitelistEnabled {
		warnings = append(warnings, "whitelist is disabled, any user can issue commands")
	}
	if cfg.Security.WhitelistEnabled && len(cfg.Security.AllowedUsers) == 0 {
		warnings = append(warnings, "whitelist is enabled but allowed_users is empty, nobody can issue commands")
	}
	if matrixCfg, ok := cfg.Bots["matrix"]; !ok || !matrixCfg.Enabled {
		warnings = append(warnings, "matrix bot is not enabled, widget commands will be unavailable")
	}

	return warnings
}

func outputValidationResult(result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			fmt.Printf("{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Println(string(output))
		return
	}

	if result.Valid {
		fmt.Printf("✅ Configuration is valid: %s\n", result.Config)
	} else {
		fmt.Printf("❌ Configuration has errors: %s\n", result.Config)
	}
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfig, "config", "c", "", "Configuration file path")
	validateCmd.Flags().BoolVar(&validateShow, "show", false, "Show loaded configuration details")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
