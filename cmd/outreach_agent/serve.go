package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-architect/internal/config"
	"github.com/jonathan/outreach-architect/internal/server"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for managing leads, generating outreach campaigns and tracking engagement.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by environment variables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig(serveConfigPath)
	if err != nil {
		return err
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or 'database_url' config value is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or 'api_key' config value is required")
	}

	srv, err := server.New(server.Config{
		Port: servePort,
		App:  cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// loadAppConfig layers a JSON config file (if given) over env-derived
// defaults and fills the remaining gaps with built-in defaults.
func loadAppConfig(path string) (config.Config, error) {
	env := config.FromEnv()

	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	merged := cfg.MergeWithDefaults(env)
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}
