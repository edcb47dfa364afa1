package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-architect/internal/db"
	"github.com/jonathan/outreach-architect/internal/observability"
)

var (
	statsConfigPath string
	statsDBURL      string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print campaign engagement statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsConfigPath, "config", "", "Path to config.json file")
	statsCmd.Flags().StringVar(&statsDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadAppConfig(statsConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = statsDBURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	totalLeads, err := database.CountLeads(ctx)
	if err != nil {
		return err
	}
	stats, err := database.GetCampaignStats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Total leads: %d\n", totalLeads)
	observability.NewPrinter(os.Stdout).PrintCampaignStats(stats)
	return nil
}
