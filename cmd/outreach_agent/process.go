package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-architect/internal/db"
	"github.com/jonathan/outreach-architect/internal/dispatch"
	"github.com/jonathan/outreach-architect/internal/enrich"
	"github.com/jonathan/outreach-architect/internal/fetch"
	"github.com/jonathan/outreach-architect/internal/generation"
	"github.com/jonathan/outreach-architect/internal/observability"
	"github.com/jonathan/outreach-architect/internal/pipeline"
	"github.com/jonathan/outreach-architect/internal/quality"
	"github.com/jonathan/outreach-architect/internal/types"
)

var processCmd = &cobra.Command{
	Use:   "process [lead-id...]",
	Short: "Run the outreach pipeline for one or more leads",
	Long: `Enriches each lead from public web sources, analyzes it, generates a
personalized outreach email and stores the resulting campaign.

Leads are referenced by ID. Alternatively a one-off lead can be created
inline with --email and --name.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runProcess,
}

var (
	processConfigPath string
	processContext    string
	processValueProp  string
	processAutoSend   bool
	processVariants   bool
	processEmail      string
	processName       string
	processCompany    string
	processProfileURL string
	processWebsite    string
	processAPIKey     string
	processDBURL      string
	processUseBrowser bool
	processVerbose    bool
)

func init() {
	// Config file flag (processed first)
	processCmd.Flags().StringVar(&processConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	processCmd.Flags().StringVarP(&processContext, "context", "c", "", "Description of your company and offering")
	processCmd.Flags().StringVar(&processValueProp, "value-prop", "", "Value proposition to lead with")
	processCmd.Flags().BoolVar(&processAutoSend, "auto-send", false, "Send campaigns automatically when quality allows")
	processCmd.Flags().BoolVar(&processVariants, "variants", false, "Generate A/B variants of accepted drafts")

	// One-off lead creation
	processCmd.Flags().StringVar(&processEmail, "email", "", "Create and process a one-off lead with this email")
	processCmd.Flags().StringVar(&processName, "name", "", "Name for the one-off lead")
	processCmd.Flags().StringVar(&processCompany, "company", "", "Company for the one-off lead")
	processCmd.Flags().StringVar(&processProfileURL, "profile-url", "", "Profile URL for the one-off lead")
	processCmd.Flags().StringVar(&processWebsite, "website", "", "Company website for the one-off lead")

	processCmd.Flags().BoolVar(&processUseBrowser, "use-browser", false, "Use headless browser for SPA profile pages (requires Chrome)")
	processCmd.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	processCmd.Flags().StringVar(&processAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for lead and campaign persistence
	processCmd.Flags().StringVar(&processDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadAppConfig(processConfigPath)
	if err != nil {
		return err
	}

	// CLI overrides take priority over config file and env values
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = processAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = processDBURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = processUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = processVerbose
	}

	if len(args) == 0 && processEmail == "" {
		return fmt.Errorf("provide lead IDs as arguments or create a one-off lead with --email")
	}
	if processContext == "" {
		return fmt.Errorf("--context is required")
	}
	if processValueProp == "" {
		return fmt.Errorf("--value-prop is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	leadIDs := make([]uuid.UUID, 0, len(args)+1)
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid lead ID %q: %w", arg, err)
		}
		leadIDs = append(leadIDs, id)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	if processEmail != "" {
		lead, err := createOneOffLead(ctx, database)
		if err != nil {
			return err
		}
		fmt.Printf("Created lead %s (%s)\n", lead.Name, lead.ID)
		leadIDs = append(leadIDs, lead.ID)
	}

	generator, err := generation.NewGeminiService(ctx, cfg.APIKey, cfg.Verbose)
	if err != nil {
		return err
	}
	defer generator.Close()

	fetcher := fetch.NewFetcher()
	enricher := enrich.NewEnricher(
		enrich.NewWebProfileSource(fetcher, cfg.UseBrowser, cfg.Verbose),
		enrich.NewWebIntelSource(fetcher, cfg.NewsAPIKey),
	)

	var sender dispatch.Sender = dispatch.LogSender{}
	if cfg.SendWebhook != "" {
		sender = dispatch.NewWebhookSender(cfg.SendWebhook, cfg.FromEmail, cfg.FromName)
	}

	evaluator := quality.NewEvaluator(cfg.QualityPassThreshold)
	processor := pipeline.NewProcessor(database, enricher, generator, evaluator, sender, cfg)

	opts := pipeline.Options{
		CompanyContext:   processContext,
		ValueProposition: processValueProp,
		AutoSend:         processAutoSend,
		GenerateVariants: processVariants,
		MaxConcurrent:    cfg.MaxConcurrent,
	}

	results, stats, err := processor.ProcessBatch(ctx, leadIDs, opts)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	for i := range results {
		result := &results[i]
		if cfg.Verbose {
			printer.PrintAnalysis(result.Analysis)
			printer.PrintDraft(result.Email)
			printer.PrintQualityCheck(result.QualityCheck)
		}
		printer.PrintOutcome(result)
	}
	printer.PrintBatchStats(stats)

	return nil
}

// createOneOffLead inserts the lead described by the --email flags.
func createOneOffLead(ctx context.Context, database *db.DB) (*types.Lead, error) {
	if processName == "" {
		return nil, fmt.Errorf("--name is required when creating a one-off lead with --email")
	}

	req := &types.CreateLeadRequest{
		Name:           processName,
		Email:          processEmail,
		Company:        processCompany,
		ProfileURL:     processProfileURL,
		CompanyWebsite: processWebsite,
		Source:         "cli",
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead, err := database.CreateLead(ctx, req)
	if err != nil {
		return nil, err
	}
	return lead, nil
}
