package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hartono/hr-screener/internal/ai/gemini"
	"github.com/hartono/hr-screener/internal/google"
	"github.com/hartono/hr-screener/internal/logger"
	"github.com/hartono/hr-screener/internal/pdftext"
	"github.com/hartono/hr-screener/internal/scheduling"
	"github.com/hartono/hr-screener/internal/screening"
	"github.com/hartono/hr-screener/internal/secrets"
	"github.com/hartono/hr-screener/internal/workflow"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Process unread application emails?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one screening batch over unread application emails",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before processing")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hr-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if err := validateConfig(config); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if action == PromptNo {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	runner, _, err := buildRunner(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the screening runner", zap.Error(err))
	}

	summary := runner.Run(ctx)

	logger.Info(summary.Message,
		zap.Int("processed", summary.Processed),
		zap.Int("scheduled", summary.Scheduled),
		zap.Int("rejected", summary.Rejected),
	)
}

func validateConfig(config *Config) error {
	if config == nil {
		return errors.New("config is required")
	}

	if config.JobDescription == "" {
		return errors.New("a job description is required under job-description to screen resumes")
	}

	if config.SpreadsheetID == "" {
		return errors.New("spreadsheet-id is required (or set the SPREADSHEET_ID environment variable)")
	}

	return nil
}

// buildRunner wires the provider clients, the screening components and the
// workflow together. The services bundle is returned for surfaces that need
// direct mailbox or spreadsheet access.
func buildRunner(ctx context.Context, config *Config, logger *zap.Logger) (*workflow.Runner, *google.Services, error) {
	geminiCfg := &GeminiConfig{}
	if config.AI != nil && config.AI.Gemini != nil {
		geminiCfg = config.AI.Gemini
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		File:  geminiCfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", geminiCfg.Model),
		zap.Int("ai_retry_attempts", geminiCfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, genLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("building gemini generator: %w", err)
	}

	services, err := google.NewServices(ctx, google.Config{
		CredentialsFile: config.CredentialsFile,
		TokenFile:       config.TokenFile,
		SpreadsheetID:   config.SpreadsheetID,
		CalendarID:      config.CalendarID,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("building google services: %w", err)
	}

	schedCfg := scheduling.Config{}
	if config.Scheduling != nil {
		schedCfg.LookaheadDays = config.Scheduling.LookaheadDays
		schedCfg.DayStartHour = config.Scheduling.DayStartHour
		schedCfg.DayEndHour = config.Scheduling.DayEndHour
	}

	runner := workflow.NewRunner(
		workflow.Deps{
			Mail:       services.Mail,
			Calendar:   services.Calendar,
			Sheets:     services.Sheets,
			Extractor:  screening.NewExtractor(services.Mail, pdftext.New(), logger),
			Classifier: screening.NewClassifier(generator, logger),
			Summarizer: screening.NewSummarizer(generator, logger),
			Slots:      scheduling.NewFinder(services.Calendar, schedCfg, logger),
		},
		workflow.Config{
			SubjectFilter:     config.SubjectFilter,
			JobTitle:          config.JobTitle,
			JobDescription:    config.JobDescription,
			CompanyEmail:      config.CompanyEmail,
			PauseBetweenItems: config.PauseBetweenItems,
		},
		logger,
	)

	return runner, services, nil
}
