package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hr-screener"
)

type Config struct {
	SubjectFilter     string        `mapstructure:"subject-filter"`
	JobTitle          string        `mapstructure:"job-title"`
	JobDescription    string        `mapstructure:"job-description"`
	CompanyEmail      string        `mapstructure:"company-email"`
	CredentialsFile   string        `mapstructure:"credentials-file"`
	TokenFile         string        `mapstructure:"token-file"`
	SpreadsheetID     string        `mapstructure:"spreadsheet-id"`
	CalendarID        string        `mapstructure:"calendar-id"`
	PauseBetweenItems time.Duration `mapstructure:"pause-between-items"`

	AI         *AIConfig         `mapstructure:"ai"`
	Scheduling *SchedulingConfig `mapstructure:"scheduling"`
	Serve      *ServeConfig      `mapstructure:"serve"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type SchedulingConfig struct {
	LookaheadDays int `mapstructure:"lookahead-days"`
	DayStartHour  int `mapstructure:"day-start-hour"`
	DayEndHour    int `mapstructure:"day-end-hour"`
}

type ServeConfig struct {
	Address string `mapstructure:"address"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hr-screener screens job-application emails and schedules interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("spreadsheet-id", "SPREADSHEET_ID"); err != nil {
		log.Fatalf("binding SPREADSHEET_ID environment variable: %v", err)
	}

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hr-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("subject-filter", "Job Application")
	viper.SetDefault("job-title", "Data Scientist")
	viper.SetDefault("credentials-file", "credentials.json")
	viper.SetDefault("token-file", "token.json")
}

func initConfig() {
	// Config is needed only for the run and serve commands.
	if runCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
