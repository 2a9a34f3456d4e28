package cmd

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/hartono/hr-screener/internal/httpapi"
	"github.com/hartono/hr-screener/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultServeAddress = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the screening API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default "+defaultServeAddress+")")

	viper.BindPFlag("serve.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if err := validateConfig(config); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	runner, services, err := buildRunner(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the screening runner", zap.Error(err))
	}

	address := defaultServeAddress
	if config.Serve != nil && config.Serve.Address != "" {
		address = config.Serve.Address
	}

	server := httpapi.NewServer(runner, services.Mail, services.Sheets, config.SubjectFilter, logger)

	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("serving the screening api", zap.String("address", address))

	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
