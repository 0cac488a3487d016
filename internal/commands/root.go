package commands

import (
	"os"
	"time"

	"github.com/Alias1177/ForecastBot/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the forecastbot command tree
func NewRootCmd() *cobra.Command {
	var (
		cfg      = &config.Config{}
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "forecastbot",
		Short: "Crypto forecasts from EMA, Bollinger, Fibonacci and sentiment signals",
		Long: `ForecastBot fuses technical indicators, funding rates and a sentiment
classifier into a single bullish, bearish or neutral verdict per pair.

It can run a one-off analysis, serve forecasts over HTTP, or answer
Telegram chats.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			*cfg = *loaded
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			setupLogging(cfg.LogLevel)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newAnalyzeCmd(cfg),
		newServeCmd(cfg),
		newBotCmd(cfg),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// setupLogging configures the global logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
