package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/komsit37/screener/pkg/screener/config"
	"github.com/komsit37/screener/pkg/screener/logging"
)

const (
	serviceName    = "screener"
	serviceVersion = "0.3.0"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "screener",
		Short:         "S&P 500 sector screener: PER, momentum and rise context",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if logFormat != "" {
				cfg.Logging.Format = logFormat
			}
			return logging.Init(logging.Config{
				Level:          cfg.Logging.Level,
				Format:         cfg.Logging.Format,
				FileEnabled:    cfg.Logging.FileEnabled,
				FilePath:       cfg.Logging.FilePath,
				RotationSize:   cfg.Logging.RotationSize,
				RetentionDays:  cfg.Logging.RetentionDays,
				ServiceName:    serviceName,
				ServiceVersion: serviceVersion,
			})
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (json, pretty)")

	rootCmd.AddCommand(
		newServeCmd(),
		newScreenCmd(),
		newQuoteCmd(),
		newChartCmd(),
		newUniverseCmd(),
	)
	return rootCmd
}
