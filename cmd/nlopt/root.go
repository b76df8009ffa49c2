package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/manakau-com/node-nlopt/internal/config"
	"github.com/manakau-com/node-nlopt/internal/logging"

	// Registers the "nlopt" backend when built with the nlopt tag.
	_ "github.com/manakau-com/node-nlopt/internal/native/cnlopt"
)

var (
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *logging.Logger
	zl     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nlopt",
	Short: "Run nonlinear optimization problems",
	Long: `nlopt runs nonlinear optimization problems described in YAML files
against a native optimization backend: the built-in gonum backend, or the
nlopt C library when built with the nlopt tag.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Logging.Format = logFormat
		}

		logger, err = logging.NewLogger(&logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		logger = logger.WithFields(map[string]interface{}{
			"service": "nlopt",
			"version": version,
		})
		zl = logging.NewZapLogger(logger)

		ctxLogger := &logging.CtxLogger{Logger: logger}
		cmd.SetContext(ctxLogger.WithContext(cmd.Context()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zl != nil {
			_ = zl.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (json, text)")
}
