package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"api-test-ai/internal/config"
	"api-test-ai/internal/logger"
)

var (
	cfgPath     string
	verbose     bool
	logFilePath string
	noColor     bool

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "api-test-ai",
	Short: "Generate, run, and report API test cases from API documentation",
	Long: `api-test-ai builds executable test case batteries from OpenAPI
documents or action-style API documentation, runs them against a live
endpoint, validates the responses, and renders reports. Schema extraction
and supplemental case generation can be delegated to a language model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		level := ""
		if verbose {
			level = "debug"
		}
		log = logger.Setup(logger.Options{
			Level:   level,
			File:    logFilePath,
			NoColor: noColor,
		})
		return nil
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path (default config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "also log to a rotating file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable console colors")
}
