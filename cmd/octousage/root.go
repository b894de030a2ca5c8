package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jgoulah/octousage/internal/config"
)

var (
	cfgFile string
	envFile string
	verbose bool

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "octousage",
	Short: "Report half-hourly electricity usage from Octopus Energy Japan",
	Long: `octousage pulls half-hourly electricity readings from the Octopus Energy Japan
(Kraken) GraphQL API for a date range and reports the daily average and total
usage as a console table and an SVG card.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with OCTOPUS_EMAIL/OCTOPUS_PASSWORD (default is ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setupLogging builds the run logger; every line carries the run id
func setupLogging(cmd *cobra.Command, args []string) error {
	logger = newLogger(cmd.ErrOrStderr(), verbose)
	return nil
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getEnvPath returns the dotenv file path (local directory)
func getEnvPath() string {
	if envFile != "" {
		return envFile
	}
	return config.DefaultEnvPath()
}

// loadConfig loads the configuration file and environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath(), getEnvPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
