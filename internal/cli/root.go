package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harun/chronicle/internal/config"
	"github.com/harun/chronicle/internal/logger"
	"github.com/harun/chronicle/pkg/session"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
	dataDir  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chronicle",
	Short: "Chronicle - session catalog and analytics",
	Long: `Chronicle persists per-session metadata and message logs under a catalog
root, and derives cross-session usage insights and an activity heatmap
from the catalog.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.chronicle/chronicle.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "catalog root directory override")
}

// setup loads the configuration, installs the logger, and opens the session
// store. Every subcommand goes through it.
func setup() (*session.Store, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	if _, err := logger.New(logger.Config{
		Level:   level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := session.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	return store, cfg, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
