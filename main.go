package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/config"
)

var (
	catalogSource string
	studyConfig   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "foodshare",
		Short: "Listing discovery service with a search-vs-filter study harness",
		Long: `foodshare serves the listing discovery pipeline (distance, fuzzy search,
tag/distance filtering) and runs a within-subjects usability study over it.

Configuration comes from the environment (HTTP_PORT, CATALOG_SOURCE,
STUDY_CONFIG, DATABASE_URL, INGRESS_URL, LOG_LEVEL, ...); flags override it.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&catalogSource, "catalog", "", "catalog document path or http(s) URL")
	root.PersistentFlags().StringVar(&studyConfig, "study", "", "study configuration file (YAML or JSON)")

	root.AddCommand(newServeCmd(), newValidateCmd())
	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if catalogSource != "" {
		cfg.CatalogSource = catalogSource
	}
	if studyConfig != "" {
		cfg.StudyConfig = studyConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg.Level = lvl
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
