// Command reconkg builds and reconciles knowledge graphs across
// heterogeneous schemas: it assembles a merged graph from schema
// descriptors, folds in natural-language-asserted relationships,
// generates reconciliation rules, executes them against live source/
// target databases, and answers ad-hoc natural-language queries.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "reconkg",
	Short:         "Knowledge-graph driven schema reconciliation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(Version)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if os.Getenv("RECONKG_ENV") == "local" {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(integrateCmd)
	rootCmd.AddCommand(generateRulesCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(executeCmd)
}

func main() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		log.Printf("reconkg: %v", err)
		os.Exit(1)
	}
}
