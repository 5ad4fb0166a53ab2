package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/kgintegrator"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/nlrelationship"
	"github.com/3FramesLab/recon-kg-engine/pkg/schemastore"
	"github.com/3FramesLab/recon-kg-engine/pkg/storage"
)

var (
	integrateKGName      string
	integrateStatement   string
	integrateSchemas     []string
	integrateSchemaDir   string
	integrateStrategy    string
	integrateUseLLM      bool
	integrateMinConfDefl float64
)

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Fold a natural-language relationship statement into an existing knowledge graph",
	RunE:  runIntegrate,
}

func init() {
	integrateCmd.Flags().StringVar(&integrateKGName, "name", "", "knowledge graph to update (required)")
	integrateCmd.Flags().StringVar(&integrateStatement, "statement", "", "natural-language relationship statement (required)")
	integrateCmd.Flags().StringSliceVar(&integrateSchemas, "schema", nil, "schema name providing context for the statement (required)")
	integrateCmd.Flags().StringVar(&integrateSchemaDir, "schema-dir", "schemas", "directory of schema YAML descriptors")
	integrateCmd.Flags().StringVar(&integrateStrategy, "strategy", string(kgintegrator.StrategyUnion), "merge strategy: union, deduplicate, or high_confidence")
	integrateCmd.Flags().BoolVar(&integrateUseLLM, "use-llm", false, "parse the statement with the configured LLM")
	integrateCmd.Flags().Float64Var(&integrateMinConfDefl, "min-confidence", 0.5, "drop extracted relationships below this confidence")
	_ = integrateCmd.MarkFlagRequired("name")
	_ = integrateCmd.MarkFlagRequired("statement")
	_ = integrateCmd.MarkFlagRequired("schema")
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kgStore := storage.NewKGRepo(storage.New(cfg.StorageRoot, logger))
	graph, err := kgStore.Load(integrateKGName)
	if err != nil {
		return fmt.Errorf("load knowledge graph %q: %w", integrateKGName, err)
	}

	schemaStore := schemastore.New(integrateSchemaDir, logger)
	schemas := make([]*models.Schema, 0, len(integrateSchemas))
	for _, name := range integrateSchemas {
		sch, err := schemaStore.Load(name)
		if err != nil {
			return fmt.Errorf("load schema %q: %w", name, err)
		}
		schemas = append(schemas, sch)
	}

	var parser *nlrelationship.Parser
	if integrateUseLLM && cfg.LLMEnabled {
		client, err := newLLMClient()
		if err != nil {
			return fmt.Errorf("init llm client: %w", err)
		}
		parser = nlrelationship.New(client, cfg.LLMTemperature, logger)
	} else {
		parser = nlrelationship.New(nil, cfg.LLMTemperature, logger)
	}

	edges, warnings := parser.Parse(ctx, integrateStatement, schemas, nil, integrateUseLLM && cfg.LLMEnabled, integrateMinConfDefl)
	for _, w := range warnings {
		logger.Warn("integrate warning", zap.String("kg", integrateKGName), zap.String("detail", w))
	}

	merged, mergeWarnings := kgintegrator.AddNLRelationships(graph, edges, kgintegrator.Strategy(integrateStrategy))
	for _, w := range mergeWarnings {
		logger.Warn("integrate warning", zap.String("kg", integrateKGName), zap.String("detail", w))
	}
	if err := kgStore.Save(merged); err != nil {
		return fmt.Errorf("save knowledge graph: %w", err)
	}

	fmt.Printf("integrated %q: %d relationships learned, %d total after merge\n",
		integrateKGName, len(edges), len(merged.Relationships))
	return nil
}
