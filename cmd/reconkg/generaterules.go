package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/rulegen"
	"github.com/3FramesLab/recon-kg-engine/pkg/schemastore"
	"github.com/3FramesLab/recon-kg-engine/pkg/storage"
)

var (
	genRulesKGName        string
	genRulesSchemas       []string
	genRulesSchemaDir     string
	genRulesUseLLM        bool
	genRulesMinConfidence float64
)

var generateRulesCmd = &cobra.Command{
	Use:   "generate-rules",
	Short: "Generate a reconciliation ruleset from a knowledge graph",
	RunE:  runGenerateRules,
}

func init() {
	generateRulesCmd.Flags().StringVar(&genRulesKGName, "kg", "", "knowledge graph to generate rules from (required)")
	generateRulesCmd.Flags().StringSliceVar(&genRulesSchemas, "schema", nil, "schema name in scope for rule generation (required)")
	generateRulesCmd.Flags().StringVar(&genRulesSchemaDir, "schema-dir", "schemas", "directory of schema YAML descriptors")
	generateRulesCmd.Flags().BoolVar(&genRulesUseLLM, "use-llm", false, "generate additional rules with the configured LLM")
	generateRulesCmd.Flags().Float64Var(&genRulesMinConfidence, "min-confidence", 0.5, "drop generated rules below this confidence")
	_ = generateRulesCmd.MarkFlagRequired("kg")
	_ = generateRulesCmd.MarkFlagRequired("schema")
}

func runGenerateRules(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kgStore := storage.NewKGRepo(storage.New(cfg.StorageRoot, logger))
	graph, err := kgStore.Load(genRulesKGName)
	if err != nil {
		return fmt.Errorf("load knowledge graph %q: %w", genRulesKGName, err)
	}

	schemaStore := schemastore.New(genRulesSchemaDir, logger)
	schemas := make([]*models.Schema, 0, len(genRulesSchemas))
	for _, name := range genRulesSchemas {
		sch, err := schemaStore.Load(name)
		if err != nil {
			return fmt.Errorf("load schema %q: %w", name, err)
		}
		schemas = append(schemas, sch)
	}

	var generator *rulegen.Generator
	if genRulesUseLLM && cfg.LLMEnabled {
		client, err := newLLMClient()
		if err != nil {
			return fmt.Errorf("init llm client: %w", err)
		}
		generator = rulegen.New(client, cfg.LLMTemperature, logger)
	} else {
		generator = rulegen.New(nil, cfg.LLMTemperature, logger)
	}

	ruleset, warnings := generator.Generate(ctx, genRulesKGName, graph, schemas, genRulesUseLLM && cfg.LLMEnabled, genRulesMinConfidence, nil)
	for _, w := range warnings {
		logger.Warn("generate-rules warning", zap.String("kg", genRulesKGName), zap.String("detail", w))
	}

	rulesetStore := storage.NewRulesetRepo(storage.New(cfg.StorageRoot, logger))
	if err := rulesetStore.Save(ruleset); err != nil {
		return fmt.Errorf("save ruleset: %w", err)
	}

	fmt.Printf("generated ruleset %s: %d rules\n", ruleset.RulesetID, len(ruleset.Rules))
	return nil
}
