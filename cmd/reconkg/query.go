package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3FramesLab/recon-kg-engine/pkg/config"
	"github.com/3FramesLab/recon-kg-engine/pkg/executor"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/nlquery"
	"github.com/3FramesLab/recon-kg-engine/pkg/schemastore"
	"github.com/3FramesLab/recon-kg-engine/pkg/sqlgen"
	"github.com/3FramesLab/recon-kg-engine/pkg/storage"
)

var (
	queryKGName    string
	queryText      string
	querySchemas   []string
	querySchemaDir string
	queryDialect   string
	queryUseLLM    bool
	queryExecute   bool
	queryLimit     int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Translate a natural-language question into SQL, optionally executing it",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryKGName, "kg", "", "knowledge graph providing table/alias context (required)")
	queryCmd.Flags().StringVar(&queryText, "text", "", "natural-language question (required)")
	queryCmd.Flags().StringSliceVar(&querySchemas, "schema", nil, "schema name in scope for SQL generation (required)")
	queryCmd.Flags().StringVar(&querySchemaDir, "schema-dir", "schemas", "directory of schema YAML descriptors")
	queryCmd.Flags().StringVar(&queryDialect, "dialect", config.DialectPostgreSQL, "target SQL dialect")
	queryCmd.Flags().BoolVar(&queryUseLLM, "use-llm", false, "parse the question with the configured LLM")
	queryCmd.Flags().BoolVar(&queryExecute, "execute", false, "run the generated SQL against the configured source database")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "row limit when --execute is set (0 uses the executor default)")
	_ = queryCmd.MarkFlagRequired("kg")
	_ = queryCmd.MarkFlagRequired("text")
	_ = queryCmd.MarkFlagRequired("schema")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kgStore := storage.NewKGRepo(storage.New(cfg.StorageRoot, logger))
	graph, err := kgStore.Load(queryKGName)
	if err != nil {
		return fmt.Errorf("load knowledge graph %q: %w", queryKGName, err)
	}

	schemaStore := schemastore.New(querySchemaDir, logger)
	schemas := make([]*models.Schema, 0, len(querySchemas))
	for _, name := range querySchemas {
		sch, err := schemaStore.Load(name)
		if err != nil {
			return fmt.Errorf("load schema %q: %w", name, err)
		}
		schemas = append(schemas, sch)
	}

	var parser *nlquery.Parser
	if queryUseLLM && cfg.LLMEnabled {
		client, err := newLLMClient()
		if err != nil {
			return fmt.Errorf("init llm client: %w", err)
		}
		parser = nlquery.New(client, cfg.LLMTemperature, logger)
	} else {
		parser = nlquery.New(nil, cfg.LLMTemperature, logger)
	}

	intent, warnings := parser.Parse(ctx, queryText, graph, queryUseLLM && cfg.LLMEnabled)
	for _, w := range warnings {
		fmt.Println("warning:", w)
	}

	sql, sqlWarnings := sqlgen.Generate(intent, schemas, graph, queryDialect)
	for _, w := range sqlWarnings {
		fmt.Println("warning:", w)
	}
	fmt.Println(sql)

	if !queryExecute {
		return nil
	}

	conn, err := openConnection(ctx, cfg.SourceDB)
	if err != nil {
		return fmt.Errorf("connect to source database: %w", err)
	}
	defer conn.Close()

	exec := executor.New(logger)
	outcome, err := exec.ExecuteSQL(ctx, conn, sql, queryLimit)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}
	if len(outcome.RuleErrors) > 0 {
		return fmt.Errorf("query failed: %s", outcome.RuleErrors[0].Message)
	}

	fmt.Printf("%d rows in %dms\n", outcome.MatchedCount, outcome.ExecutionTimeMs)
	return nil
}
