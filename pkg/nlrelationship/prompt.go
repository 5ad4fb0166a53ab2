package nlrelationship

import (
	"fmt"
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// buildPrompt assembles the LLM prompt: valid table names (with columns),
// the statement to analyze, field hints if any, and the exact JSON
// response contract.
func buildPrompt(statement string, schemas []*models.Schema, fieldHints map[string]string) string {
	var b strings.Builder

	b.WriteString("# Natural-Language Relationship Extraction\n\n")
	b.WriteString("Extract table-to-table column relationships implied by the statement below.\n\n")

	b.WriteString("## Valid Tables\n\n")
	for _, schema := range schemas {
		for _, table := range schema.Tables {
			b.WriteString(fmt.Sprintf("- %s.%s (", schema.Name, table.Name))
			cols := make([]string, 0, len(table.Columns))
			for _, c := range table.Columns {
				cols = append(cols, c.Name)
			}
			b.WriteString(strings.Join(cols, ", "))
			b.WriteString(")\n")
		}
	}

	b.WriteString("\n## Words to ignore\n\n")
	b.WriteString(strings.Join(commonWords(), ", "))
	b.WriteString("\n\n")

	if len(fieldHints) > 0 {
		b.WriteString("## Field hints (source column -> target column)\n\n")
		for src, tgt := range fieldHints {
			b.WriteString(fmt.Sprintf("- %s -> %s\n", src, tgt))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Statement\n\n")
	b.WriteString(statement)
	b.WriteString("\n\n")

	b.WriteString("## Output Format\n\n")
	b.WriteString("Respond with ONLY a JSON array, no other text:\n")
	b.WriteString("```json\n")
	b.WriteString(`[
  {
    "source_table": "orders",
    "source_column": "customer_id",
    "target_table": "customers",
    "target_column": "cust_id",
    "confidence": 0.9,
    "cardinality": "N:1",
    "reasoning": "statement explicitly pairs these columns"
  }
]
`)
	b.WriteString("```\n")

	return b.String()
}

func systemMessage() string {
	return "You extract explicit and implied table-join relationships from natural-language statements about a database schema. Only reference tables and columns that appear in the provided schema."
}
