package alias

import (
	"fmt"
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// buildAliasPrompt assembles the LLM prompt: table name, description,
// and representative columns, requesting a JSON object of aliases.
func buildAliasPrompt(table *models.Table, schemaName string) string {
	var b strings.Builder

	b.WriteString("# Table Alias Discovery\n\n")
	b.WriteString(fmt.Sprintf("Schema: %s\n", schemaName))
	b.WriteString(fmt.Sprintf("Table: %s\n", table.Name))
	if table.Description != "" {
		b.WriteString(fmt.Sprintf("Description: %s\n", table.Description))
	}

	b.WriteString("Representative columns: ")
	cols := make([]string, 0, len(table.Columns))
	for i, c := range table.Columns {
		if i >= 10 {
			break
		}
		cols = append(cols, c.Name)
	}
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString("\n\n")

	b.WriteString("Suggest 0-5 short, human-friendly aliases business users might use\n")
	b.WriteString("to refer to this table instead of its technical name (e.g. an\n")
	b.WriteString("abbreviation, the business term, or a shortened phrase). Do not\n")
	b.WriteString("repeat the technical table name itself.\n\n")

	b.WriteString("Respond with ONLY a JSON object, no other text:\n")
	b.WriteString("```json\n")
	b.WriteString(`{"aliases": ["RBP", "RBP GPU"]}`)
	b.WriteString("\n```\n")

	return b.String()
}

func aliasSystemMessage() string {
	return "You suggest short, human-friendly aliases business users would use for a database table, given its name, description, and columns."
}
