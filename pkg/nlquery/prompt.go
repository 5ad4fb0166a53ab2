package nlquery

import (
	"fmt"
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/nlcommon"
)

// buildQueryPrompt renders the available table labels, their aliases,
// and a worked example so the LLM returns source/target tables already
// restricted to this graph's vocabulary.
func buildQueryPrompt(text string, graph *models.KnowledgeGraph) string {
	var b strings.Builder

	b.WriteString("Extract the query intent from the following natural-language question.\n\n")
	b.WriteString("Available tables:\n")
	for _, n := range graph.Nodes {
		if n.Kind != models.NodeKindTable {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s", n.Label))
		if aliases := graph.TableAliases[n.Label]; len(aliases) > 0 {
			b.WriteString(fmt.Sprintf(" (aliases: %s)", strings.Join(aliases, ", ")))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nIgnore common words such as: ")
	b.WriteString(strings.Join(commonWordSample(), ", "))
	b.WriteString("\n\n")

	b.WriteString("Question: ")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString("Respond with JSON only, matching this shape:\n")
	b.WriteString(`{"source_table": "orders", "target_table": "customers", ` +
		`"filters": [{"column": "status", "value": "active", "comparator": "="}], ` +
		`"additional_columns": [{"table": "customers", "column": "email"}]}` + "\n")
	b.WriteString("Use \"\" for target_table when the question only concerns one table. " +
		"Omit filters/additional_columns entirely when none apply.\n")

	return b.String()
}

// commonWordSample lists a representative slice of the stop-word
// vocabulary shared with pkg/nlcommon, rather than the entire set, to
// keep the prompt compact.
func commonWordSample() []string {
	sample := make([]string, 0, 12)
	for w := range nlcommon.StopWords {
		sample = append(sample, w)
		if len(sample) == 12 {
			break
		}
	}
	return sample
}

func querySystemMessage() string {
	return "You translate natural-language reconciliation questions into structured query intents. " +
		"Only ever name tables and columns that appear in the provided schema. " +
		"Respond with a single JSON object and nothing else."
}
