// Package nlrelationship extracts typed table-to-table relationships
// from free-form natural-language statements: an LLM-assisted primary
// path with a deterministic token-pattern fallback that never fails the
// pipeline.
package nlrelationship

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/excluded"
	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/nlcommon"
)

// fallbackConfidenceCap bounds the heuristic parser's output: it never
// claims the certainty an LLM extraction can.
const fallbackConfidenceCap = 0.75

// Parser extracts relationships from natural-language statements.
type Parser struct {
	llmClient   llm.LLMClient
	temperature float64
	logger      *zap.Logger
}

// New creates a Parser. llmClient may be nil if useLLM is never requested.
func New(llmClient llm.LLMClient, temperature float64, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{llmClient: llmClient, temperature: temperature, logger: logger.Named("nlrelationship")}
}

// tableIndexEntry locates a table by name for validation and hint lookups.
type tableIndexEntry struct {
	schemaName string
	table      *models.Table
}

// Parse extracts relationships implied by statement. fieldHints are
// {source_column: target_column} seed pairings interpreted relative to
// schemas: intra-schema when exactly one schema is given, cross-schema
// otherwise. Never returns an error — failures degrade to an empty (or
// hint-only) relationship list with a warning.
func (p *Parser) Parse(
	ctx context.Context,
	statement string,
	schemas []*models.Schema,
	fieldHints map[string]string,
	useLLM bool,
	minConfidence float64,
) ([]*models.Relationship, []string) {
	var warnings []string

	index := buildTableIndex(schemas)

	var relationships []*models.Relationship
	llmSucceeded := false

	if useLLM && p.llmClient != nil {
		rels, err := p.parseWithLLM(ctx, statement, schemas, fieldHints, index)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("nl relationship LLM parse failed, using fallback: %v", err))
			p.logger.Warn("llm relationship parse failed", zap.Error(err))
		} else {
			relationships = rels
			llmSucceeded = true
		}
	}

	if !llmSucceeded {
		relationships = p.parseDeterministic(statement, index)
	}

	relationships = append(relationships, relationshipsFromHints(schemas, fieldHints)...)

	return filterRelationships(relationships, index, minConfidence), warnings
}

func buildTableIndex(schemas []*models.Schema) map[string][]tableIndexEntry {
	index := make(map[string][]tableIndexEntry)
	for _, schema := range schemas {
		for _, table := range schema.Tables {
			key := strings.ToLower(table.Name)
			index[key] = append(index[key], tableIndexEntry{schemaName: schema.Name, table: table})
		}
	}
	return index
}

func (p *Parser) parseWithLLM(
	ctx context.Context,
	statement string,
	schemas []*models.Schema,
	fieldHints map[string]string,
	index map[string][]tableIndexEntry,
) ([]*models.Relationship, error) {
	prompt := buildPrompt(statement, schemas, fieldHints)

	result, err := llm.GenerateWithRetry(ctx, p.llmClient, prompt, systemMessage(), p.temperature, false, nil, p.logger)
	if err != nil {
		return nil, err
	}

	var parsed []llmRelationship
	parsed, err = llm.ParseJSONResponse[[]llmRelationship](result.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing llm relationship response: %w", err)
	}

	relationships := make([]*models.Relationship, 0, len(parsed))
	for _, r := range parsed {
		entries, ok := index[strings.ToLower(r.SourceTable)]
		if !ok {
			continue
		}
		targetEntries, ok := index[strings.ToLower(r.TargetTable)]
		if !ok {
			continue
		}
		sourceTable := entries[0].table
		targetTable := targetEntries[0].table
		if sourceTable.ColumnByName(r.SourceColumn) == nil || targetTable.ColumnByName(r.TargetColumn) == nil {
			continue
		}
		confidence := r.Confidence
		if confidence <= 0 {
			confidence = 0.8
		}
		if confidence > 1 {
			confidence = 1
		}
		relationships = append(relationships, &models.Relationship{
			SourceID:         models.TableNodeID(sourceTable.Name),
			TargetID:         models.TableNodeID(targetTable.Name),
			RelationshipType: models.RelationshipReferences,
			SourceColumn:     r.SourceColumn,
			TargetColumn:     r.TargetColumn,
			Confidence:       confidence,
			Origin:           models.OriginNaturalLanguage,
			Cardinality:      r.Cardinality,
			Reasoning:        r.Reasoning,
		})
	}
	return relationships, nil
}

type llmRelationship struct {
	SourceTable  string  `json:"source_table"`
	SourceColumn string  `json:"source_column"`
	TargetTable  string  `json:"target_table"`
	TargetColumn string  `json:"target_column"`
	Confidence   float64 `json:"confidence"`
	Cardinality  string  `json:"cardinality"`
	Reasoning    string  `json:"reasoning"`
}

// connectivePattern recognizes phrases that join a source "table.column"
// reference to a target one: "matches", "maps to", "references",
// "corresponds to", "joins", "relates to", or a bare "=" / "->".
var connectivePattern = regexp.MustCompile(`(?i)\bmatches\b|\bmaps to\b|\breferences\b|\bcorresponds to\b|\bjoins\b|\brelates to\b|->|=`)

// dottedRefPattern matches "table.column" tokens.
var dottedRefPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)`)

var cardinalityPattern = regexp.MustCompile(`(?i)\b(one to one|one to many|many to one|many to many|1:1|1:n|n:1|n:m)\b`)

// parseDeterministic implements the token-pattern fallback: split the
// statement on a connective, find "table.column" forms on either side,
// validate against known tables, and extract a cardinality keyword if
// present.
func (p *Parser) parseDeterministic(statement string, index map[string][]tableIndexEntry) []*models.Relationship {
	loc := connectivePattern.FindStringIndex(statement)
	if loc == nil {
		return nil
	}

	left := statement[:loc[0]]
	right := statement[loc[1]:]

	leftRefs := dottedRefPattern.FindStringSubmatch(left)
	rightRefs := dottedRefPattern.FindStringSubmatch(right)
	if leftRefs == nil || rightRefs == nil {
		return nil
	}

	sourceTableName, sourceColumn := leftRefs[1], leftRefs[2]
	targetTableName, targetColumn := rightRefs[1], rightRefs[2]

	sourceEntries, ok := index[strings.ToLower(sourceTableName)]
	if !ok {
		return nil
	}
	targetEntries, ok := index[strings.ToLower(targetTableName)]
	if !ok {
		return nil
	}

	cardinality := ""
	if m := cardinalityPattern.FindString(statement); m != "" {
		cardinality = normalizeCardinality(m)
	}

	return []*models.Relationship{{
		SourceID:         models.TableNodeID(sourceEntries[0].table.Name),
		TargetID:         models.TableNodeID(targetEntries[0].table.Name),
		RelationshipType: models.RelationshipReferences,
		SourceColumn:     sourceColumn,
		TargetColumn:     targetColumn,
		Confidence:       fallbackConfidenceCap,
		Origin:           models.OriginNaturalLanguage,
		Cardinality:      cardinality,
	}}
}

func normalizeCardinality(m string) string {
	lower := strings.ToLower(m)
	switch lower {
	case "one to one", "1:1":
		return "1:1"
	case "one to many":
		return "1:N"
	case "many to one":
		return "N:1"
	case "many to many", "n:m":
		return "N:M"
	default:
		return strings.ToUpper(m)
	}
}

// relationshipsFromHints interprets fieldHints per §4.3's single-vs-multi
// schema rule: with exactly one schema, a hint pairs two columns within
// that schema (searching other tables for the target column); with more
// than one, the hint is cross-schema and the target column is searched
// across all schemas.
func relationshipsFromHints(schemas []*models.Schema, fieldHints map[string]string) []*models.Relationship {
	if len(fieldHints) == 0 {
		return nil
	}

	var relationships []*models.Relationship
	singleSchema := len(schemas) == 1

	for srcCol, tgtCol := range fieldHints {
		for _, schema := range schemas {
			for _, srcTable := range schema.Tables {
				sourceColumn := srcTable.ColumnByName(srcCol)
				if sourceColumn == nil {
					continue
				}
				for _, candidateSchema := range schemas {
					if singleSchema && candidateSchema.Name != schema.Name {
						continue
					}
					for _, tgtTable := range candidateSchema.Tables {
						if tgtTable.Name == srcTable.Name && candidateSchema.Name == schema.Name {
							continue
						}
						targetColumn := tgtTable.ColumnByName(tgtCol)
						if targetColumn == nil {
							continue
						}
						if excluded.IsExcluded(srcCol) || excluded.IsExcluded(tgtCol) {
							continue
						}
						relationships = append(relationships, &models.Relationship{
							SourceID:         models.TableNodeID(srcTable.Name),
							TargetID:         models.TableNodeID(tgtTable.Name),
							RelationshipType: models.RelationshipReferences,
							SourceColumn:     sourceColumn.Name,
							TargetColumn:     targetColumn.Name,
							Confidence:       0.85,
							Origin:           models.OriginNaturalLanguage,
						})
					}
				}
			}
		}
	}
	return relationships
}

// filterRelationships drops edges whose endpoints aren't in the known
// table index and edges below minConfidence, per the parser's contract.
func filterRelationships(relationships []*models.Relationship, index map[string][]tableIndexEntry, minConfidence float64) []*models.Relationship {
	nodeIDs := make(map[string]struct{}, len(index))
	for _, entries := range index {
		for _, e := range entries {
			nodeIDs[models.TableNodeID(e.table.Name)] = struct{}{}
		}
	}

	filtered := make([]*models.Relationship, 0, len(relationships))
	for _, rel := range relationships {
		if rel.Confidence < minConfidence {
			continue
		}
		if excluded.IsExcluded(rel.SourceColumn) || excluded.IsExcluded(rel.TargetColumn) {
			continue
		}
		if _, ok := nodeIDs[rel.SourceID]; !ok {
			continue
		}
		if _, ok := nodeIDs[rel.TargetID]; !ok {
			continue
		}
		filtered = append(filtered, rel)
	}
	return filtered
}

func commonWords() []string {
	words := make([]string, 0, len(nlcommon.StopWords))
	for w := range nlcommon.StopWords {
		words = append(words, w)
	}
	return words
}
