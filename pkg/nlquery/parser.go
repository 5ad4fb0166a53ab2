// Package nlquery classifies a natural-language question into a query
// type and parses it into a structured QueryIntent: source/target
// tables resolved through aliases, extracted filters, and additional
// projected columns with precomputed join paths.
package nlquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/alias"
	"github.com/3FramesLab/recon-kg-engine/pkg/joinplanner"
	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/nlcommon"
)

const (
	baseConfidence           = 0.6
	llmConfidenceBonus       = 0.15
	resolvedEndpointBonus    = 0.05
	joinPathFoundBonus       = 0.1
	maxConfidence            = 0.95
)

// Parser parses natural-language questions into QueryIntent values.
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
	return &Parser{llmClient: llmClient, temperature: temperature, logger: logger.Named("nlquery")}
}

// llmIntent is the shape an LLM intent-extraction response parses into.
type llmIntent struct {
	SourceTable       string              `json:"source_table"`
	TargetTable       string              `json:"target_table"`
	Filters           []llmFilter         `json:"filters"`
	AdditionalColumns []llmAdditionalCol  `json:"additional_columns"`
}

type llmFilter struct {
	Column     string `json:"column"`
	Value      string `json:"value"`
	Comparator string `json:"comparator"`
}

type llmAdditionalCol struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Parse extracts a QueryIntent from text. Never returns an error: LLM
// failure degrades to a heuristic extractor and a warning.
func (p *Parser) Parse(ctx context.Context, text string, graph *models.KnowledgeGraph, useLLM bool) (*models.QueryIntent, []string) {
	var warnings []string

	queryType, operation := Classify(text)

	var sourceCandidate, targetCandidate string
	var filterCandidates []llmFilter
	var additionalCandidates []llmAdditionalCol
	llmUsed := false

	if useLLM && p.llmClient != nil {
		parsed, err := p.parseWithLLM(ctx, text, graph)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("nl query LLM parse failed, using fallback: %v", err))
			p.logger.Warn("llm query parse failed", zap.Error(err))
		} else {
			sourceCandidate = parsed.SourceTable
			targetCandidate = parsed.TargetTable
			filterCandidates = parsed.Filters
			additionalCandidates = parsed.AdditionalColumns
			llmUsed = true
		}
	}

	if !llmUsed {
		sourceCandidate, targetCandidate = heuristicTables(text, graph)
	}

	sourceLabel, sourceOK := alias.Resolve(sourceCandidate, graph)
	targetLabel, targetOK := "", false
	if targetCandidate != "" {
		targetLabel, targetOK = alias.Resolve(targetCandidate, graph)
	}

	intent := &models.QueryIntent{
		QueryType:    queryType,
		Operation:    operation,
		OriginalText: text,
	}
	if sourceOK {
		intent.SourceTable = sourceLabel
	}
	if targetOK {
		intent.TargetTable = targetLabel
	}

	joinFound := false
	if sourceOK && targetOK {
		if col1, col2, ok := joinplanner.JoinCondition(sourceLabel, targetLabel, graph); ok {
			intent.JoinColumns = []models.JoinColumnPair{{SourceColumn: col1, TargetColumn: col2}}
			joinFound = true
		}
	}

	filterTableHint := sourceLabel
	if queryType == models.QueryTypeComparison && targetOK {
		filterTableHint = targetLabel
	}
	intent.Filters = mergeFilters(extractShorthandFilters(text, filterTableHint), convertLLMFilters(filterCandidates, filterTableHint))

	intent.AdditionalColumns = resolveAdditionalColumns(text, graph, sourceLabel, additionalCandidates, &warnings)

	intent.Confidence = computeConfidence(llmUsed, sourceOK, targetOK, joinFound)

	return intent, warnings
}

func (p *Parser) parseWithLLM(ctx context.Context, text string, graph *models.KnowledgeGraph) (*llmIntent, error) {
	prompt := buildQueryPrompt(text, graph)

	result, err := llm.GenerateWithRetry(ctx, p.llmClient, prompt, querySystemMessage(), p.temperature, false, nil, p.logger)
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ParseJSONResponse[llmIntent](result.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing llm query response: %w", err)
	}
	return &parsed, nil
}

// heuristicTables picks up to two table candidates from text: tokens
// that resolve against a known table label or alias, in order of
// appearance, skipping stop words entirely.
func heuristicTables(text string, graph *models.KnowledgeGraph) (source, target string) {
	tokens := nlcommon.TokenizeNonStop(text)
	var candidates []string
	for _, tok := range tokens {
		if _, ok := alias.Resolve(tok, graph); ok {
			candidates = append(candidates, tok)
		}
		if len(candidates) == 2 {
			break
		}
	}
	switch len(candidates) {
	case 0:
		return "", ""
	case 1:
		return candidates[0], ""
	default:
		return candidates[0], candidates[1]
	}
}

var explicitFilterPattern = regexp.MustCompile(`(\w+)\s*=\s*'([^']*)'`)

// extractShorthandFilters pulls explicit "column = 'value'" filters and
// the active/inactive shorthand out of text.
func extractShorthandFilters(text, tableHint string) []*models.Filter {
	var filters []*models.Filter

	for _, m := range explicitFilterPattern.FindAllStringSubmatch(text, -1) {
		filters = append(filters, &models.Filter{
			Column: m[1], Value: m[2], Comparator: "=", TableHint: tableHint,
		})
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "inactive") {
		filters = append(filters, &models.Filter{Column: "status", Value: "inactive", Comparator: "=", TableHint: tableHint})
	} else if strings.Contains(lower, "active") {
		filters = append(filters, &models.Filter{Column: "status", Value: "active", Comparator: "=", TableHint: tableHint})
	}
	return filters
}

func convertLLMFilters(llmFilters []llmFilter, tableHint string) []*models.Filter {
	filters := make([]*models.Filter, 0, len(llmFilters))
	for _, f := range llmFilters {
		if f.Column == "" {
			continue
		}
		comparator := f.Comparator
		if comparator == "" {
			comparator = "="
		}
		filters = append(filters, &models.Filter{
			Column: f.Column, Value: f.Value, Comparator: comparator, TableHint: tableHint,
		})
	}
	return filters
}

// mergeFilters prefers explicit text-derived filters over LLM-suggested
// ones naming the same column, then appends any remaining LLM filters.
func mergeFilters(explicit, llmDerived []*models.Filter) []models.Filter {
	seen := make(map[string]struct{}, len(explicit))
	out := make([]models.Filter, 0, len(explicit)+len(llmDerived))
	for _, f := range explicit {
		seen[strings.ToLower(f.Column)] = struct{}{}
		out = append(out, *f)
	}
	for _, f := range llmDerived {
		if _, ok := seen[strings.ToLower(f.Column)]; ok {
			continue
		}
		out = append(out, *f)
	}
	return out
}

var additionalColumnPattern = regexp.MustCompile(`(?i)include\s+(\w+)\s+from\s+(\w+)`)

// resolveAdditionalColumns extracts "include <col> from <table>"
// projections (plus any LLM-suggested ones), resolving each table
// through the alias resolver and computing its join path from source.
// A candidate whose table doesn't resolve, or has no join path, is
// dropped with a warning rather than fabricating one.
func resolveAdditionalColumns(text string, graph *models.KnowledgeGraph, sourceLabel string, llmCandidates []llmAdditionalCol, warnings *[]string) []models.AdditionalColumn {
	var candidates []llmAdditionalCol
	for _, m := range additionalColumnPattern.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, llmAdditionalCol{Column: m[1], Table: m[2]})
	}
	candidates = append(candidates, llmCandidates...)

	var out []models.AdditionalColumn
	for _, c := range candidates {
		if c.Table == "" || c.Column == "" {
			continue
		}
		label, ok := alias.Resolve(c.Table, graph)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("additional column table %q did not resolve, dropped", c.Table))
			continue
		}
		if sourceLabel == "" {
			*warnings = append(*warnings, fmt.Sprintf("no source table resolved, dropping additional column %s.%s", c.Table, c.Column))
			continue
		}
		path := joinplanner.FindJoinPath(sourceLabel, label, graph)
		if len(path) == 0 {
			*warnings = append(*warnings, fmt.Sprintf("no join path from %s to %s, dropping additional column %s", sourceLabel, label, c.Column))
			continue
		}
		out = append(out, models.AdditionalColumn{
			Table:      label,
			ColumnName: c.Column,
			Alias:      fmt.Sprintf("%s_%s", label, c.Column),
			JoinPath:   path,
		})
	}
	return out
}

func computeConfidence(llmUsed, sourceResolved, targetResolved, joinFound bool) float64 {
	confidence := baseConfidence
	if llmUsed {
		confidence += llmConfidenceBonus
	}
	if sourceResolved {
		confidence += resolvedEndpointBonus
	}
	if targetResolved {
		confidence += resolvedEndpointBonus
	}
	if joinFound {
		confidence += joinPathFoundBonus
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return confidence
}
