// Package alias learns human-friendly aliases for tables and resolves
// free-form business terms back to a table label. Learning prefers an
// LLM prompt (table name, description, representative columns) and
// falls back to splitting the table name on "_" and case boundaries
// when no LLM client is configured; a failing LLM call returns its
// error instead of falling back.
package alias

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/kg"
	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// Ensure Learner implements the assembler's AliasLearner dependency.
var _ kg.AliasLearner = (*Learner)(nil)

// commonBusinessTokens are appended as alias candidates when they appear
// as a token in the table name, giving the heuristic path a shot at
// producing recognizable business shorthand (e.g. "RBP", "GPU") even
// without an LLM.
var commonBusinessTokens = map[string]struct{}{
	"gpu": {}, "cpu": {}, "rbp": {}, "sku": {}, "sla": {}, "kpi": {},
	"api": {}, "po": {}, "so": {}, "id": {}, "uid": {},
}

// caseBoundaryPattern splits camelCase / PascalCase tokens on lower-to-upper
// transitions.
var caseBoundaryPattern = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Learner produces table aliases for one table at a time, implementing
// the kg.AliasLearner interface.
type Learner struct {
	llmClient   llm.LLMClient
	temperature float64
	logger      *zap.Logger
}

// New creates a Learner. llmClient may be nil if useLLM is never requested.
func New(llmClient llm.LLMClient, temperature float64, logger *zap.Logger) *Learner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Learner{llmClient: llmClient, temperature: temperature, logger: logger.Named("alias")}
}

// Learn returns 0-N aliases for table. It never returns an error from the
// heuristic path; an LLM error is returned to the caller (the kg
// assembler treats a Learn error as non-fatal and logs a warning).
func (l *Learner) Learn(ctx context.Context, table *models.Table, schemaName string) ([]string, error) {
	if l.llmClient != nil {
		aliases, err := l.learnWithLLM(ctx, table, schemaName)
		if err != nil {
			return nil, err
		}
		return dedupAliases(table.Name, aliases), nil
	}
	return dedupAliases(table.Name, heuristicAliases(table.Name)), nil
}

func (l *Learner) learnWithLLM(ctx context.Context, table *models.Table, schemaName string) ([]string, error) {
	prompt := buildAliasPrompt(table, schemaName)

	result, err := llm.GenerateWithRetry(ctx, l.llmClient, prompt, aliasSystemMessage(), l.temperature, false, nil, l.logger)
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ParseJSONResponse[aliasResponse](result.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing llm alias response: %w", err)
	}
	return parsed.Aliases, nil
}

type aliasResponse struct {
	Aliases []string `json:"aliases"`
}

// heuristicAliases derives alias candidates from the table name alone:
// splitting on "_" and case boundaries, plus any recognized business
// token found as a whole segment.
func heuristicAliases(tableName string) []string {
	spaced := caseBoundaryPattern.ReplaceAllString(tableName, "$1 $2")
	segments := strings.FieldsFunc(spaced, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	var aliases []string
	var businessTokens []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if _, ok := commonBusinessTokens[strings.ToLower(seg)]; ok {
			businessTokens = append(businessTokens, strings.ToUpper(seg))
		}
	}
	if len(businessTokens) > 0 {
		aliases = append(aliases, strings.Join(businessTokens, " "))
		if len(businessTokens) > 1 {
			aliases = append(aliases, businessTokens[len(businessTokens)-1])
		}
	}

	if len(segments) > 1 {
		aliases = append(aliases, strings.Join(segments, " "))
	}

	return aliases
}

// dedupAliases removes duplicates (case-insensitive) and the canonical
// table name itself, since the canonical label is always accepted
// without needing to appear in the alias list.
func dedupAliases(tableName string, candidates []string) []string {
	seen := map[string]struct{}{strings.ToLower(tableName): {}}
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
