package nlquery

import (
	"regexp"
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

var (
	comparisonWords = []string{"not in", "in", "missing", "mismatch", "unmatched", "difference"}
	filterWords     = []string{"where", "with", "active", "inactive", "status"}
	aggregationKeywords = []string{"count", "sum", "average", "total", "group by", "statistics"}

	notInPattern = regexp.MustCompile(`(?i)\bnot\s+in\b`)
	inPattern    = regexp.MustCompile(`(?i)\bin\b`)

	// wordBoundaryCache holds a \b-wrapped regexp for every single-word
	// (no-space) lexicon entry, so short words like "in" match only as a
	// standalone word and not as a substring of "training" or "inactive".
	wordBoundaryCache = map[string]*regexp.Regexp{}
)

func init() {
	for _, words := range [][]string{comparisonWords, filterWords, aggregationKeywords} {
		for _, w := range words {
			if !strings.Contains(w, " ") {
				wordBoundaryCache[w] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
			}
		}
	}
}

// Classify assigns a query_type and operation to text using a fixed,
// ordered keyword lexicon: comparison keywords outrank filter keywords,
// which outrank aggregation keywords; anything else is a plain
// data_query.
func Classify(text string) (queryType string, operation string) {
	lower := strings.ToLower(text)

	if containsAny(lower, comparisonWords) {
		return models.QueryTypeComparison, comparisonOperation(lower)
	}
	if containsAny(lower, filterWords) {
		return models.QueryTypeFilter, models.OpEquals
	}
	if containsAny(lower, aggregationKeywords) {
		return models.QueryTypeAggregation, aggregationOperation(lower)
	}
	return models.QueryTypeData, ""
}

func comparisonOperation(lower string) string {
	if notInPattern.MatchString(lower) {
		return models.OpNotIn
	}
	if strings.Contains(lower, "missing") || strings.Contains(lower, "mismatch") ||
		strings.Contains(lower, "unmatched") || strings.Contains(lower, "difference") {
		return models.OpNotIn
	}
	if inPattern.MatchString(lower) {
		return models.OpIn
	}
	return models.OpNotIn
}

func aggregationOperation(lower string) string {
	switch {
	case strings.Contains(lower, "count"):
		return models.OpCount
	case strings.Contains(lower, "sum"):
		return models.OpSum
	case strings.Contains(lower, "average"):
		return models.OpAvg
	default:
		return models.OpAggregate
	}
}

// containsAny reports whether any word appears in lower. Multi-word
// phrases ("not in", "group by") match as plain substrings; single
// words match only at a word boundary so e.g. "in" doesn't fire on
// "training" or "inactive".
func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if re, ok := wordBoundaryCache[w]; ok {
			if re.MatchString(lower) {
				return true
			}
			continue
		}
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
