// Package nlcommon holds tokenization and stop-word handling shared by the
// natural-language relationship parser and the natural-language query
// parser, so both exclude the same fixed vocabulary from table/column
// candidates.
package nlcommon

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// StopWords must never be returned as table or column candidates by any
// natural-language extractor.
var StopWords = map[string]struct{}{
	"show": {}, "me": {}, "all": {}, "the": {}, "which": {}, "are": {}, "is": {},
	"a": {}, "an": {}, "and": {}, "or": {}, "not": {}, "active": {}, "inactive": {},
	"status": {}, "where": {}, "that": {}, "this": {}, "from": {}, "to": {},
	"for": {}, "with": {}, "by": {}, "on": {}, "at": {}, "of": {}, "find": {},
	"get": {}, "list": {}, "display": {}, "retrieve": {}, "fetch": {}, "select": {},
	"give": {}, "compare": {}, "difference": {}, "missing": {}, "mismatch": {},
	"unmatched": {}, "count": {}, "sum": {}, "average": {}, "total": {}, "in": {},
	"products": {}, "product": {}, "data": {}, "records": {}, "items": {}, "entries": {},
	"include": {}, "matches": {}, "match": {}, "there": {}, "any": {},
	"please": {}, "need": {}, "want": {}, "can": {}, "you": {}, "i": {},
}

// IsStopWord reports whether token (already lowercased) is in StopWords.
func IsStopWord(token string) bool {
	_, ok := StopWords[strings.ToLower(token)]
	return ok
}

// Tokenize splits text into lowercase word tokens, dropping punctuation.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// TokenizeNonStop returns Tokenize(text) with stop words removed.
func TokenizeNonStop(text string) []string {
	all := Tokenize(text)
	out := make([]string, 0, len(all))
	for _, t := range all {
		if !IsStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// NormalizeLabel lowercases and strips separators for fuzzy/substring
// comparisons between a free-form term and a table/alias label.
func NormalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// JaccardSimilarity returns the Jaccard similarity of two token sets
// (word-level, after NormalizeLabel + Fields splitting).
func JaccardSimilarity(a, b string) float64 {
	setA := toSet(strings.Fields(NormalizeLabel(a)))
	setB := toSet(strings.Fields(NormalizeLabel(b)))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
