package schema

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Normalization limits. These mirror the evaluation contract.
const (
	maxSummaryChars     = 280
	maxSummarySentences = 2
	maxFeedbackChars    = 140
	maxImprovementChars = 120
	maxImprovements     = 3
)

// NormalizeEvaluation absorbs near-conformant model output before
// schema validation. It clips the summary to two sentence-like
// segments, drops non-text improvement entries and keeps at most
// three, rounds fractional range endpoints to the nearest integer
// (ties to even), and collapses whitespace in feedback. Values it does
// not recognize pass through untouched for the schema to reject.
func NormalizeEvaluation(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}

	if s, ok := obj["summary"].(string); ok {
		obj["summary"] = clipSummary(s)
	}
	if items, ok := obj["top_improvements"].([]any); ok {
		obj["top_improvements"] = normalizeImprovements(items)
	}
	scores, ok := obj["criteria_scores"].([]any)
	if !ok {
		return obj
	}
	for _, raw := range scores {
		score, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if fb, ok := score["feedback"].(string); ok {
			score["feedback"] = collapseFeedback(fb)
		}
		if pair, ok := score["estimated_range"].([]any); ok {
			score["estimated_range"] = roundEndpoints(pair)
		}
	}
	return obj
}

func clipSummary(s string) string {
	s = strings.TrimSpace(s)
	if cut := sentenceCut(s, maxSummarySentences); cut < len(s) {
		s = strings.TrimSpace(s[:cut])
	}
	return truncate(s, maxSummaryChars)
}

// sentenceCut returns the byte offset just past the n-th sentence
// terminator, or len(s) when fewer terminators exist. A run of
// consecutive terminators counts once, so an ellipsis ends a single
// segment.
func sentenceCut(s string, n int) int {
	count := 0
	for i, r := range s {
		if !isTerminator(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if end < len(s) {
			if next, _ := utf8.DecodeRuneInString(s[end:]); isTerminator(next) {
				continue
			}
		}
		count++
		if count == n {
			return end
		}
	}
	return len(s)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func normalizeImprovements(items []any) []any {
	out := make([]any, 0, maxImprovements)
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, truncate(strings.TrimSpace(s), maxImprovementChars))
		if len(out) == maxImprovements {
			break
		}
	}
	return out
}

// collapseFeedback folds all whitespace runs, line breaks included,
// into single spaces and truncates the result.
func collapseFeedback(s string) string {
	return truncate(strings.Join(strings.Fields(s), " "), maxFeedbackChars)
}

func roundEndpoints(pair []any) []any {
	for i, v := range pair {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		if f != math.Trunc(f) {
			pair[i] = math.RoundToEven(f)
		}
	}
	return pair
}

// truncate cuts s to at most n runes, trimming any whitespace the cut
// exposes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
