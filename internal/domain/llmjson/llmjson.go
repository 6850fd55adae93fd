// Package llmjson recovers a JSON value from raw model output.
//
// Model output is untrusted text: the JSON may arrive bare, wrapped in
// a fenced code block, or buried in prose. Recovery builds an ordered
// list of candidate substrings and returns the first one that parses
// as a single complete JSON value. It never repairs malformed JSON.
package llmjson

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrUnparseable reports that no attempt over any candidate text
// yielded a parseable JSON value.
var ErrUnparseable = errors.New("no JSON value recoverable from model output")

var fenceRE = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Recover extracts the first parseable JSON value from the candidate
// texts. Per candidate, attempts are tried in order: the trimmed text,
// the inner content of each fenced block in order of appearance, the
// slice from the first '{' to the last '}', then the slice from the
// first '[' to the last ']'. Duplicate attempts are tried once, in
// first-seen order.
func Recover(candidates ...string) (any, error) {
	seen := make(map[string]struct{})
	for _, text := range candidates {
		for _, attempt := range attempts(text) {
			if _, dup := seen[attempt]; dup {
				continue
			}
			seen[attempt] = struct{}{}
			var v any
			if err := json.Unmarshal([]byte(attempt), &v); err == nil {
				return v, nil
			}
		}
	}
	return nil, ErrUnparseable
}

func attempts(text string) []string {
	var out []string

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		out = append(out, trimmed)
	}

	for _, m := range fenceRE.FindAllStringSubmatch(text, -1) {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			out = append(out, inner)
		}
	}

	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && i < j {
		out = append(out, text[i:j+1])
	}
	if i, j := strings.Index(text, "["), strings.LastIndex(text, "]"); i >= 0 && i < j {
		out = append(out, text[i:j+1])
	}

	return out
}
