// Package textnorm canonicalizes free text before it is prompted,
// validated or compared.
package textnorm

import (
	"strings"
	"unicode"
)

// Runs of this many blank lines or more collapse to a single blank line.
const blankRunLimit = 3

// Normalize converts CRLF and CR line endings to LF, strips trailing
// whitespace from every line, collapses runs of three or more blank
// lines into one blank line and trims leading and trailing whitespace
// overall. It is total and idempotent.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}

	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		if line == "" {
			blanks++
			continue
		}
		out = appendBlanks(out, blanks)
		blanks = 0
		out = append(out, line)
	}
	out = appendBlanks(out, blanks)

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func appendBlanks(out []string, n int) []string {
	if n >= blankRunLimit {
		n = 1
	}
	for i := 0; i < n; i++ {
		out = append(out, "")
	}
	return out
}
