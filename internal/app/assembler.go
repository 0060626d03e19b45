package app

import (
	"fmt"
	"strings"
)

const contextHeader = "Use ONLY the following sources to answer. Cite like [Source X]. " +
	"If not in sources, answer with: 'En löytänyt tietoa annetuista lähteistä.'"

const sourceDelimiter = "\n\n---\n\n"

// AssembleContext builds the grounding block injected before the user query.
// Source numbering is the 1-based position in results, the same order the
// source events were emitted in. Output is deterministic for a given input;
// empty input yields "" to signal that nothing should be injected.
func AssembleContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString("\n\n")
	for i, r := range results {
		if i > 0 {
			b.WriteString(sourceDelimiter)
		}
		label := r.Title
		if label == "" {
			label = r.DocID
		}
		body := r.Content
		if body == "" {
			body = r.Snippet
		}
		fmt.Fprintf(&b, "[Source %d: %s]\n%s", i+1, label, body)
	}
	return b.String()
}
