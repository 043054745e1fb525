package retrieval

import (
	"regexp"
	"strings"

	"lexgov/store"
)

// ---------------------------------------------------------------------------
// Query routing. A query naming an explicit section number is answered by
// structural lookup; a definition-seeking query without one is answered from
// the definitions section. Everything else falls through to vector search.
// ---------------------------------------------------------------------------

var sectionNumberRe = regexp.MustCompile(`(?i)section\s+(\d+)`)

// definitionKeywords mark a query as definition-seeking.
var definitionKeywords = []string{
	"definition", "define", "meaning", "means", "what is", "what does",
}

// termPatterns extract the term being defined. Ordered by specificity; the
// first match wins. Group 2 is the term, group 1 an optional quote.
var termPatterns = []*regexp.Regexp{
	regexp.MustCompile(`definition\s+of\s+(["']?)(\w+(?:\s+\w+)*)`),
	regexp.MustCompile(`define\s+(["']?)(\w+(?:\s+\w+)*)`),
	regexp.MustCompile(`what\s+is\s+(?:a\s+|an\s+)?(["']?)(\w+(?:\s+\w+)*)`),
	regexp.MustCompile(`meaning\s+of\s+(["']?)(\w+(?:\s+\w+)*)`),
}

// trailingNoise is stripped from the end of an extracted term so that
// "director under the act" matches the definition of "director".
var trailingNoise = []string{
	" under the act", " under the companies act", " in the act", " mean", " means",
}

// isDefinitionQuery reports whether the query is asking for a definition.
func isDefinitionQuery(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range definitionKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// extractSection returns the section number named in the query, normalized
// to the canonical zero-padded form, or "" when the query names none.
func extractSection(query string) string {
	m := sectionNumberRe.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return NormalizeSection(m[1])
}

// extractTerm pulls the term out of a definition-seeking query. Returns ""
// when no pattern matches.
func extractTerm(query string) string {
	q := strings.ToLower(query)
	for _, p := range termPatterns {
		m := p.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		term := strings.TrimSpace(m[2])
		term = strings.Trim(term, `"'?.`)
		for _, noise := range trailingNoise {
			term = strings.TrimSuffix(term, noise)
		}
		if term != "" {
			return term
		}
	}
	return ""
}

// NormalizeSection maps "2", "02", and "002" to the same canonical key.
func NormalizeSection(section string) string {
	return store.PadSection(section)
}
