// Package refextract detects citations of sections, rules, notifications,
// circulars, forms, and schedules in document text, classifies the
// relationship each citation implies, and materialises the resolvable ones
// as edges in the citation graph.
package refextract

import (
	"sort"
	"strconv"
	"strings"
)

// contextWindow is how many characters around a match are inspected for
// relationship indicators.
const contextWindow = 100

// Reference is one citation found in text.
type Reference struct {
	Category     Category `json:"category"`
	Number       string   `json:"number"`
	SubRef       string   `json:"sub_ref,omitempty"`
	Relationship string   `json:"relationship"`
	Context      string   `json:"context"`
	Confidence   float64  `json:"confidence"`
	TargetID     string   `json:"target_chunk_id,omitempty"`
}

// Extract finds all legal references in text. Section citations of
// currentSection itself are dropped as self-references. Duplicates by
// (category, number, sub-ref) are collapsed, keeping the highest
// confidence. Output order is deterministic.
func Extract(text, currentSection string) []Reference {
	currentSec, _ := strconv.Atoi(strings.TrimLeft(currentSection, "0"))

	var refs []Reference
	for _, entry := range referencePatterns {
		for _, pattern := range entry.patterns {
			for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
				number := groupText(text, m, 1)
				if number == "" {
					continue
				}
				subRef := groupText(text, m, 2)

				if entry.category == CatSection {
					if n, err := strconv.Atoi(number); err == nil && n == currentSec {
						continue
					}
				}

				context := contextAround(text, m[0], m[1])
				relationship := classifyRelationship(context)

				refs = append(refs, Reference{
					Category:     entry.category,
					Number:       number,
					SubRef:       subRef,
					Relationship: relationship,
					Context:      context,
					Confidence:   Score(context, relationship),
				})
			}
		}
	}

	return deduplicate(refs)
}

// classifyRelationship picks the relationship implied by the text around a
// citation. First matching indicator wins; no match means a generic
// reference.
func classifyRelationship(context string) string {
	lower := strings.ToLower(context)
	for _, entry := range relationshipIndicators {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(lower) {
				return entry.relationship
			}
		}
	}
	return relGeneric
}

// deduplicate collapses references sharing (category, number, sub-ref),
// keeping the highest-confidence occurrence, and sorts the result.
func deduplicate(refs []Reference) []Reference {
	type key struct {
		category Category
		number   string
		subRef   string
	}
	seen := make(map[key]Reference, len(refs))
	for _, r := range refs {
		k := key{r.Category, r.Number, r.SubRef}
		if prev, ok := seen[k]; !ok || r.Confidence > prev.Confidence {
			seen[k] = r
		}
	}

	out := make([]Reference, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].SubRef < out[j].SubRef
	})
	return out
}

func groupText(text string, m []int, group int) string {
	if 2*group+1 >= len(m) || m[2*group] < 0 {
		return ""
	}
	return text[m[2*group]:m[2*group+1]]
}

func contextAround(text string, start, end int) string {
	from := start - contextWindow
	if from < 0 {
		from = 0
	}
	to := end + contextWindow
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}
