package eval

import "strings"

// Metrics aggregates scores across a dataset run.
type Metrics struct {
	Cases            int     `json:"cases"`
	Errors           int     `json:"errors"`
	AvgCitationScore float64 `json:"avg_citation_score"`
	AvgFactScore     float64 `json:"avg_fact_score"`
	RefusalAccuracy  float64 `json:"refusal_accuracy"`
}

// citationCoverage is the fraction of expected sections present in the
// returned citations. No expectations means full coverage.
func citationCoverage(expected, citations []string) float64 {
	if len(expected) == 0 {
		return 1.0
	}
	cited := make(map[string]bool, len(citations))
	for _, c := range citations {
		cited[strings.TrimPrefix(c, "Section ")] = true
	}
	hits := 0
	for _, section := range expected {
		if cited[section] {
			hits++
		}
	}
	return float64(hits) / float64(len(expected))
}

// factCoverage is the fraction of expected facts appearing in the answer as
// case-insensitive substrings.
func factCoverage(facts []string, answer string) float64 {
	if len(facts) == 0 {
		return 1.0
	}
	lower := strings.ToLower(answer)
	hits := 0
	for _, fact := range facts {
		if strings.Contains(lower, strings.ToLower(fact)) {
			hits++
		}
	}
	return float64(hits) / float64(len(facts))
}

func aggregate(results []TestResult) Metrics {
	m := Metrics{Cases: len(results)}
	if len(results) == 0 {
		return m
	}

	scored := 0
	refusalCorrect := 0
	for _, r := range results {
		if r.Error != "" {
			m.Errors++
			continue
		}
		if r.RefusalCorrect {
			refusalCorrect++
		}
		if !r.Refused {
			m.AvgCitationScore += r.CitationScore
			m.AvgFactScore += r.FactScore
			scored++
		}
	}
	if scored > 0 {
		m.AvgCitationScore /= float64(scored)
		m.AvgFactScore /= float64(scored)
	}
	evaluated := len(results) - m.Errors
	if evaluated > 0 {
		m.RefusalAccuracy = float64(refusalCorrect) / float64(evaluated)
	}
	return m
}
