package refextract

import "strings"

var formalIndicators = []string{"pursuant", "accordance", "provisions of", "under section"}

var ambiguousIndicators = []string{"may", "might", "could", "similar to"}

// Score computes the extraction confidence for a citation from its context
// and classified relationship. Base 0.5, plus 0.2 for a specific (non
// generic) relationship, plus 0.2 for formal citation language, minus 0.1
// for hedged language, clamped to [0, 1]. Pure function.
func Score(context, relationship string) float64 {
	confidence := 0.5
	lower := strings.ToLower(context)

	if relationship != relGeneric {
		confidence += 0.2
	}
	for _, ind := range formalIndicators {
		if strings.Contains(lower, ind) {
			confidence += 0.2
			break
		}
	}
	for _, ind := range ambiguousIndicators {
		if strings.Contains(lower, ind) {
			confidence -= 0.1
			break
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.0 {
		confidence = 0.0
	}
	return confidence
}
