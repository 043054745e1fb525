package refextract

import "regexp"

// Category classifies what kind of legal instrument a reference points at.
type Category string

const (
	CatSection      Category = "section"
	CatSubSection   Category = "sub_section"
	CatRule         Category = "rule"
	CatNotification Category = "notification"
	CatCircular     Category = "circular"
	CatForm         Category = "form"
	CatSchedule     Category = "schedule"
)

// referencePatterns is the extraction catalogue. Every pattern captures the
// reference number in group 1 and an optional sub-reference in group 2.
var referencePatterns = []struct {
	category Category
	patterns []*regexp.Regexp
}{
	{CatSection, []*regexp.Regexp{
		// "Section 45", "section 45(2)"
		regexp.MustCompile(`(?i)sections?\s+(\d+)(?:\s*\((\d+)\))?`),
		// trailing number of a list: "Sections 45, 46 and 47"
		regexp.MustCompile(`(?i)sections?\s+\d+(?:\s*,\s*\d+)*\s+and\s+(\d+)`),
		regexp.MustCompile(`(?i)sec\.\s*(\d+)`),
	}},
	{CatSubSection, []*regexp.Regexp{
		// "sub-section (2)", "Sub-Section (3)(a)"
		regexp.MustCompile(`(?i)sub-?section\s*\((\d+)\)(?:\s*\(([a-z])\))?`),
	}},
	{CatRule, []*regexp.Regexp{
		// "Rule 7", "rule 7(2)"
		regexp.MustCompile(`(?i)rules?\s+(\d+)(?:\s*\((\d+)\))?`),
		regexp.MustCompile(`(?i)rules?\s+\d+(?:\s*,\s*\d+)*\s+and\s+(\d+)`),
	}},
	{CatNotification, []*regexp.Regexp{
		// "S.O. 1234(E)", "G.S.R. 567"
		regexp.MustCompile(`(?i)s\.o\.\s*(\d+)\s*\(?e?\)?`),
		regexp.MustCompile(`(?i)g\.s\.r\.\s*(\d+)\s*\(?e?\)?`),
		regexp.MustCompile(`(?i)notification\s+no\.\s*(\d+)`),
	}},
	{CatCircular, []*regexp.Regexp{
		// "Circular No. 16/2013", "General Circular No. 32/2014"
		regexp.MustCompile(`(?i)(?:general\s+)?circular\s+no\.\s*(\d+)(?:/(\d{4}))?`),
	}},
	{CatForm, []*regexp.Regexp{
		// "Form INC-4", "Form No. MGT-7"
		regexp.MustCompile(`(?i)form\s+(?:no\.\s*)?([A-Z]{2,4}-?\d+)`),
	}},
	{CatSchedule, []*regexp.Regexp{
		// "Schedule I", "Schedule III"
		regexp.MustCompile(`(?i)schedule\s+([IVXLCDM]+|\d+)`),
	}},
}

// relGeneric is the fallback relationship when no indicator phrase matches.
const relGeneric = "references"

// relationshipIndicators maps context phrases to relationship types.
// Checked in order; the first match wins, so specific relationships come
// before the generic catch-all.
var relationshipIndicators = []struct {
	relationship string
	patterns     []*regexp.Regexp
}{
	{"amends", compileAll(
		`amended\s+by`, `as\s+amended`, `amendment\s+to`,
		`substituted\s+by`, `omitted\s+by`, `inserted\s+by`,
	)},
	{"clarifies", compileAll(
		`clarified\s+(?:by|in|vide)`, `clarification`, `explained\s+in`, `interpretation`,
	)},
	{"implements", compileAll(
		`in\s+pursuance\s+of`, `pursuant\s+to`, `in\s+exercise\s+of`,
		`under\s+(?:the\s+)?powers`, `empowered\s+by`,
	)},
	{"proceduralises", compileAll(
		`procedure\s+for`, `form\s+for`, `manner\s+of`, `prescribed\s+in`,
	)},
	{"supersedes", compileAll(
		`superseded\s+by`, `replaced\s+by`, `in\s+supersession\s+of`,
	)},
	{relGeneric, compileAll(
		`as\s+per`, `subject\s+to`, `notwithstanding`, `in\s+accordance\s+with`,
		`referred\s+to\s+in`, `mentioned\s+in`, `specified\s+in`, `provided\s+in`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
