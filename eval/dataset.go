package eval

// Dataset is a collection of test cases for retrieval evaluation.
type Dataset struct {
	Name  string     `json:"name"`
	Tests []TestCase `json:"tests"`
}

// TestCase defines a single evaluation question against the corpus.
type TestCase struct {
	Question string `json:"question"`
	// ExpectedSections are the zero-padded sections the citations must
	// cover.
	ExpectedSections []string `json:"expected_sections,omitempty"`
	// ExpectedFacts are substrings that should appear in the answer.
	ExpectedFacts []string `json:"expected_facts,omitempty"`
	// ExpectRefusal marks questions that must be refused under the
	// governance policy rather than answered.
	ExpectRefusal bool `json:"expect_refusal,omitempty"`
	// Category: direct-section, definition, semantic, refusal.
	Category string `json:"category"`
}

// CompaniesActDataset returns sample test cases over a Companies Act style
// corpus. Sections refer to the canonical zero-padded form.
func CompaniesActDataset() Dataset {
	return Dataset{
		Name: "Companies Act - Core Retrieval",
		Tests: []TestCase{
			{
				Question:         "What does Section 45 say about numbering of shares?",
				ExpectedSections: []string{"045"},
				ExpectedFacts:    []string{"share"},
				Category:         "direct-section",
			},
			{
				Question:         "What is the definition of director?",
				ExpectedSections: []string{"002"},
				ExpectedFacts:    []string{"director"},
				Category:         "definition",
			},
			{
				Question:         "What are the requirements for incorporating a company?",
				ExpectedSections: []string{"007"},
				Category:         "semantic",
			},
			{
				Question:      "What do the buy-back regulations require when the Act text is unavailable?",
				ExpectRefusal: true,
				Category:      "refusal",
			},
		},
	}
}
