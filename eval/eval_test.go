package eval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lexgov/retrieval"
)

type fakeQuerier struct {
	results map[string]*retrieval.Result
}

func (f *fakeQuerier) Query(ctx context.Context, question string) (*retrieval.Result, error) {
	for key, res := range f.results {
		if strings.Contains(question, key) {
			return res, nil
		}
	}
	return nil, errors.New("no canned result")
}

func TestCitationCoverage(t *testing.T) {
	tests := []struct {
		name      string
		expected  []string
		citations []string
		want      float64
	}{
		{"all covered", []string{"045"}, []string{"Section 045"}, 1.0},
		{"half covered", []string{"045", "046"}, []string{"Section 045"}, 0.5},
		{"none covered", []string{"045"}, []string{"Section 002"}, 0.0},
		{"no expectations", nil, []string{"Section 002"}, 1.0},
	}
	for _, tt := range tests {
		if got := citationCoverage(tt.expected, tt.citations); got != tt.want {
			t.Errorf("%s: coverage = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFactCoverage(t *testing.T) {
	answer := "Every share shall be distinguished by its distinctive number."
	if got := factCoverage([]string{"share", "number"}, answer); got != 1.0 {
		t.Errorf("coverage = %v", got)
	}
	if got := factCoverage([]string{"share", "debenture"}, answer); got != 0.5 {
		t.Errorf("coverage = %v", got)
	}
}

func TestEvaluatorRun(t *testing.T) {
	q := &fakeQuerier{results: map[string]*retrieval.Result{
		"Section 45": {
			Answer:    "Every share shall be numbered.",
			Citations: []string{"Section 045"},
			Method:    retrieval.MethodDirect,
		},
		"buy-back": {
			Answer:  "Cannot answer without the primary legislation.",
			Refused: true,
			Method:  retrieval.MethodVector,
		},
	}}

	ds := Dataset{
		Name: "smoke",
		Tests: []TestCase{
			{
				Question:         "What does Section 45 require?",
				ExpectedSections: []string{"045"},
				ExpectedFacts:    []string{"share"},
				Category:         "direct-section",
			},
			{
				Question:      "What about buy-back rules?",
				ExpectRefusal: true,
				Category:      "refusal",
			},
			{
				Question: "Unknown question",
				Category: "semantic",
			},
		},
	}

	report, err := NewEvaluator(q).Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d", len(report.Results))
	}

	direct := report.Results[0]
	if direct.CitationScore != 1.0 || direct.FactScore != 1.0 || !direct.RefusalCorrect {
		t.Errorf("direct result = %+v", direct)
	}
	refusal := report.Results[1]
	if !refusal.Refused || !refusal.RefusalCorrect {
		t.Errorf("refusal result = %+v", refusal)
	}
	failed := report.Results[2]
	if failed.Error == "" {
		t.Error("query failure not recorded")
	}

	agg := report.Aggregate
	if agg.Cases != 3 || agg.Errors != 1 {
		t.Errorf("aggregate = %+v", agg)
	}
	if agg.RefusalAccuracy != 1.0 {
		t.Errorf("refusal accuracy = %v", agg.RefusalAccuracy)
	}
	if agg.AvgCitationScore != 1.0 {
		t.Errorf("avg citation score = %v", agg.AvgCitationScore)
	}
}
