// Package eval measures retrieval quality over a governed corpus: citation
// coverage, answer faithfulness signals, and refusal correctness.
package eval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lexgov/retrieval"
)

// Querier is the slice of the engine the evaluator needs.
type Querier interface {
	Query(ctx context.Context, question string) (*retrieval.Result, error)
}

// Evaluator runs datasets against a query engine.
type Evaluator struct {
	engine Querier
	log    *slog.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(engine Querier) *Evaluator {
	return &Evaluator{engine: engine, log: slog.Default()}
}

// Report aggregates one dataset run.
type Report struct {
	Dataset   string       `json:"dataset"`
	Results   []TestResult `json:"results"`
	Aggregate Metrics      `json:"aggregate"`
	ElapsedMs int64        `json:"elapsed_ms"`
}

// TestResult records one test case outcome.
type TestResult struct {
	Question        string   `json:"question"`
	Category        string   `json:"category"`
	Answer          string   `json:"answer"`
	Citations       []string `json:"citations,omitempty"`
	Method          string   `json:"retrieval_method"`
	Refused         bool     `json:"refused"`
	CitationScore   float64  `json:"citation_score"`
	FactScore       float64  `json:"fact_score"`
	RefusalCorrect  bool     `json:"refusal_correct"`
	Error           string   `json:"error,omitempty"`
	DurationMs      int64    `json:"duration_ms"`
	RetrievedChunks int      `json:"retrieved_chunks"`
}

// Run evaluates every test case in the dataset. Query failures are recorded
// per case and do not abort the run.
func (e *Evaluator) Run(ctx context.Context, ds Dataset) (*Report, error) {
	start := time.Now()
	report := &Report{Dataset: ds.Name}

	for _, tc := range ds.Tests {
		result := e.runCase(ctx, tc)
		report.Results = append(report.Results, result)
		e.log.Info("eval case finished",
			"question", tc.Question,
			"citation_score", result.CitationScore,
			"refusal_correct", result.RefusalCorrect)
	}

	report.Aggregate = aggregate(report.Results)
	report.ElapsedMs = time.Since(start).Milliseconds()
	return report, nil
}

func (e *Evaluator) runCase(ctx context.Context, tc TestCase) TestResult {
	start := time.Now()
	result := TestResult{Question: tc.Question, Category: tc.Category}

	res, err := e.engine.Query(ctx, tc.Question)
	result.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = fmt.Sprintf("query failed: %v", err)
		return result
	}

	result.Answer = res.Answer
	result.Citations = res.Citations
	result.Method = res.Method
	result.Refused = res.Refused
	result.RetrievedChunks = len(res.Chunks)

	result.RefusalCorrect = res.Refused == tc.ExpectRefusal
	if !res.Refused {
		result.CitationScore = citationCoverage(tc.ExpectedSections, res.Citations)
		result.FactScore = factCoverage(tc.ExpectedFacts, res.Answer)
	}
	return result
}
