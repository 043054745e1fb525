package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lexgov/llm"
	"lexgov/store"
)

const (
	// maxContextChars bounds the source block handed to the generation
	// service.
	maxContextChars = 6000

	// generateTemperature and generateMaxTokens keep answers short and
	// deterministic.
	generateTemperature = 0.3
	generateMaxTokens   = 768
)

const answerSystem = `You are a legal assistant answering strictly from the provided source documents.

Rules:
- Use ONLY the provided sources.
- Do NOT add outside knowledge.
- Always cite the exact Section number.
- If the answer is not in the sources, say:
  "The provided sources do not contain information about this topic."`

const (
	noResultsAnswer        = "No relevant information found in the corpus."
	couldNotGenerateAnswer = "The answer could not be generated from the retrieved sources."
)

// generateAnswer builds the governance-constrained prompt from the context
// chunks and calls the generation service. A failed or empty generation
// still returns the citations that would have backed the answer.
func (o *Orchestrator) generateAnswer(ctx context.Context, query string, chunks []store.Chunk) (answer string, citations []string) {
	citations = citationsFor(chunks)
	if len(chunks) == 0 {
		return noResultsAnswer, nil
	}

	prompt := fmt.Sprintf(`User Question:
%s

Source Documents:
%s

Answer Format:

## Answer

Provide a clear explanation based ONLY on the sources.
You may summarize but do not invent.

## Legal References
- Section X: short supporting reference from the source`,
		query, buildContext(chunks))

	resp, err := o.provider.Generate(ctx, llm.GenerateRequest{
		System:      answerSystem,
		Prompt:      prompt,
		Temperature: generateTemperature,
		MaxTokens:   generateMaxTokens,
	})
	if err != nil {
		o.log.Warn("answer generation failed", "error", err)
		return couldNotGenerateAnswer, citations
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		o.log.Warn("answer generation returned empty response")
		return couldNotGenerateAnswer, citations
	}
	return text, citations
}

// buildContext renders the chunks as a delimited source block, capped at
// maxContextChars.
func buildContext(chunks []store.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[%s] Section %s:\n%s",
			strings.ToUpper(string(c.DocType)), c.Section, c.Content))
	}
	block := strings.Join(parts, "\n\n---\n\n")
	if len(block) > maxContextChars {
		block = block[:maxContextChars]
	}
	return block
}

// citationsFor returns the deduplicated section citations for the chunks,
// sorted for a stable payload.
func citationsFor(chunks []store.Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	var citations []string
	for _, c := range chunks {
		cite := "Section " + c.Section
		if !seen[cite] {
			seen[cite] = true
			citations = append(citations, cite)
		}
	}
	sort.Strings(citations)
	return citations
}

// truncateText shortens chunk text for the result payload.
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
