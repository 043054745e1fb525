// Package retrieval orchestrates query answering over the governed corpus.
// A query runs through a small state machine: definition lookup, explicit
// section lookup with a supplementary vector pass, then fallback vector
// search. Governance refusal is enforced before any answer is generated.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lexgov/governance"
	"lexgov/llm"
	"lexgov/store"
	"lexgov/vecindex"
)

// Retrieval methods recorded on results and in the query log.
const (
	MethodDefinition = "definition_lookup"
	MethodDirect     = "direct_lookup"
	MethodVector     = "vector_search"
	MethodNone       = "none"
)

// Source types distinguishing how a chunk entered the result set.
const (
	SourceDirect        = "direct_lookup"
	SourceSupplementary = "supplementary"
)

// definitionScore tags definitional and direct structural hits. It is a
// marker, not a measured similarity.
const definitionScore = 1.0

// Searcher is the slice of the vector index the orchestrator needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]vecindex.Result, error)
}

// Config holds orchestrator settings.
type Config struct {
	// TopK bounds the retrieved chunk count per query.
	TopK int `json:"top_k" yaml:"top_k"`
	// DefinitionsSection is the canonical definitions section of the
	// primary statute, in zero-padded form.
	DefinitionsSection string `json:"definitions_section" yaml:"definitions_section"`
}

// DefaultConfig returns the orchestrator defaults.
func DefaultConfig() Config {
	return Config{TopK: 15, DefinitionsSection: "002"}
}

// RetrievedChunk is one chunk in a result payload.
type RetrievedChunk struct {
	ChunkID    string                    `json:"chunk_id"`
	Section    string                    `json:"section"`
	DocType    governance.DocumentType   `json:"document_type"`
	Text       string                    `json:"text"`
	Binding    bool                      `json:"binding"`
	Priority   int                       `json:"priority"`
	Authority  governance.AuthorityLevel `json:"authority_level"`
	Score      float64                   `json:"similarity_score"`
	SourceType string                    `json:"source_type,omitempty"`
}

// Result is the outcome of one query. Refused results carry no answer text
// beyond the refusal message and are distinct from empty results.
type Result struct {
	Answer             string           `json:"answer"`
	Citations          []string         `json:"citations,omitempty"`
	Chunks             []RetrievedChunk `json:"retrieved_chunks,omitempty"`
	Method             string           `json:"retrieval_method"`
	Refused            bool             `json:"refused,omitempty"`
	RefusalReason      string           `json:"refusal_reason,omitempty"`
	DirectLookupCount  int              `json:"direct_lookup_count,omitempty"`
	SupplementaryCount int              `json:"supplementary_count,omitempty"`
}

// Orchestrator answers queries from the store, the vector index, and the
// generation service. It is stateless across queries.
type Orchestrator struct {
	store    *store.Store
	index    Searcher
	provider llm.Provider
	cfg      Config
	log      *slog.Logger
}

// New creates an orchestrator.
func New(s *store.Store, index Searcher, provider llm.Provider, cfg Config, log *slog.Logger) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.DefinitionsSection == "" {
		cfg.DefinitionsSection = DefaultConfig().DefinitionsSection
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{store: s, index: index, provider: provider, cfg: cfg, log: log}
}

// Query runs the retrieval state machine and returns the first applicable
// terminal result.
func (o *Orchestrator) Query(ctx context.Context, query string) (*Result, error) {
	section := extractSection(query)

	if section == "" && isDefinitionQuery(query) {
		if term := extractTerm(query); term != "" {
			res, err := o.definitionLookup(ctx, query, term)
			if err != nil {
				return nil, err
			}
			if res != nil {
				return res, nil
			}
		}
	}

	if section != "" {
		res, err := o.sectionLookup(ctx, query, section)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}

	return o.vectorSearch(ctx, query)
}

// definitionLookup answers a definition query from the definitions section.
// Returns nil when the term has no definitional hits, letting the state
// machine fall through.
func (o *Orchestrator) definitionLookup(ctx context.Context, query, term string) (*Result, error) {
	o.log.Debug("definition query", "term", term)

	chunks, err := o.store.SearchDefinitions(ctx, term, o.cfg.DefinitionsSection)
	if err != nil {
		return nil, fmt.Errorf("definition lookup: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) > o.cfg.TopK {
		chunks = chunks[:o.cfg.TopK]
	}

	sources, refusal, err := o.enforceRefusal(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		refusal.Method = MethodDefinition
		return refusal, nil
	}

	answer, citations := o.generateAnswer(ctx, query, sources)
	return &Result{
		Answer:    answer,
		Citations: citations,
		Chunks:    asRetrieved(chunks, definitionScore, ""),
		Method:    MethodDefinition,
	}, nil
}

// sectionLookup answers a query naming an explicit section. The generated
// answer uses the direct structural hits only; an independent vector pass
// surfaces supplementary material which is returned but never fed to the
// generator. Returns nil when the section has no chunks.
func (o *Orchestrator) sectionLookup(ctx context.Context, query, section string) (*Result, error) {
	o.log.Debug("section query", "section", section)

	direct, err := o.store.GetChunksBySection(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("section lookup: %w", err)
	}
	if len(direct) == 0 {
		return nil, nil
	}
	if len(direct) > o.cfg.TopK {
		direct = direct[:o.cfg.TopK]
	}

	sources, refusal, err := o.enforceRefusal(ctx, direct)
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		refusal.Method = MethodDirect
		return refusal, nil
	}

	answer, citations := o.generateAnswer(ctx, query, sources)

	directSet := make(map[string]bool, len(direct))
	for _, c := range direct {
		directSet[c.ID] = true
	}

	supplementary, err := o.supplementaryPass(ctx, query, directSet)
	if err != nil {
		// Supplementary material is best effort; the direct answer stands.
		o.log.Warn("supplementary vector pass failed", "error", err)
	}

	chunks := asRetrieved(direct, definitionScore, SourceDirect)
	if room := o.cfg.TopK - len(chunks); room > 0 && len(supplementary) > room {
		supplementary = supplementary[:room]
	}
	chunks = append(chunks, supplementary...)

	return &Result{
		Answer:             answer,
		Citations:          citations,
		Chunks:             chunks,
		Method:             MethodDirect,
		DirectLookupCount:  len(direct),
		SupplementaryCount: len(supplementary),
	}, nil
}

// supplementaryPass runs a vector search and returns the hits not already in
// the direct-lookup set, tagged as supplementary.
func (o *Orchestrator) supplementaryPass(ctx context.Context, query string, exclude map[string]bool) ([]RetrievedChunk, error) {
	hits, err := o.index.Search(ctx, query, o.cfg.TopK)
	if err != nil {
		return nil, err
	}

	var ids []string
	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		if exclude[h.ChunkID] {
			continue
		}
		ids = append(ids, h.ChunkID)
		scores[h.ChunkID] = h.Score
	}
	if len(ids) == 0 {
		return nil, nil
	}

	chunks, err := o.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		rc := toRetrieved(c, scores[c.ID], SourceSupplementary)
		out = append(out, rc)
	}
	return out, nil
}

// vectorSearch is the fallback leg for queries with no structural anchor.
func (o *Orchestrator) vectorSearch(ctx context.Context, query string) (*Result, error) {
	hits, err := o.index.Search(ctx, query, o.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return &Result{Answer: noResultsAnswer, Method: MethodNone}, nil
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
		scores[h.ChunkID] = h.Score
	}

	chunks, err := o.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading vector hits: %w", err)
	}
	if len(chunks) == 0 {
		return &Result{Answer: noResultsAnswer, Method: MethodNone}, nil
	}

	sources, refusal, err := o.enforceRefusal(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		refusal.Method = MethodVector
		return refusal, nil
	}

	answer, citations := o.generateAnswer(ctx, query, sources)

	out := make([]RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, toRetrieved(c, scores[c.ID], ""))
	}

	return &Result{
		Answer:    answer,
		Citations: citations,
		Chunks:    out,
		Method:    MethodVector,
	}, nil
}

// enforceRefusal applies the refusal gate before generation. A chunk whose
// policy refuses without its parent law must have the act parent for its
// section in the context; when present it is pulled in, when absent the
// whole query is refused. Refusal is terminal and distinct from not-found.
func (o *Orchestrator) enforceRefusal(ctx context.Context, chunks []store.Chunk) ([]store.Chunk, *Result, error) {
	sources := chunks
	present := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		present[c.ID] = true
	}

	for _, c := range chunks {
		if !c.Refusal.RefuseIfParentMissing {
			continue
		}
		if c.DocType == governance.DocAct {
			continue
		}
		parent, err := o.store.GetParentByTypeAndSection(ctx, governance.DocAct, c.Section)
		if errors.Is(err, store.ErrNotFound) {
			o.log.Info("refusing query, parent law missing",
				"chunk", c.ID, "doc_type", c.DocType, "section", c.Section)
			return nil, &Result{
				Answer: fmt.Sprintf(
					"Cannot answer without the primary legislation: no Act text is available for Section %s, which %s %s depends on.",
					c.Section, c.DocType, c.ID),
				Refused:       true,
				RefusalReason: fmt.Sprintf("parent law missing for section %s", c.Section),
			}, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("resolving parent law for %s: %w", c.ID, err)
		}
		if !present[parent.ID] {
			present[parent.ID] = true
			sources = append(sources, *parent)
		}
	}
	return sources, nil, nil
}

func toRetrieved(c store.Chunk, score float64, sourceType string) RetrievedChunk {
	return RetrievedChunk{
		ChunkID:    c.ID,
		Section:    c.Section,
		DocType:    c.DocType,
		Text:       truncateText(c.Content, 500),
		Binding:    c.Binding,
		Priority:   c.Priority,
		Authority:  c.Authority,
		Score:      score,
		SourceType: sourceType,
	}
}

func asRetrieved(chunks []store.Chunk, score float64, sourceType string) []RetrievedChunk {
	out := make([]RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, toRetrieved(c, score, sourceType))
	}
	return out
}
