// Package lexgov is a governed retrieval engine over a statutory corpus.
// Documents are ingested as parent chunks carrying governance attributes
// derived from their document type, split into embedded child chunks, and
// linked into a citation graph. Queries run through a retrieval orchestrator
// that enforces the governance refusal policy before generating answers.
package lexgov

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"lexgov/chunker"
	"lexgov/governance"
	"lexgov/llm"
	"lexgov/parser"
	"lexgov/refextract"
	"lexgov/retrieval"
	"lexgov/store"
	"lexgov/vecindex"
)

// minParsedChars is the floor below which a parsed document is rejected.
const minParsedChars = 10

// Engine is the public interface of the lexgov system.
type Engine interface {
	// Ingest runs the full pipeline for one source document.
	Ingest(ctx context.Context, src Source) (*IngestResult, error)

	// IngestBatch ingests sources concurrently. Per-document failures are
	// recorded in the report without aborting the batch.
	IngestBatch(ctx context.Context, sources []Source) (*BatchReport, error)

	// Query answers a question through the retrieval orchestrator.
	Query(ctx context.Context, question string) (*retrieval.Result, error)

	// ReindexSections embeds children not yet indexed, optionally limited
	// to the given sections. Safe to re-run.
	ReindexSections(ctx context.Context, sections []string) (int, error)

	// ReextractSection re-runs reference extraction over a section's
	// parent chunks. Safe to re-run; edges are deduplicated.
	ReextractSection(ctx context.Context, section string) (refextract.Stats, error)

	// Purge removes a parent document, its children, its edges, and its
	// index entries.
	Purge(ctx context.Context, parentID string) ([]string, error)

	// Stats reports corpus and index counts.
	Stats(ctx context.Context) (*Stats, error)

	// Store exposes the underlying chunk store.
	Store() *store.Store

	// Close releases the store.
	Close() error
}

// Source describes one document to ingest.
type Source struct {
	// Path to the source file.
	Path string `json:"path"`
	// DocType classifies the document for governance stamping.
	DocType governance.DocumentType `json:"doc_type"`
	// Section anchors the document to a statute section, in any numeric
	// form; it is normalized before use. Instrument documents (circulars,
	// notifications) may carry their own identifier instead.
	Section string `json:"section"`
}

// IngestResult reports one document's ingestion.
type IngestResult struct {
	ParentID   string           `json:"parent_id"`
	Changed    bool             `json:"changed"`
	Children   int              `json:"children"`
	Indexed    int              `json:"indexed"`
	References refextract.Stats `json:"references"`
}

// IngestFailure records one failed document in a batch.
type IngestFailure struct {
	Document string `json:"document"`
	Error    string `json:"error"`
}

// BatchReport aggregates a batch ingestion run.
type BatchReport struct {
	RunID     string          `json:"run_id"`
	Succeeded int             `json:"succeeded"`
	Children  int             `json:"children"`
	Indexed   int             `json:"indexed"`
	Failures  []IngestFailure `json:"failures,omitempty"`
}

// Stats reports corpus and index counts.
type Stats struct {
	store.Stats
	IndexedVectors int `json:"indexed_vectors"`
}

type engine struct {
	cfg       Config
	store     *store.Store
	chatLLM   llm.Provider
	embedLLM  llm.Provider
	parsers   *parser.Registry
	chunkr    *chunker.Chunker
	index     *vecindex.Manager
	resolver  *refextract.Resolver
	retriever *retrieval.Orchestrator
	variants  *variantCounters
	log       *slog.Logger
}

// New creates a lexgov engine with the given configuration.
func New(cfg Config) (Engine, error) {
	return NewWithLogger(cfg, slog.Default())
}

// NewWithLogger creates a lexgov engine with an explicit logger.
func NewWithLogger(cfg Config, log *slog.Logger) (Engine, error) {
	if cfg.Statute == "" {
		cfg.Statute = DefaultConfig().Statute
	}

	dbPath := cfg.resolveDBPath()
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
	}

	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	chatLLM, err := llm.NewProvider(llm.Config{
		Provider: cfg.Chat.Provider,
		Model:    cfg.Chat.Model,
		BaseURL:  cfg.Chat.BaseURL,
		APIKey:   cfg.Chat.APIKey,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating chat provider: %w", err)
	}

	embedLLM, err := llm.NewProvider(llm.Config{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		BaseURL:  cfg.Embedding.BaseURL,
		APIKey:   cfg.Embedding.APIKey,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	index := vecindex.New(cfg.resolveIndexPath(), embedLLM, log)
	if err := index.Load(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: loading vector index: %v", ErrIntegrity, err)
	}

	retriever := retrieval.New(s, index, chatLLM, retrieval.Config{
		TopK:               cfg.TopK,
		DefinitionsSection: cfg.DefinitionsSection,
	}, log)

	return &engine{
		cfg:      cfg,
		store:    s,
		chatLLM:  chatLLM,
		embedLLM: embedLLM,
		parsers:  parser.NewRegistry(),
		chunkr: chunker.New(chunker.Config{
			MaxChars:     cfg.MaxChunkChars,
			OverlapChars: cfg.ChunkOverlap,
		}),
		index:     index,
		resolver:  refextract.NewResolver(s, cfg.MinRefConfidence, log),
		retriever: retriever,
		variants:  newVariantCounters(s),
		log:       log,
	}, nil
}

// Ingest processes one document: parse, create the governed parent chunk,
// link it to its anchor act section, extract cross-references, chunk, and
// index the new children. Re-ingesting an unchanged file is a no-op beyond
// the reference pass.
func (e *engine) Ingest(ctx context.Context, src Source) (*IngestResult, error) {
	if src.Section == "" {
		return nil, fmt.Errorf("%w: source %s has no section", ErrInvalidConfig, src.Path)
	}

	parsed, err := e.parsers.ParseFile(ctx, src.Path)
	if errors.Is(err, parser.ErrUnknownFormat) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParsingFailed, src.Path, err)
	}
	if len(strings.TrimSpace(parsed.Text)) < minParsedChars {
		return nil, fmt.Errorf("%w: %s: document too short", ErrParsingFailed, src.Path)
	}

	section := store.PadSection(src.Section)
	parentID, err := e.parentChunkID(ctx, src, section)
	if err != nil {
		return nil, err
	}

	attrs := governance.AttributesFor(src.DocType)
	sum := sha256.Sum256([]byte(parsed.Text))
	parent := store.Chunk{
		ID:          parentID,
		Statute:     e.cfg.Statute,
		DocType:     src.DocType,
		Section:     section,
		ChunkType:   "parent",
		Content:     parsed.Text,
		ContentHash: hex.EncodeToString(sum[:]),
		SourceFile:  src.Path,
		ParseMethod: parsed.Method,
		Binding:     attrs.Binding,
		Priority:    attrs.Priority,
		Authority:   attrs.AuthorityLevel,
		Refusal:     governance.RefusalPolicyFor(src.DocType, attrs.Priority),
	}

	changed, err := e.store.UpsertChunk(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("upserting parent %s: %w", parentID, err)
	}
	e.log.Info("parent chunk upserted", "chunk", parentID, "changed", changed)

	if err := e.linkToActSection(ctx, parent); err != nil {
		return nil, err
	}

	refStats, err := e.resolver.Apply(ctx, parentID, parsed.Text, section)
	if err != nil {
		return nil, fmt.Errorf("extracting references for %s: %w", parentID, err)
	}

	result := &IngestResult{ParentID: parentID, Changed: changed, References: refStats}
	if !changed {
		return result, nil
	}

	// Corrected text can yield fewer children than the previous ingest.
	// Retire the old set first so stale trailing chunks stop being
	// retrievable; re-chunking reactivates the IDs it still needs.
	stale, err := e.store.RetireChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("retiring stale children of %s: %w", parentID, err)
	}
	if len(stale) > 0 {
		if err := e.index.Remove(stale); err != nil {
			return nil, fmt.Errorf("dropping stale index entries: %w", err)
		}
	}

	children := e.chunkr.ChunkParent(parent)
	if len(children) > 0 {
		if err := e.store.UpsertChunks(ctx, children); err != nil {
			return nil, fmt.Errorf("upserting children of %s: %w", parentID, err)
		}
		for _, edge := range chunker.Edges(children) {
			if _, err := e.store.InsertRelationship(ctx, edge); err != nil {
				return nil, fmt.Errorf("linking children of %s: %w", parentID, err)
			}
		}
		indexed, err := e.index.Add(ctx, children)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrEmbeddingFailed, parentID, err)
		}
		if len(indexed) > 0 {
			if err := e.store.MarkEmbedded(ctx, indexed); err != nil {
				return nil, fmt.Errorf("marking embedded: %w", err)
			}
		}
		result.Indexed = len(indexed)
	}
	result.Children = len(children)

	e.log.Info("document ingested", "chunk", parentID,
		"children", result.Children, "indexed", result.Indexed,
		"references", refStats.Created)
	return result, nil
}

// parentChunkID reuses the ID of a previously ingested source file, or
// derives a new structured ID, disambiguating multiple files for the same
// section and type with a variant counter.
func (e *engine) parentChunkID(ctx context.Context, src Source, section string) (string, error) {
	existing, err := e.store.FindParentBySourceFile(ctx, src.Path)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	id := fmt.Sprintf("%s_%s_s%s", e.cfg.Statute, src.DocType, section)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(src.Path)), ".")
	if ext == "pdf" {
		n, err := e.variants.next(ctx, e.cfg.Statute, src.DocType, section)
		if err != nil {
			return "", err
		}
		ext = fmt.Sprintf("pdf%d", n)
	}
	if ext != "" {
		id += "_" + ext
	}
	return id, nil
}

// linkToActSection creates the default document-type relationship from a
// non-act parent to the act chunk of the same section. A missing act chunk
// skips the link rather than failing the ingest.
func (e *engine) linkToActSection(ctx context.Context, parent store.Chunk) error {
	if parent.DocType == governance.DocAct {
		return nil
	}
	rel := governance.DefaultRelationship(parent.DocType)
	if rel == "" {
		return nil
	}

	act, err := e.store.GetParentByTypeAndSection(ctx, governance.DocAct, parent.Section)
	if errors.Is(err, store.ErrNotFound) {
		e.log.Debug("no act chunk to anchor", "chunk", parent.ID, "section", parent.Section)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolving act anchor for %s: %w", parent.ID, err)
	}

	_, err = e.store.InsertRelationship(ctx, store.Relationship{
		SourceID:   parent.ID,
		TargetID:   act.ID,
		Type:       rel,
		Confidence: 1.0,
	})
	if err != nil {
		return fmt.Errorf("linking %s to %s: %w", parent.ID, act.ID, err)
	}
	return nil
}

// IngestBatch runs the per-document pipeline across a worker pool. One
// document's failure is recorded and the batch continues.
func (e *engine) IngestBatch(ctx context.Context, sources []Source) (*BatchReport, error) {
	workers := e.cfg.IngestWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	report := &BatchReport{RunID: uuid.NewString()}
	if len(sources) == 0 {
		return report, nil
	}

	e.log.Info("batch ingestion started", "run", report.RunID,
		"documents", len(sources), "workers", workers)

	jobs := make(chan Source)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				res, err := e.Ingest(ctx, src)
				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, IngestFailure{
						Document: src.Path,
						Error:    err.Error(),
					})
				} else {
					report.Succeeded++
					report.Children += res.Children
					report.Indexed += res.Indexed
				}
				mu.Unlock()
			}
		}()
	}

	for _, src := range sources {
		jobs <- src
	}
	close(jobs)
	wg.Wait()

	e.log.Info("batch ingestion finished", "run", report.RunID,
		"succeeded", report.Succeeded, "failed", len(report.Failures))
	return report, nil
}

// Query answers a question and records it in the query log.
func (e *engine) Query(ctx context.Context, question string) (*retrieval.Result, error) {
	res, err := e.retriever.Query(ctx, question)
	if err != nil {
		return nil, err
	}

	logEntry := store.QueryLog{
		QueryID:         uuid.NewString(),
		Query:           question,
		Answer:          res.Answer,
		RetrievalMethod: res.Method,
		Sources:         res.Citations,
		Refused:         res.Refused,
	}
	if err := e.store.LogQuery(ctx, logEntry); err != nil {
		e.log.Warn("query log write failed", "error", err)
	}
	return res, nil
}

// ReindexSections embeds children whose embedding status is stale, limited
// to the given sections when non-empty.
func (e *engine) ReindexSections(ctx context.Context, sections []string) (int, error) {
	normalized := make([]string, len(sections))
	for i, s := range sections {
		normalized[i] = store.PadSection(s)
	}

	pending, err := e.store.UnembeddedChildren(ctx, normalized)
	if err != nil {
		return 0, fmt.Errorf("listing unembedded children: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	indexed, err := e.index.Add(ctx, pending)
	if err != nil {
		return len(indexed), fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(indexed) > 0 {
		if err := e.store.MarkEmbedded(ctx, indexed); err != nil {
			return len(indexed), fmt.Errorf("marking embedded: %w", err)
		}
	}
	e.log.Info("reindex complete", "pending", len(pending), "indexed", len(indexed))
	return len(indexed), nil
}

// ReextractSection re-runs reference extraction over a section's parents.
func (e *engine) ReextractSection(ctx context.Context, section string) (refextract.Stats, error) {
	var total refextract.Stats
	section = store.PadSection(section)

	chunks, err := e.store.GetChunksBySection(ctx, section)
	if err != nil {
		return total, fmt.Errorf("loading section %s: %w", section, err)
	}

	for _, c := range chunks {
		if c.IsChild() {
			continue
		}
		stats, err := e.resolver.Apply(ctx, c.ID, c.Content, c.Section)
		if err != nil {
			return total, fmt.Errorf("re-extracting %s: %w", c.ID, err)
		}
		total.Extracted += stats.Extracted
		total.Resolved += stats.Resolved
		total.Created += stats.Created
	}
	return total, nil
}

// Purge removes a parent document and everything hanging off it.
func (e *engine) Purge(ctx context.Context, parentID string) ([]string, error) {
	removed, err := e.store.PurgeParent(ctx, parentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrChunkNotFound, parentID)
	}
	if err != nil {
		return nil, err
	}
	if err := e.index.Remove(removed); err != nil {
		return removed, fmt.Errorf("removing index entries: %w", err)
	}
	e.log.Info("parent purged", "chunk", parentID, "removed", len(removed))
	return removed, nil
}

// Stats reports corpus and index counts.
func (e *engine) Stats(ctx context.Context) (*Stats, error) {
	dbStats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Stats: *dbStats, IndexedVectors: e.index.Count()}, nil
}

// Store exposes the underlying chunk store.
func (e *engine) Store() *store.Store { return e.store }

// Close releases the store.
func (e *engine) Close() error { return e.store.Close() }
