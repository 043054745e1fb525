// Package vecindex maintains the flat cosine-similarity index over child
// chunk embeddings. The index is persisted as two co-located artifacts, a
// binary vector file and a JSON metadata file, which are always written and
// loaded together and must agree on length and order.
package vecindex

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"sync"

	"lexgov/store"
)

// ErrCorrupt is returned when the two index artifacts disagree.
var ErrCorrupt = errors.New("vector index artifacts out of sync")

// indexMagic and indexVersion identify the binary vector file format.
const (
	indexMagic   = uint32(0x4c585649) // "LXVI"
	indexVersion = uint32(1)
)

// embedBatchSize bounds one embedding service call.
const embedBatchSize = 16

// defaultMinScore is the relevance floor applied to search results.
const defaultMinScore = 0.5

// Embedder is the slice of the model provider the index needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Entry is the metadata stored alongside one vector. Order matches the
// vector file exactly.
type Entry struct {
	ChunkID  string `json:"chunk_id"`
	ParentID string `json:"parent_chunk_id"`
	Section  string `json:"section"`
	DocType  string `json:"doc_type"`
}

// Result is one search hit.
type Result struct {
	Entry
	Score float64 `json:"score"`
}

// Manager owns the in-memory index and its on-disk artifacts. All writes
// are serialized through an exclusive lock; searches take a read lock.
type Manager struct {
	mu       sync.RWMutex
	vecPath  string
	metaPath string
	embedder Embedder
	minScore float64
	log      *slog.Logger

	dim     int
	vectors [][]float32
	entries []Entry
}

// New returns a Manager persisting to basePath + ".bin" / ".meta.json".
func New(basePath string, embedder Embedder, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		vecPath:  basePath + ".bin",
		metaPath: basePath + ".meta.json",
		embedder: embedder,
		minScore: defaultMinScore,
		log:      log,
	}
}

// Count returns the number of indexed vectors.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Contains reports whether a chunk is already indexed.
func (m *Manager) Contains(chunkID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.ChunkID == chunkID {
			return true
		}
	}
	return false
}

// Add embeds the given child chunks and appends them to the index, then
// persists both artifacts. A chunk already present is re-embedded in place
// rather than duplicated. Embedding failures skip the affected batch and
// are logged; the rest of the run continues. Returns the IDs actually
// indexed.
func (m *Manager) Add(ctx context.Context, chunks []store.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var added []string
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		embeddings, err := m.embedder.Embed(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return added, ctx.Err()
			}
			m.log.Warn("embedding batch failed, skipping",
				"from", batch[0].ID, "count", len(batch), "error", err)
			continue
		}
		if len(embeddings) != len(batch) {
			m.log.Warn("embedding count mismatch, skipping batch",
				"want", len(batch), "got", len(embeddings))
			continue
		}

		for i, c := range batch {
			vec := embeddings[i]
			if len(vec) == 0 {
				m.log.Warn("empty embedding, skipping chunk", "chunk", c.ID)
				continue
			}
			if m.dim == 0 {
				m.dim = len(vec)
			}
			if len(vec) != m.dim {
				m.log.Warn("embedding dimension mismatch, skipping chunk",
					"chunk", c.ID, "want", m.dim, "got", len(vec))
				continue
			}
			normalize(vec)
			entry := Entry{
				ChunkID:  c.ID,
				ParentID: c.ParentID,
				Section:  c.Section,
				DocType:  string(c.DocType),
			}
			if pos := m.position(c.ID); pos >= 0 {
				m.vectors[pos] = vec
				m.entries[pos] = entry
			} else {
				m.vectors = append(m.vectors, vec)
				m.entries = append(m.entries, entry)
			}
			added = append(added, c.ID)
		}
	}

	if len(added) > 0 {
		if err := m.saveLocked(); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Remove drops the given chunks from the index and persists the artifacts.
// Unknown IDs are ignored.
func (m *Manager) Remove(chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		drop[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var vectors [][]float32
	var entries []Entry
	removed := false
	for i, e := range m.entries {
		if drop[e.ChunkID] {
			removed = true
			continue
		}
		vectors = append(vectors, m.vectors[i])
		entries = append(entries, e)
	}
	if !removed {
		return nil
	}
	m.vectors = vectors
	m.entries = entries
	return m.saveLocked()
}

// Search embeds the query and returns the top-k entries by cosine
// similarity, dropping everything below the relevance floor.
func (m *Manager) Search(ctx context.Context, query string, k int) ([]Result, error) {
	embeddings, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("embedding query: empty embedding")
	}
	q := embeddings[0]
	normalize(q)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dim != 0 && len(q) != m.dim {
		return nil, fmt.Errorf("query embedding dimension %d does not match index %d", len(q), m.dim)
	}

	var results []Result
	for i, vec := range m.vectors {
		score := dot(q, vec)
		if score < m.minScore {
			continue
		}
		results = append(results, Result{Entry: m.entries[i], Score: score})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Load reads both artifacts. A missing pair means an empty index; one
// artifact without the other, or disagreeing lengths, is corruption.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	vecData, vecErr := os.ReadFile(m.vecPath)
	metaData, metaErr := os.ReadFile(m.metaPath)

	if os.IsNotExist(vecErr) && os.IsNotExist(metaErr) {
		m.dim = 0
		m.vectors = nil
		m.entries = nil
		return nil
	}
	if vecErr != nil || metaErr != nil {
		if os.IsNotExist(vecErr) || os.IsNotExist(metaErr) {
			return fmt.Errorf("%w: one artifact missing (%s / %s)", ErrCorrupt, m.vecPath, m.metaPath)
		}
		if vecErr != nil {
			return fmt.Errorf("reading vector file: %w", vecErr)
		}
		return fmt.Errorf("reading metadata file: %w", metaErr)
	}

	dim, vectors, err := decodeVectors(vecData)
	if err != nil {
		return err
	}

	var meta metaFile
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}

	if len(meta.Entries) != len(vectors) || meta.Count != len(vectors) {
		return fmt.Errorf("%w: %d vectors vs %d metadata entries",
			ErrCorrupt, len(vectors), len(meta.Entries))
	}
	if meta.Dim != dim {
		return fmt.Errorf("%w: dimension %d vs %d", ErrCorrupt, dim, meta.Dim)
	}

	m.dim = dim
	m.vectors = vectors
	m.entries = meta.Entries
	m.log.Info("vector index loaded", "vectors", len(vectors), "dim", dim)
	return nil
}

// Save persists both artifacts.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

type metaFile struct {
	Dim     int     `json:"dim"`
	Count   int     `json:"count"`
	Entries []Entry `json:"entries"`
}

// saveLocked writes both artifacts atomically: each goes to a temp file
// first, and the vector file is renamed before the metadata file so a crash
// between the two leaves a detectable mismatch rather than silent skew.
func (m *Manager) saveLocked() error {
	vecData := encodeVectors(m.dim, m.vectors)
	meta := metaFile{Dim: m.dim, Count: len(m.vectors), Entries: m.entries}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	vecTmp := m.vecPath + ".tmp"
	metaTmp := m.metaPath + ".tmp"
	if err := os.WriteFile(vecTmp, vecData, 0644); err != nil {
		return fmt.Errorf("writing vector file: %w", err)
	}
	if err := os.WriteFile(metaTmp, metaData, 0644); err != nil {
		return fmt.Errorf("writing metadata file: %w", err)
	}
	if err := os.Rename(vecTmp, m.vecPath); err != nil {
		return fmt.Errorf("replacing vector file: %w", err)
	}
	if err := os.Rename(metaTmp, m.metaPath); err != nil {
		return fmt.Errorf("replacing metadata file: %w", err)
	}
	return nil
}

func (m *Manager) position(chunkID string) int {
	for i, e := range m.entries {
		if e.ChunkID == chunkID {
			return i
		}
	}
	return -1
}

func encodeVectors(dim int, vectors [][]float32) []byte {
	buf := make([]byte, 16, 16+len(vectors)*dim*4)
	binary.LittleEndian.PutUint32(buf[0:], indexMagic)
	binary.LittleEndian.PutUint32(buf[4:], indexVersion)
	binary.LittleEndian.PutUint32(buf[8:], uint32(dim))
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(vectors)))
	for _, vec := range vectors {
		for _, f := range vec {
			var cell [4]byte
			binary.LittleEndian.PutUint32(cell[:], math.Float32bits(f))
			buf = append(buf, cell[:]...)
		}
	}
	return buf
}

func decodeVectors(data []byte) (int, [][]float32, error) {
	if len(data) < 16 {
		return 0, nil, fmt.Errorf("%w: vector file truncated", ErrCorrupt)
	}
	if binary.LittleEndian.Uint32(data[0:]) != indexMagic {
		return 0, nil, fmt.Errorf("%w: bad vector file magic", ErrCorrupt)
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != indexVersion {
		return 0, nil, fmt.Errorf("unsupported vector file version %d", v)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:]))
	count := int(binary.LittleEndian.Uint32(data[12:]))

	want := 16 + count*dim*4
	if len(data) != want {
		return 0, nil, fmt.Errorf("%w: vector file is %d bytes, want %d", ErrCorrupt, len(data), want)
	}

	vectors := make([][]float32, count)
	off := 16
	for i := 0; i < count; i++ {
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}

// normalize scales a vector to unit length in place, making inner product
// equal cosine similarity.
func normalize(vec []float32) {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
