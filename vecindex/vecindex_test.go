package vecindex

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"lexgov/governance"
	"lexgov/store"
)

// fakeEmbedder returns fixed vectors per text, mimicking a semantic space
// with three orthogonal topics.
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    bool
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embedding service down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			cp := make([]float32, len(v))
			copy(cp, v)
			out[i] = cp
		} else {
			out[i] = []float32{1, 1, 1}
		}
	}
	return out, nil
}

func childChunk(id, section, content string) store.Chunk {
	return store.Chunk{
		ID:        id,
		Statute:   "ca2013",
		DocType:   governance.DocAct,
		Section:   section,
		ChunkType: "child",
		ParentID:  "ca2013_act_s" + section,
		Content:   content,
	}
}

func newTestManager(t *testing.T, emb Embedder) *Manager {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "index"), emb, nil)
}

func TestAddAndSearch(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"shares":       {10, 0, 0},
		"deposits":     {0, 10, 0},
		"directors":    {0, 0, 10},
		"about shares": {9, 1, 0},
	}}
	m := newTestManager(t, emb)
	ctx := context.Background()

	added, err := m.Add(ctx, []store.Chunk{
		childChunk("ca2013_act_s043_c1", "043", "shares"),
		childChunk("ca2013_act_s073_c1", "073", "deposits"),
		childChunk("ca2013_act_s149_c1", "149", "directors"),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(added) != 3 || m.Count() != 3 {
		t.Fatalf("added = %v, count = %d", added, m.Count())
	}

	results, err := m.Search(ctx, "about shares", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].ChunkID != "ca2013_act_s043_c1" {
		t.Errorf("top result = %s, want the shares chunk", results[0].ChunkID)
	}
	if results[0].Score <= results[len(results)-1].Score && len(results) > 1 {
		t.Error("results not sorted by score")
	}
	// Orthogonal topics score ~0 and must be filtered by the floor.
	for _, r := range results {
		if r.Score < defaultMinScore {
			t.Errorf("result %s below floor: %v", r.ChunkID, r.Score)
		}
	}
}

func TestAddNormalizes(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"big": {100, 0, 0}}}
	m := newTestManager(t, emb)
	if _, err := m.Add(context.Background(), []store.Chunk{childChunk("c1", "001", "big")}); err != nil {
		t.Fatal(err)
	}
	vec := m.vectors[0]
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("stored vector not unit length: %v", sum)
	}
}

func TestAddReplacesExisting(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"old": {1, 0, 0},
		"new": {0, 1, 0},
	}}
	m := newTestManager(t, emb)
	ctx := context.Background()

	c := childChunk("c1", "001", "old")
	if _, err := m.Add(ctx, []store.Chunk{c}); err != nil {
		t.Fatal(err)
	}
	c.Content = "new"
	if _, err := m.Add(ctx, []store.Chunk{c}); err != nil {
		t.Fatal(err)
	}
	if m.Count() != 1 {
		t.Errorf("re-adding a chunk duplicated it: count = %d", m.Count())
	}
	if m.vectors[0][1] != 1 {
		t.Errorf("vector not replaced: %v", m.vectors[0])
	}
}

func TestAddSkipsFailedBatch(t *testing.T) {
	emb := &fakeEmbedder{fail: true}
	m := newTestManager(t, emb)
	added, err := m.Add(context.Background(), []store.Chunk{childChunk("c1", "001", "x")})
	if err != nil {
		t.Fatalf("failed batch should not fail the run: %v", err)
	}
	if len(added) != 0 || m.Count() != 0 {
		t.Errorf("nothing should be indexed, added = %v", added)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0}, "b": {0, 1, 0},
	}}
	base := filepath.Join(t.TempDir(), "index")
	m := New(base, emb, nil)
	ctx := context.Background()

	if _, err := m.Add(ctx, []store.Chunk{
		childChunk("c1", "001", "a"),
		childChunk("c2", "002", "b"),
	}); err != nil {
		t.Fatal(err)
	}

	// Fresh manager over the same artifacts.
	m2 := New(base, emb, nil)
	if err := m2.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m2.Count() != 2 {
		t.Fatalf("loaded %d vectors, want 2", m2.Count())
	}
	if m2.entries[0].ChunkID != "c1" || m2.entries[1].ChunkID != "c2" {
		t.Errorf("entry order not preserved: %+v", m2.entries)
	}

	results, err := m2.Search(ctx, "a", 1)
	if err != nil {
		t.Fatalf("search after load: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "c1" {
		t.Errorf("search after load = %+v", results)
	}
}

func TestLoadMissingArtifactsIsEmpty(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "index"), &fakeEmbedder{}, nil)
	if err := m.Load(); err != nil {
		t.Fatalf("missing artifacts should load empty: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("count = %d", m.Count())
	}
}

func TestLoadDetectsMismatchedArtifacts(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"a": {1, 0, 0}}}
	base := filepath.Join(t.TempDir(), "index")
	m := New(base, emb, nil)
	if _, err := m.Add(context.Background(), []store.Chunk{childChunk("c1", "001", "a")}); err != nil {
		t.Fatal(err)
	}

	// Drop the metadata file only.
	if err := os.Remove(base + ".meta.json"); err != nil {
		t.Fatal(err)
	}
	m2 := New(base, emb, nil)
	if err := m2.Load(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("lone vector file should be ErrCorrupt, got %v", err)
	}

	// Metadata claiming a different count is also corruption.
	m3 := New(base, emb, nil)
	if err := os.WriteFile(base+".meta.json", []byte(`{"dim":3,"count":2,"entries":[{"chunk_id":"c1"},{"chunk_id":"c2"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m3.Load(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("length mismatch should be ErrCorrupt, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0}, "b": {0, 1, 0},
	}}
	base := filepath.Join(t.TempDir(), "index")
	m := New(base, emb, nil)
	ctx := context.Background()

	if _, err := m.Add(ctx, []store.Chunk{
		childChunk("c1", "001", "a"),
		childChunk("c2", "002", "b"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove([]string{"c1", "missing"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if m.Count() != 1 || m.entries[0].ChunkID != "c2" {
		t.Errorf("after remove: count=%d entries=%+v", m.Count(), m.entries)
	}

	// Removal is persisted.
	m2 := New(base, emb, nil)
	if err := m2.Load(); err != nil {
		t.Fatal(err)
	}
	if m2.Count() != 1 {
		t.Errorf("persisted count = %d, want 1", m2.Count())
	}
}
