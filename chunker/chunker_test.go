package chunker

import (
	"fmt"
	"strings"
	"testing"

	"lexgov/governance"
	"lexgov/store"
)

// repeatSentences builds a text of n numbered sentences of roughly equal
// length.
func repeatSentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString("The registrar shall maintain the register of members in the prescribed manner.")
	}
	return b.String()
}

func testParent(content string) store.Chunk {
	return store.Chunk{
		ID:        "ca2013_act_s088",
		Statute:   "ca2013",
		DocType:   governance.DocAct,
		Section:   "088",
		ChunkType: "parent",
		Content:   content,
		Binding:   true,
		Priority:  1,
		Authority: governance.AuthorityStatutory,
		Refusal:   governance.RefusalPolicy{CanAnswerStandalone: true},
	}
}

func TestSplitShortTextProducesNoSpans(t *testing.T) {
	c := New(Config{})
	if spans := c.Split("A short section that fits in one chunk."); spans != nil {
		t.Errorf("short text should produce no spans, got %d", len(spans))
	}
}

func TestSplitRespectsBudget(t *testing.T) {
	c := New(Config{MaxChars: 200, OverlapChars: 30})
	spans := c.Split(repeatSentences(12))
	if len(spans) < 2 {
		t.Fatalf("expected multiple spans, got %d", len(spans))
	}
	for i, span := range spans {
		if len(span) > 200+30 {
			t.Errorf("span %d is %d chars, exceeds budget plus overlap seed", i, len(span))
		}
		if strings.TrimSpace(span) != span {
			t.Errorf("span %d has untrimmed whitespace", i)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	c := New(Config{MaxChars: 150, OverlapChars: 20})
	text := repeatSentences(10)
	first := c.Split(text)
	second := c.Split(text)
	if len(first) != len(second) {
		t.Fatalf("span counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("span %d differs between runs", i)
		}
	}
}

func TestSplitOverlapStartsAtWordBoundary(t *testing.T) {
	c := New(Config{MaxChars: 200, OverlapChars: 30})
	spans := c.Split(repeatSentences(12))
	if len(spans) < 2 {
		t.Fatalf("expected multiple spans, got %d", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		prev := spans[i-1]
		// Each span opens with a suffix of the previous span, and that
		// suffix begins at a word start. Find the longest word-aligned
		// prefix of this span that closes the previous one.
		words := strings.Fields(spans[i])
		var overlap string
		for k := len(words); k > 0; k-- {
			candidate := strings.Join(words[:k], " ")
			if strings.HasSuffix(prev, candidate) {
				overlap = candidate
				break
			}
		}
		if len(overlap) < 30 {
			t.Errorf("span %d overlap %q is shorter than the configured seed", i, overlap)
		}
	}
}

func TestSplitLongSentenceBecomesOwnSpan(t *testing.T) {
	c := New(Config{MaxChars: 50, OverlapChars: 10})
	long := "This single sentence is deliberately far longer than the fifty character budget configured for the test."
	text := "Short one. " + long + " Another short one. And one more to push past the budget."
	spans := c.Split(text)
	found := false
	for _, span := range spans {
		if strings.Contains(span, "deliberately far longer") {
			found = true
			if !strings.Contains(span, long) {
				t.Error("long sentence was cut mid-sentence")
			}
		}
	}
	if !found {
		t.Fatal("long sentence missing from output")
	}
}

func TestChunkParentInheritsGovernance(t *testing.T) {
	c := New(Config{MaxChars: 200, OverlapChars: 30})
	parent := testParent(repeatSentences(12))
	children := c.ChunkParent(parent)
	if len(children) < 2 {
		t.Fatalf("expected multiple children, got %d", len(children))
	}
	for i, child := range children {
		wantID := fmt.Sprintf("%s_c%d", parent.ID, i+1)
		if child.ID != wantID {
			t.Errorf("child %d ID = %q, want %q", i, child.ID, wantID)
		}
		if child.ChunkType != "child" {
			t.Errorf("child %d type = %q", i, child.ChunkType)
		}
		if child.ParentID != parent.ID {
			t.Errorf("child %d parent = %q", i, child.ParentID)
		}
		if child.Position != i+1 {
			t.Errorf("child %d position = %d", i, child.Position)
		}
		if child.Binding != parent.Binding || child.Priority != parent.Priority ||
			child.Authority != parent.Authority || child.Refusal != parent.Refusal {
			t.Errorf("child %d did not inherit governance fields", i)
		}
		if child.ContentHash == parent.ContentHash {
			t.Errorf("child %d content hash should differ from parent", i)
		}
	}
}

func TestChunkParentShortContent(t *testing.T) {
	c := New(Config{})
	parent := testParent("Short enough to stand alone.")
	if children := c.ChunkParent(parent); children != nil {
		t.Errorf("short parent should have no children, got %d", len(children))
	}
}

func TestEdges(t *testing.T) {
	c := New(Config{MaxChars: 200, OverlapChars: 30})
	parent := testParent(repeatSentences(12))
	children := c.ChunkParent(parent)
	edges := Edges(children)

	wantEdges := len(children) + len(children) - 1
	if len(edges) != wantEdges {
		t.Fatalf("got %d edges, want %d", len(edges), wantEdges)
	}

	partOf, precedes := 0, 0
	for _, e := range edges {
		switch e.Type {
		case governance.RelPartOf:
			partOf++
			if e.TargetID != parent.ID {
				t.Errorf("part_of target = %q, want parent", e.TargetID)
			}
		case governance.RelPrecedes:
			precedes++
		default:
			t.Errorf("unexpected edge type %q", e.Type)
		}
	}
	if partOf != len(children) {
		t.Errorf("part_of edges = %d, want %d", partOf, len(children))
	}
	if precedes != len(children)-1 {
		t.Errorf("precedes edges = %d, want %d", precedes, len(children)-1)
	}
}

func TestEdgesEmpty(t *testing.T) {
	if edges := Edges(nil); edges != nil {
		t.Errorf("no children should produce no edges, got %d", len(edges))
	}
}
