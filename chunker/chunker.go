// Package chunker splits parent section text into retrieval-sized child
// chunks. Children inherit the parent's governance attributes verbatim and
// are linked to it with part_of edges plus precedes edges between adjacent
// siblings.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"lexgov/governance"
	"lexgov/store"
)

// Config controls the chunking behaviour.
type Config struct {
	MaxChars     int // Maximum characters per child chunk.
	OverlapChars int // Overlap seed carried into the next chunk.
}

// Chunker converts parent chunk text into child chunks.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration.
// Zero-value fields are replaced with sensible defaults.
func New(cfg Config) *Chunker {
	if cfg.MaxChars == 0 {
		cfg.MaxChars = 1000
	}
	if cfg.OverlapChars == 0 {
		cfg.OverlapChars = 100
	}
	return &Chunker{cfg: cfg}
}

// Split breaks text into spans of at most MaxChars, accumulating whole
// sentences greedily and seeding each span after the first with the tail of
// the previous one. Text that already fits in one span produces no spans at
// all: short sections are served by their parent chunk directly. A single
// sentence longer than the budget becomes its own span rather than being
// cut mid-sentence.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if len(text) <= c.cfg.MaxChars {
		return nil
	}

	var spans []string
	var cur strings.Builder
	for _, sent := range splitSentences(text) {
		if cur.Len() > 0 && cur.Len()+1+len(sent) > c.cfg.MaxChars {
			prev := strings.TrimSpace(cur.String())
			spans = append(spans, prev)
			cur.Reset()
			if overlap := overlapTail(prev, c.cfg.OverlapChars); overlap != "" {
				cur.WriteString(overlap)
			}
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(sent)
	}
	if cur.Len() > 0 {
		spans = append(spans, strings.TrimSpace(cur.String()))
	}
	return spans
}

// ChunkParent builds the child chunks for a parent. Children copy every
// governance field from the parent; only identity, position, and content
// differ. Child IDs are <parent>_c1, <parent>_c2, ...
func (c *Chunker) ChunkParent(parent store.Chunk) []store.Chunk {
	spans := c.Split(parent.Content)
	if len(spans) == 0 {
		return nil
	}

	children := make([]store.Chunk, 0, len(spans))
	for i, span := range spans {
		child := parent
		child.ID = fmt.Sprintf("%s_c%d", parent.ID, i+1)
		child.ChunkType = "child"
		child.ParentID = parent.ID
		child.Position = i + 1
		child.Content = span
		child.ContentHash = contentHash(span)
		children = append(children, child)
	}
	return children
}

// Edges returns the structural edges for a set of siblings: one part_of
// edge per child toward the parent, and a precedes edge from each child to
// the next.
func Edges(children []store.Chunk) []store.Relationship {
	var edges []store.Relationship
	for i, child := range children {
		edges = append(edges, store.Relationship{
			SourceID:   child.ID,
			TargetID:   child.ParentID,
			Type:       governance.RelPartOf,
			Confidence: 1.0,
		})
		if i > 0 {
			edges = append(edges, store.Relationship{
				SourceID:   children[i-1].ID,
				TargetID:   child.ID,
				Type:       governance.RelPrecedes,
				Confidence: 1.0,
			})
		}
	}
	return edges
}

// splitSentences is a simple sentence tokeniser. It splits on terminal
// punctuation followed by whitespace or end of string.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				s := strings.TrimSpace(cur.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// overlapTail returns the trailing n characters of text, extended backward
// to the nearest word boundary so the overlap never starts mid-word.
func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(text) <= n {
		return text
	}
	start := len(text) - n
	for start > 0 && text[start-1] != ' ' {
		start--
	}
	return strings.TrimSpace(text[start:])
}

// contentHash returns the SHA-256 hex digest of text.
func contentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
