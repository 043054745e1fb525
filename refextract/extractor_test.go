package refextract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"testing"

	"lexgov/governance"
	"lexgov/store"
)

func TestExtractSectionReferences(t *testing.T) {
	text := "As per Section 45 of the Act, read with sub-section (2), the company shall comply."
	refs := Extract(text, "003")

	var section, subSection *Reference
	for i := range refs {
		switch refs[i].Category {
		case CatSection:
			section = &refs[i]
		case CatSubSection:
			subSection = &refs[i]
		}
	}
	if section == nil {
		t.Fatal("section 45 not extracted")
	}
	if section.Number != "45" {
		t.Errorf("section number = %q, want 45", section.Number)
	}
	if section.Relationship != "references" {
		t.Errorf("relationship = %q, want references (from 'as per')", section.Relationship)
	}
	if subSection == nil || subSection.Number != "2" {
		t.Errorf("sub-section (2) not extracted: %+v", subSection)
	}
}

func TestExtractSkipsSelfReference(t *testing.T) {
	text := "Section 45 applies here, and Section 46 also applies."
	refs := Extract(text, "045")
	for _, r := range refs {
		if r.Category == CatSection && r.Number == "45" {
			t.Error("self-reference to section 45 should be dropped")
		}
	}
	found := false
	for _, r := range refs {
		if r.Category == CatSection && r.Number == "46" {
			found = true
		}
	}
	if !found {
		t.Error("section 46 should survive self-reference filtering")
	}
}

func TestExtractCategories(t *testing.T) {
	text := `As per Section 45 of the Companies Act, 2013, read with Rule 7 of the
		Deposit Rules, as amended by S.O. 1234(E), the company shall file Form DPT-3.
		Reference is also made to General Circular No. 16/2013 and Schedule III.`

	refs := Extract(text, "001")
	got := map[Category]string{}
	for _, r := range refs {
		got[r.Category] = r.Number
	}

	want := map[Category]string{
		CatSection:      "45",
		CatRule:         "7",
		CatNotification: "1234",
		CatForm:         "DPT-3",
		CatCircular:     "16",
		CatSchedule:     "III",
	}
	for cat, num := range want {
		if got[cat] != num {
			t.Errorf("%s = %q, want %q", cat, got[cat], num)
		}
	}
}

func TestClassifyRelationship(t *testing.T) {
	tests := []struct {
		context string
		want    string
	}{
		{"as amended by S.O. 1234", "amends"},
		{"this clarification covers Section 12", "clarifies"},
		{"in exercise of the powers conferred", "implements"},
		{"the manner of filing is prescribed", "proceduralises"},
		{"in supersession of Circular No. 5", "supersedes"},
		{"as per Section 45", "references"},
		{"Section 45 is relevant", "references"},
	}
	for _, tt := range tests {
		if got := classifyRelationship(tt.context); got != tt.want {
			t.Errorf("classifyRelationship(%q) = %q, want %q", tt.context, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		context      string
		relationship string
		want         float64
	}{
		{"base", "see Section 45", "references", 0.5},
		{"specific relationship", "amended by notification", "amends", 0.7},
		{"formal phrase", "pursuant to Section 45", "references", 0.7},
		{"specific plus formal", "pursuant to the powers under section 45", "implements", 0.9},
		{"hedged", "this may relate to Section 45", "references", 0.4},
		{"hedged formal specific", "may act pursuant to section 45 as amended", "amends", 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.context, tt.relationship)
			if got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreClamped(t *testing.T) {
	if got := Score("", "references"); got != 0.5 {
		t.Errorf("empty context score = %v, want 0.5", got)
	}
	// Nothing can push past 1.0 or below 0.0.
	high := Score("pursuant to and in accordance with the provisions of section 9 as amended", "amends")
	if high > 1.0 {
		t.Errorf("score %v exceeds 1.0", high)
	}
}

func TestDeduplicateKeepsHighestConfidence(t *testing.T) {
	text := "Section 45 may apply. Later, pursuant to Section 45, filings are mandatory."
	refs := Extract(text, "001")

	count := 0
	for _, r := range refs {
		if r.Category == CatSection && r.Number == "45" {
			count++
			if r.Confidence < 0.7 {
				t.Errorf("dedupe kept confidence %v, want the higher occurrence", r.Confidence)
			}
		}
	}
	if count != 1 {
		t.Errorf("section 45 appears %d times after dedupe, want 1", count)
	}
}

func TestExtractDeterministicOrder(t *testing.T) {
	text := "See Section 9, Rule 3, Schedule II and Form MGT-7 for details."
	first := Extract(text, "001")
	second := Extract(text, "001")
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Category != second[i].Category || first[i].Number != second[i].Number {
			t.Errorf("output order differs at %d", i)
		}
	}
}

// --- resolver tests ---

func hashOf(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

func seedParent(t *testing.T, s *store.Store, id string, docType governance.DocumentType, section, content string) store.Chunk {
	t.Helper()
	attrs := governance.AttributesFor(docType)
	c := store.Chunk{
		ID:          id,
		Statute:     "ca2013",
		DocType:     docType,
		Section:     section,
		ChunkType:   "parent",
		Content:     content,
		ContentHash: hashOf(content),
		Binding:     attrs.Binding,
		Priority:    attrs.Priority,
		Authority:   attrs.AuthorityLevel,
		Refusal:     governance.RefusalPolicyFor(docType, attrs.Priority),
	}
	if _, err := s.UpsertChunk(context.Background(), c); err != nil {
		t.Fatalf("seeding %s: %v", id, err)
	}
	return c
}

func TestResolverApply(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	act := seedParent(t, s, "ca2013_act_s045", governance.DocAct, "045", "Act section forty-five.")
	circ := seedParent(t, s, "ca2013_circular_s044", governance.DocCircular, "044",
		"This circular is issued pursuant to Section 45 of the Act. Section 999 is also cited.")

	r := NewResolver(s, 0, nil)
	stats, err := r.Apply(ctx, circ.ID, circ.Content, circ.Section)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// Section 45 and section 999 both extracted; only 45 resolves.
	if stats.Extracted != 2 {
		t.Errorf("extracted = %d, want 2", stats.Extracted)
	}
	if stats.Resolved != 1 || stats.Created != 1 {
		t.Errorf("resolved = %d created = %d, want 1/1", stats.Resolved, stats.Created)
	}

	rels, err := s.RelationshipsFrom(ctx, circ.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 1 || rels[0].TargetID != act.ID {
		t.Fatalf("edges = %+v", rels)
	}
	if rels[0].Type != governance.RelImplements {
		t.Errorf("edge type = %q, want implements (from 'pursuant to')", rels[0].Type)
	}

	// Idempotent: a second run creates nothing new.
	stats, err = r.Apply(ctx, circ.ID, circ.Content, circ.Section)
	if err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if stats.Created != 0 {
		t.Errorf("re-apply created %d edges, want 0", stats.Created)
	}
}

func TestResolverZeroPadsSections(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	act := seedParent(t, s, "ca2013_act_s007", governance.DocAct, "007", "Act section seven.")
	note := seedParent(t, s, "ca2013_notification_s008", governance.DocNotification, "008",
		"In accordance with the provisions of Section 7 of the Act.")

	r := NewResolver(s, 0, nil)
	stats, err := r.Apply(ctx, note.ID, note.Content, note.Section)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("created = %d, want 1", stats.Created)
	}
	rels, _ := s.RelationshipsFrom(ctx, note.ID)
	if len(rels) != 1 || rels[0].TargetID != act.ID {
		t.Errorf("unpadded 'Section 7' should resolve to %s, got %+v", act.ID, rels)
	}
}

func TestResolverConfidenceThreshold(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	seedParent(t, s, "ca2013_act_s045", governance.DocAct, "045", "Act section forty-five.")
	src := seedParent(t, s, "ca2013_commentary_s046", governance.DocCommentary, "046",
		"This discussion may be similar to Section 45 in spirit.")

	// Hedged context scores 0.4, below the 0.5 floor.
	r := NewResolver(s, 0.5, nil)
	stats, err := r.Apply(ctx, src.ID, src.Content, src.Section)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stats.Created != 0 {
		t.Errorf("low-confidence citation created %d edges, want 0", stats.Created)
	}
}
