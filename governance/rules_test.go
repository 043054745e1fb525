package governance

import "testing"

func TestRuleTableCoversEveryType(t *testing.T) {
	types := []DocumentType{
		DocAct, DocRule, DocRegulation, DocOrder, DocNotification,
		DocCircular, DocGuideline, DocSOP, DocForm, DocSchedule,
		DocRegister, DocReturn, DocQABook, DocCommentary, DocTextbook, DocOther,
	}
	for _, dt := range types {
		if !Known(dt) {
			t.Errorf("document type %q missing from rule table", dt)
		}
		p := Priority(dt)
		if p < 1 || p > 4 {
			t.Errorf("Priority(%q) = %d, want 1..4", dt, p)
		}
	}
}

func TestLookupsArePure(t *testing.T) {
	for _, dt := range []DocumentType{DocAct, DocCircular, DocCommentary, DocumentType("bogus")} {
		if Binding(dt) != Binding(dt) {
			t.Errorf("Binding(%q) not stable", dt)
		}
		if Priority(dt) != Priority(dt) {
			t.Errorf("Priority(%q) not stable", dt)
		}
		if Level(dt) != Level(dt) {
			t.Errorf("Level(%q) not stable", dt)
		}
	}
}

func TestUnknownTypeFailsOpenToLeastAuthoritative(t *testing.T) {
	dt := DocumentType("press_release")
	if Known(dt) {
		t.Fatalf("%q should be unknown", dt)
	}
	if Binding(dt) {
		t.Error("unknown type must not be binding")
	}
	if got := Priority(dt); got != 4 {
		t.Errorf("Priority = %d, want 4", got)
	}
	if got := Level(dt); got != AuthorityCommentary {
		t.Errorf("Level = %q, want %q", got, AuthorityCommentary)
	}
}

func TestRefusalPolicyByTier(t *testing.T) {
	tests := []struct {
		name     string
		docType  DocumentType
		priority int
		want     RefusalPolicy
	}{
		{"primary law answers standalone", DocAct, 1, RefusalPolicy{CanAnswerStandalone: true}},
		{"priority-2 refuses without parent", DocCircular, 2, RefusalPolicy{MustReferenceParentLaw: true, RefuseIfParentMissing: true}},
		{"procedural answers with framing", DocSOP, 3, RefusalPolicy{CanAnswerStandalone: true}},
		{"commentary answers with framing", DocCommentary, 4, RefusalPolicy{CanAnswerStandalone: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RefusalPolicyFor(tt.docType, tt.priority); got != tt.want {
				t.Errorf("RefusalPolicyFor(%q, %d) = %+v, want %+v", tt.docType, tt.priority, got, tt.want)
			}
		})
	}
}

func TestRequiresParentLaw(t *testing.T) {
	if RequiresParentLaw(1) || RequiresParentLaw(3) || RequiresParentLaw(4) {
		t.Error("only priority 2 requires parent law")
	}
	if !RequiresParentLaw(2) {
		t.Error("priority 2 must require parent law")
	}
}

func TestDefaultRelationship(t *testing.T) {
	tests := []struct {
		docType DocumentType
		want    RelationshipType
	}{
		{DocRule, RelImplements},
		{DocNotification, RelImplements},
		{DocCircular, RelClarifies},
		{DocSOP, RelProceduralises},
		{DocForm, RelProceduralises},
		{DocAct, ""},
		{DocCommentary, ""},
	}
	for _, tt := range tests {
		if got := DefaultRelationship(tt.docType); got != tt.want {
			t.Errorf("DefaultRelationship(%q) = %q, want %q", tt.docType, got, tt.want)
		}
	}
}

func TestValidateEdge(t *testing.T) {
	if err := ValidateEdge(RelPartOf, true, false); err != nil {
		t.Errorf("child part_of parent should be valid: %v", err)
	}
	if err := ValidateEdge(RelPrecedes, true, true); err != nil {
		t.Errorf("child precedes child should be valid: %v", err)
	}
	if err := ValidateEdge(RelClarifies, false, false); err != nil {
		t.Errorf("parent clarifies parent should be valid: %v", err)
	}
	if err := ValidateEdge(RelClarifies, true, false); err == nil {
		t.Error("semantic edge from a child must be rejected")
	}
	if err := ValidateEdge(RelImplements, false, true); err == nil {
		t.Error("semantic edge to a child must be rejected")
	}
	if err := ValidateEdge(RelationshipType("refers_to"), false, false); err == nil {
		t.Error("unknown relationship type must be rejected")
	}
}
