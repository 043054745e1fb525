// Package governance holds the rule table that derives legal-governance
// attributes (binding force, retrieval priority, authority level, refusal
// policy) from a document type, plus the validation rules for relationship
// edges between chunks.
package governance

// DocumentType enumerates the kinds of documents the corpus may contain.
type DocumentType string

const (
	DocAct          DocumentType = "act"
	DocRule         DocumentType = "rule"
	DocRegulation   DocumentType = "regulation"
	DocOrder        DocumentType = "order"
	DocNotification DocumentType = "notification"
	DocCircular     DocumentType = "circular"
	DocGuideline    DocumentType = "guideline"
	DocSOP          DocumentType = "sop"
	DocForm         DocumentType = "form"
	DocSchedule     DocumentType = "schedule"
	DocRegister     DocumentType = "register"
	DocReturn       DocumentType = "return"
	DocQABook       DocumentType = "qa_book"
	DocCommentary   DocumentType = "commentary"
	DocTextbook     DocumentType = "textbook"
	DocOther        DocumentType = "other"
)

// AuthorityLevel classifies how much legal weight a document carries.
type AuthorityLevel string

const (
	AuthorityStatutory    AuthorityLevel = "statutory"
	AuthorityInterpretive AuthorityLevel = "interpretive"
	AuthorityProcedural   AuthorityLevel = "procedural"
	AuthorityCommentary   AuthorityLevel = "commentary"
)

// RefusalPolicy says whether a chunk may answer on its own, must be paired
// with its parent law, or must be refused when the parent law is absent.
type RefusalPolicy struct {
	CanAnswerStandalone    bool `json:"can_answer_standalone"`
	MustReferenceParentLaw bool `json:"must_reference_parent_law"`
	RefuseIfParentMissing  bool `json:"refuse_if_parent_missing"`
}

// Attributes is the full set of derived governance attributes for a type.
type Attributes struct {
	Binding        bool
	Priority       int
	AuthorityLevel AuthorityLevel
}

// ruleTable maps every known document type to its attributes in one place.
// Adding a document type is a one-line edit here.
var ruleTable = map[DocumentType]Attributes{
	DocAct:          {Binding: true, Priority: 1, AuthorityLevel: AuthorityStatutory},
	DocRule:         {Binding: true, Priority: 1, AuthorityLevel: AuthorityStatutory},
	DocRegulation:   {Binding: true, Priority: 2, AuthorityLevel: AuthorityStatutory},
	DocOrder:        {Binding: true, Priority: 2, AuthorityLevel: AuthorityInterpretive},
	DocNotification: {Binding: true, Priority: 2, AuthorityLevel: AuthorityInterpretive},
	DocCircular:     {Binding: false, Priority: 2, AuthorityLevel: AuthorityInterpretive},
	DocGuideline:    {Binding: false, Priority: 3, AuthorityLevel: AuthorityProcedural},
	DocSOP:          {Binding: false, Priority: 3, AuthorityLevel: AuthorityProcedural},
	DocForm:         {Binding: false, Priority: 3, AuthorityLevel: AuthorityProcedural},
	DocSchedule:     {Binding: true, Priority: 2, AuthorityLevel: AuthorityStatutory},
	DocRegister:     {Binding: false, Priority: 3, AuthorityLevel: AuthorityProcedural},
	DocReturn:       {Binding: false, Priority: 3, AuthorityLevel: AuthorityProcedural},
	DocQABook:       {Binding: false, Priority: 4, AuthorityLevel: AuthorityCommentary},
	DocCommentary:   {Binding: false, Priority: 4, AuthorityLevel: AuthorityCommentary},
	DocTextbook:     {Binding: false, Priority: 4, AuthorityLevel: AuthorityCommentary},
	DocOther:        {Binding: false, Priority: 4, AuthorityLevel: AuthorityCommentary},
}

// unknownDefaults is the fail-open tier for document types not in the table:
// least authoritative, never most.
var unknownDefaults = Attributes{Binding: false, Priority: 4, AuthorityLevel: AuthorityCommentary}

// Known reports whether t appears in the rule table.
func Known(t DocumentType) bool {
	_, ok := ruleTable[t]
	return ok
}

// AttributesFor returns the derived attributes for a document type.
func AttributesFor(t DocumentType) Attributes {
	if a, ok := ruleTable[t]; ok {
		return a
	}
	return unknownDefaults
}

// Binding reports whether documents of type t carry legal force.
func Binding(t DocumentType) bool { return AttributesFor(t).Binding }

// Priority returns the retrieval priority tier, 1 (primary law) to 4
// (commentary).
func Priority(t DocumentType) int { return AttributesFor(t).Priority }

// Level returns the authority level for a document type.
func Level(t DocumentType) AuthorityLevel { return AttributesFor(t).AuthorityLevel }

// RefusalPolicyFor derives the refusal policy from document type and
// priority. Priority-1 documents answer standalone; priority-2 documents must
// reference their parent law and are refused without it; priority-3/4
// documents answer standalone with contextual framing.
func RefusalPolicyFor(t DocumentType, priority int) RefusalPolicy {
	switch priority {
	case 1:
		return RefusalPolicy{CanAnswerStandalone: true}
	case 2:
		return RefusalPolicy{
			MustReferenceParentLaw: true,
			RefuseIfParentMissing:  true,
		}
	default:
		return RefusalPolicy{CanAnswerStandalone: true}
	}
}

// RequiresParentLaw reports whether a priority tier needs its parent law in
// scope before it may be used to answer.
func RequiresParentLaw(priority int) bool { return priority == 2 }
