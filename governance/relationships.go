package governance

import "fmt"

// RelationshipType enumerates the edge types of the citation graph.
type RelationshipType string

const (
	// Semantic edges, attached to parent chunks only.
	RelClarifies      RelationshipType = "clarifies"
	RelProceduralises RelationshipType = "proceduralises"
	RelImplements     RelationshipType = "implements"
	RelAmends         RelationshipType = "amends"
	RelSupersedes     RelationshipType = "supersedes"

	// Structural edges, created only by the chunking engine.
	RelPartOf   RelationshipType = "part_of"
	RelPrecedes RelationshipType = "precedes"
)

var allowedRelationships = map[RelationshipType]bool{
	RelClarifies:      true,
	RelProceduralises: true,
	RelImplements:     true,
	RelAmends:         true,
	RelSupersedes:     true,
	RelPartOf:         true,
	RelPrecedes:       true,
}

// structuralRelationships are the only edge types a child chunk may carry.
var structuralRelationships = map[RelationshipType]bool{
	RelPartOf:   true,
	RelPrecedes: true,
}

// defaultRelationship maps a subordinate document type to the semantic edge
// it gets toward its anchor act section at ingestion time.
var defaultRelationship = map[DocumentType]RelationshipType{
	DocRule:         RelImplements,
	DocRegulation:   RelImplements,
	DocNotification: RelImplements,
	DocOrder:        RelImplements,
	DocCircular:     RelClarifies,
	DocGuideline:    RelClarifies,
	DocSOP:          RelProceduralises,
	DocForm:         RelProceduralises,
	DocSchedule:     RelProceduralises,
}

// ValidRelationship reports whether rel is a known edge type.
func ValidRelationship(rel RelationshipType) bool { return allowedRelationships[rel] }

// Structural reports whether rel is a structural edge (part_of / precedes).
func Structural(rel RelationshipType) bool { return structuralRelationships[rel] }

// DefaultRelationship returns the semantic edge a document type carries
// toward its parent act section, or "" when it has none (acts, commentary).
func DefaultRelationship(t DocumentType) RelationshipType {
	return defaultRelationship[t]
}

// ValidateEdge enforces the edge invariants: the relationship type must be
// known, child chunks may only participate in structural edges, and semantic
// edges may only connect parent chunks.
func ValidateEdge(rel RelationshipType, fromIsChild, toIsChild bool) error {
	if !ValidRelationship(rel) {
		return fmt.Errorf("unknown relationship type %q", rel)
	}
	if Structural(rel) {
		return nil
	}
	if fromIsChild || toIsChild {
		return fmt.Errorf("semantic relationship %q may only connect parent chunks", rel)
	}
	return nil
}
