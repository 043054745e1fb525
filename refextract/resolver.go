package refextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lexgov/governance"
	"lexgov/store"
)

// relationshipMap converts classified relationships to graph edge types.
// Generic references land as clarifies, the weakest semantic edge.
var relationshipMap = map[string]governance.RelationshipType{
	relGeneric:       governance.RelClarifies,
	"amends":         governance.RelAmends,
	"clarifies":      governance.RelClarifies,
	"implements":     governance.RelImplements,
	"proceduralises": governance.RelProceduralises,
	"supersedes":     governance.RelSupersedes,
}

// Stats reports one extraction run: how many citations were found, how many
// resolved to a stored chunk, and how many produced a new edge.
type Stats struct {
	Extracted int                  `json:"extracted"`
	Resolved  int                  `json:"resolved"`
	Created   int                  `json:"created"`
	Edges     []store.Relationship `json:"edges,omitempty"`
}

// Resolver extracts citations from parent chunk text and writes the
// resolvable ones to the relationship table.
type Resolver struct {
	store         *store.Store
	minConfidence float64
	log           *slog.Logger
}

// NewResolver returns a Resolver over the given store. minConfidence below
// which citations are not materialised defaults to 0.5.
func NewResolver(s *store.Store, minConfidence float64, log *slog.Logger) *Resolver {
	if minConfidence == 0 {
		minConfidence = 0.5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: s, minConfidence: minConfidence, log: log}
}

// Apply extracts references from a parent chunk's text, resolves each one
// to a stored parent chunk, and creates the corresponding edges. A citation
// of something not in the corpus is counted as extracted but creates
// nothing. The whole run is idempotent: re-applying creates no duplicate
// edges.
func (r *Resolver) Apply(ctx context.Context, chunkID, text, section string) (Stats, error) {
	refs := Extract(text, section)
	stats := Stats{Extracted: len(refs)}

	for _, ref := range refs {
		if ref.Confidence < r.minConfidence {
			continue
		}

		target, err := r.resolve(ctx, ref)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return stats, fmt.Errorf("resolving %s %s: %w", ref.Category, ref.Number, err)
		}
		if target == nil {
			continue
		}
		if target.ID == chunkID {
			continue
		}
		stats.Resolved++

		edge := store.Relationship{
			SourceID:    chunkID,
			TargetID:    target.ID,
			Type:        relationshipMap[ref.Relationship],
			Confidence:  ref.Confidence,
			Description: fmt.Sprintf("%s %s", ref.Category, ref.Number),
		}
		created, err := r.store.InsertRelationship(ctx, edge)
		if err != nil {
			return stats, fmt.Errorf("creating edge %s -> %s: %w", chunkID, target.ID, err)
		}
		if created {
			stats.Created++
			stats.Edges = append(stats.Edges, edge)
			r.log.Debug("created citation edge",
				"from", chunkID, "to", target.ID,
				"type", string(edge.Type), "confidence", ref.Confidence)
		}
	}

	r.log.Info("reference extraction",
		"chunk", chunkID,
		"extracted", stats.Extracted,
		"resolved", stats.Resolved,
		"created", stats.Created)
	return stats, nil
}

// resolve maps a citation to the parent chunk it points at. Sub-section
// citations are informational only and never resolve on their own.
func (r *Resolver) resolve(ctx context.Context, ref Reference) (*store.Chunk, error) {
	switch ref.Category {
	case CatSection:
		return r.store.GetParentByTypeAndSection(ctx, governance.DocAct, store.PadSection(ref.Number))
	case CatRule:
		return r.store.GetParentByTypeAndSection(ctx, governance.DocRule, store.PadSection(ref.Number))
	case CatNotification:
		return r.store.FindParentByIDPattern(ctx, governance.DocNotification, "%"+ref.Number+"%")
	case CatCircular:
		return r.store.FindParentByIDPattern(ctx, governance.DocCircular, "%circular%"+ref.Number+"%")
	case CatForm:
		return r.store.FindParentByIDPattern(ctx, governance.DocForm, "%"+ref.Number+"%")
	case CatSchedule:
		return r.store.FindParentByIDPattern(ctx, governance.DocSchedule, "%schedule%"+ref.Number+"%")
	default:
		return nil, nil
	}
}
