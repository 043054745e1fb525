package lexgov

import (
	"context"
	"fmt"
	"sync"

	"lexgov/governance"
	"lexgov/store"
)

// variantCounters disambiguates multiple source files mapping to the same
// section and document type. Counters are seeded from the store on first use
// so restarts continue the numbering instead of colliding with existing IDs.
type variantCounters struct {
	mu     sync.Mutex
	store  *store.Store
	counts map[string]int
}

func newVariantCounters(s *store.Store) *variantCounters {
	return &variantCounters{store: s, counts: make(map[string]int)}
}

// next returns the next variant number for a statute, document type, and
// section. The mutex is held only for the increment; the seed query runs at
// most once per key.
func (v *variantCounters) next(ctx context.Context, statute string, docType governance.DocumentType, section string) (int, error) {
	key := fmt.Sprintf("%s_%s_%s", statute, docType, section)

	v.mu.Lock()
	defer v.mu.Unlock()

	n, ok := v.counts[key]
	if !ok {
		existing, err := v.store.CountParentVariants(ctx, statute, docType, section)
		if err != nil {
			return 0, fmt.Errorf("seeding variant counter: %w", err)
		}
		n = existing
	}
	n++
	v.counts[key] = n
	return n, nil
}
