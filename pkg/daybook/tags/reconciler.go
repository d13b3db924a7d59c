package tags

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mikepea/daybook/pkg/daybook/cache"
	"github.com/mikepea/daybook/pkg/daybook/models"
)

// Reconciler converges an entry's link set to its desired tag names.
// Reconciliation is convergent rather than atomic: a failure may leave
// links partially applied, and a subsequent call with the same input
// reaches the correct set.
type Reconciler struct {
	cache *cache.Cache
}

// NewReconciler creates a reconciler over the given cache.
func NewReconciler(c *cache.Cache) *Reconciler {
	return &Reconciler{cache: c}
}

// Item pairs one entry with the tag names its content currently
// carries.
type Item struct {
	Entry *models.Entry
	Names []string
}

// Reconcile converges a single entry's links to the desired names.
func (r *Reconciler) Reconcile(entry *models.Entry, names []string) error {
	return r.ReconcileAll([]Item{{Entry: entry, Names: names}})
}

// ReconcileAll converges a batch of entries with a single
// existing-associations lookup and one shared find-or-create set, so
// one call can never create two tags with case-equal names. Each link
// creation re-checks the (entry, tag) pair, keeping the at-most-one
// invariant under retries and concurrent reconciles.
func (r *Reconciler) ReconcileAll(items []Item) error {
	entryIDs := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		entryIDs = append(entryIDs, it.Entry.ID)
	}
	existing := r.cache.LinksForEntries(entryIDs)

	// Tags resolved so far in this batch, keyed by folded name.
	resolved := make(map[string]*models.Tag)

	for _, it := range items {
		target := make(map[uuid.UUID]struct{})
		for _, raw := range it.Names {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			folded := strings.ToLower(name)
			tag, ok := resolved[folded]
			if !ok {
				tag, _ = r.cache.FindOrCreateTag(name)
				resolved[folded] = tag
			}
			target[tag.ID] = struct{}{}
		}

		current := existing[it.Entry.ID]
		have := make(map[uuid.UUID]struct{}, len(current))
		for _, l := range current {
			have[l.TagID] = struct{}{}
			if _, ok := target[l.TagID]; !ok {
				r.cache.RemoveLink(l.ID)
			}
		}
		for tagID := range target {
			if _, ok := have[tagID]; ok {
				continue
			}
			if _, err := r.cache.AddLink(it.Entry.ID, tagID); err != nil {
				return fmt.Errorf("failed to link entry %s to tag %s: %w", it.Entry.ID, tagID, err)
			}
		}
	}
	return nil
}
