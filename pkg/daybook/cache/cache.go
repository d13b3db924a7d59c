// Package cache holds the in-process object graph of entries, tags,
// links and queries, with persistence delegated to a pluggable
// Backend. All mutations run inside a single critical section so
// concurrent callers never observe a half-applied state.
package cache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mikepea/daybook/pkg/daybook/models"
)

var ErrNotFound = errors.New("cache: not found")

// Cache is the local cache. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	backend Backend

	entries map[uuid.UUID]*models.Entry
	tags    map[uuid.UUID]*models.Tag
	links   map[uuid.UUID]*models.Link
	queries map[uuid.UUID]*models.Query
	results map[uuid.UUID]*models.QueryResult

	dirtyEntries map[uuid.UUID]struct{}
	dirtyTags    map[uuid.UUID]struct{}
	dirtyLinks   map[uuid.UUID]struct{}
	dirtyQueries map[uuid.UUID]struct{}
	dirtyResults map[uuid.UUID]struct{}

	deletedEntries map[uuid.UUID]struct{}
	deletedLinks   map[uuid.UUID]struct{}
	deletedQueries map[uuid.UUID]struct{}
	deletedResults map[uuid.UUID]struct{}
}

// New creates an empty cache over the given backend.
func New(backend Backend) *Cache {
	c := &Cache{backend: backend}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.entries = make(map[uuid.UUID]*models.Entry)
	c.tags = make(map[uuid.UUID]*models.Tag)
	c.links = make(map[uuid.UUID]*models.Link)
	c.queries = make(map[uuid.UUID]*models.Query)
	c.results = make(map[uuid.UUID]*models.QueryResult)
	c.clearPending()
}

func (c *Cache) clearPending() {
	c.dirtyEntries = make(map[uuid.UUID]struct{})
	c.dirtyTags = make(map[uuid.UUID]struct{})
	c.dirtyLinks = make(map[uuid.UUID]struct{})
	c.dirtyQueries = make(map[uuid.UUID]struct{})
	c.dirtyResults = make(map[uuid.UUID]struct{})
	c.deletedEntries = make(map[uuid.UUID]struct{})
	c.deletedLinks = make(map[uuid.UUID]struct{})
	c.deletedQueries = make(map[uuid.UUID]struct{})
	c.deletedResults = make(map[uuid.UUID]struct{})
}

// SetBackend switches the persistence strategy. The in-memory graph
// and any pending changes are kept: existing data is not migrated,
// only subsequent writes are affected.
func (c *Cache) SetBackend(backend Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend = backend
}

// Load materializes the object graph from the backend, replacing
// whatever is in memory. In ephemeral mode the fetches come back empty
// and the graph starts blank.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.backend.FetchEntries(ctx)
	if err != nil {
		return err
	}
	tags, err := c.backend.FetchTags(ctx)
	if err != nil {
		return err
	}
	links, err := c.backend.FetchLinks(ctx)
	if err != nil {
		return err
	}
	queries, err := c.backend.FetchQueries(ctx)
	if err != nil {
		return err
	}
	results, err := c.backend.FetchQueryResults(ctx)
	if err != nil {
		return err
	}

	c.reset()
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	for _, t := range tags {
		c.tags[t.ID] = t
	}
	for _, l := range links {
		c.links[l.ID] = l
	}
	for _, q := range queries {
		c.queries[q.ID] = q
	}
	for _, r := range results {
		c.results[r.ID] = r
	}
	return nil
}

// Save commits pending changes through the backend. It is a no-op
// when nothing is pending. The lock is held across the commit so a
// persisted change set is always a consistent snapshot.
func (c *Cache) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cs := c.changeSet()
	if cs.Empty() {
		return nil
	}
	if err := c.backend.Persist(ctx, cs); err != nil {
		return err
	}
	c.clearPending()
	return nil
}

func (c *Cache) changeSet() *ChangeSet {
	cs := &ChangeSet{}
	for id := range c.dirtyEntries {
		if e, ok := c.entries[id]; ok {
			cs.Entries = append(cs.Entries, e)
		}
	}
	for id := range c.dirtyTags {
		if t, ok := c.tags[id]; ok {
			cs.Tags = append(cs.Tags, t)
		}
	}
	for id := range c.dirtyLinks {
		if l, ok := c.links[id]; ok {
			cs.Links = append(cs.Links, l)
		}
	}
	for id := range c.dirtyQueries {
		if q, ok := c.queries[id]; ok {
			cs.Queries = append(cs.Queries, q)
		}
	}
	for id := range c.dirtyResults {
		if r, ok := c.results[id]; ok {
			cs.QueryResults = append(cs.QueryResults, r)
		}
	}
	for id := range c.deletedEntries {
		cs.DeletedEntries = append(cs.DeletedEntries, id)
	}
	for id := range c.deletedLinks {
		cs.DeletedLinks = append(cs.DeletedLinks, id)
	}
	for id := range c.deletedQueries {
		cs.DeletedQueries = append(cs.DeletedQueries, id)
	}
	for id := range c.deletedResults {
		cs.DeletedQueryResults = append(cs.DeletedQueryResults, id)
	}
	return cs
}

// HasPendingChanges reports whether a Save would write anything.
func (c *Cache) HasPendingChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.changeSet().Empty()
}

// Close releases the backend.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Close()
}

// Entry returns the cached entry with the given id.
func (c *Cache) Entry(id uuid.UUID) (*models.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}

// Entries returns all cached entries, oldest first.
func (c *Cache) Entries() []*models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// PutEntry inserts or updates an entry and marks it for persistence.
func (c *Cache) PutEntry(e *models.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.ID] = e
	c.dirtyEntries[e.ID] = struct{}{}
	delete(c.deletedEntries, e.ID)
}

// UpdateEntry applies fn to the entry with the given id inside the
// cache's critical section. The result is installed as a fresh copy,
// so readers holding the old pointer never observe a partial write.
// Returns the entry's state before and after the mutation.
func (c *Cache) UpdateEntry(id uuid.UUID, fn func(*models.Entry)) (prev, updated models.Entry, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[id]
	if !found {
		return models.Entry{}, models.Entry{}, false
	}
	prev = *e
	work := *e
	fn(&work)
	c.entries[id] = &work
	c.dirtyEntries[id] = struct{}{}
	return prev, work, true
}

// MergeEntry installs a remote copy of an entry unless the local copy
// is as new or newer. The comparison and the install happen in one
// critical section. Returns whether the remote copy won.
func (c *Cache) MergeEntry(e *models.Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if local, ok := c.entries[e.ID]; ok && !e.UpdatedAt.After(local.UpdatedAt) {
		return false
	}
	c.entries[e.ID] = e
	c.dirtyEntries[e.ID] = struct{}{}
	delete(c.deletedEntries, e.ID)
	return true
}

// RemoveEntry discards an entry and its links from the graph and marks
// them for deletion from stable storage.
func (c *Cache) RemoveEntry(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return
	}
	delete(c.entries, id)
	delete(c.dirtyEntries, id)
	c.deletedEntries[id] = struct{}{}
	for lid, l := range c.links {
		if l.EntryID == id {
			delete(c.links, lid)
			delete(c.dirtyLinks, lid)
			c.deletedLinks[lid] = struct{}{}
		}
	}
}

// Tag returns the cached tag with the given id.
func (c *Cache) Tag(id uuid.UUID) (*models.Tag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tags[id]
	return t, ok
}

// Tags returns all cached tags in name order.
func (c *Cache) Tags() []*models.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.Tag, 0, len(c.tags))
	for _, t := range c.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// TagByName finds a tag by case-insensitive name match.
func (c *Cache) TagByName(name string) (*models.Tag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tagByNameLocked(name)
}

func (c *Cache) tagByNameLocked(name string) (*models.Tag, bool) {
	folded := strings.ToLower(name)
	for _, t := range c.tags {
		if strings.ToLower(t.Name) == folded {
			return t, true
		}
	}
	return nil, false
}

// PutTag inserts or updates a tag and marks it for persistence.
func (c *Cache) PutTag(t *models.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[t.ID] = t
	c.dirtyTags[t.ID] = struct{}{}
}

// OverwriteTag applies a remote tag's fields. An unknown id is
// inserted; a known one gets its name and color replaced on a fresh
// copy, keeping the local CreatedAt.
func (c *Cache) OverwriteTag(t *models.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if local, ok := c.tags[t.ID]; ok {
		merged := *local
		merged.Name = t.Name
		merged.Color = t.Color
		c.tags[t.ID] = &merged
		c.dirtyTags[t.ID] = struct{}{}
		return
	}
	c.tags[t.ID] = t
	c.dirtyTags[t.ID] = struct{}{}
}

// FindOrCreateTag returns the tag whose name matches case-insensitively,
// creating it if absent. Lookup and creation happen in one critical
// section, so concurrent callers cannot create case-equal duplicates.
func (c *Cache) FindOrCreateTag(name string) (*models.Tag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tagByNameLocked(name); ok {
		return t, false
	}
	t := models.NewTag(name)
	c.tags[t.ID] = t
	c.dirtyTags[t.ID] = struct{}{}
	return t, true
}

// Link returns the cached link with the given id.
func (c *Cache) Link(id uuid.UUID) (*models.Link, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.links[id]
	return l, ok
}

// LinksForEntry returns the links owned by one entry.
func (c *Cache) LinksForEntry(entryID uuid.UUID) []*models.Link {
	return c.LinksForEntries([]uuid.UUID{entryID})[entryID]
}

// LinksForEntries returns the links owned by each listed entry in a
// single pass over the link set.
func (c *Cache) LinksForEntries(entryIDs []uuid.UUID) map[uuid.UUID][]*models.Link {
	c.mu.Lock()
	defer c.mu.Unlock()
	want := make(map[uuid.UUID]struct{}, len(entryIDs))
	out := make(map[uuid.UUID][]*models.Link, len(entryIDs))
	for _, id := range entryIDs {
		want[id] = struct{}{}
	}
	for _, l := range c.links {
		if _, ok := want[l.EntryID]; ok {
			out[l.EntryID] = append(out[l.EntryID], l)
		}
	}
	return out
}

// AddLink associates an entry with a tag. If a link for the pair
// already exists it is returned unchanged, so the call is idempotent
// under retry and concurrent reconciles.
func (c *Cache) AddLink(entryID, tagID uuid.UUID) (*models.Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[entryID]; !ok {
		return nil, ErrNotFound
	}
	if _, ok := c.tags[tagID]; !ok {
		return nil, ErrNotFound
	}
	for _, l := range c.links {
		if l.EntryID == entryID && l.TagID == tagID {
			return l, nil
		}
	}
	l := models.NewLink(entryID, tagID)
	c.links[l.ID] = l
	c.dirtyLinks[l.ID] = struct{}{}
	delete(c.deletedLinks, l.ID)
	return l, nil
}

// RemoveLink discards a link.
func (c *Cache) RemoveLink(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.links[id]; !ok {
		return
	}
	delete(c.links, id)
	delete(c.dirtyLinks, id)
	c.deletedLinks[id] = struct{}{}
}

// TagsForEntry returns the tags linked to an entry in name order.
func (c *Cache) TagsForEntry(entryID uuid.UUID) []*models.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*models.Tag
	for _, l := range c.links {
		if l.EntryID != entryID {
			continue
		}
		if t, ok := c.tags[l.TagID]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Query returns the cached query with the given id.
func (c *Cache) Query(id uuid.UUID) (*models.Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queries[id]
	return q, ok
}

// Queries returns all cached queries, newest first.
func (c *Cache) Queries() []*models.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.Query, 0, len(c.queries))
	for _, q := range c.queries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// PutQuery inserts or updates a query and marks it for persistence.
func (c *Cache) PutQuery(q *models.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries[q.ID] = q
	c.dirtyQueries[q.ID] = struct{}{}
	delete(c.deletedQueries, q.ID)
}

// RemoveQuery discards a query and cascades to its results, so a
// failed search leaves no orphan rows behind.
func (c *Cache) RemoveQuery(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.queries[id]; !ok {
		return
	}
	delete(c.queries, id)
	delete(c.dirtyQueries, id)
	c.deletedQueries[id] = struct{}{}
	for rid, r := range c.results {
		if r.QueryID == id {
			delete(c.results, rid)
			delete(c.dirtyResults, rid)
			c.deletedResults[rid] = struct{}{}
		}
	}
}

// PutQueryResult inserts or updates a query result.
func (c *Cache) PutQueryResult(r *models.QueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[r.ID] = r
	c.dirtyResults[r.ID] = struct{}{}
	delete(c.deletedResults, r.ID)
}

// ResultsForQuery returns a query's results ordered by ascending rank.
func (c *Cache) ResultsForQuery(queryID uuid.UUID) []*models.QueryResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*models.QueryResult
	for _, r := range c.results {
		if r.QueryID == queryID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
