// Package sync orchestrates reconciliation between the local cache and
// the remote journal service: a periodic full pull plus on-demand save,
// delete and search operations.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mikepea/daybook/pkg/daybook/cache"
	"github.com/mikepea/daybook/pkg/daybook/models"
	"github.com/mikepea/daybook/pkg/daybook/remote"
	"github.com/mikepea/daybook/pkg/daybook/tags"
)

// Engine is the synchronization engine. On-demand operations may run
// concurrently with a sync in progress; the cache serializes the
// underlying mutations.
type Engine struct {
	cache      *cache.Cache
	store      remote.Store
	reconciler *tags.Reconciler
	log        zerolog.Logger

	mu            sync.Mutex
	syncing       bool
	lastSyncError string
}

// NewEngine creates an engine over the given cache and remote store.
func NewEngine(c *cache.Cache, store remote.Store, logger zerolog.Logger) *Engine {
	return &Engine{
		cache:      c,
		store:      store,
		reconciler: tags.NewReconciler(c),
		log:        logger,
	}
}

// Syncing reports whether a full sync is in progress.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}

// LastSyncError returns the last sync failure's description, or the
// empty string if the most recent sync succeeded.
func (e *Engine) LastSyncError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSyncError
}

// SyncAll runs one full pull from the remote store. A call while a sync
// is already running is a no-op. On failure the run aborts, the error
// is recorded, and the next scheduled run retries from scratch.
func (e *Engine) SyncAll(ctx context.Context) error {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		return nil
	}
	e.syncing = true
	e.mu.Unlock()

	err := e.syncAll(ctx)

	e.mu.Lock()
	e.syncing = false
	if err != nil {
		e.lastSyncError = err.Error()
	} else {
		e.lastSyncError = ""
	}
	e.mu.Unlock()

	if err != nil {
		e.log.Error().Err(err).Msg("Sync aborted")
	}
	return err
}

// syncAll is the three-phase pull: merge entries, merge tags, then
// reconcile the links of every entry the merge touched. Each phase
// persists before the next starts; persistence runs detached from the
// caller's cancellation so shutdown cannot drop a merge already pulled
// from the remote.
func (e *Engine) syncAll(ctx context.Context) error {
	logs, err := e.store.ListLogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch remote entries: %w", err)
	}

	merged := make([]tags.Item, 0, len(logs))
	for _, p := range logs {
		entry := p.Entry()
		if !e.cache.MergeEntry(entry) {
			// Local copy is as new or newer; never discard local edits.
			continue
		}
		merged = append(merged, tags.Item{Entry: entry, Names: p.TagNames()})
	}
	if err := e.cache.Save(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to persist merged entries: %w", err)
	}

	remoteTags, err := e.store.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch remote tags: %w", err)
	}
	for _, tp := range remoteTags {
		// Unlike entries, tags carry no local-edit protection: name and
		// color come from the remote on every sync.
		e.cache.OverwriteTag(tp.Tag())
	}
	if err := e.cache.Save(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to persist merged tags: %w", err)
	}

	if len(merged) > 0 {
		if err := e.reconciler.ReconcileAll(merged); err != nil {
			return fmt.Errorf("failed to reconcile links for pulled entries: %w", err)
		}
		if err := e.cache.Save(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("failed to persist reconciled links: %w", err)
		}
	}

	e.log.Debug().
		Int("remote_entries", len(logs)).
		Int("merged_entries", len(merged)).
		Int("remote_tags", len(remoteTags)).
		Msg("Sync completed")
	return nil
}

// PerformSearch runs a remote search and records its provenance: one
// Query row plus a QueryResult per hit whose entry exists locally. If
// the remote call fails the Query is discarded, so no orphan rows
// survive a failed search.
func (e *Engine) PerformSearch(ctx context.Context, queryText string) (*models.Query, error) {
	q := models.NewQuery(queryText)
	e.cache.PutQuery(q)

	resp, err := e.store.Search(ctx, queryText)
	if err != nil {
		e.cache.RemoveQuery(q.ID)
		return nil, fmt.Errorf("search failed: %w", err)
	}

	kept := 0
	for _, hit := range resp.Results {
		if _, ok := e.cache.Entry(hit.LogID); !ok {
			e.log.Warn().Str("entry_id", hit.LogID.String()).Msg("Search hit references unknown entry, skipping")
			continue
		}
		r := models.NewQueryResult(q.ID, hit.LogID, hit.Rank)
		r.RelevanceScore = hit.RelevanceScore
		r.SnippetText = hit.SnippetText
		r.SnippetStartIndex = hit.SnippetStartIndex
		r.SnippetEndIndex = hit.SnippetEndIndex
		r.ContextBefore = hit.ContextBefore
		r.ContextAfter = hit.ContextAfter
		e.cache.PutQueryResult(r)
		kept++
	}

	// Summary fields land on a fresh copy; the already-published Query
	// is never written again.
	final := *q
	final.ExecutionTime = resp.ExecutionTime
	final.ResultCount = kept
	e.cache.PutQuery(&final)

	if err := e.cache.Save(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("failed to persist search results: %w", err)
	}
	return &final, nil
}

// SaveEntry applies new content to the entry with the given id,
// creating the entry if the id is unknown (or uuid.Nil). The write goes
// through to the remote store before the local commit: if the remote
// rejects it, the local mutation is rolled back and the save fails, so
// the cache never holds content the remote did not accept.
func (e *Engine) SaveEntry(ctx context.Context, id uuid.UUID, content string) (*models.Entry, error) {
	snapshot, entry, ok := e.cache.UpdateEntry(id, func(en *models.Entry) {
		en.SetContent(content, time.Now().UTC())
	})
	isNew := !ok
	if isNew {
		fresh := models.NewEntry(content)
		e.cache.PutEntry(fresh)
		entry = *fresh
	}

	if err := e.reconciler.Reconcile(&entry, tags.Names(entry.Content)); err != nil {
		e.rollbackEntry(entry.ID, isNew, snapshot)
		return nil, err
	}

	payload := remote.LogFromEntry(&entry, e.cache.TagsForEntry(entry.ID))
	var remoteErr error
	if isNew {
		_, remoteErr = e.store.CreateLog(ctx, payload)
	} else {
		remoteErr = e.store.UpdateLog(ctx, payload)
	}
	if remoteErr != nil {
		e.rollbackEntry(entry.ID, isNew, snapshot)
		return nil, fmt.Errorf("remote rejected entry %s: %w", entry.ID, remoteErr)
	}

	if err := e.cache.Save(context.WithoutCancel(ctx)); err != nil {
		if isNew {
			// The remote accepted it, but we could not store it; drop
			// the in-memory entity and let the next sync pull it back.
			e.cache.RemoveEntry(entry.ID)
		}
		return nil, fmt.Errorf("failed to persist entry %s: %w", entry.ID, err)
	}
	return &entry, nil
}

// rollbackEntry undoes an in-memory save: a new entry is discarded, an
// edited entry is restored to its pre-edit snapshot and its links are
// converged back to the old content's tags.
func (e *Engine) rollbackEntry(id uuid.UUID, isNew bool, snapshot models.Entry) {
	if isNew {
		e.cache.RemoveEntry(id)
		return
	}
	restored := snapshot
	e.cache.PutEntry(&restored)
	if err := e.reconciler.Reconcile(&restored, tags.Names(restored.Content)); err != nil {
		e.log.Error().Err(err).Str("entry_id", id.String()).Msg("Failed to restore links after rollback")
	}
}

// DeleteEntry removes an entry remotely and then locally, links
// included. The remote delete happens first so the cache never drops an
// entry the remote still considers live.
func (e *Engine) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if _, ok := e.cache.Entry(id); !ok {
		return cache.ErrNotFound
	}
	if err := e.store.DeleteLog(ctx, id); err != nil {
		return fmt.Errorf("remote rejected delete of entry %s: %w", id, err)
	}
	e.cache.RemoveEntry(id)
	if err := e.cache.Save(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to persist delete of entry %s: %w", id, err)
	}
	return nil
}
