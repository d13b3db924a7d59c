package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/mikepea/daybook/pkg/daybook/models"
)

// ChangeSet is one batch of pending mutations handed to a Backend.
// Tags carry no deletion list: tags are never deleted, only entries,
// links and queries are.
type ChangeSet struct {
	Entries      []*models.Entry
	Tags         []*models.Tag
	Links        []*models.Link
	Queries      []*models.Query
	QueryResults []*models.QueryResult

	DeletedEntries      []uuid.UUID
	DeletedLinks        []uuid.UUID
	DeletedQueries      []uuid.UUID
	DeletedQueryResults []uuid.UUID
}

// Empty reports whether the change set contains no work.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Entries) == 0 && len(cs.Tags) == 0 && len(cs.Links) == 0 &&
		len(cs.Queries) == 0 && len(cs.QueryResults) == 0 &&
		len(cs.DeletedEntries) == 0 && len(cs.DeletedLinks) == 0 &&
		len(cs.DeletedQueries) == 0 && len(cs.DeletedQueryResults) == 0
}

// Backend is the persistence capability behind the cache. The durable
// implementation commits to stable storage; the ephemeral one keeps
// everything in memory by doing nothing. Both sit under the same
// in-memory object graph, so switching backends never migrates data —
// it only changes where subsequent writes land.
type Backend interface {
	FetchEntries(ctx context.Context) ([]*models.Entry, error)
	FetchTags(ctx context.Context) ([]*models.Tag, error)
	FetchLinks(ctx context.Context) ([]*models.Link, error)
	FetchQueries(ctx context.Context) ([]*models.Query, error)
	FetchQueryResults(ctx context.Context) ([]*models.QueryResult, error)
	Persist(ctx context.Context, cs *ChangeSet) error
	Close() error
}
