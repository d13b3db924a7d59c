package cache

import (
	"context"

	"github.com/mikepea/daybook/pkg/daybook/models"
)

// EphemeralBackend is the in-memory-only Backend: persistence is a
// no-op and fetches against stable storage always come back empty, so
// the process leaves no local footprint. Data lives solely in the
// cache's object graph for the lifetime of the process.
type EphemeralBackend struct{}

// NewEphemeralBackend returns the no-op backend.
func NewEphemeralBackend() *EphemeralBackend {
	return &EphemeralBackend{}
}

func (*EphemeralBackend) FetchEntries(context.Context) ([]*models.Entry, error) { return nil, nil }

func (*EphemeralBackend) FetchTags(context.Context) ([]*models.Tag, error) { return nil, nil }

func (*EphemeralBackend) FetchLinks(context.Context) ([]*models.Link, error) { return nil, nil }

func (*EphemeralBackend) FetchQueries(context.Context) ([]*models.Query, error) { return nil, nil }

func (*EphemeralBackend) FetchQueryResults(context.Context) ([]*models.QueryResult, error) {
	return nil, nil
}

func (*EphemeralBackend) Persist(context.Context, *ChangeSet) error { return nil }

func (*EphemeralBackend) Close() error { return nil }
