package remote

import (
	"context"

	"github.com/google/uuid"
)

// Bypass implements Store without a network: every call succeeds with
// empty or echoed results. Used when the process is configured to skip
// the remote service entirely.
type Bypass struct{}

// NewBypass returns the no-network store.
func NewBypass() *Bypass {
	return &Bypass{}
}

func (*Bypass) CreateLog(_ context.Context, log *LogPayload) (*LogPayload, error) {
	return log, nil
}

func (*Bypass) UpdateLog(context.Context, *LogPayload) error { return nil }

func (*Bypass) DeleteLog(context.Context, uuid.UUID) error { return nil }

func (*Bypass) ListLogs(context.Context) ([]*LogPayload, error) { return nil, nil }

func (*Bypass) CreateTag(_ context.Context, tag TagPayload) (*TagPayload, error) {
	return &tag, nil
}

func (*Bypass) ListTags(context.Context) ([]TagPayload, error) { return nil, nil }

func (*Bypass) Search(_ context.Context, query string) (*SearchResponse, error) {
	return &SearchResponse{Query: query}, nil
}
