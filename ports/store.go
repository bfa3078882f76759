package ports

import (
	"context"
	"time"

	"github.com/layer-3/rampgate/core"
)

// Store keeps track of sessions issued against a degraded fallback token so
// they can be reconciled manually before purchased content is released.
type Store interface {
	RecordDegraded(ctx context.Context, sessionID string, record core.DegradedRecord, ttl time.Duration) error
	GetDegraded(ctx context.Context, sessionID string) (core.DegradedRecord, bool, error)
}
