package ports

import "context"

// EventPublisher notifies the rest of the marketplace about degraded-mode
// issuance so affected orders can be flagged for manual review.
type EventPublisher interface {
	PublishDegraded(ctx context.Context, sessionID, wallet, reason string) error
}
