package ports

import (
	"context"

	"github.com/layer-3/rampgate/core"
)

// Exchanger trades a signed assertion for a provider-issued session token.
// Failures are recoverable from the caller's point of view: the orchestrator
// falls back to a locally issued token rather than failing the checkout.
type Exchanger interface {
	Exchange(ctx context.Context, assertion string, params core.SessionParameters) (core.SessionToken, error)
}
