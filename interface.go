// Package rampgate issues onramp-provider session credentials and builds the
// checkout redirect URLs a marketplace sends its users to. The flow signs an
// ES256 authentication assertion, exchanges it at the provider's token
// endpoint and degrades to a locally signed fallback token when the exchange
// is unavailable.
package rampgate

import (
	"context"

	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/service"
)

// Re-exported domain types so embedding callers only need this package.
type (
	Environment       = core.Environment
	SessionParameters = core.SessionParameters
	DisplayParameters = core.DisplayParameters
	FallbackSession   = core.FallbackSession
	CheckoutResult    = service.CheckoutResult
)

const (
	EnvironmentSandbox    = core.EnvironmentSandbox
	EnvironmentProduction = core.EnvironmentProduction
)

// Client is the inbound interface the marketplace checkout controller calls.
type Client interface {
	// CreateSession runs the issuance flow and returns the redirect URL.
	// It always succeeds short of invalid session parameters; provider
	// outages surface only as Degraded=true on the result.
	CreateSession(ctx context.Context, params SessionParameters, display DisplayParameters) (CheckoutResult, error)

	// ConfirmDegraded introspects a fallback token presented after the
	// redirect completes. Callers must gate content release on the
	// degraded marker.
	ConfirmDegraded(ctx context.Context, token string) (*FallbackSession, error)

	// DegradedCount reports sessions issued in degraded mode since startup.
	DegradedCount() uint64
}
