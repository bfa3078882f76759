package rampgate

import (
	"log/slog"

	"github.com/layer-3/rampgate/adapters/assertion"
	"github.com/layer-3/rampgate/adapters/fallback"
	"github.com/layer-3/rampgate/adapters/keys"
	"github.com/layer-3/rampgate/adapters/provider"
	"github.com/layer-3/rampgate/adapters/store"
	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/ports"
	"github.com/layer-3/rampgate/redirect"
	"github.com/layer-3/rampgate/service"
)

// DefaultTokenEndpoint is the provider's production token-issuance endpoint.
const DefaultTokenEndpoint = "https://api.developer.coinbase.com/onramp/v1/token"

// Options configures an embedded rampgate client.
type Options struct {
	// KeyID is the provider-assigned key identifier.
	KeyID string

	// PrivateKeyPEM is the raw EC private key material, possibly carrying
	// escaped newlines. Normalized once at construction.
	PrivateKeyPEM string

	// FallbackSecret signs degraded fallback tokens. Distinct from the
	// provider key.
	FallbackSecret []byte

	// TokenEndpoint overrides DefaultTokenEndpoint.
	TokenEndpoint string

	// Environment selects the sandbox or production checkout host.
	Environment Environment

	// Store records degraded sessions for reconciliation. Defaults to an
	// in-memory store.
	Store ports.Store

	// Events receives degraded-mode notifications. Optional.
	Events ports.EventPublisher

	// DefaultRedirectURL is used when session parameters carry no
	// redirect-after-completion URL. Optional.
	DefaultRedirectURL string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// New wires a Client from options. Invalid key material is returned as an
// error so callers can fail startup; it is never silently reconstructed.
func New(opts Options) (Client, error) {
	signingKey, err := keys.Normalize(opts.KeyID, opts.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}

	endpoint := opts.TokenEndpoint
	if endpoint == "" {
		endpoint = DefaultTokenEndpoint
	}
	env := opts.Environment
	if env == "" {
		env = core.EnvironmentProduction
	}
	degradedStore := opts.Store
	if degradedStore == nil {
		degradedStore = store.NewMemoryStore()
	}

	return service.NewCheckoutService(
		assertion.NewSigner(signingKey, endpoint),
		provider.NewClient(endpoint),
		fallback.NewIssuer(opts.FallbackSecret),
		redirect.NewBuilder(env),
		degradedStore,
		opts.Events,
		opts.DefaultRedirectURL,
		opts.Logger,
	), nil
}
