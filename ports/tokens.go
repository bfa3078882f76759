package ports

import "github.com/layer-3/rampgate/core"

// AssertionSigner produces signed, short-lived authentication assertions for
// the provider token endpoint. Every call returns a fresh assertion; they
// are never cached or reused.
type AssertionSigner interface {
	Sign() (string, error)
}

// FallbackIssuer mints and introspects locally signed degraded session
// tokens used when the provider exchange is unavailable.
type FallbackIssuer interface {
	Issue(params core.SessionParameters) (core.SessionToken, error)
	Parse(token string) (*core.FallbackSession, error)
}
