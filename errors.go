package rampgate

import "github.com/layer-3/rampgate/core"

// Sentinel errors re-exported for embedding callers.
var (
	// ErrInvalidKeyMaterial indicates a configuration defect; fatal at
	// startup, never retried and never silently reconstructed.
	ErrInvalidKeyMaterial = core.ErrInvalidKeyMaterial

	// ErrInvalidSessionParameters is returned synchronously before any
	// signing or network work.
	ErrInvalidSessionParameters = core.ErrInvalidSessionParameters

	// ErrMissingSessionToken is a caller programming error when building a
	// redirect URL without any token.
	ErrMissingSessionToken = core.ErrMissingSessionToken

	// ErrInvalidToken is returned when a fallback token fails verification.
	ErrInvalidToken = core.ErrInvalidToken

	// ErrTokenExpired is returned when a fallback token is past its window.
	ErrTokenExpired = core.ErrTokenExpired
)
