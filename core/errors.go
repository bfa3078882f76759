package core

import "errors"

var (
	ErrInvalidKeyMaterial        = errors.New("invalid key material")
	ErrSigningFailed             = errors.New("assertion signing failed")
	ErrExchangeTimeout           = errors.New("token exchange timed out")
	ErrExchangeRejected          = errors.New("token exchange rejected")
	ErrExchangeMalformedResponse = errors.New("malformed token exchange response")
	ErrMissingSessionToken       = errors.New("missing session token")
	ErrInvalidSessionParameters  = errors.New("invalid session parameters")
	ErrInvalidToken              = errors.New("invalid token")
	ErrTokenExpired              = errors.New("token has expired")
	ErrStoreOperationFailed      = errors.New("store operation failed")
)
