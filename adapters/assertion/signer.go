package assertion

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/rampgate/adapters/keys"
	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/ports"
)

// TTL is the validity window the provider requires for authentication
// assertions. Assertions are consumed near-instantaneously; the short window
// plus the per-call nonce prevents replay.
const TTL = 120 * time.Second

// Signer builds and signs ES256 assertions addressed to the provider token
// endpoint. The signing algorithm is fixed by the provider contract; there
// is no downgrade path.
type Signer struct {
	key      keys.SigningKey
	audience string
}

// NewSigner creates an assertion signer for the given normalized key and
// token-endpoint audience.
func NewSigner(key keys.SigningKey, audience string) ports.AssertionSigner {
	return &Signer{key: key, audience: audience}
}

// Sign returns a freshly signed assertion. Issuer and subject are both the
// provider-assigned key identifier; not-before and issued-at are now, expiry
// is now plus TTL.
func (s *Signer) Sign() (string, error) {
	nonce, err := generateNonce(16)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrSigningFailed, err)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.key.ID,
			Subject:   s.key.ID,
			Audience:  jwt.ClaimStrings{s.audience},
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Nonce: nonce,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signed, err := token.SignedString(s.key.Key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrSigningFailed, err)
	}

	return signed, nil
}

// generateNonce generates a secure random nonce of the specified byte length.
func generateNonce(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
