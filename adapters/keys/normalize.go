package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/layer-3/rampgate/core"
)

const (
	beginMarker = "-----BEGIN"
	endMarker   = "-----END"

	// Anything shorter than this cannot hold a PEM-encoded EC key; treat it
	// as truncated configuration instead of guessing at reconstruction.
	minPEMLength = 64
)

// SigningKey is canonical EC private key material plus the provider-assigned
// key identifier. Loaded once at startup, read-only afterwards.
type SigningKey struct {
	ID  string
	Key *ecdsa.PrivateKey
}

// Normalize turns raw private-key configuration into a canonical P-256
// signing key. The raw value may carry literal `\n` escape sequences instead
// of real line breaks, which happens when multi-line secrets travel through
// env files or deployment tooling.
//
// Diagnostics never include the raw key material.
func Normalize(keyID, raw string) (SigningKey, error) {
	if strings.TrimSpace(keyID) == "" {
		return SigningKey{}, fmt.Errorf("%w: key id is required", core.ErrInvalidKeyMaterial)
	}

	material := strings.ReplaceAll(raw, `\n`, "\n")
	material = strings.TrimSpace(material)

	if material == "" {
		return SigningKey{}, fmt.Errorf("%w: key material is empty", core.ErrInvalidKeyMaterial)
	}
	if !strings.Contains(material, beginMarker) || !strings.Contains(material, endMarker) {
		if len(material) < minPEMLength {
			return SigningKey{}, fmt.Errorf("%w: key material appears truncated (%d bytes, missing PEM markers)", core.ErrInvalidKeyMaterial, len(material))
		}
		return SigningKey{}, fmt.Errorf("%w: key material is missing PEM markers", core.ErrInvalidKeyMaterial)
	}

	block, _ := pem.Decode([]byte(material))
	if block == nil {
		return SigningKey{}, fmt.Errorf("%w: key material is not valid PEM", core.ErrInvalidKeyMaterial)
	}

	key, err := parseECPrivateKey(block)
	if err != nil {
		return SigningKey{}, fmt.Errorf("%w: %v", core.ErrInvalidKeyMaterial, err)
	}
	if key.Curve != elliptic.P256() {
		return SigningKey{}, fmt.Errorf("%w: curve %s is not supported, ES256 requires P-256", core.ErrInvalidKeyMaterial, key.Curve.Params().Name)
	}

	return SigningKey{ID: keyID, Key: key}, nil
}

// parseECPrivateKey accepts both SEC 1 ("EC PRIVATE KEY") and PKCS#8
// ("PRIVATE KEY") encodings.
func parseECPrivateKey(block *pem.Block) (*ecdsa.PrivateKey, error) {
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cannot parse EC private key from %q block", block.Type)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%q block does not contain an EC private key", block.Type)
	}
	return key, nil
}
