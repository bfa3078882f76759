package fallback

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/ports"
	"github.com/shopspring/decimal"
)

// TTL is the validity window for degraded tokens. Deliberately shorter than
// the provider's own session policy: a degraded credential should not
// outlive the outage that produced it by much.
const TTL = 30 * time.Minute

const audience = "onramp:fallback"

// Issuer mints locally signed degraded session tokens. The symmetric secret
// is distinct from the asymmetric provider key; these tokens are only
// accepted by this application's own downstream code, never by the provider.
type Issuer struct {
	secret []byte
}

// NewIssuer creates a fallback issuer with the configured symmetric secret.
func NewIssuer(secret []byte) ports.FallbackIssuer {
	return &Issuer{secret: secret}
}

// Issue builds a degraded token carrying the session parameters. It has no
// external dependency and always succeeds short of a broken JWT encoder.
func (i *Issuer) Issue(params core.SessionParameters) (core.SessionToken, error) {
	id := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   params.DestinationWallet,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        id,
		},
		Degraded:       true,
		Wallet:         params.DestinationWallet,
		Assets:         params.Assets,
		DefaultAsset:   params.DefaultAsset,
		DefaultNetwork: params.DefaultNetwork,
		PartnerUserID:  params.PartnerUserID,
		RedirectURL:    params.RedirectURL,
	}
	if params.HasPresetFiat() {
		claims.PresetFiatAmount = params.PresetFiatAmount.String()
		claims.FiatCurrency = params.FiatCurrency
	} else if params.HasPresetCrypto() {
		claims.PresetCryptoAmount = params.PresetCryptoAmount.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return core.SessionToken{}, fmt.Errorf("failed to sign fallback token: %w", err)
	}

	return core.SessionToken{Value: signed, Degraded: true, SessionID: id}, nil
}

// Parse verifies a degraded token and returns the embedded session. Only
// HS256 tokens with the fallback audience are accepted.
func (i *Issuer) Parse(tokenStr string) (*core.FallbackSession, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithAudience(audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	params := core.SessionParameters{
		DestinationWallet: claims.Wallet,
		Assets:            claims.Assets,
		DefaultAsset:      claims.DefaultAsset,
		DefaultNetwork:    claims.DefaultNetwork,
		FiatCurrency:      claims.FiatCurrency,
		PartnerUserID:     claims.PartnerUserID,
		RedirectURL:       claims.RedirectURL,
	}
	if claims.PresetFiatAmount != "" {
		amount, err := decimal.NewFromString(claims.PresetFiatAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad fiat amount claim", core.ErrInvalidToken)
		}
		params.PresetFiatAmount = amount
	}
	if claims.PresetCryptoAmount != "" {
		amount, err := decimal.NewFromString(claims.PresetCryptoAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad crypto amount claim", core.ErrInvalidToken)
		}
		params.PresetCryptoAmount = amount
	}

	return &core.FallbackSession{
		ID:        claims.ID,
		Params:    params,
		Degraded:  claims.Degraded,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}