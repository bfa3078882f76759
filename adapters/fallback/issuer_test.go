package fallback

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/rampgate/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("fallback-signing-secret")

func testParams(t *testing.T) core.SessionParameters {
	t.Helper()
	params := core.SessionParameters{
		DestinationWallet: "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		Assets:            []string{"USDC"},
		DefaultNetwork:    "base",
		PresetFiatAmount:  decimal.NewFromInt(25),
		FiatCurrency:      "USD",
		PartnerUserID:     "user-42",
		RedirectURL:       "https://market.example.com/checkout/done",
	}
	require.NoError(t, params.Normalize())
	return params
}

func TestIssueRoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret)
	params := testParams(t)

	token, err := issuer.Issue(params)
	require.NoError(t, err)
	require.True(t, token.Degraded)
	require.NotEmpty(t, token.SessionID)
	require.NotEmpty(t, token.Value)

	session, err := issuer.Parse(token.Value)
	require.NoError(t, err)

	require.True(t, session.Degraded)
	require.Equal(t, token.SessionID, session.ID)
	require.Equal(t, params.DestinationWallet, session.Params.DestinationWallet)
	require.Equal(t, params.Assets, session.Params.Assets)
	require.Equal(t, params.DefaultAsset, session.Params.DefaultAsset)
	require.Equal(t, params.DefaultNetwork, session.Params.DefaultNetwork)
	require.True(t, params.PresetFiatAmount.Equal(session.Params.PresetFiatAmount))
	require.Equal(t, params.FiatCurrency, session.Params.FiatCurrency)
	require.True(t, session.Params.PresetCryptoAmount.IsZero())
	require.Equal(t, params.PartnerUserID, session.Params.PartnerUserID)
	require.Equal(t, params.RedirectURL, session.Params.RedirectURL)
}

func TestIssueValidityWindow(t *testing.T) {
	issuer := NewIssuer(testSecret)

	token, err := issuer.Issue(testParams(t))
	require.NoError(t, err)

	session, err := issuer.Parse(token.Value)
	require.NoError(t, err)
	require.Equal(t, TTL, session.ExpiresAt.Sub(session.IssuedAt))
	require.LessOrEqual(t, session.ExpiresAt.Sub(session.IssuedAt), 30*time.Minute)
}

func TestIssueUniqueIDs(t *testing.T) {
	issuer := NewIssuer(testSecret)
	params := testParams(t)

	first, err := issuer.Issue(params)
	require.NoError(t, err)
	second, err := issuer.Issue(params)
	require.NoError(t, err)

	require.NotEqual(t, first.SessionID, second.SessionID)
	require.NotEqual(t, first.Value, second.Value)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer(testSecret).Issue(testParams(t))
	require.NoError(t, err)

	_, err = NewIssuer([]byte("other-secret")).Parse(token.Value)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	now := time.Now().Add(-2 * TTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        "expired-session",
		},
		Degraded: true,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = NewIssuer(testSecret).Parse(raw)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestParseRejectsWrongAudience(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{"session:access"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = NewIssuer(testSecret).Parse(raw)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}
