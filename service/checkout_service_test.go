package service

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/layer-3/rampgate/adapters/fallback"
	"github.com/layer-3/rampgate/adapters/store"
	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/redirect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testWallet = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"

var testSecret = []byte("fallback-secret")

type stubSigner struct {
	assertion string
	err       error
	calls     int
}

func (s *stubSigner) Sign() (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.assertion, nil
}

type stubExchanger struct {
	token core.SessionToken
	err   error
	calls int
}

func (s *stubExchanger) Exchange(ctx context.Context, assertion string, params core.SessionParameters) (core.SessionToken, error) {
	s.calls++
	if s.err != nil {
		return core.SessionToken{}, s.err
	}
	return s.token, nil
}

type stubPublisher struct {
	sessionIDs []string
	reasons    []string
}

func (p *stubPublisher) PublishDegraded(ctx context.Context, sessionID, wallet, reason string) error {
	p.sessionIDs = append(p.sessionIDs, sessionID)
	p.reasons = append(p.reasons, reason)
	return nil
}

func testParams() core.SessionParameters {
	return core.SessionParameters{
		DestinationWallet: testWallet,
		Assets:            []string{"USDC"},
		DefaultNetwork:    "base",
		PresetFiatAmount:  decimal.NewFromInt(25),
		FiatCurrency:      "USD",
		PartnerUserID:     "user-42",
	}
}

func newTestService(signer *stubSigner, exchanger *stubExchanger, publisher *stubPublisher) *CheckoutService {
	return NewCheckoutService(
		signer,
		exchanger,
		fallback.NewIssuer(testSecret),
		redirect.NewBuilder(core.EnvironmentSandbox),
		store.NewMemoryStore(),
		publisher,
		"",
		nil,
	)
}

func TestCreateSessionProviderToken(t *testing.T) {
	signer := &stubSigner{assertion: "signed-assertion"}
	exchanger := &stubExchanger{token: core.SessionToken{Value: "provider-token"}}
	svc := newTestService(signer, exchanger, &stubPublisher{})

	result, err := svc.CreateSession(context.Background(), testParams(), core.DisplayParameters{})
	require.NoError(t, err)

	require.False(t, result.Degraded)
	require.Empty(t, result.SessionID)
	require.Equal(t, uint64(0), svc.DegradedCount())

	parsed, err := url.Parse(result.URL)
	require.NoError(t, err)
	require.Equal(t, "provider-token", parsed.Query().Get("sessionToken"))
}

// Provider unreachable: the flow must still return a usable URL whose
// embedded token introspects as degraded, with the fiat preset intact.
func TestCreateSessionProviderUnreachable(t *testing.T) {
	signer := &stubSigner{assertion: "signed-assertion"}
	exchanger := &stubExchanger{err: fmt.Errorf("%w: context deadline exceeded", core.ErrExchangeTimeout)}
	publisher := &stubPublisher{}
	svc := newTestService(signer, exchanger, publisher)

	result, err := svc.CreateSession(context.Background(), testParams(), core.DisplayParameters{})
	require.NoError(t, err)
	require.True(t, result.Degraded)
	require.NotEmpty(t, result.SessionID)
	require.Equal(t, uint64(1), svc.DegradedCount())

	parsed, err := url.Parse(result.URL)
	require.NoError(t, err)
	require.Equal(t, "pay-sandbox.coinbase.com", parsed.Host)

	query := parsed.Query()
	require.Equal(t, "25", query.Get("presetFiatAmount"))
	require.Equal(t, "USD", query.Get("fiatCurrency"))
	require.False(t, query.Has("presetCryptoAmount"))
	require.Equal(t, "user-42", query.Get("partnerUserId"))

	session, err := fallback.NewIssuer(testSecret).Parse(query.Get("sessionToken"))
	require.NoError(t, err)
	require.True(t, session.Degraded)
	require.Equal(t, result.SessionID, session.ID)

	require.Equal(t, []string{result.SessionID}, publisher.sessionIDs)
	require.Equal(t, []string{"token exchange timed out"}, publisher.reasons)
}

func TestCreateSessionSigningFailure(t *testing.T) {
	signer := &stubSigner{err: core.ErrSigningFailed}
	exchanger := &stubExchanger{}
	svc := newTestService(signer, exchanger, &stubPublisher{})

	result, err := svc.CreateSession(context.Background(), testParams(), core.DisplayParameters{})
	require.NoError(t, err)
	require.True(t, result.Degraded)
	// No exchange attempt is possible without an assertion.
	require.Zero(t, exchanger.calls)
}

func TestCreateSessionWithoutProviderCredentials(t *testing.T) {
	svc := NewCheckoutService(
		nil,
		nil,
		fallback.NewIssuer(testSecret),
		redirect.NewBuilder(core.EnvironmentSandbox),
		store.NewMemoryStore(),
		nil,
		"",
		nil,
	)

	result, err := svc.CreateSession(context.Background(), testParams(), core.DisplayParameters{})
	require.NoError(t, err)
	require.True(t, result.Degraded)
}

func TestCreateSessionAppliesDefaultRedirectURL(t *testing.T) {
	svc := NewCheckoutService(
		&stubSigner{assertion: "signed-assertion"},
		&stubExchanger{token: core.SessionToken{Value: "provider-token"}},
		fallback.NewIssuer(testSecret),
		redirect.NewBuilder(core.EnvironmentSandbox),
		store.NewMemoryStore(),
		nil,
		"https://example.com/return",
		nil,
	)

	result, err := svc.CreateSession(context.Background(), testParams(), core.DisplayParameters{})
	require.NoError(t, err)

	parsed, err := url.Parse(result.URL)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/return", parsed.Query().Get("redirectUrl"))

	// An explicit redirect URL wins over the configured default.
	params := testParams()
	params.RedirectURL = "https://partner.example/return"
	result, err = svc.CreateSession(context.Background(), params, core.DisplayParameters{})
	require.NoError(t, err)

	parsed, err = url.Parse(result.URL)
	require.NoError(t, err)
	require.Equal(t, "https://partner.example/return", parsed.Query().Get("redirectUrl"))
}

func TestCreateSessionValidatesBeforeNetworkWork(t *testing.T) {
	signer := &stubSigner{assertion: "signed-assertion"}
	exchanger := &stubExchanger{token: core.SessionToken{Value: "provider-token"}}
	svc := newTestService(signer, exchanger, &stubPublisher{})

	params := testParams()
	params.DestinationWallet = ""

	_, err := svc.CreateSession(context.Background(), params, core.DisplayParameters{})
	require.ErrorIs(t, err, core.ErrInvalidSessionParameters)
	require.Zero(t, signer.calls)
	require.Zero(t, exchanger.calls)
}

func TestConfirmDegraded(t *testing.T) {
	signer := &stubSigner{assertion: "signed-assertion"}
	exchanger := &stubExchanger{err: core.ErrExchangeRejected}
	svc := newTestService(signer, exchanger, &stubPublisher{})

	result, err := svc.CreateSession(context.Background(), testParams(), core.DisplayParameters{})
	require.NoError(t, err)

	parsed, err := url.Parse(result.URL)
	require.NoError(t, err)

	session, err := svc.ConfirmDegraded(context.Background(), parsed.Query().Get("sessionToken"))
	require.NoError(t, err)
	require.Equal(t, result.SessionID, session.ID)
	require.Equal(t, testWallet, session.Params.DestinationWallet)
	require.True(t, session.Degraded)
}

func TestConfirmDegradedRejectsGarbage(t *testing.T) {
	svc := newTestService(&stubSigner{}, &stubExchanger{}, &stubPublisher{})

	_, err := svc.ConfirmDegraded(context.Background(), "not-a-token")
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestDegradedSessionIsRecorded(t *testing.T) {
	degradedStore := store.NewMemoryStore()
	svc := NewCheckoutService(
		&stubSigner{assertion: "signed-assertion"},
		&stubExchanger{err: core.ErrExchangeTimeout},
		fallback.NewIssuer(testSecret),
		redirect.NewBuilder(core.EnvironmentSandbox),
		degradedStore,
		nil,
		"",
		nil,
	)

	result, err := svc.CreateSession(context.Background(), testParams(), core.DisplayParameters{})
	require.NoError(t, err)

	record, found, err := degradedStore.GetDegraded(context.Background(), result.SessionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, testWallet, record.Wallet)
	require.Equal(t, "token exchange timed out", record.Reason)
}
