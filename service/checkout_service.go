package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/ports"
	"github.com/layer-3/rampgate/redirect"
)

// degradedRecordTTL is how long a degraded session stays visible for manual
// reconciliation. Longer than the fallback token's own validity so operators
// can still inspect sessions whose token already expired.
const degradedRecordTTL = 24 * time.Hour

// CheckoutService orchestrates session-credential issuance: sign an
// assertion, exchange it at the provider, fall back to a locally signed
// degraded token on any recoverable failure, then build the redirect URL.
//
// The flow has no unrecoverable terminal state: it always produces a usable
// URL, differing only in trust level.
type CheckoutService struct {
	signer    ports.AssertionSigner
	exchanger ports.Exchanger
	fallback  ports.FallbackIssuer
	builder   *redirect.Builder
	store     ports.Store
	events    ports.EventPublisher
	logger    *slog.Logger

	// defaultRedirectURL is applied when a request carries no
	// redirect-after-completion URL of its own.
	defaultRedirectURL string

	degradedCount atomic.Uint64
}

// CheckoutResult is returned to the inbound caller. SessionID is only set
// for degraded sessions; provider tokens are opaque.
type CheckoutResult struct {
	URL       string
	SessionID string
	Degraded  bool
}

// NewCheckoutService wires the orchestrator. signer and exchanger may be nil
// in deployments that deliberately run without provider credentials; every
// session is then issued in degraded mode.
func NewCheckoutService(
	signer ports.AssertionSigner,
	exchanger ports.Exchanger,
	fallback ports.FallbackIssuer,
	builder *redirect.Builder,
	store ports.Store,
	events ports.EventPublisher,
	defaultRedirectURL string,
	logger *slog.Logger,
) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{
		signer:             signer,
		exchanger:          exchanger,
		fallback:           fallback,
		builder:            builder,
		store:              store,
		events:             events,
		defaultRedirectURL: defaultRedirectURL,
		logger:             logger,
	}
}

// CreateSession runs the full issuance flow for one checkout request.
// Parameter validation happens before any signing or network work; its
// errors are the only ones surfaced to the caller besides a missing token
// when building the URL.
func (s *CheckoutService) CreateSession(ctx context.Context, params core.SessionParameters, display core.DisplayParameters) (CheckoutResult, error) {
	if params.RedirectURL == "" {
		params.RedirectURL = s.defaultRedirectURL
	}
	if err := params.Normalize(); err != nil {
		return CheckoutResult{}, err
	}

	token, err := s.obtainToken(ctx, params)
	if err != nil {
		return CheckoutResult{}, err
	}

	url, err := s.builder.Build(token, params, display)
	if err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{
		URL:       url,
		SessionID: token.SessionID,
		Degraded:  token.Degraded,
	}, nil
}

// ConfirmDegraded introspects a fallback token presented after the redirect
// completes. Consumers must treat the session as unreconciled: the token was
// never validated by the provider.
func (s *CheckoutService) ConfirmDegraded(ctx context.Context, tokenStr string) (*core.FallbackSession, error) {
	session, err := s.fallback.Parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if _, found, err := s.store.GetDegraded(ctx, session.ID); err != nil {
			s.logger.Warn("degraded session lookup failed", "session_id", session.ID, "error", err)
		} else if !found {
			s.logger.Warn("degraded session has no ledger record", "session_id", session.ID)
		}
	}

	return session, nil
}

// DegradedCount reports how many sessions were issued in degraded mode since
// startup. Exposed through the health endpoint so provider outages are
// visible to operators.
func (s *CheckoutService) DegradedCount() uint64 {
	return s.degradedCount.Load()
}

// obtainToken walks the Signing -> Exchanging states and absorbs every
// recoverable failure into the fallback path.
func (s *CheckoutService) obtainToken(ctx context.Context, params core.SessionParameters) (core.SessionToken, error) {
	if s.signer == nil || s.exchanger == nil {
		return s.issueFallback(ctx, params, "provider credentials not configured", nil)
	}

	assertion, err := s.signer.Sign()
	if err != nil {
		return s.issueFallback(ctx, params, "assertion signing failed", err)
	}

	token, err := s.exchanger.Exchange(ctx, assertion, params)
	if err != nil {
		return s.issueFallback(ctx, params, exchangeFailureReason(err), err)
	}

	return token, nil
}

func (s *CheckoutService) issueFallback(ctx context.Context, params core.SessionParameters, reason string, cause error) (core.SessionToken, error) {
	token, err := s.fallback.Issue(params)
	if err != nil {
		return core.SessionToken{}, fmt.Errorf("failed to issue fallback token: %w", err)
	}

	s.degradedCount.Add(1)
	s.logger.Warn("issuing degraded session token",
		"session_id", token.SessionID,
		"wallet", params.DestinationWallet,
		"reason", reason,
		"error", cause,
	)

	record := core.DegradedRecord{
		Wallet:   params.DestinationWallet,
		Reason:   reason,
		IssuedAt: time.Now(),
	}
	if s.store != nil {
		if err := s.store.RecordDegraded(ctx, token.SessionID, record, degradedRecordTTL); err != nil {
			s.logger.Error("failed to record degraded session", "session_id", token.SessionID, "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishDegraded(ctx, token.SessionID, params.DestinationWallet, reason); err != nil {
			s.logger.Error("failed to publish degraded event", "session_id", token.SessionID, "error", err)
		}
	}

	return token, nil
}

func exchangeFailureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrExchangeTimeout):
		return "token exchange timed out"
	case errors.Is(err, core.ErrExchangeMalformedResponse):
		return "token exchange returned a malformed response"
	case errors.Is(err, core.ErrExchangeRejected):
		return "token exchange rejected"
	default:
		return "token exchange failed"
	}
}
