package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Environment selects the provider host the checkout widget is served from.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// MaxPartnerUserIDLength is the provider's contract limit for partner user
// identifiers. Longer values are truncated, not rejected.
const MaxPartnerUserIDLength = 50

// DefaultNetwork is used when the caller does not pin a network.
const DefaultNetwork = "ethereum"

// SessionParameters describes one checkout session to be opened with the
// onramp provider.
type SessionParameters struct {
	DestinationWallet  string
	Assets             []string
	DefaultAsset       string
	DefaultNetwork     string
	PresetFiatAmount   decimal.Decimal
	FiatCurrency       string
	PresetCryptoAmount decimal.Decimal
	PartnerUserID      string
	RedirectURL        string
}

// DisplayParameters are presentation-only hints forwarded to the widget.
type DisplayParameters struct {
	PaymentMethod string
	CallbackURL   string
	Theme         string
}

// SessionToken is the credential embedded in the redirect URL. Provider
// tokens are opaque; fallback tokens carry introspectable claims and are
// marked degraded.
type SessionToken struct {
	Value     string
	Degraded  bool
	SessionID string
}

// FallbackSession is the decoded view of a degraded fallback token.
type FallbackSession struct {
	ID        string
	Params    SessionParameters
	Degraded  bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// DegradedRecord is persisted for every fallback issuance so operators can
// reconcile purchases completed against a degraded credential.
type DegradedRecord struct {
	Wallet   string    `json:"wallet"`
	Reason   string    `json:"reason"`
	IssuedAt time.Time `json:"issued_at"`
}

// HasPresetFiat reports whether a fiat preset is carried.
func (p *SessionParameters) HasPresetFiat() bool {
	return p.PresetFiatAmount.IsPositive()
}

// HasPresetCrypto reports whether a crypto preset is carried.
func (p *SessionParameters) HasPresetCrypto() bool {
	return p.PresetCryptoAmount.IsPositive()
}

// Normalize validates the parameters and applies the documented defaulting
// rules in place. It must be called before any signing or network work.
//
// Rules:
//   - destination wallet is required and must be a hex chain address
//   - at least one allowed asset is required
//   - default asset falls back to the first allowed asset
//   - default network falls back to DefaultNetwork
//   - a fiat preset requires a currency code
//   - if both presets are set, fiat wins and the crypto preset is dropped
//   - partner user id is truncated to MaxPartnerUserIDLength
func (p *SessionParameters) Normalize() error {
	p.DestinationWallet = strings.TrimSpace(p.DestinationWallet)
	if p.DestinationWallet == "" {
		return fmt.Errorf("%w: destination wallet is required", ErrInvalidSessionParameters)
	}
	if !common.IsHexAddress(p.DestinationWallet) {
		return fmt.Errorf("%w: destination wallet %q is not a valid address", ErrInvalidSessionParameters, p.DestinationWallet)
	}

	assets := make([]string, 0, len(p.Assets))
	for _, a := range p.Assets {
		if a = strings.TrimSpace(a); a != "" {
			assets = append(assets, a)
		}
	}
	p.Assets = assets
	if len(p.Assets) == 0 {
		return fmt.Errorf("%w: at least one asset is required", ErrInvalidSessionParameters)
	}

	if p.DefaultAsset = strings.TrimSpace(p.DefaultAsset); p.DefaultAsset == "" {
		p.DefaultAsset = p.Assets[0]
	}
	if p.DefaultNetwork = strings.TrimSpace(p.DefaultNetwork); p.DefaultNetwork == "" {
		p.DefaultNetwork = DefaultNetwork
	}

	if p.PresetFiatAmount.IsNegative() || p.PresetCryptoAmount.IsNegative() {
		return fmt.Errorf("%w: preset amounts must be positive", ErrInvalidSessionParameters)
	}
	if p.HasPresetFiat() && strings.TrimSpace(p.FiatCurrency) == "" {
		return fmt.Errorf("%w: preset fiat amount requires a fiat currency", ErrInvalidSessionParameters)
	}
	// Documented precedence: a fiat preset silently drops any crypto preset.
	if p.HasPresetFiat() && p.HasPresetCrypto() {
		p.PresetCryptoAmount = decimal.Zero
	}
	if !p.HasPresetFiat() {
		p.FiatCurrency = ""
	}

	p.PartnerUserID = TruncatePartnerUserID(p.PartnerUserID)

	return nil
}

// TruncatePartnerUserID caps a partner user id at MaxPartnerUserIDLength
// characters. Truncation happens on rune boundaries so multi-byte ids are
// never cut into invalid UTF-8.
func TruncatePartnerUserID(id string) string {
	runes := []rune(id)
	if len(runes) <= MaxPartnerUserIDLength {
		return id
	}
	return string(runes[:MaxPartnerUserIDLength])
}
