// Package redirect assembles the provider checkout URL the end user's
// browser is sent to. Parameter presence and ordering rules are part of the
// provider contract and are enforced here, not merely warned about.
package redirect

import (
	"net/url"
	"strings"

	"github.com/layer-3/rampgate/core"
)

const (
	productionBaseURL = "https://pay.coinbase.com/buy/select-asset"
	sandboxBaseURL    = "https://pay-sandbox.coinbase.com/buy/select-asset"
)

// Builder renders final checkout URLs for one configured environment. The
// environment is a startup-time switch, never per-request logic.
type Builder struct {
	baseURL string
}

// NewBuilder creates a URL builder for the given environment.
func NewBuilder(env core.Environment) *Builder {
	base := productionBaseURL
	if env == core.EnvironmentSandbox {
		base = sandboxBaseURL
	}
	return &Builder{baseURL: base}
}

// Build assembles the redirect URL for a session token, real or fallback.
//
// A missing token is a hard error: a checkout URL silently sent without its
// credential is a worse failure mode than a rejected request.
func (b *Builder) Build(token core.SessionToken, params core.SessionParameters, display core.DisplayParameters) (string, error) {
	if token.Value == "" {
		return "", core.ErrMissingSessionToken
	}

	var query strings.Builder

	appendParam(&query, "sessionToken", token.Value)
	appendParam(&query, "defaultAsset", params.DefaultAsset)
	appendParam(&query, "defaultNetwork", params.DefaultNetwork)

	// Exactly one preset; fiat precedence is applied during Normalize.
	if params.HasPresetFiat() {
		appendParam(&query, "presetFiatAmount", params.PresetFiatAmount.String())
		appendParam(&query, "fiatCurrency", params.FiatCurrency)
	} else if params.HasPresetCrypto() {
		appendParam(&query, "presetCryptoAmount", params.PresetCryptoAmount.String())
	}

	if display.PaymentMethod != "" {
		appendParam(&query, "defaultPaymentMethod", display.PaymentMethod)
	}
	if params.PartnerUserID != "" {
		appendParam(&query, "partnerUserId", core.TruncatePartnerUserID(params.PartnerUserID))
	}
	if params.RedirectURL != "" {
		appendParam(&query, "redirectUrl", params.RedirectURL)
	}
	if display.CallbackURL != "" {
		appendParam(&query, "callbackUrl", display.CallbackURL)
	}
	if display.Theme != "" {
		appendParam(&query, "theme", display.Theme)
	}

	return b.baseURL + "?" + query.String(), nil
}

// appendParam writes one URL-encoded key=value pair, preserving insertion
// order (url.Values would re-sort alphabetically).
func appendParam(query *strings.Builder, key, value string) {
	if query.Len() > 0 {
		query.WriteByte('&')
	}
	query.WriteString(url.QueryEscape(key))
	query.WriteByte('=')
	query.WriteString(url.QueryEscape(value))
}
