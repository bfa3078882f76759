package fallback

import "github.com/golang-jwt/jwt/v5"

// Claims embeds the session parameters in the degraded token so downstream
// consumers can introspect them without a provider round trip. Amounts are
// carried as decimal strings.
type Claims struct {
	jwt.RegisteredClaims
	Degraded           bool     `json:"degraded"`
	Wallet             string   `json:"wallet"`
	Assets             []string `json:"assets"`
	DefaultAsset       string   `json:"defaultAsset"`
	DefaultNetwork     string   `json:"defaultNetwork"`
	PresetFiatAmount   string   `json:"presetFiatAmount,omitempty"`
	FiatCurrency       string   `json:"fiatCurrency,omitempty"`
	PresetCryptoAmount string   `json:"presetCryptoAmount,omitempty"`
	PartnerUserID      string   `json:"partnerUserId,omitempty"`
	RedirectURL        string   `json:"redirectUrl,omitempty"`
}
