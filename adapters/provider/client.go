package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/ports"
)

// RequestTimeout bounds every exchange call so an unresponsive provider
// cannot hang the checkout path.
const RequestTimeout = 10 * time.Second

// Client exchanges signed assertions for session tokens at the provider's
// token endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient constructs an exchanger against the given token endpoint with a
// hard request timeout.
func NewClient(endpoint string) ports.Exchanger {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: RequestTimeout},
	}
}

type addressEntry struct {
	Address     string   `json:"address"`
	Blockchains []string `json:"blockchains"`
}

type tokenRequest struct {
	Addresses          []addressEntry `json:"addresses"`
	Assets             []string       `json:"assets,omitempty"`
	DefaultAsset       string         `json:"defaultAsset,omitempty"`
	DefaultNetwork     string         `json:"defaultNetwork,omitempty"`
	PresetFiatAmount   string         `json:"presetFiatAmount,omitempty"`
	FiatCurrency       string         `json:"fiatCurrency,omitempty"`
	PresetCryptoAmount string         `json:"presetCryptoAmount,omitempty"`
	PartnerUserID      string         `json:"partnerUserId,omitempty"`
	RedirectURL        string         `json:"redirectUrl,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Exchange POSTs the session parameters to the token endpoint, authenticated
// with the assertion as bearer credential. Any transport failure, non-2xx
// status or undecodable body maps to a recoverable sentinel so the caller
// can fall back instead of failing the checkout.
func (c *Client) Exchange(ctx context.Context, assertion string, params core.SessionParameters) (core.SessionToken, error) {
	body := tokenRequest{
		Addresses: []addressEntry{{
			Address:     params.DestinationWallet,
			Blockchains: []string{params.DefaultNetwork},
		}},
		Assets:         params.Assets,
		DefaultAsset:   params.DefaultAsset,
		DefaultNetwork: params.DefaultNetwork,
		PartnerUserID:  params.PartnerUserID,
		RedirectURL:    params.RedirectURL,
	}
	// Exactly one preset may travel; Normalize has already applied the fiat
	// precedence rule.
	if params.HasPresetFiat() {
		body.PresetFiatAmount = params.PresetFiatAmount.String()
		body.FiatCurrency = params.FiatCurrency
	} else if params.HasPresetCrypto() {
		body.PresetCryptoAmount = params.PresetCryptoAmount.String()
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return core.SessionToken{}, fmt.Errorf("%w: %v", core.ErrExchangeRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return core.SessionToken{}, fmt.Errorf("%w: %v", core.ErrExchangeRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+assertion)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return core.SessionToken{}, fmt.Errorf("%w: %v", core.ErrExchangeTimeout, err)
		}
		return core.SessionToken{}, fmt.Errorf("%w: %v", core.ErrExchangeRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.SessionToken{}, fmt.Errorf("%w: status=%d", core.ErrExchangeRejected, resp.StatusCode)
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return core.SessionToken{}, fmt.Errorf("%w: %v", core.ErrExchangeMalformedResponse, err)
	}
	if decoded.Token == "" {
		return core.SessionToken{}, fmt.Errorf("%w: response carries no token", core.ErrExchangeMalformedResponse)
	}

	return core.SessionToken{Value: decoded.Token}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
