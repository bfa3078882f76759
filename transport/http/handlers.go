package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/service"
	"github.com/shopspring/decimal"
)

// OnrampHandlers contains HTTP handlers for the onramp session endpoints.
type OnrampHandlers struct {
	checkout *service.CheckoutService
}

// NewOnrampHandlers creates new onramp handlers.
func NewOnrampHandlers(checkout *service.CheckoutService) *OnrampHandlers {
	return &OnrampHandlers{checkout: checkout}
}

type createSessionRequest struct {
	Wallet             string   `json:"wallet" binding:"required"`
	Assets             []string `json:"assets" binding:"required"`
	DefaultAsset       string   `json:"default_asset"`
	DefaultNetwork     string   `json:"default_network"`
	PresetFiatAmount   string   `json:"preset_fiat_amount"`
	FiatCurrency       string   `json:"fiat_currency"`
	PresetCryptoAmount string   `json:"preset_crypto_amount"`
	PartnerUserID      string   `json:"partner_user_id"`
	RedirectURL        string   `json:"redirect_url"`
	PaymentMethod      string   `json:"payment_method"`
	CallbackURL        string   `json:"callback_url"`
	Theme              string   `json:"theme"`
}

// CreateSession opens an onramp session and returns the redirect URL the
// browser should be sent to.
func (h *OnrampHandlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	params := core.SessionParameters{
		DestinationWallet: req.Wallet,
		Assets:            req.Assets,
		DefaultAsset:      req.DefaultAsset,
		DefaultNetwork:    req.DefaultNetwork,
		FiatCurrency:      req.FiatCurrency,
		PartnerUserID:     req.PartnerUserID,
		RedirectURL:       req.RedirectURL,
	}
	if req.PresetFiatAmount != "" {
		amount, err := decimal.NewFromString(req.PresetFiatAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preset fiat amount"})
			return
		}
		params.PresetFiatAmount = amount
	}
	if req.PresetCryptoAmount != "" {
		amount, err := decimal.NewFromString(req.PresetCryptoAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preset crypto amount"})
			return
		}
		params.PresetCryptoAmount = amount
	}

	display := core.DisplayParameters{
		PaymentMethod: req.PaymentMethod,
		CallbackURL:   req.CallbackURL,
		Theme:         req.Theme,
	}

	result, err := h.checkout.CreateSession(c.Request.Context(), params, display)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSessionParameters) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        result.URL,
		"degraded":   result.Degraded,
		"session_id": result.SessionID,
	})
}

// Confirm introspects a degraded fallback token presented by the
// post-redirect success page. Degraded sessions must not auto-release
// purchased content.
func (h *OnrampHandlers) Confirm(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.checkout.ConfirmDegraded(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
		case errors.Is(err, core.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm session"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"wallet":     session.Params.DestinationWallet,
		"degraded":   session.Degraded,
		"expires_at": session.ExpiresAt,
	})
}

// Health reports liveness plus the degraded-session counter so provider
// outages are visible without a metrics stack.
func (h *OnrampHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"degraded_sessions": h.checkout.DegradedCount(),
	})
}
