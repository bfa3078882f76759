package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/rampgate/ports"
)

// DegradedEvent notifies the marketplace that a session was issued against
// a locally signed fallback credential and needs manual reconciliation.
type DegradedEvent struct {
	SessionID string    `json:"session_id"`
	Wallet    string    `json:"wallet"`
	Reason    string    `json:"reason"`
	IssuedAt  time.Time `json:"issued_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "rampgate.session.degraded",
	}
}

// PublishDegraded publishes a degraded-mode issuance event.
func (p *WatermillPublisher) PublishDegraded(ctx context.Context, sessionID, wallet, reason string) error {
	event := DegradedEvent{
		SessionID: sessionID,
		Wallet:    wallet,
		Reason:    reason,
		IssuedAt:  time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(sessionID, payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
