package notification

import (
	"context"
	"time"

	"github.com/example/solar-storefront/internal/checkout"
	"go.uber.org/zap"
)

// EventPublisher writes one keyed event; the Kafka producer implements it.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Publisher turns checkout outcomes into events keyed by session id. Notification is
// one-way: a failed publish is logged and never reaches the checkout.
type Publisher struct {
	events  EventPublisher
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewPublisher(events EventPublisher, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		events:  events,
		logger:  logger.With(zap.String("component", "notification")),
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

func (p *Publisher) CheckoutSucceeded(ctx context.Context, r checkout.Receipt) {
	p.publish(ctx, EventCheckoutSucceeded, r.SessionID, r)
}

func (p *Publisher) CheckoutFailed(ctx context.Context, f checkout.Failure) {
	p.publish(ctx, EventCheckoutFailed, f.SessionID, failedEvent{
		SessionID: f.SessionID,
		Guest:     f.Guest,
		Message:   f.Message,
		Cause:     errString(f.Err),
		FailedAt:  f.FailedAt,
	})
}

type failedEvent struct {
	SessionID string    `json:"session_id"`
	Guest     bool      `json:"guest"`
	Message   string    `json:"message"`
	Cause     string    `json:"cause,omitempty"`
	FailedAt  time.Time `json:"failed_at"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (p *Publisher) publish(ctx context.Context, eventType, sessionID string, payload any) {
	env, err := newEnvelope(eventType, sessionID, payload, p.now())
	if err != nil {
		p.logger.Error("encode event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	// The request may be finishing; the event should still go out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.events.Publish(ctx, sessionID, env); err != nil {
		p.logger.Error("publish event",
			zap.String("event_type", eventType),
			zap.String("event_id", env.ID),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("event published", zap.String("event_type", eventType), zap.String("event_id", env.ID))
}
