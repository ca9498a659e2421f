package notification

import (
	"context"
	"encoding/json"

	"github.com/example/solar-storefront/internal/catalog"
	"github.com/example/solar-storefront/internal/checkout"
	"github.com/example/solar-storefront/internal/email"
	"go.uber.org/zap"
)

// Mailer sends order confirmations; email.Service implements it.
type Mailer interface {
	SendOrderConfirmation(to string, c email.Confirmation) error
}

// Handler processes checkout events for sending notifications
type Handler struct {
	mailer Mailer
	logger *zap.Logger
}

func NewHandler(mailer Mailer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		mailer: mailer,
		logger: logger.With(zap.String("component", "notifier")),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		h.logger.Error("failed to unmarshal event", zap.ByteString("key", key), zap.Error(err))
		return err
	}

	// Only successful checkouts are mailed
	if env.EventType == EventCheckoutSucceeded {
		return h.handleCheckoutSucceeded(env)
	}
	return nil
}

func (h *Handler) handleCheckoutSucceeded(env Envelope) error {
	var r checkout.Receipt
	if err := json.Unmarshal(env.Data, &r); err != nil {
		h.logger.Error("failed to unmarshal CheckoutSucceeded event", zap.String("event_id", env.ID), zap.Error(err))
		return err
	}

	to := r.Submission.Email
	if to == "" {
		h.logger.Warn("no email on submission, skipping confirmation", zap.String("event_id", env.ID))
		return nil
	}

	if err := h.mailer.SendOrderConfirmation(to, confirmationFor(env, r)); err != nil {
		h.logger.Error("failed to send confirmation", zap.String("to", to), zap.Error(err))
		return err
	}

	h.logger.Info("order confirmation email sent", zap.String("to", to), zap.String("event_id", env.ID))
	return nil
}

func confirmationFor(env Envelope, r checkout.Receipt) email.Confirmation {
	items := make([]email.OrderItem, len(r.Lines))
	for i, line := range r.Lines {
		items[i] = itemFor(line.Product, line.Quantity)
	}
	return email.Confirmation{
		Reference:    env.ID,
		CustomerName: r.Submission.Name,
		Location:     r.Submission.Location,
		Items:        items,
		Total:        r.Total,
	}
}

func itemFor(p catalog.Product, quantity int) email.OrderItem {
	return email.OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  quantity,
		Price:     p.Price,
	}
}
