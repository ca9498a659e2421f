package notification

import (
	"context"

	"github.com/example/solar-storefront/internal/checkout"
	"go.uber.org/zap"
)

// Logger reports checkout outcomes to the log only.
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.With(zap.String("component", "notification"))}
}

func (l *Logger) CheckoutSucceeded(_ context.Context, r checkout.Receipt) {
	l.logger.Info("checkout succeeded",
		zap.String("session_id", r.SessionID),
		zap.Bool("guest", r.Submission.Guest),
		zap.Int("lines", len(r.Lines)),
		zap.Int("total", r.Total),
	)
}

func (l *Logger) CheckoutFailed(_ context.Context, f checkout.Failure) {
	l.logger.Warn("checkout failed",
		zap.String("session_id", f.SessionID),
		zap.Bool("guest", f.Guest),
		zap.String("message", f.Message),
		zap.Error(f.Err),
	)
}

// Fanout forwards every outcome to each sink in order.
type Fanout []checkout.Notifier

func (f Fanout) CheckoutSucceeded(ctx context.Context, r checkout.Receipt) {
	for _, n := range f {
		n.CheckoutSucceeded(ctx, r)
	}
}

func (f Fanout) CheckoutFailed(ctx context.Context, fl checkout.Failure) {
	for _, n := range f {
		n.CheckoutFailed(ctx, fl)
	}
}
