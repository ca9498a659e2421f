package checkout

import (
	"context"
	"time"

	"github.com/example/solar-storefront/internal/domain/cart"
	"go.uber.org/zap"
)

type Outcome string

const (
	// OutcomeGuestInfoRequired means the guest form must be shown; nothing was sent.
	OutcomeGuestInfoRequired Outcome = "guest_info_required"
	OutcomeSubmitted         Outcome = "submitted"
)

type Result struct {
	Outcome Outcome
	Receipt *Receipt
}

// Orchestrator drives one session's cart from review to a submitted order.
//
// Like the cart it owns, an Orchestrator is not safe for concurrent use. The
// Submitting guard still rejects a Submit issued while an Order API call is
// pending on the same orchestrator.
type Orchestrator struct {
	sessionID string
	cart      *cart.Store
	orders    OrderAPI
	identity  IdentityProvider
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time

	state State
}

func NewOrchestrator(
	sessionID string,
	store *cart.Store,
	orders OrderAPI,
	identity IdentityProvider,
	notifier Notifier,
	logger *zap.Logger,
) *Orchestrator {
	if identity == nil {
		identity = Anonymous{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		sessionID: sessionID,
		cart:      store,
		orders:    orders,
		identity:  identity,
		notifier:  notifier,
		logger:    logger.With(zap.String("component", "checkout"), zap.String("session_id", sessionID)),
		now:       time.Now,
		state:     StateReviewing,
	}
}

func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) Cart() *cart.Store { return o.cart }

func (o *Orchestrator) transition(to State) error {
	if !o.state.CanTransitionTo(to) {
		return transitionError(o.state, to)
	}
	o.logger.Debug("checkout state changed", zap.String("from", string(o.state)), zap.String("to", string(to)))
	o.state = to
	return nil
}

// Close closes the checkout surface, dropping back to Reviewing. It reports false
// while a submission is in flight.
func (o *Orchestrator) Close() bool {
	switch o.state {
	case StateReviewing:
		return true
	case StateCollectingGuestInfo:
		return o.transition(StateReviewing) == nil
	default:
		return false
	}
}

// Submit advances the checkout by one user action.
//
// The guards run in order: a pending submission, an empty cart, then identity. An
// unknown caller's first Submit only opens the guest form; the next one, with guest
// fields filled in, calls the Order API. guest is ignored for known callers.
func (o *Orchestrator) Submit(ctx context.Context, guest Contact) (Result, error) {
	if o.state == StateSubmitting {
		return Result{}, ErrSubmissionInFlight
	}
	if o.cart.IsEmpty() {
		o.logger.Info("checkout rejected: cart is empty")
		return Result{}, ErrEmptyCart
	}

	lines := o.cart.Lines()
	account, known := o.identity.Identity(ctx)

	var submission OrderSubmission
	switch {
	case known && o.state == StateCollectingGuestInfo:
		// Signing in while the guest form is open is not supported mid-checkout.
		o.logger.Info("identity became known during guest checkout, restarting")
		if err := o.transition(StateReviewing); err != nil {
			return Result{}, err
		}
		return Result{}, ErrCheckoutRestarted
	case known:
		submission = NewAccountSubmission(lines, account)
	case o.state == StateReviewing:
		if err := o.transition(StateCollectingGuestInfo); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeGuestInfoRequired}, nil
	default:
		if missing := guest.Missing(); len(missing) > 0 {
			return Result{}, &GuestInfoError{Missing: missing}
		}
		submission = NewGuestSubmission(lines, guest)
	}

	return o.submit(ctx, lines, submission)
}

func (o *Orchestrator) submit(ctx context.Context, lines []cart.Line, submission OrderSubmission) (Result, error) {
	resume := o.state
	if err := o.transition(StateSubmitting); err != nil {
		return Result{}, err
	}

	o.logger.Info("submitting order",
		zap.Int("lines", len(submission.Items)),
		zap.Bool("guest", submission.Guest),
	)

	if err := o.orders.SubmitOrder(ctx, submission); err != nil {
		return Result{}, o.fail(ctx, resume, submission, err)
	}

	if err := o.transition(StateSucceeded); err != nil {
		return Result{}, err
	}

	total := o.cart.Total()
	reconciled := o.reconcile(lines)
	o.cart.Clear()

	receipt := Receipt{
		SessionID:  o.sessionID,
		Submission: submission,
		Lines:      lines,
		Total:      total,
		Reconciled: reconciled,
		PlacedAt:   o.now(),
	}
	if err := o.transition(StateReviewing); err != nil {
		return Result{}, err
	}

	o.logger.Info("order placed", zap.Int("total", total))
	o.notifier.CheckoutSucceeded(ctx, receipt)

	return Result{Outcome: OutcomeSubmitted, Receipt: &receipt}, nil
}

func (o *Orchestrator) fail(ctx context.Context, resume State, submission OrderSubmission, cause error) error {
	failure := Failure{
		SessionID: o.sessionID,
		Guest:     submission.Guest,
		Message:   failureMessage(cause),
		Err:       cause,
		FailedAt:  o.now(),
	}

	if err := o.transition(StateFailed); err != nil {
		return err
	}
	if err := o.transition(resume); err != nil {
		return err
	}

	o.logger.Warn("order submission failed", zap.Error(cause))
	o.notifier.CheckoutFailed(ctx, failure)

	return &SubmissionError{Message: failure.Message, Err: cause}
}

// reconcile lowers the cached stock of every purchased product by the quantity
// bought, using the pre-submit snapshot. Stock never goes below zero: a stale cache
// is clamped and logged, the Order API holds the real figure.
func (o *Orchestrator) reconcile(lines []cart.Line) []StockChange {
	changes := make([]StockChange, 0, len(lines))
	for _, line := range lines {
		change := StockChange{
			ProductID: line.Product.ID,
			Previous:  line.Product.AvailableStock,
			Current:   line.Product.AvailableStock - line.Quantity,
		}
		if change.Current < 0 {
			o.logger.Warn("stale stock clamped to zero",
				zap.String("product_id", change.ProductID),
				zap.Int("cached_stock", change.Previous),
				zap.Int("quantity", line.Quantity),
			)
			change.Current = 0
			change.Clamped = true
		}
		o.cart.ReconcileStock(change.ProductID, change.Current)
		changes = append(changes, change)
	}
	return changes
}
