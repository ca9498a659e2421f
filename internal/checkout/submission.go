package checkout

import (
	"context"
	"time"

	"github.com/example/solar-storefront/internal/domain/cart"
)

type Item struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// OrderSubmission is the payload sent to the Order API. It never carries prices;
// the Order API prices the order itself.
type OrderSubmission struct {
	Items    []Item `json:"items"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Guest    bool   `json:"-"`
}

func itemsFrom(lines []cart.Line) []Item {
	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = Item{ProductID: line.Product.ID, Quantity: line.Quantity}
	}
	return items
}

// NewAccountSubmission builds the known-identity variant: only the email is sent, the
// Order API resolves the rest of the account.
func NewAccountSubmission(lines []cart.Line, account Account) OrderSubmission {
	return OrderSubmission{
		Items: itemsFrom(lines),
		Email: account.Contact.Email,
	}
}

// NewGuestSubmission builds the guest variant carrying the full contact.
func NewGuestSubmission(lines []cart.Line, guest Contact) OrderSubmission {
	guest = guest.trimmed()
	return OrderSubmission{
		Items:    itemsFrom(lines),
		Email:    guest.Email,
		Name:     guest.Name,
		Phone:    guest.Phone,
		Location: guest.Location,
		Guest:    true,
	}
}

// OrderAPI accepts order submissions. It is the authority on stock and prices and
// gives no idempotency guarantee.
type OrderAPI interface {
	SubmitOrder(ctx context.Context, submission OrderSubmission) error
}

// StockChange records the cached stock of one product after reconciliation.
type StockChange struct {
	ProductID string `json:"product_id"`
	Previous  int    `json:"previous"`
	Current   int    `json:"current"`
	Clamped   bool   `json:"clamped,omitempty"`
}

type Receipt struct {
	SessionID  string          `json:"session_id"`
	Submission OrderSubmission `json:"submission"`
	Lines      []cart.Line     `json:"lines"`
	Total      int             `json:"total"`
	Reconciled []StockChange   `json:"reconciled"`
	PlacedAt   time.Time       `json:"placed_at"`
}

type Failure struct {
	SessionID string    `json:"session_id"`
	Guest     bool      `json:"guest"`
	Message   string    `json:"message"`
	Err       error     `json:"-"`
	FailedAt  time.Time `json:"failed_at"`
}

// Notifier receives checkout outcomes. It is a one-way sink.
type Notifier interface {
	CheckoutSucceeded(ctx context.Context, receipt Receipt)
	CheckoutFailed(ctx context.Context, failure Failure)
}

type nopNotifier struct{}

func (nopNotifier) CheckoutSucceeded(context.Context, Receipt) {}
func (nopNotifier) CheckoutFailed(context.Context, Failure)    {}
