package checkout

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MessageEmptyCart      = "Your cart is empty"
	MessageOrderPlaced    = "Order placed successfully"
	MessageOrderFailed    = "Failed to place order"
	MessageGuestInfo      = "Please fill in your name, email, phone and location"
	MessageInFlight       = "Your order is already being processed"
	MessageCheckoutChange = "You signed in during checkout, please check out again"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrSubmissionInFlight    = errors.New("order submission already in progress")
	ErrCheckoutRestarted     = errors.New("identity changed during checkout, checkout must be restarted")
	ErrGuestInfoIncomplete   = errors.New("guest contact is incomplete")
	ErrOrderSubmissionFailed = errors.New("order submission failed")
)

// GuestInfoError lists the guest fields left blank.
type GuestInfoError struct {
	Missing []string
}

func (e *GuestInfoError) Error() string {
	return fmt.Sprintf("%v: missing %s", ErrGuestInfoIncomplete, strings.Join(e.Missing, ", "))
}

func (e *GuestInfoError) Unwrap() error { return ErrGuestInfoIncomplete }

// SubmissionError is returned when the Order API rejects a submission. Message is
// the text shown to the user.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrOrderSubmissionFailed, e.Err)
}

func (e *SubmissionError) Unwrap() []error { return []error{ErrOrderSubmissionFailed, e.Err} }

// userMessager is implemented by Order API errors that carry a message meant for users.
type userMessager interface {
	UserMessage() string
}

func failureMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return MessageOrderFailed
}

// UserMessage maps checkout errors to the text shown in the storefront.
func UserMessage(err error) string {
	var submissionErr *SubmissionError
	switch {
	case err == nil:
		return MessageOrderPlaced
	case errors.As(err, &submissionErr):
		return submissionErr.Message
	case errors.Is(err, ErrEmptyCart):
		return MessageEmptyCart
	case errors.Is(err, ErrGuestInfoIncomplete):
		return MessageGuestInfo
	case errors.Is(err, ErrSubmissionInFlight):
		return MessageInFlight
	case errors.Is(err, ErrCheckoutRestarted):
		return MessageCheckoutChange
	default:
		return MessageOrderFailed
	}
}
