package mocks

import (
	"context"
	"sync"

	"github.com/example/solar-storefront/internal/checkout"
)

// MockNotifier records every checkout outcome it receives
type MockNotifier struct {
	mu        sync.Mutex
	Successes []checkout.Receipt
	Failures  []checkout.Failure
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) CheckoutSucceeded(ctx context.Context, receipt checkout.Receipt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes = append(m.Successes, receipt)
}

func (m *MockNotifier) CheckoutFailed(ctx context.Context, failure checkout.Failure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, failure)
}

// StaticIdentity is an IdentityProvider whose answer tests can flip between calls
type StaticIdentity struct {
	Account checkout.Account
	Known   bool
}

func (s *StaticIdentity) Identity(context.Context) (checkout.Account, bool) {
	return s.Account, s.Known
}
