package mocks

import (
	"context"
	"sync"

	"github.com/example/solar-storefront/internal/checkout"
)

// MockOrderAPI is a mock implementation of checkout.OrderAPI for testing
type MockOrderAPI struct {
	mu sync.Mutex

	// For tracking calls in tests
	SubmitCalls    []checkout.OrderSubmission
	SubmitErr      error
	SubmitCallback func(ctx context.Context, submission checkout.OrderSubmission) error
}

func NewMockOrderAPI() *MockOrderAPI {
	return &MockOrderAPI{SubmitCalls: make([]checkout.OrderSubmission, 0)}
}

// SubmitOrder records the submission and returns SubmitErr unless a callback is set
func (m *MockOrderAPI) SubmitOrder(ctx context.Context, submission checkout.OrderSubmission) error {
	m.mu.Lock()
	m.SubmitCalls = append(m.SubmitCalls, submission)
	callback, err := m.SubmitCallback, m.SubmitErr
	m.mu.Unlock()

	// The lock is released first so the callback may re-enter the orchestrator.
	if callback != nil {
		return callback(ctx, submission)
	}
	return err
}

func (m *MockOrderAPI) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SubmitCalls)
}

// Reset clears recorded calls and configured behaviour
func (m *MockOrderAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitCalls = make([]checkout.OrderSubmission, 0)
	m.SubmitErr = nil
	m.SubmitCallback = nil
}
