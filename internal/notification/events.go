package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventCheckoutSucceeded = "CheckoutSucceeded"
	EventCheckoutFailed    = "CheckoutFailed"
)

// Envelope wraps every checkout event written to the event topic.
type Envelope struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func newEnvelope(eventType, sessionID string, payload any, at time.Time) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:        uuid.New().String(),
		EventType: eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: at,
	}, nil
}
