package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is one entry of the payment audit trail
type Event struct {
	ID              uuid.UUID
	Type            Type
	OrderID         string
	PaymentID       string
	ApplicationID   *uuid.UUID
	ApplicationKind string
	Amount          int64
	Detail          string
	CreatedAt       time.Time
}

// Type represents the kind of audited action
type Type string

const (
	TypeOrderCreated       Type = "order_created"
	TypePaymentVerified    Type = "payment_verified"
	TypePaymentRejected    Type = "payment_rejected"
	TypeStatusTransition   Type = "status_transition"
	TypeNotificationSent   Type = "notification_sent"
	TypeNotificationFailed Type = "notification_failed"
)

// NewEvent creates a new event with validation
func NewEvent(eventType Type, now time.Time) (*Event, error) {
	if !isValidEventType(eventType) {
		return nil, fmt.Errorf("invalid event type: %s", eventType)
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		CreatedAt: now,
	}, nil
}

// ForApplication links the event to an application
func (e *Event) ForApplication(id uuid.UUID, kind string) *Event {
	e.ApplicationID = &id
	e.ApplicationKind = kind
	return e
}

// WithPayment enriches the event with gateway identifiers
func (e *Event) WithPayment(orderID, paymentID string, amount int64) *Event {
	e.OrderID = orderID
	e.PaymentID = paymentID
	e.Amount = amount
	return e
}

func (e *Event) WithDetail(detail string) *Event {
	e.Detail = detail
	return e
}

// isValidEventType checks if event type is valid
func isValidEventType(eventType Type) bool {
	switch eventType {
	case TypeOrderCreated, TypePaymentVerified, TypePaymentRejected,
		TypeStatusTransition, TypeNotificationSent, TypeNotificationFailed:
		return true
	}
	return false
}
