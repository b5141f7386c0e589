package provider

import (
	"context"
	"errors"

	"admissions/internal/core"
	"admissions/internal/domain/payment"
)

// OrderParams is what the gateway needs to open an order
type OrderParams struct {
	AmountMinor payment.Money
	Currency    payment.Currency
	Receipt     string
}

// Gateway is the external payment gateway. Implementations must be safe for
// concurrent use.
type Gateway interface {
	CreateOrder(ctx context.Context, p OrderParams) (*payment.Order, error)
	// KeyID is the public key handed to the checkout widget
	KeyID() string
}

// ProviderError is a failure reported by, or while talking to, the gateway
type ProviderError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	ProviderErr string `json:"provider_error,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.ProviderErr != "" {
		return e.Message + ": " + e.ProviderErr
	}
	return e.Message
}

// Error codes
const (
	ErrInvalidCredentials = "invalid_credentials"
	ErrInvalidAmount      = "invalid_amount"
	ErrBadRequest         = "bad_request"
	ErrProviderTimeout    = "provider_timeout"
	ErrProviderDown       = "provider_down"
	ErrUnknownError       = "unknown_error"
)

// ToCore classifies a gateway failure for callers. Amount problems are the
// caller's fault; everything else is an upstream failure.
func ToCore(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Code == ErrInvalidAmount {
		return &core.Error{Kind: core.KindInvalidInput, Op: op, Message: pe.Message, Err: err}
	}
	return &core.Error{Kind: core.KindUpstream, Op: op, Message: "payment gateway unavailable", Err: err}
}
