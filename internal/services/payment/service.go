package payment

import (
	"context"
	"errors"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/application"
	"admissions/internal/domain/payment"
	"admissions/internal/provider"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ApplicationCompleter performs the pending -> completed transition
type ApplicationCompleter interface {
	CompletePayment(ctx context.Context, kind application.Kind, id uuid.UUID, paymentID, orderID string) (*application.Application, error)
}

// Auditor records payment events
type Auditor interface {
	OrderCreated(ctx context.Context, o *payment.Order)
	PaymentVerified(ctx context.Context, v payment.Verification)
	PaymentRejected(ctx context.Context, v payment.Verification, reason string)
}

var errNoCompleter = errors.New("no application service configured")

// Service handles payment order creation and verification
type Service struct {
	gateway  provider.Gateway
	secret   string
	currency payment.Currency
	apps     ApplicationCompleter
	audit    Auditor
	now      func() time.Time
}

// NewService creates a new payment service. secret is the gateway key
// secret used for signature verification.
func NewService(gateway provider.Gateway, secret string, currency payment.Currency, apps ApplicationCompleter, audit Auditor) *Service {
	if currency == "" {
		currency = payment.INR
	}
	return &Service{
		gateway:  gateway,
		secret:   secret,
		currency: currency,
		apps:     apps,
		audit:    audit,
		now:      time.Now,
	}
}

// OrderResult is what the checkout widget needs to start a payment
type OrderResult struct {
	Key   string         `json:"key"`
	Order *payment.Order `json:"order"`
}

// CreateOrder opens a gateway order for a whole-rupee amount. Invalid
// amounts are rejected before the gateway is contacted.
func (s *Service) CreateOrder(ctx context.Context, amount int64) (*OrderResult, error) {
	minor, err := payment.MinorUnits(amount)
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, provider.OrderParams{
		AmountMinor: minor,
		Currency:    s.currency,
		Receipt:     payment.NewReceipt(s.now()),
	})
	if err != nil {
		log.Error().Err(err).Int64("amount", amount).Msg("order creation failed")
		return nil, provider.ToCore("create_order", err)
	}

	if s.audit != nil {
		s.audit.OrderCreated(ctx, order)
	}
	return &OrderResult{Key: s.gateway.KeyID(), Order: order}, nil
}

// VerifyRequest is a signature check, optionally bound to an application
type VerifyRequest struct {
	payment.Verification
	ApplicationID *uuid.UUID
	Kind          application.Kind
}

// Verify checks the payment signature. When an application is referenced
// and the signature is valid, the application is marked completed.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*application.Application, error) {
	if err := payment.Verify(s.secret, req.Verification); err != nil {
		if core.Is(err, core.KindSignatureMismatch) {
			log.Warn().
				Str("order_id", req.OrderID).
				Str("payment_id", req.PaymentID).
				Msg("payment signature mismatch")
			if s.audit != nil {
				s.audit.PaymentRejected(ctx, req.Verification, core.MessageOf(err))
			}
		}
		return nil, err
	}

	if s.audit != nil {
		s.audit.PaymentVerified(ctx, req.Verification)
	}
	log.Info().Str("order_id", req.OrderID).Str("payment_id", req.PaymentID).Msg("payment verified")

	if req.ApplicationID == nil {
		return nil, nil
	}
	if !req.Kind.Valid() {
		return nil, core.Invalid("verify_payment", "applicationType must be ug or pg")
	}
	if s.apps == nil {
		return nil, core.Internal("verify_payment", errNoCompleter)
	}
	return s.apps.CompletePayment(ctx, req.Kind, *req.ApplicationID, req.PaymentID, req.OrderID)
}
