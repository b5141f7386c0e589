package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/application"
	"admissions/internal/domain/event"
	"admissions/internal/domain/payment"
	"admissions/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// Recorder appends to the payment audit trail. The trail is not business
// state: a failed write is logged and never reaches the caller. A nil
// *Recorder records nothing.
type Recorder struct {
	repo repositories.EventRepository
	now  func() time.Time
}

func NewRecorder(repo repositories.EventRepository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

func (r *Recorder) OrderCreated(ctx context.Context, o *payment.Order) {
	r.record(ctx, event.TypeOrderCreated, func(e *event.Event) {
		e.WithPayment(o.ID, "", int64(o.Amount)).WithDetail(o.Receipt)
	})
}

func (r *Recorder) PaymentVerified(ctx context.Context, v payment.Verification) {
	r.record(ctx, event.TypePaymentVerified, func(e *event.Event) {
		e.WithPayment(v.OrderID, v.PaymentID, 0)
	})
}

func (r *Recorder) PaymentRejected(ctx context.Context, v payment.Verification, reason string) {
	r.record(ctx, event.TypePaymentRejected, func(e *event.Event) {
		e.WithPayment(v.OrderID, v.PaymentID, 0).WithDetail(reason)
	})
}

func (r *Recorder) StatusTransition(ctx context.Context, a *application.Application, prev application.Status) {
	r.record(ctx, event.TypeStatusTransition, func(e *event.Event) {
		e.ForApplication(a.ID, string(a.Kind)).
			WithPayment(a.OrderID, a.PaymentID, 0).
			WithDetail(fmt.Sprintf("%s -> %s", prev, a.PaymentStatus))
	})
}

// Notification records the final outcome of a confirmation email.
func (r *Recorder) Notification(ctx context.Context, a *application.Application, sendErr error) {
	typ := event.TypeNotificationSent
	detail := a.Email
	if sendErr != nil {
		typ = event.TypeNotificationFailed
		detail = sendErr.Error()
	}
	r.record(ctx, typ, func(e *event.Event) {
		e.ForApplication(a.ID, string(a.Kind)).WithPayment(a.OrderID, a.PaymentID, 0).WithDetail(detail)
	})
}

func (r *Recorder) record(ctx context.Context, typ event.Type, fill func(*event.Event)) {
	if r == nil || r.repo == nil {
		return
	}
	e, err := event.NewEvent(typ, r.now())
	if err != nil {
		log.Error().Err(err).Msg("audit event rejected")
		return
	}
	fill(e)
	if err := r.repo.Save(ctx, e); err != nil {
		log.Error().
			Err(err).
			Str("type", string(typ)).
			Str("order_id", e.OrderID).
			Msg("failed to write audit event")
	}
}

// History returns the trail of one gateway order, oldest first.
func (r *Recorder) History(ctx context.Context, orderID string) ([]*event.Event, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, core.Invalid("payment_history", "order id is required")
	}
	if r == nil || r.repo == nil {
		return []*event.Event{}, nil
	}
	events, err := r.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*event.Event{}
	}
	return events, nil
}
