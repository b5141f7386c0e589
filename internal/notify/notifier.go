package notify

import (
	"context"
	"errors"

	"admissions/internal/domain/application"

	"github.com/rs/zerolog/log"
)

// OutcomeRecorder receives the final delivery result of a confirmation
type OutcomeRecorder interface {
	Notification(ctx context.Context, a *application.Application, err error)
}

// PaymentNotifier turns completed payments into confirmation emails
type PaymentNotifier struct {
	dispatcher *Dispatcher
	templates  *Templates
	outcomes   OutcomeRecorder
}

func NewPaymentNotifier(d *Dispatcher, t *Templates, outcomes OutcomeRecorder) *PaymentNotifier {
	return &PaymentNotifier{dispatcher: d, templates: t, outcomes: outcomes}
}

// PaymentCompleted queues the confirmation email. It returns immediately;
// failures are logged and recorded, never returned.
func (n *PaymentNotifier) PaymentCompleted(ctx context.Context, a *application.Application) {
	msg, err := n.templates.PaymentConfirmation(a)
	if err != nil {
		log.Error().Err(err).Str("application_id", a.ID.String()).Msg("could not render confirmation")
		n.record(ctx, a, err)
		return
	}

	// the request context is gone by the time a worker delivers
	bg := context.WithoutCancel(ctx)
	snapshot := *a
	queued := n.dispatcher.Dispatch(msg, func(err error) {
		n.record(bg, &snapshot, err)
	})
	if !queued {
		n.record(bg, &snapshot, errQueueFull)
	}
}

func (n *PaymentNotifier) record(ctx context.Context, a *application.Application, err error) {
	if n.outcomes != nil {
		n.outcomes.Notification(ctx, a, err)
	}
}

var errQueueFull = errors.New("mail queue full")
