package application

import (
	"context"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/application"
	"admissions/internal/store/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier is told about every pending -> completed transition. It must
// return promptly and never fail the caller.
type Notifier interface {
	PaymentCompleted(ctx context.Context, a *application.Application)
}

// TransitionRecorder receives status transitions for the audit trail
type TransitionRecorder interface {
	StatusTransition(ctx context.Context, a *application.Application, prev application.Status)
}

// Service handles UG/PG application business logic
type Service struct {
	repo     repositories.ApplicationRepository
	notifier Notifier
	audit    TransitionRecorder
	now      func() time.Time
}

// NewService creates a new application service. notifier and audit may be nil.
func NewService(repo repositories.ApplicationRepository, notifier Notifier, audit TransitionRecorder) *Service {
	return &Service{repo: repo, notifier: notifier, audit: audit, now: time.Now}
}

// Create validates and stores a new pending application
func (s *Service) Create(ctx context.Context, kind application.Kind, f application.Fields) (*application.Application, error) {
	a, err := application.New(kind, f, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	log.Info().
		Str("application_id", a.ID.String()).
		Str("kind", string(kind)).
		Msg("application submitted")
	return a, nil
}

func (s *Service) Get(ctx context.Context, kind application.Kind, id uuid.UUID) (*application.Application, error) {
	return s.repo.FindByID(ctx, kind, id)
}

// List returns one page of applications matching q
func (s *Service) List(ctx context.Context, kind application.Kind, q application.ListQuery) (application.Page, error) {
	q.Normalize()
	items, total, err := s.repo.List(ctx, kind, q)
	if err != nil {
		return application.Page{}, err
	}
	return application.NewPage(q, items, total), nil
}

func (s *Service) Delete(ctx context.Context, kind application.Kind, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	log.Info().Str("application_id", id.String()).Str("kind", string(kind)).Msg("application deleted")
	return nil
}

func (s *Service) Stats(ctx context.Context, kind application.Kind) (application.Stats, error) {
	return s.repo.Stats(ctx, kind)
}

// Update applies a partial update atomically. When the update moves the
// payment status from pending to completed, exactly one notification is
// dispatched; repeating the update dispatches nothing.
func (s *Service) Update(ctx context.Context, kind application.Kind, id uuid.UUID, p application.Patch) (*application.Application, error) {
	if p.Empty() {
		return nil, core.Invalid("update_application", "no fields to update")
	}
	prev, updated, err := s.repo.ApplyPatch(ctx, kind, id, p)
	if err != nil {
		return nil, err
	}

	if application.TransitionedToCompleted(prev, updated.PaymentStatus) {
		log.Info().
			Str("application_id", updated.ID.String()).
			Str("kind", string(kind)).
			Str("payment_id", updated.PaymentID).
			Str("order_id", updated.OrderID).
			Msg("application payment completed")
		if s.audit != nil {
			s.audit.StatusTransition(ctx, updated, prev)
		}
		if s.notifier != nil {
			s.notifier.PaymentCompleted(ctx, updated)
		}
	}
	return updated, nil
}

// CompletePayment marks an application paid after a verified payment
func (s *Service) CompletePayment(ctx context.Context, kind application.Kind, id uuid.UUID, paymentID, orderID string) (*application.Application, error) {
	return s.Update(ctx, kind, id, application.CompletePayment(paymentID, orderID))
}
