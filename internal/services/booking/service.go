package booking

import (
	"context"
	"time"

	"admissions/internal/domain/booking"
	"admissions/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// Service handles class bookings
type Service struct {
	repo repositories.BookingRepository
	now  func() time.Time
}

func NewService(repo repositories.BookingRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput carries the fields of a booking request
type CreateInput struct {
	Name         string
	Mobile       string
	Email        string
	StudentClass string
	Interest     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*booking.Booking, error) {
	b, err := booking.New(in.Name, in.Mobile, in.Email, in.StudentClass, in.Interest, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	log.Info().Str("booking_id", b.ID.String()).Str("class", b.StudentClass).Msg("booking created")
	return b, nil
}

// List returns all bookings, newest first
func (s *Service) List(ctx context.Context) ([]*booking.Booking, error) {
	return s.repo.List(ctx)
}
