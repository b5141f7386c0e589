package repositories

import (
	"context"
	"time"

	"admissions/internal/domain/application"
	"admissions/internal/domain/booking"
	"admissions/internal/domain/event"
	"admissions/internal/domain/user"

	"github.com/google/uuid"
)

// ApplicationRepository defines the contract for UG/PG application data access.
// Every operation is scoped to one kind; an id of the other kind is not found.
type ApplicationRepository interface {
	Create(ctx context.Context, a *application.Application) error
	FindByID(ctx context.Context, kind application.Kind, id uuid.UUID) (*application.Application, error)
	List(ctx context.Context, kind application.Kind, q application.ListQuery) ([]*application.Application, int, error)
	Delete(ctx context.Context, kind application.Kind, id uuid.UUID) error
	Stats(ctx context.Context, kind application.Kind) (application.Stats, error)

	// ApplyPatch loads the record under a row lock, applies the patch and
	// persists it as one atomic step. It returns the status the record had
	// before the patch together with the updated record.
	ApplyPatch(ctx context.Context, kind application.Kind, id uuid.UUID, p application.Patch) (application.Status, *application.Application, error)
}

// BookingRepository defines the contract for booking data access
type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	List(ctx context.Context) ([]*booking.Booking, error)
}

// UserRepository defines the contract for account data access
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// EventRepository defines the contract for the payment audit trail
type EventRepository interface {
	Save(ctx context.Context, e *event.Event) error
	FindByOrderID(ctx context.Context, orderID string) ([]*event.Event, error)
}

// TokenDenylist records revoked token ids until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
