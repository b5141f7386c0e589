// Package memory provides mutex-guarded repositories for tests and local runs
// without Postgres. Records are copied in and out so callers never share state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/application"
	"admissions/internal/domain/booking"
	"admissions/internal/domain/event"
	"admissions/internal/domain/user"

	"github.com/google/uuid"
)

type ApplicationStore struct {
	mu   sync.Mutex
	apps map[uuid.UUID]application.Application
}

func NewApplicationStore() *ApplicationStore {
	return &ApplicationStore{apps: map[uuid.UUID]application.Application{}}
}

func (s *ApplicationStore) Create(_ context.Context, a *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(a); err != nil {
		return err
	}
	s.apps[a.ID] = *a
	return nil
}

func (s *ApplicationStore) checkUnique(a *application.Application) error {
	for id, other := range s.apps {
		if id == a.ID || other.Kind != a.Kind {
			continue
		}
		if other.Email == a.Email {
			return core.Duplicate("create_application", "An application with this email already exists")
		}
		if other.Mobile == a.Mobile {
			return core.Duplicate("create_application", "An application with this mobile number already exists")
		}
	}
	return nil
}

func (s *ApplicationStore) FindByID(_ context.Context, kind application.Kind, id uuid.UUID) (*application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Kind != kind {
		return nil, notFound(kind)
	}
	return &a, nil
}

func (s *ApplicationStore) List(_ context.Context, kind application.Kind, q application.ListQuery) ([]*application.Application, int, error) {
	s.mu.Lock()
	var matched []*application.Application
	for _, a := range s.apps {
		if a.Kind == kind && q.Matches(&a) {
			cp := a
			matched = append(matched, &cp)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if q.Descending() {
			return lessBy(q.SortBy, matched[j], matched[i])
		}
		return lessBy(q.SortBy, matched[i], matched[j])
	})

	total := len(matched)
	start := q.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && q.Limit < total-start {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

func lessBy(field string, a, b *application.Application) bool {
	switch field {
	case "name":
		return a.Name < b.Name
	case "email":
		return a.Email < b.Email
	case "city":
		return a.City < b.City
	case "state":
		return a.State < b.State
	case "stream":
		return a.Stream < b.Stream
	case "paymentStatus":
		return a.PaymentStatus < b.PaymentStatus
	default:
		return a.ApplicationDate.Before(b.ApplicationDate)
	}
}

func (s *ApplicationStore) Delete(_ context.Context, kind application.Kind, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Kind != kind {
		return notFound(kind)
	}
	delete(s.apps, id)
	return nil
}

// ApplyPatch holds the store lock across read, apply and write.
func (s *ApplicationStore) ApplyPatch(_ context.Context, kind application.Kind, id uuid.UUID, p application.Patch) (application.Status, *application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Kind != kind {
		return "", nil, notFound(kind)
	}
	prev := a.PaymentStatus
	if err := a.Apply(p); err != nil {
		return "", nil, err
	}
	if err := s.checkUnique(&a); err != nil {
		return "", nil, err
	}
	s.apps[id] = a
	out := a
	return prev, &out, nil
}

func (s *ApplicationStore) Stats(_ context.Context, kind application.Kind) (application.Stats, error) {
	s.mu.Lock()
	var apps []*application.Application
	for _, a := range s.apps {
		if a.Kind == kind {
			cp := a
			apps = append(apps, &cp)
		}
	}
	s.mu.Unlock()
	return application.ComputeStats(kind, apps), nil
}

func notFound(kind application.Kind) error {
	return core.NotFound("find_application", kind.Label()+" Application not found")
}

type BookingStore struct {
	mu       sync.Mutex
	bookings []booking.Booking
}

func NewBookingStore() *BookingStore { return &BookingStore{} }

func (s *BookingStore) Create(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *BookingStore) List(_ context.Context) ([]*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, 0, len(s.bookings))
	for i := range s.bookings {
		b := s.bookings[i]
		out = append(out, &b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[uuid.UUID]user.User{}}
}

func (s *UserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return core.Duplicate("create_user", "User already exists")
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.NotFound("find_user", "User not found")
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, core.NotFound("find_user", "User not found")
}

func (s *UserStore) Update(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return core.NotFound("update_user", "User not found")
	}
	s.users[u.ID] = *u
	return nil
}

type EventStore struct {
	mu     sync.Mutex
	events []event.Event
}

func NewEventStore() *EventStore { return &EventStore{} }

func (s *EventStore) Save(_ context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

func (s *EventStore) FindByOrderID(_ context.Context, orderID string) ([]*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*event.Event
	for i := range s.events {
		if s.events[i].OrderID == orderID {
			e := s.events[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

// Count returns how many events of type t were recorded.
func (s *EventStore) Count(t event.Type) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Denylist is an in-process token denylist.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{revoked: map[string]time.Time{}, now: time.Now}
}

func (d *Denylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = d.now().Add(ttl)
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.revoked[jti]
	return ok && d.now().Before(exp), nil
}
