package postgres

import (
	"context"

	"admissions/internal/domain/booking"

	"github.com/jackc/pgx/v5/pgxpool"
)

type bookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *bookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (id, name, mobile, email, student_class, interest, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.Name, b.Mobile, b.Email, b.StudentClass, b.Interest, b.CreatedAt, b.UpdatedAt)
	return translate("create_booking", err, "")
}

// List returns every booking, newest first.
func (r *bookingRepository) List(ctx context.Context) ([]*booking.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, mobile, email, student_class, interest, created_at, updated_at
		  FROM bookings
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, translate("list_bookings", err, "")
	}
	defer rows.Close()

	out := []*booking.Booking{}
	for rows.Next() {
		var b booking.Booking
		if err := rows.Scan(&b.ID, &b.Name, &b.Mobile, &b.Email, &b.StudentClass, &b.Interest, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, translate("list_bookings", err, "")
		}
		out = append(out, &b)
	}
	return out, translate("list_bookings", rows.Err(), "")
}
