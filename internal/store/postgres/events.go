package postgres

import (
	"context"

	"admissions/internal/domain/event"

	"github.com/jackc/pgx/v5/pgxpool"
)

// eventRepository persists the append-only payment audit trail
type eventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *eventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Save(ctx context.Context, e *event.Event) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_events (id, event_type, order_id, payment_id, application_id,
		                            application_kind, amount, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, string(e.Type), e.OrderID, e.PaymentID, e.ApplicationID,
		e.ApplicationKind, e.Amount, e.Detail, e.CreatedAt)
	return translate("save_event", err, "")
}

// FindByOrderID returns the trail of one gateway order, oldest first.
func (r *eventRepository) FindByOrderID(ctx context.Context, orderID string) ([]*event.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, event_type, order_id, payment_id, application_id, application_kind,
		       amount, detail, created_at
		  FROM payment_events
		 WHERE order_id = $1
		 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, translate("find_events", err, "")
	}
	defer rows.Close()

	var out []*event.Event
	for rows.Next() {
		var e event.Event
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.OrderID, &e.PaymentID, &e.ApplicationID,
			&e.ApplicationKind, &e.Amount, &e.Detail, &e.CreatedAt); err != nil {
			return nil, translate("find_events", err, "")
		}
		e.Type = event.Type(typ)
		out = append(out, &e)
	}
	return out, translate("find_events", rows.Err(), "")
}
