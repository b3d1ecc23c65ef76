package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/google/uuid"
)

// PGEventRepository is the append-only event log. Rows double as the outbox that the
// worker relays to Kafka.
type PGEventRepository struct {
	db Querier
}

func NewEventRepository(db Querier) EventRepository {
	return &PGEventRepository{db: db}
}

func (r *PGEventRepository) Append(ctx context.Context, e *domain.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	var bookingID *int64
	if e.BookingID != 0 {
		bookingID = &e.BookingID
	}
	_, err = r.db.Exec(ctx, `INSERT INTO events (id, type, booking_id, flight_number, payload, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID.String(), string(e.Type), bookingID, e.FlightNumber, payload, e.OccurredAt)
	return err
}

func (r *PGEventRepository) ListUnpublished(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT payload FROM events WHERE published_at IS NULL ORDER BY seq LIMIT $1 FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e domain.Event
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode event payload: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *PGEventRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	_, err := r.db.Exec(ctx, `UPDATE events SET published_at=$2 WHERE id = ANY($1)`, keys, at)
	return err
}

var _ EventRepository = (*PGEventRepository)(nil)
