package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/types"
	"github.com/lib/pq"
)

const eventColumns = `id, title, event_date, start_time, location, description, max_attendees, created_by, created_at`

// EventRepository handles persistence for events and RSVPs.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row rowScanner) (types.Event, error) {
	var (
		event     types.Event
		createdBy sql.NullInt64
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.Description,
		&event.MaxAttendees,
		&createdBy,
		&event.CreatedAt,
	); err != nil {
		return types.Event{}, err
	}
	if createdBy.Valid {
		id := createdBy.Int64
		event.CreatedBy = &id
	}
	event.RSVPs = []int64{}
	return event, nil
}

// List returns events in date order.
func (r *EventRepository) List(ctx context.Context) ([]types.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events ORDER BY event_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []types.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := attachRSVPs(ctx, r.db, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (types.Event, error) {
	return getEvent(ctx, r.db, id)
}

func getEvent(ctx context.Context, q queryer, id int64) (types.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Event{}, ErrNotFound
		}
		return types.Event{}, err
	}
	events := []types.Event{event}
	if err := attachRSVPs(ctx, q, events); err != nil {
		return types.Event{}, err
	}
	return events[0], nil
}

func (r *EventRepository) Create(ctx context.Context, event types.Event) (types.Event, error) {
	event.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO events (title, event_date, start_time, location, description, max_attendees, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		event.Title,
		event.Date,
		event.Time,
		event.Location,
		event.Description,
		event.MaxAttendees,
		event.CreatedBy,
		event.CreatedAt,
	).Scan(&event.ID); err != nil {
		return types.Event{}, err
	}
	event.RSVPs = []int64{}
	return event, nil
}

// Update rewrites the editable fields. Lowering MaxAttendees below the
// current number of RSVPs fails with membership.ErrCapacityExceeded.
func (r *EventRepository) Update(ctx context.Context, event types.Event) (types.Event, error) {
	var updated types.Event
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "events", event.ID); err != nil {
			return err
		}
		rsvps, err := memberIDs(ctx, tx, "event_rsvps", "event_id", "user_id", event.ID)
		if err != nil {
			return err
		}
		if event.MaxAttendees < len(rsvps) {
			return membership.ErrCapacityExceeded
		}

		const query = `
			UPDATE events
			SET title = $1,
				event_date = $2,
				start_time = $3,
				location = $4,
				description = $5,
				max_attendees = $6
			WHERE id = $7`
		if _, err := tx.ExecContext(
			ctx,
			query,
			event.Title,
			event.Date,
			event.Time,
			event.Location,
			event.Description,
			event.MaxAttendees,
			event.ID,
		); err != nil {
			return err
		}

		updated, err = getEvent(ctx, tx, event.ID)
		return err
	})
	if err != nil {
		return types.Event{}, err
	}
	return updated, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM events WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleRSVP adds or removes userID from the event's RSVPs. The event row is
// locked for the duration, so concurrent toggles serialize and the capacity
// check always sees the committed attendee list.
func (r *EventRepository) ToggleRSVP(ctx context.Context, eventID, userID int64) (types.Event, membership.Outcome, error) {
	var (
		event   types.Event
		outcome membership.Outcome
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var capacity int
		const lock = `SELECT max_attendees FROM events WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowContext(ctx, lock, eventID).Scan(&capacity); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		rsvps, err := memberIDs(ctx, tx, "event_rsvps", "event_id", "user_id", eventID)
		if err != nil {
			return err
		}
		_, outcome, err = membership.Toggle(rsvps, userID, capacity)
		if err != nil {
			return err
		}

		switch outcome {
		case membership.Removed:
			const remove = `DELETE FROM event_rsvps WHERE event_id = $1 AND user_id = $2`
			if _, err := tx.ExecContext(ctx, remove, eventID, userID); err != nil {
				return err
			}
		case membership.Added:
			const insert = `INSERT INTO event_rsvps (event_id, user_id, created_at) VALUES ($1, $2, $3)`
			if _, err := tx.ExecContext(ctx, insert, eventID, userID, time.Now().UTC()); err != nil {
				return err
			}
		}

		event, err = getEvent(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return types.Event{}, 0, err
	}
	return event, outcome, nil
}

func attachRSVPs(ctx context.Context, q queryer, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]int64, len(events))
	index := make(map[int64]int, len(events))
	for i, event := range events {
		ids[i] = event.ID
		index[event.ID] = i
	}

	const query = `SELECT event_id, user_id FROM event_rsvps WHERE event_id = ANY($1) ORDER BY id`
	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, userID int64
		if err := rows.Scan(&eventID, &userID); err != nil {
			return err
		}
		i := index[eventID]
		events[i].RSVPs = append(events[i].RSVPs, userID)
	}
	return rows.Err()
}
