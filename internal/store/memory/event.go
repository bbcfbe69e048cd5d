package memory

import (
	"context"
	"sort"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/internal/store"
	"github.com/alumnet/apiserver/types"
)

// EventRepository is the in-memory event registry.
type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

func viewEvent(event types.Event) types.Event {
	event.RSVPs = cloneIDs(event.RSVPs)
	return event
}

func (r *EventRepository) List(_ context.Context) ([]types.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	events := make([]types.Event, 0, len(r.db.events))
	for _, event := range r.db.events {
		events = append(events, viewEvent(event))
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (r *EventRepository) GetByID(_ context.Context, id int64) (types.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	event, ok := r.db.events[id]
	if !ok {
		return types.Event{}, store.ErrNotFound
	}
	return viewEvent(event), nil
}

func (r *EventRepository) Create(_ context.Context, event types.Event) (types.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	event.ID = r.db.nextID()
	event.CreatedAt = r.db.now()
	event.RSVPs = []int64{}
	r.db.events[event.ID] = event
	return viewEvent(event), nil
}

func (r *EventRepository) Update(_ context.Context, event types.Event) (types.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.events[event.ID]
	if !ok {
		return types.Event{}, store.ErrNotFound
	}
	if event.MaxAttendees < len(existing.RSVPs) {
		return types.Event{}, membership.ErrCapacityExceeded
	}
	existing.Title = event.Title
	existing.Date = event.Date
	existing.Time = event.Time
	existing.Location = event.Location
	existing.Description = event.Description
	existing.MaxAttendees = event.MaxAttendees
	r.db.events[event.ID] = existing
	return viewEvent(existing), nil
}

func (r *EventRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.events, id)
	return nil
}

func (r *EventRepository) ToggleRSVP(_ context.Context, eventID, userID int64) (types.Event, membership.Outcome, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	event, ok := r.db.events[eventID]
	if !ok {
		return types.Event{}, 0, store.ErrNotFound
	}
	rsvps, outcome, err := membership.Toggle(event.RSVPs, userID, event.MaxAttendees)
	if err != nil {
		return types.Event{}, 0, err
	}
	event.RSVPs = rsvps
	r.db.events[eventID] = event
	return viewEvent(event), outcome, nil
}
