package services

import (
	"context"
	"strings"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/types"
)

// EventRepository defines persistence operations for events.
type EventRepository interface {
	List(ctx context.Context) ([]types.Event, error)
	GetByID(ctx context.Context, id int64) (types.Event, error)
	Create(ctx context.Context, event types.Event) (types.Event, error)
	Update(ctx context.Context, event types.Event) (types.Event, error)
	Delete(ctx context.Context, id int64) error
	ToggleRSVP(ctx context.Context, eventID, userID int64) (types.Event, membership.Outcome, error)
}

const dateFormatMessage = "date must be YYYY-MM-DD or RFC 3339"

// RSVPResult reports the outcome of an RSVP toggle.
type RSVPResult struct {
	RSVPs     []int64     `json:"rsvps"`
	Attending bool        `json:"attending"`
	Event     types.Event `json:"event"`
}

// EventService encapsulates event use-cases.
type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) List(ctx context.Context) ([]types.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventService) Get(ctx context.Context, id int64) (types.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	return event, translate(err, "Event")
}

// Create schedules an event. Admin only.
func (s *EventService) Create(ctx context.Context, actor Actor, input types.EventInput) (types.Event, error) {
	if !actor.IsAdmin() {
		return types.Event{}, forbiddenError("Only admins can manage events")
	}
	event, err := eventFromInput(input)
	if err != nil {
		return types.Event{}, err
	}
	creator := actor.ID
	event.CreatedBy = &creator
	return s.repo.Create(ctx, event)
}

// Update merges a partial edit onto an event. Capacity cannot drop below the
// current RSVP count; the store checks that under the row lock.
func (s *EventService) Update(ctx context.Context, actor Actor, id int64, update types.EventUpdate) (types.Event, error) {
	if !actor.IsAdmin() {
		return types.Event{}, forbiddenError("Only admins can manage events")
	}
	if err := validateStruct(update); err != nil {
		return types.Event{}, err
	}
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Event{}, translate(err, "Event")
	}
	if err := update.Apply(&event); err != nil {
		return types.Event{}, validationError(dateFormatMessage)
	}
	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		if isCapacityExceeded(err) {
			return types.Event{}, conflictError("maxAttendees cannot be below the current number of RSVPs")
		}
		return types.Event{}, translate(err, "Event")
	}
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsAdmin() {
		return forbiddenError("Only admins can manage events")
	}
	return translate(s.repo.Delete(ctx, id), "Event")
}

// ToggleRSVP adds or removes the actor from the event's attendee list.
func (s *EventService) ToggleRSVP(ctx context.Context, actor Actor, id int64) (RSVPResult, error) {
	event, outcome, err := s.repo.ToggleRSVP(ctx, id, actor.ID)
	if err != nil {
		return RSVPResult{}, translate(err, "Event")
	}
	return RSVPResult{
		RSVPs:     event.RSVPs,
		Attending: outcome == membership.Added,
		Event:     event,
	}, nil
}

func eventFromInput(in types.EventInput) (types.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.Location = strings.TrimSpace(in.Location)
	if err := validateStruct(in); err != nil {
		return types.Event{}, err
	}
	date, err := types.ParseEventDate(in.Date)
	if err != nil {
		return types.Event{}, validationError(dateFormatMessage)
	}
	capacity := in.MaxAttendees
	if capacity == 0 {
		capacity = types.DefaultMaxAttendees
	}
	return types.Event{
		Title:        in.Title,
		Date:         date,
		Time:         strings.TrimSpace(in.Time),
		Location:     in.Location,
		Description:  strings.TrimSpace(in.Description),
		MaxAttendees: capacity,
	}, nil
}
