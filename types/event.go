package types

import (
	"strings"
	"time"
)

// DefaultMaxAttendees is the capacity used when an event does not set one.
const DefaultMaxAttendees = 100

// Event is a scheduled gathering users can RSVP to.
type Event struct {
	// ID is the unique identifier of the event.
	ID int64 `json:"id" db:"id"`

	// Title is the name of the event.
	Title string `json:"title" db:"title"`

	// Date is the day the event takes place.
	Date time.Time `json:"date" db:"date"`

	// Time is an optional free-form start time such as "18:30".
	Time string `json:"time" db:"time"`

	// Location is where the event takes place.
	Location string `json:"location" db:"location"`

	// Description is optional detail about the event.
	Description string `json:"description" db:"description"`

	// MaxAttendees caps the number of RSVPs.
	MaxAttendees int `json:"maxAttendees" db:"max_attendees"`

	// CreatedBy is the admin that created the event, if still present.
	CreatedBy *int64 `json:"createdBy" db:"created_by"`

	// RSVPs holds attendee IDs in RSVP order. It never exceeds MaxAttendees.
	RSVPs []int64 `json:"rsvps" db:"-"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// EventInput is the editable part of an event. Date accepts either
// YYYY-MM-DD or RFC 3339. MaxAttendees of zero means the default capacity.
type EventInput struct {
	Title        string `json:"title" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time"`
	Location     string `json:"location" validate:"required"`
	Description  string `json:"description"`
	MaxAttendees int    `json:"maxAttendees" validate:"gte=0"`
}

// EventUpdate carries a partial edit of an event. Nil fields are left
// untouched, blank title, date or location keep the current value and a
// MaxAttendees of zero keeps the current capacity.
type EventUpdate struct {
	Title        *string `json:"title"`
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	Location     *string `json:"location"`
	Description  *string `json:"description"`
	MaxAttendees *int    `json:"maxAttendees" validate:"omitempty,gte=0"`
}

// Apply copies the edit onto e. It fails only when Date cannot be parsed.
func (u EventUpdate) Apply(e *Event) error {
	if u.Date != nil && strings.TrimSpace(*u.Date) != "" {
		date, err := ParseEventDate(strings.TrimSpace(*u.Date))
		if err != nil {
			return err
		}
		e.Date = date
	}
	setNonBlank(&e.Title, u.Title)
	setNonBlank(&e.Location, u.Location)
	setString(&e.Time, u.Time)
	setString(&e.Description, u.Description)
	if u.MaxAttendees != nil && *u.MaxAttendees > 0 {
		e.MaxAttendees = *u.MaxAttendees
	}
	return nil
}

// ParseEventDate parses the date formats accepted in EventInput.
func ParseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
