package services

import (
	"context"
	"testing"

	"github.com/alumnet/apiserver/types"
)

func TestEventCapacityScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Root", "root@admin.com", 0)
	a := f.register(t, "A", "a@college.edu", 0)
	b := f.register(t, "B", "b@college.edu", 0)

	event, err := f.events.Create(ctx, admin, types.EventInput{
		Title:        "Mixer",
		Date:         "2026-06-01",
		Location:     "Hall",
		MaxAttendees: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	steps := []struct {
		actor     Actor
		wantErr   error
		wantRSVPs []int64
	}{
		{a, nil, []int64{a.ID}},
		{b, ErrConflict, []int64{a.ID}},
		{a, nil, []int64{}},
		{b, nil, []int64{b.ID}},
	}
	for i, step := range steps {
		res, err := f.events.ToggleRSVP(ctx, step.actor, event.ID)
		if step.wantErr != nil {
			assertKind(t, err, step.wantErr)
			if msg, _ := Message(err); msg != "Event is full" {
				t.Fatalf("step %d: message = %q", i, msg)
			}
		} else if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}

		current, err := f.events.Get(ctx, event.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !equalIDs(current.RSVPs, step.wantRSVPs) {
			t.Fatalf("step %d: rsvps = %v, want %v", i, current.RSVPs, step.wantRSVPs)
		}
		if step.wantErr == nil && res.Attending != (len(step.wantRSVPs) > 0) {
			t.Fatalf("step %d: attending = %v", i, res.Attending)
		}
	}
}

func TestEventDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Root", "root@admin.com", 0)
	ann := f.register(t, "Ann", "ann@example.com", 2010)

	event, err := f.events.Create(ctx, admin, types.EventInput{Title: "Gala", Date: "2026-12-01T18:00:00Z", Location: "Ballroom"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.MaxAttendees != types.DefaultMaxAttendees {
		t.Fatalf("maxAttendees = %d, want default", event.MaxAttendees)
	}

	_, err = f.events.Create(ctx, ann, types.EventInput{Title: "Gala", Date: "2026-12-01", Location: "Ballroom"})
	assertKind(t, err, ErrForbidden)

	bad := []types.EventInput{
		{Date: "2026-12-01", Location: "Ballroom"},
		{Title: "Gala", Date: "next friday", Location: "Ballroom"},
		{Title: "Gala", Date: "2026-12-01"},
		{Title: "Gala", Date: "2026-12-01", Location: "Ballroom", MaxAttendees: -1},
	}
	for i, in := range bad {
		if _, err := f.events.Create(ctx, admin, in); err == nil {
			t.Fatalf("input %d: expected validation error", i)
		} else {
			assertKind(t, err, ErrValidation)
		}
	}
}

func TestEventUpdateCannotDropBelowRSVPs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Root", "root@admin.com", 0)
	a := f.register(t, "A", "a@college.edu", 0)
	b := f.register(t, "B", "b@college.edu", 0)

	in := types.EventInput{Title: "Mixer", Date: "2026-06-01", Location: "Hall", MaxAttendees: 5}
	event, err := f.events.Create(ctx, admin, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, actor := range []Actor{a, b} {
		if _, err := f.events.ToggleRSVP(ctx, actor, event.ID); err != nil {
			t.Fatalf("ToggleRSVP: %v", err)
		}
	}

	_, err = f.events.Update(ctx, admin, event.ID, types.EventUpdate{MaxAttendees: intPtr(1)})
	assertKind(t, err, ErrConflict)

	updated, err := f.events.Update(ctx, admin, event.ID, types.EventUpdate{MaxAttendees: intPtr(2)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MaxAttendees != 2 || len(updated.RSVPs) != 2 {
		t.Fatalf("unexpected event: %+v", updated)
	}

	_, err = f.events.Update(ctx, admin, 999, types.EventUpdate{MaxAttendees: intPtr(2)})
	assertKind(t, err, ErrNotFound)
}

func TestEventUpdateMergesPartialEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Root", "root@admin.com", 0)
	student := f.register(t, "S", "s@college.edu", 0)

	in := types.EventInput{
		Title:        "Mixer",
		Date:         "2026-06-01",
		Time:         "18:30",
		Location:     "Hall",
		Description:  "Drinks",
		MaxAttendees: 5,
	}
	event, err := f.events.Create(ctx, admin, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = f.events.Update(ctx, student, event.ID, types.EventUpdate{MaxAttendees: intPtr(10)})
	assertKind(t, err, ErrForbidden)

	updated, err := f.events.Update(ctx, admin, event.ID, types.EventUpdate{MaxAttendees: intPtr(10)})
	if err != nil {
		t.Fatalf("Update capacity: %v", err)
	}
	if updated.MaxAttendees != 10 || updated.Title != "Mixer" || updated.Time != "18:30" ||
		updated.Description != "Drinks" || updated.Location != "Hall" || !updated.Date.Equal(event.Date) {
		t.Fatalf("capacity edit changed other fields: %+v", updated)
	}

	title := "Summer Mixer"
	updated, err = f.events.Update(ctx, admin, event.ID, types.EventUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update title: %v", err)
	}
	if updated.Title != "Summer Mixer" || updated.Time != "18:30" || updated.Description != "Drinks" || updated.MaxAttendees != 10 {
		t.Fatalf("title edit changed other fields: %+v", updated)
	}

	date := "2026-07-04"
	blank := ""
	updated, err = f.events.Update(ctx, admin, event.ID, types.EventUpdate{Date: &date, Description: &blank, MaxAttendees: intPtr(0)})
	if err != nil {
		t.Fatalf("Update date: %v", err)
	}
	if updated.Date.Format("2006-01-02") != date || updated.Description != "" || updated.MaxAttendees != 10 {
		t.Fatalf("unexpected event: %+v", updated)
	}

	bad := "July 4th"
	_, err = f.events.Update(ctx, admin, event.ID, types.EventUpdate{Date: &bad})
	assertKind(t, err, ErrValidation)

	_, err = f.events.Update(ctx, admin, event.ID, types.EventUpdate{MaxAttendees: intPtr(-1)})
	assertKind(t, err, ErrValidation)
}

func TestRSVPUnknownEvent(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A", "a@college.edu", 0)
	_, err := f.events.ToggleRSVP(context.Background(), a, 42)
	assertKind(t, err, ErrNotFound)
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
