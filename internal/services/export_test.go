package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alumnet/apiserver/internal/store/memory"
	"github.com/alumnet/apiserver/types"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newExportFixture(t *testing.T) (*fixture, *ExportService) {
	t.Helper()
	f := newFixture(t)
	svc := NewExportService(memory.NewUserRepository(f.db), memory.NewEventRepository(f.db), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f, svc
}

func TestDirectoryExport(t *testing.T) {
	f, svc := newExportFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Root", "root@admin.com", 0)
	f.register(t, "Ann", "ann@example.com", 2010)
	sam := f.register(t, "Sam", "sam@college.edu", 0)

	_, _, err := svc.Directory(ctx, sam, types.UserFilter{})
	assertKind(t, err, ErrForbidden)

	buf, filename, err := svc.Directory(ctx, admin, types.UserFilter{Role: types.RoleAlumni})
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	if filename != "alumni-directory-2026-03-01.xlsx" {
		t.Fatalf("filename = %q", filename)
	}

	wb, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(directorySheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one alumnus", len(rows))
	}
	if rows[0][0] != "Name" || rows[1][0] != "Ann" || rows[1][3] != "2010" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestCalendarExport(t *testing.T) {
	f, svc := newExportFixture(t)
	ctx := context.Background()
	admin := f.register(t, "Root", "root@admin.com", 0)

	timed, err := f.events.Create(ctx, admin, types.EventInput{Title: "Reunion", Date: "2026-06-01", Time: "6:30 pm", Location: "Main Hall"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.events.Create(ctx, admin, types.EventInput{Title: "Career Fair", Date: "2026-07-01", Location: "Gym"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	feed, err := svc.Calendar(ctx)
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Reunion",
		"SUMMARY:Career Fair",
		"DTSTART:20260601T183000Z",
		"DTSTART;VALUE=DATE:20260701",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed missing %q:\n%s", want, feed)
		}
	}

	single, err := svc.EventCalendar(ctx, timed.ID)
	if err != nil {
		t.Fatalf("EventCalendar: %v", err)
	}
	if strings.Count(single, "BEGIN:VEVENT") != 1 {
		t.Fatalf("expected one event:\n%s", single)
	}

	_, err = svc.EventCalendar(ctx, 999)
	assertKind(t, err, ErrNotFound)
}

func TestEventStart(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"18:30", "2026-06-01T18:30:00Z", true},
		{"6:30 pm", "2026-06-01T18:30:00Z", true},
		{"7PM", "2026-06-01T19:00:00Z", true},
		{"", "", false},
		{"evening", "", false},
	}
	for _, tt := range tests {
		got, ok := eventStart(types.Event{Date: date, Time: tt.raw})
		if ok != tt.ok {
			t.Fatalf("%q: ok = %v", tt.raw, ok)
		}
		if ok && got.Format(time.RFC3339) != tt.want {
			t.Fatalf("%q: got %s, want %s", tt.raw, got.Format(time.RFC3339), tt.want)
		}
	}
}
