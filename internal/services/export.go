package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alumnet/apiserver/types"
	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const directorySheet = "Directory"

var directoryColumns = []struct {
	title string
	width float64
	value func(types.User) any
}{
	{"Name", 24, func(u types.User) any { return u.Name }},
	{"Email", 30, func(u types.User) any { return u.Email }},
	{"Role", 10, func(u types.User) any { return string(u.Role) }},
	{"Graduation Year", 16, func(u types.User) any {
		if u.GraduationYear == nil {
			return ""
		}
		return *u.GraduationYear
	}},
	{"Department", 22, func(u types.User) any { return u.Department }},
	{"Company", 22, func(u types.User) any { return u.Company }},
	{"Position", 22, func(u types.User) any { return u.Position }},
	{"Location", 18, func(u types.User) any { return u.Location }},
	{"LinkedIn", 30, func(u types.User) any { return u.LinkedIn }},
	{"Phone", 16, func(u types.User) any { return u.Phone }},
}

// ExportService renders the directory and event schedule as downloadable
// documents.
type ExportService struct {
	users  UserRepository
	events EventRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewExportService(users UserRepository, events EventRepository, logger *zap.Logger) *ExportService {
	return &ExportService{users: users, events: events, logger: logger, now: time.Now}
}

// Directory exports the filtered directory as an .xlsx workbook and returns
// it with a suggested filename.
func (s *ExportService) Directory(ctx context.Context, actor Actor, filter types.UserFilter) (*bytes.Buffer, string, error) {
	if !actor.IsAdmin() {
		return nil, "", forbiddenError("Not authorized")
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, "", validationError("role must be one of: student alumni admin")
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(directorySheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", err
	}

	for i, col := range directoryColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(directorySheet, name, name, col.width); err != nil {
			return nil, "", err
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(directorySheet, cell, col.title); err != nil {
			return nil, "", err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(directoryColumns), 1)
	if err := f.SetCellStyle(directorySheet, "A1", last, headerStyle); err != nil {
		return nil, "", err
	}

	for r, u := range users {
		for c, col := range directoryColumns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(directorySheet, cell, col.value(u)); err != nil {
				return nil, "", err
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write directory workbook", zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("alumni-directory-%s.xlsx", s.now().UTC().Format("2006-01-02"))
	return buf, filename, nil
}

// Calendar renders every event as an iCalendar feed.
func (s *ExportService) Calendar(ctx context.Context) (string, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return "", err
	}
	return s.renderCalendar(events), nil
}

// EventCalendar renders a single event as an iCalendar document.
func (s *ExportService) EventCalendar(ctx context.Context, id int64) (string, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return "", translate(err, "Event")
	}
	return s.renderCalendar([]types.Event{event}), nil
}

func (s *ExportService) renderCalendar(events []types.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Alumni Network//Events//EN")
	cal.SetName("Alumni Network Events")

	stamp := s.now().UTC()
	for _, e := range events {
		vevent := cal.AddEvent(fmt.Sprintf("event-%d@alumnet", e.ID))
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(e.Title)
		vevent.SetLocation(e.Location)
		if e.Description != "" {
			vevent.SetDescription(e.Description)
		}
		if start, ok := eventStart(e); ok {
			vevent.SetStartAt(start)
			vevent.SetEndAt(start.Add(2 * time.Hour))
		} else {
			vevent.SetAllDayStartAt(e.Date)
			vevent.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
		}
	}
	return cal.Serialize()
}

// eventStart combines the event date with its free-form time when the time
// parses as a clock time.
func eventStart(e types.Event) (time.Time, bool) {
	raw := strings.TrimSpace(e.Time)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"} {
		t, err := time.Parse(layout, strings.ToUpper(raw))
		if err != nil {
			continue
		}
		d := e.Date.UTC()
		return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
