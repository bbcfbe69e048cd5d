package handlers

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/alumnet/apiserver/internal/services"
)

type jobBody struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

func TestJobRoutes(t *testing.T) {
	api := newTestAPI(t)
	alum := api.register(t, "Ada", "ada@gmail.com", 2010)
	other := api.register(t, "Bob", "bob@gmail.com", 2011)
	student := api.register(t, "Stu", "stu@college.edu", 0)
	input := map[string]any{"title": "Backend Engineer", "company": "Acme", "description": "Go services"}

	status, data := api.do(t, http.MethodPost, "/api/jobs", student.Token, input)
	if status != http.StatusForbidden {
		t.Fatalf("student post status = %d, want 403 (%s)", status, data)
	}

	var job jobBody
	api.expect(t, http.MethodPost, "/api/jobs", alum.Token, input, http.StatusCreated, &job)

	var jobs []jobBody
	api.expect(t, http.MethodGet, "/api/jobs?search=acme", "", nil, http.StatusOK, &jobs)
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Fatalf("jobs = %+v", jobs)
	}

	var applied ApplyResponse
	api.expect(t, http.MethodPost, pathf("/api/jobs/%d/apply", job.ID), student.Token, nil, http.StatusOK, &applied)
	if applied.Message != "Application submitted" || len(applied.Job.Applications) != 1 {
		t.Fatalf("apply = %+v", applied)
	}
	status, data = api.do(t, http.MethodPost, pathf("/api/jobs/%d/apply", job.ID), student.Token, nil)
	if status != http.StatusBadRequest || errorMessage(t, data) != "Already applied" {
		t.Fatalf("second apply = %d %s", status, data)
	}
	status, data = api.do(t, http.MethodPost, pathf("/api/jobs/%d/apply", job.ID), alum.Token, nil)
	if status != http.StatusForbidden || errorMessage(t, data) != "Only students can apply" {
		t.Fatalf("alumni apply = %d %s", status, data)
	}

	status, _ = api.do(t, http.MethodPut, pathf("/api/jobs/%d", job.ID), other.Token, input)
	if status != http.StatusForbidden {
		t.Fatalf("non-owner update status = %d, want 403", status)
	}

	var edited jobBody
	api.expect(t, http.MethodPut, pathf("/api/jobs/%d", job.ID), alum.Token, map[string]any{"title": "New title"}, http.StatusOK, &edited)
	if edited.Title != "New title" || edited.Company != "Acme" {
		t.Fatalf("partial update = %+v", edited)
	}

	var msg MessageResponse
	api.expect(t, http.MethodDelete, pathf("/api/jobs/%d", job.ID), alum.Token, nil, http.StatusOK, &msg)
	if msg.Message != "Job removed" {
		t.Fatalf("message = %q", msg.Message)
	}
	status, data = api.do(t, http.MethodGet, pathf("/api/jobs/%d", job.ID), "", nil)
	if status != http.StatusNotFound || errorMessage(t, data) != "Job not found" {
		t.Fatalf("deleted job = %d %s", status, data)
	}

	status, _ = api.do(t, http.MethodGet, "/api/jobs/abc", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", status)
	}
}

func TestEventRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "Root", "root@admin.com", 0)
	a := api.register(t, "Ada", "ada@gmail.com", 2010)
	b := api.register(t, "Stu", "stu@college.edu", 0)
	input := map[string]any{
		"title": "Reunion", "date": "2030-06-01", "time": "18:00",
		"location": "Main Hall", "maxAttendees": 1,
	}

	status, _ := api.do(t, http.MethodPost, "/api/events", a.Token, input)
	if status != http.StatusForbidden {
		t.Fatalf("non-admin create status = %d, want 403", status)
	}

	var event struct {
		ID int64 `json:"id"`
	}
	api.expect(t, http.MethodPost, "/api/events", admin.Token, input, http.StatusCreated, &event)

	var rsvp services.RSVPResult
	api.expect(t, http.MethodPost, pathf("/api/events/%d/rsvp", event.ID), a.Token, nil, http.StatusOK, &rsvp)
	if !rsvp.Attending || len(rsvp.RSVPs) != 1 {
		t.Fatalf("rsvp = %+v", rsvp)
	}
	status, data := api.do(t, http.MethodPost, pathf("/api/events/%d/rsvp", event.ID), b.Token, nil)
	if status != http.StatusBadRequest || errorMessage(t, data) != "Event is full" {
		t.Fatalf("full rsvp = %d %s", status, data)
	}
	api.expect(t, http.MethodPost, pathf("/api/events/%d/rsvp", event.ID), a.Token, nil, http.StatusOK, &rsvp)
	if rsvp.Attending || len(rsvp.RSVPs) != 0 {
		t.Fatalf("cancel rsvp = %+v", rsvp)
	}

	var edited struct {
		Title        string `json:"title"`
		Time         string `json:"time"`
		Location     string `json:"location"`
		MaxAttendees int    `json:"maxAttendees"`
	}
	api.expect(t, http.MethodPut, pathf("/api/events/%d", event.ID), admin.Token, map[string]any{"maxAttendees": 10}, http.StatusOK, &edited)
	if edited.MaxAttendees != 10 || edited.Title != "Reunion" || edited.Time != "18:00" || edited.Location != "Main Hall" {
		t.Fatalf("partial update = %+v", edited)
	}
	status, data = api.do(t, http.MethodPut, pathf("/api/events/%d", event.ID), admin.Token, map[string]any{"date": "soon"})
	if status != http.StatusBadRequest {
		t.Fatalf("bad date update = %d %s", status, data)
	}

	resp, err := api.server.Client().Get(api.server.URL + pathf("/api/events/%d/calendar.ics", event.ID))
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(body), "SUMMARY:Reunion") {
		t.Fatalf("calendar body = %s", body)
	}

	var msg MessageResponse
	api.expect(t, http.MethodDelete, pathf("/api/events/%d", event.ID), admin.Token, nil, http.StatusOK, &msg)
	if msg.Message != "Event deleted successfully" {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestNewsRoutes(t *testing.T) {
	api := newTestAPI(t)
	alum := api.register(t, "Ada", "ada@gmail.com", 2010)
	student := api.register(t, "Stu", "stu@college.edu", 0)

	status, _ := api.do(t, http.MethodGet, "/api/news", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous feed status = %d, want 401", status)
	}
	status, _ = api.do(t, http.MethodPost, "/api/news", student.Token, map[string]string{"content": "hi"})
	if status != http.StatusForbidden {
		t.Fatalf("student post status = %d, want 403", status)
	}

	var post struct {
		ID      int64   `json:"id"`
		LikedBy []int64 `json:"likedBy"`
	}
	api.expect(t, http.MethodPost, "/api/news", alum.Token, map[string]string{"content": "Hello class"}, http.StatusCreated, &post)
	api.expect(t, http.MethodPost, pathf("/api/news/%d/like", post.ID), student.Token, nil, http.StatusOK, &post)
	if len(post.LikedBy) != 1 || post.LikedBy[0] != student.ID {
		t.Fatalf("likedBy = %v", post.LikedBy)
	}
	status, _ = api.do(t, http.MethodPost, pathf("/api/news/%d/comments", post.ID), student.Token, map[string]string{"text": "hi"})
	if status != http.StatusForbidden {
		t.Fatalf("student comment status = %d, want 403", status)
	}
	api.expect(t, http.MethodPost, pathf("/api/news/%d/comments", post.ID), alum.Token, map[string]string{"text": "Welcome"}, http.StatusCreated, nil)

	status, _ = api.do(t, http.MethodDelete, pathf("/api/news/%d", post.ID), student.Token, nil)
	if status != http.StatusForbidden {
		t.Fatalf("student delete status = %d, want 403", status)
	}
	api.expect(t, http.MethodDelete, pathf("/api/news/%d", post.ID), alum.Token, nil, http.StatusOK, nil)
}

func TestMessageRoutes(t *testing.T) {
	api := newTestAPI(t)
	alum := api.register(t, "Ada", "ada@gmail.com", 2010)
	student := api.register(t, "Stu", "stu@college.edu", 0)
	other := api.register(t, "Sue", "sue@college.edu", 0)

	var contacts []struct {
		ID int64 `json:"id"`
	}
	api.expect(t, http.MethodGet, "/api/messages/contacts", student.Token, nil, http.StatusOK, &contacts)
	if len(contacts) != 1 || contacts[0].ID != alum.ID {
		t.Fatalf("contacts = %+v", contacts)
	}

	status, _ := api.do(t, http.MethodPost, pathf("/api/messages/%d", other.ID), student.Token, map[string]string{"body": "hey"})
	if status != http.StatusForbidden {
		t.Fatalf("student to student status = %d, want 403", status)
	}
	api.expect(t, http.MethodPost, pathf("/api/messages/%d", alum.ID), student.Token, map[string]string{"body": "Any advice?"}, http.StatusCreated, nil)
	api.expect(t, http.MethodPost, pathf("/api/messages/%d", student.ID), alum.Token, map[string]string{"body": "Sure"}, http.StatusCreated, nil)

	var conversation []struct {
		Body string `json:"body"`
	}
	api.expect(t, http.MethodGet, pathf("/api/messages/%d", alum.ID), student.Token, nil, http.StatusOK, &conversation)
	if len(conversation) != 2 || conversation[0].Body != "Any advice?" {
		t.Fatalf("conversation = %+v", conversation)
	}
}

func TestCampaignRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "Root", "root@admin.com", 0)
	alum := api.register(t, "Ada", "ada@gmail.com", 2010)

	status, _ := api.do(t, http.MethodGet, "/api/campaigns/groups", alum.Token, nil)
	if status != http.StatusForbidden {
		t.Fatalf("alumni groups status = %d, want 403", status)
	}

	var groups []struct {
		Group string `json:"group"`
		Count int    `json:"count"`
	}
	api.expect(t, http.MethodGet, "/api/campaigns/groups", admin.Token, nil, http.StatusOK, &groups)
	found := false
	for _, g := range groups {
		if g.Group == "class-2010" && g.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("groups = %+v", groups)
	}

	req := map[string]string{"group": "alumni", "subject": "Reunion", "message": "See you"}
	api.expect(t, http.MethodPost, "/api/campaigns", admin.Token, req, http.StatusAccepted, nil)
	if len(api.publisher.channels) != 1 || api.publisher.channels[0] != services.CampaignChannel {
		t.Fatalf("published channels = %v", api.publisher.channels)
	}

	req["group"] = "class-1999"
	status, _ = api.do(t, http.MethodPost, "/api/campaigns", admin.Token, req)
	if status != http.StatusBadRequest {
		t.Fatalf("empty group status = %d, want 400", status)
	}
}

func TestDonationRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "Root", "root@admin.com", 0)
	alum := api.register(t, "Ada", "ada@gmail.com", 2010)

	donation := map[string]any{"donorName": "Ada", "donorEmail": "ada@gmail.com", "amount": 25.5}
	api.expect(t, http.MethodPost, "/api/donations", "", donation, http.StatusCreated, nil)

	donation["amount"] = 0
	status, _ := api.do(t, http.MethodPost, "/api/donations", "", donation)
	if status != http.StatusBadRequest {
		t.Fatalf("zero amount status = %d, want 400", status)
	}

	status, _ = api.do(t, http.MethodGet, "/api/donations", alum.Token, nil)
	if status != http.StatusForbidden {
		t.Fatalf("alumni list status = %d, want 403", status)
	}
	var donations []struct {
		Amount float64 `json:"amount"`
	}
	api.expect(t, http.MethodGet, "/api/donations", admin.Token, nil, http.StatusOK, &donations)
	if len(donations) != 1 || donations[0].Amount != 25.5 {
		t.Fatalf("donations = %+v", donations)
	}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	var body map[string]string
	api.expect(t, http.MethodGet, "/healthz", "", nil, http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}
