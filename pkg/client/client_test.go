package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alumnet/apiserver/types"
)

// fakeAPI serves a tiny job board and counts requests per path.
type fakeAPI struct {
	mu     sync.Mutex
	hits   map[string]int
	jobs   []types.Job
	tokens []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.Method+" "+r.URL.Path]++
	f.tokens = append(f.tokens, r.Header.Get("Authorization"))

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/users/login":
		_ = json.NewEncoder(w).Encode(Session{User: types.User{ID: 7, Role: types.RoleAlumni}, Token: "tok"})
	case r.Method == http.MethodGet && r.URL.Path == "/api/jobs":
		_ = json.NewEncoder(w).Encode(f.jobs)
	case r.Method == http.MethodPost && r.URL.Path == "/api/jobs":
		var in types.JobInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		job := types.Job{ID: int64(len(f.jobs) + 1), Title: in.Title}
		f.jobs = append(f.jobs, job)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(job)
	case r.URL.Path == "/api/jobs/99":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Job not found"}`))
	default:
		w.WriteHeader(http.StatusTeapot)
	}
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func newFake(t *testing.T, opts ...Option) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{hits: make(map[string]int)}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, New(srv.URL, opts...)
}

func TestGetIsCachedUntilMutation(t *testing.T) {
	api, c := newFake(t)
	ctx := context.Background()

	for range 3 {
		if _, err := c.Jobs(ctx, ""); err != nil {
			t.Fatalf("Jobs: %v", err)
		}
	}
	if got := api.count("GET /api/jobs"); got != 1 {
		t.Fatalf("GET hits = %d, want 1", got)
	}

	if _, err := c.CreateJob(ctx, types.JobInput{Title: "Engineer"}); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	jobs, err := c.Jobs(ctx, "")
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Engineer" {
		t.Fatalf("jobs after create = %+v", jobs)
	}
	if got := api.count("GET /api/jobs"); got != 2 {
		t.Fatalf("GET hits after mutation = %d, want 2", got)
	}
}

func TestCacheExpires(t *testing.T) {
	api, c := newFake(t, WithCacheTTL(time.Minute))
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = c.Jobs(ctx, "")
	now = now.Add(2 * time.Minute)
	_, _ = c.Jobs(ctx, "")

	if got := api.count("GET /api/jobs"); got != 2 {
		t.Fatalf("GET hits = %d, want 2", got)
	}
}

func TestCacheDisabled(t *testing.T) {
	api, c := newFake(t, WithCacheTTL(0))
	ctx := context.Background()

	_, _ = c.Jobs(ctx, "")
	_, _ = c.Jobs(ctx, "")
	if got := api.count("GET /api/jobs"); got != 2 {
		t.Fatalf("GET hits = %d, want 2", got)
	}
}

func TestLoginSetsTokenAndClearsCache(t *testing.T) {
	api, c := newFake(t)
	ctx := context.Background()

	_, _ = c.Jobs(ctx, "")
	s, err := c.Login(ctx, LoginRequest{Name: "Ada", Email: "ada@gmail.com"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.ID != 7 || c.Token() != "tok" {
		t.Fatalf("session = %+v token = %q", s, c.Token())
	}
	_, _ = c.Jobs(ctx, "")

	if got := api.count("GET /api/jobs"); got != 2 {
		t.Fatalf("GET hits = %d, want 2", got)
	}
	api.mu.Lock()
	last := api.tokens[len(api.tokens)-1]
	api.mu.Unlock()
	if last != "Bearer tok" {
		t.Fatalf("authorization = %q", last)
	}
}

func TestAPIError(t *testing.T) {
	_, c := newFake(t)

	_, err := c.Job(context.Background(), 99)
	if StatusOf(err) != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (err %v)", StatusOf(err), err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Job not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestInvalidatePrefixes(t *testing.T) {
	_, c := newFake(t)
	gen := c.generation()
	c.store("/jobs", []byte("[]"), gen)
	c.store("/jobs/1", []byte("{}"), gen)
	c.store("/events", []byte("[]"), gen)

	c.Invalidate("/jobs")

	if _, ok := c.cached("/jobs/1"); ok {
		t.Fatal("/jobs/1 should be invalidated")
	}
	if _, ok := c.cached("/events"); !ok {
		t.Fatal("/events should survive")
	}
}

func TestReplyRacingInvalidateIsNotCached(t *testing.T) {
	var (
		c    *Client
		mu   sync.Mutex
		hits int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		client := c
		mu.Unlock()
		// A write lands while this read is still in flight.
		client.Invalidate("/jobs")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Stale"}]`))
	}))
	t.Cleanup(srv.Close)
	mu.Lock()
	c = New(srv.URL)
	client := c
	mu.Unlock()
	ctx := context.Background()

	for range 2 {
		if _, err := client.Jobs(ctx, ""); err != nil {
			t.Fatalf("Jobs: %v", err)
		}
	}
	if _, ok := client.cached("/jobs"); ok {
		t.Fatal("reply fetched before Invalidate was cached")
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 2 {
		t.Fatalf("hits = %d, want 2", hits)
	}
}

func TestStoreAfterSetTokenIsDropped(t *testing.T) {
	_, c := newFake(t)
	gen := c.generation()
	c.SetToken("other")
	c.store("/users/profile", []byte("{}"), gen)
	if _, ok := c.cached("/users/profile"); ok {
		t.Fatal("reply fetched under the old token was cached")
	}
}
