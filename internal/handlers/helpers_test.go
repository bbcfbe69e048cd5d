package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alumnet/apiserver/internal/auth"
	"github.com/alumnet/apiserver/internal/cache"
	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/internal/store/memory"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	payloads []any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, channel string, v any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, v)
	return "msg-1", nil
}

type testAPI struct {
	server    *httptest.Server
	publisher *recordingPublisher
}

// newTestAPI mounts every router on an in-memory backend.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := memory.New()
	logger := zap.NewNop()
	userRepo := memory.NewUserRepository(db)
	eventRepo := memory.NewEventRepository(db)
	tokens := auth.NewManager("test-secret", time.Hour)
	publisher := &recordingPublisher{}

	userService := services.NewUserService(userRepo, tokens, cache.Noop{}, time.Minute, logger)
	avatarService := services.NewAvatarService(userRepo, nil, logger)
	exportService := services.NewExportService(userRepo, eventRepo, logger)
	campaignService := services.NewCampaignService(userRepo, publisher, cache.Noop{}, time.Minute, logger)
	authMiddleware := RequireAuth(tokens, userService)

	r := chi.NewRouter()
	r.Get("/healthz", Healthz)
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			UserRouter(r, userService, avatarService, exportService, authMiddleware, logger)
		})
		r.Route("/jobs", func(r chi.Router) {
			JobRouter(r, services.NewJobService(memory.NewJobRepository(db)), authMiddleware, logger)
		})
		r.Route("/events", func(r chi.Router) {
			EventRouter(r, services.NewEventService(eventRepo), exportService, authMiddleware, logger)
		})
		r.Route("/news", func(r chi.Router) {
			NewsRouter(r, services.NewNewsService(memory.NewPostRepository(db)), authMiddleware, logger)
		})
		r.Route("/messages", func(r chi.Router) {
			MessageRouter(r, services.NewMessageService(memory.NewMessageRepository(db), userRepo), authMiddleware, logger)
		})
		r.Route("/campaigns", func(r chi.Router) {
			CampaignRouter(r, campaignService, authMiddleware, logger)
		})
		r.Route("/donations", func(r chi.Router) {
			DonationRouter(r, services.NewDonationService(memory.NewDonationRepository(db)), authMiddleware, logger)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testAPI{server: srv, publisher: publisher}
}

// do sends a JSON request and returns the status and raw body.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

// expect sends a request, checks the status and decodes the body into out.
func (a *testAPI) expect(t *testing.T, method, path, token string, body any, status int, out any) {
	t.Helper()
	got, data := a.do(t, method, path, token, body)
	if got != status {
		t.Fatalf("%s %s status = %d, want %d (body %s)", method, path, got, status, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s %s: %v (body %s)", method, path, err, data)
		}
	}
}

type authBody struct {
	ID    int64  `json:"id"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

func (a *testAPI) register(t *testing.T, name, email string, year int) authBody {
	t.Helper()
	body := map[string]any{"name": name, "email": email}
	if year != 0 {
		body["graduationYear"] = year
	}
	var out authBody
	a.expect(t, http.MethodPost, "/api/users/register", "", body, http.StatusCreated, &out)
	if out.Token == "" {
		t.Fatalf("register %s returned no token", email)
	}
	return out
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, data)
	}
	return body.Message
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
