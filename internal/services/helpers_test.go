package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alumnet/apiserver/internal/cache"
	"github.com/alumnet/apiserver/internal/store/memory"
	"github.com/alumnet/apiserver/types"
	"go.uber.org/zap"
)

type fakeTokens struct{}

func (fakeTokens) Issue(u types.User) (string, error) {
	return "token-" + strconv.FormatInt(u.ID, 10), nil
}

// countingCache is an in-process cache.Cache that records hits.
type countingCache struct {
	mu     sync.Mutex
	values map[string]any
	hits   int
}

func newCountingCache() *countingCache {
	return &countingCache{values: map[string]any{}}
}

func (c *countingCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	c.hits++
	switch d := dst.(type) {
	case *types.Stats:
		*d = v.(types.Stats)
	case *[]types.CampaignGroup:
		*d = v.([]types.CampaignGroup)
	default:
		return false, errors.New("unsupported type")
	}
	return true, nil
}

func (c *countingCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *countingCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *countingCache) Close() error { return nil }

var _ cache.Cache = (*countingCache)(nil)

// fixture wires every service to one in-memory database.
type fixture struct {
	db     *memory.DB
	users  *UserService
	jobs   *JobService
	events *EventService
	news   *NewsService
	msgs   *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	userRepo := memory.NewUserRepository(db)
	logger := zap.NewNop()
	return &fixture{
		db:     db,
		users:  NewUserService(userRepo, fakeTokens{}, cache.Noop{}, time.Minute, logger),
		jobs:   NewJobService(memory.NewJobRepository(db)),
		events: NewEventService(memory.NewEventRepository(db)),
		news:   NewNewsService(memory.NewPostRepository(db)),
		msgs:   NewMessageService(memory.NewMessageRepository(db), userRepo),
	}
}

// register creates a user and returns it as an Actor.
func (f *fixture) register(t *testing.T, name, email string, year int) Actor {
	t.Helper()
	req := RegisterRequest{Name: name, Email: email}
	if year != 0 {
		req.GraduationYear = &year
	}
	res, err := f.users.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return Actor{ID: res.ID, Role: res.Role}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}

func intPtr(v int) *int { return &v }
