package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/dom/webdesk-core/internal/config"
	"github.com/dom/webdesk-core/internal/domain"
	"github.com/dom/webdesk-core/internal/repository"
	"github.com/dom/webdesk-core/internal/repository/redis"
	"github.com/dom/webdesk-core/internal/service"
	"github.com/dom/webdesk-core/internal/testutil"
)

// testEnv wires the services against miniredis and an in-memory user store.
type testEnv struct {
	mr    *miniredis.Miniredis
	users *testutil.MemoryUserRepository
	repos *repository.Repositories
	bc    *testutil.FakeBroadcaster
	cfg   *config.Config
	svc   *service.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, rdb := testutil.NewTestRedis(t)
	cfg := testutil.TestConfig()
	repos := redis.NewRepositories(rdb, cfg)
	users := testutil.NewMemoryUserRepository()
	repos.User = users
	bc := testutil.NewFakeBroadcaster()

	return &testEnv{
		mr:    mr,
		users: users,
		repos: repos,
		bc:    bc,
		cfg:   cfg,
		svc:   service.NewServices(repos, bc, cfg, testutil.DiscardLogger()),
	}
}

// seedUser inserts a user record directly, bypassing registration.
func (e *testEnv) seedUser(t *testing.T, username string, mutate ...func(*domain.User)) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:   username,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	for _, m := range mutate {
		m(user)
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %q: %v", username, err)
	}
	return user
}
