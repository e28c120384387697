package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/webdesk-core/internal/domain"
	"github.com/dom/webdesk-core/internal/repository/redis"
	"github.com/dom/webdesk-core/internal/testutil"
)

const testListenTTL = 4 * time.Hour

func newTestSession(members ...string) *domain.ListenSession {
	return &domain.ListenSession{
		ID:         uuid.NewString(),
		Members:    members,
		DJ:         members[0],
		CreatedAt:  time.Now(),
		LastSyncAt: time.Now(),
	}
}

func TestListenSessionRepository_CreateGetUpdate(t *testing.T) {
	_, rdb := testutil.NewTestRedis(t)
	repo := redis.NewListenSessionRepository(rdb, testListenTTL)
	ctx := context.Background()

	session := newTestSession("alice", "bob")
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Members, got.Members)
	assert.Equal(t, "alice", got.DJ)

	got.DJ = "bob"
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.DJ)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestListenSessionRepository_GetDoesNotExtendTTL(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	repo := redis.NewListenSessionRepository(rdb, testListenTTL)
	ctx := context.Background()

	session := newTestSession("alice")
	require.NoError(t, repo.Create(ctx, session))

	// Reads alone never keep a session alive.
	mr.FastForward(testListenTTL - time.Minute)
	_, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestListenSessionRepository_TouchExtendsTTL(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	repo := redis.NewListenSessionRepository(rdb, testListenTTL)
	ctx := context.Background()

	session := newTestSession("alice")
	require.NoError(t, repo.Create(ctx, session))

	mr.FastForward(testListenTTL - time.Minute)
	require.NoError(t, repo.Touch(ctx, session.ID))

	// The touch restarted the clock.
	mr.FastForward(testListenTTL - time.Minute)
	_, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Touch(ctx, session.ID), domain.ErrSessionNotFound)
}

func TestListenSessionRepository_UpdatePreservesTTL(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	repo := redis.NewListenSessionRepository(rdb, testListenTTL)
	ctx := context.Background()

	session := newTestSession("alice")
	require.NoError(t, repo.Create(ctx, session))

	mr.FastForward(testListenTTL - time.Minute)
	session.LastSyncAt = time.Now()
	require.NoError(t, repo.Update(ctx, session))

	// Update keeps the remaining TTL rather than resetting it.
	mr.FastForward(2 * time.Minute)
	_, err := repo.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestListenSessionRepository_Delete(t *testing.T) {
	_, rdb := testutil.NewTestRedis(t)
	repo := redis.NewListenSessionRepository(rdb, testListenTTL)
	ctx := context.Background()

	session := newTestSession("alice")
	require.NoError(t, repo.Create(ctx, session))
	require.NoError(t, repo.Delete(ctx, session.ID))

	_, err := repo.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, session.ID))
}
