package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/webdesk-core/internal/repository/redis"
	"github.com/dom/webdesk-core/internal/testutil"
)

const testPresenceTTL = 90 * time.Second

func TestPresenceRepository_RefreshAndList(t *testing.T) {
	_, rdb := testutil.NewTestRedis(t)
	repo := redis.NewPresenceRepository(rdb, testPresenceTTL)
	ctx := context.Background()

	for _, user := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.Refresh(ctx, "room1", user))
	}
	require.NoError(t, repo.Refresh(ctx, "room2", "dave"))

	users, err := repo.List(ctx, "room1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, users)

	count, err := repo.Count(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Rooms are isolated.
	count, err = repo.Count(ctx, "room2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPresenceRepository_MarkersExpireIndividually(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	repo := redis.NewPresenceRepository(rdb, testPresenceTTL)
	ctx := context.Background()

	for _, user := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.Refresh(ctx, "room1", user))
	}

	// Two users heartbeat partway through; carol goes silent.
	mr.FastForward(testPresenceTTL / 2)
	require.NoError(t, repo.Refresh(ctx, "room1", "alice"))
	require.NoError(t, repo.Refresh(ctx, "room1", "bob"))

	// Carol's marker lapses; the refreshed markers survive.
	mr.FastForward(testPresenceTTL/2 + time.Second)
	users, err := repo.List(ctx, "room1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, users)
}

func TestPresenceRepository_RemoveAndRemoveAll(t *testing.T) {
	_, rdb := testutil.NewTestRedis(t)
	repo := redis.NewPresenceRepository(rdb, testPresenceTTL)
	ctx := context.Background()

	for _, user := range []string{"alice", "bob"} {
		require.NoError(t, repo.Refresh(ctx, "room1", user))
	}

	require.NoError(t, repo.Remove(ctx, "room1", "alice"))
	count, err := repo.Count(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Removing an absent marker is a no-op.
	require.NoError(t, repo.Remove(ctx, "room1", "ghost"))

	require.NoError(t, repo.RemoveAll(ctx, "room1"))
	count, err = repo.Count(ctx, "room1")
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.RemoveAll(ctx, "room1"))
}
