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

func TestRoomRepository_CreateGetUpdate(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	repo := redis.NewRoomRepository(rdb)
	ctx := context.Background()

	room := &domain.Room{
		ID:        uuid.NewString(),
		Name:      "general",
		Type:      domain.RoomTypePublic,
		CreatedBy: "alice",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(ctx, room))

	// Room records carry no TTL; they live until deleted.
	ttl := mr.TTL("room:" + room.ID)
	assert.Zero(t, ttl)

	got, err := repo.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.Name, got.Name)
	assert.Equal(t, room.Type, got.Type)
	assert.Equal(t, room.CreatedBy, got.CreatedBy)

	got.UserCount = 5
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.UserCount)
}

func TestRoomRepository_GetMissing(t *testing.T) {
	_, rdb := testutil.NewTestRedis(t)
	repo := redis.NewRoomRepository(rdb)

	_, err := repo.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomRepository_ListAll(t *testing.T) {
	_, rdb := testutil.NewTestRedis(t)
	repo := redis.NewRoomRepository(rdb)
	ctx := context.Background()

	rooms, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	for _, name := range []string{"general", "music", "dev"} {
		require.NoError(t, repo.Create(ctx, &domain.Room{
			ID:        uuid.NewString(),
			Name:      name,
			Type:      domain.RoomTypePublic,
			CreatedBy: "alice",
			CreatedAt: time.Now(),
		}))
	}

	rooms, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	names := make([]string, len(rooms))
	for i, room := range rooms {
		names[i] = room.Name
	}
	assert.ElementsMatch(t, []string{"general", "music", "dev"}, names)
}
