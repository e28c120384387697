package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/webdesk-core/internal/domain"
	"github.com/dom/webdesk-core/internal/service"
)

func TestRoomService_CreatePublicRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "alice", func(u *domain.User) { u.IsAdmin = true })
	env.seedUser(t, "bob")

	room, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "alice",
		Name:    "general",
		Type:    domain.RoomTypePublic,
	})
	require.NoError(t, err)
	assert.Equal(t, "general", room.Name)
	assert.Equal(t, "alice", room.CreatedBy)
	assert.Empty(t, room.Members)

	// Lobby subscribers hear about new public rooms.
	assert.Contains(t, env.bc.EventNames(), "room_created")

	t.Run("non-admin rejected", func(t *testing.T) {
		_, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
			Creator: "bob",
			Name:    "lounge",
			Type:    domain.RoomTypePublic,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
			Creator: "alice",
			Name:    "   ",
			Type:    domain.RoomTypePublic,
		})
		assert.ErrorIs(t, err, domain.ErrEmptyRoomName)
	})

	t.Run("blocked word rejected", func(t *testing.T) {
		_, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
			Creator: "alice",
			Name:    "Admin Lounge",
			Type:    domain.RoomTypePublic,
		})
		assert.ErrorIs(t, err, domain.ErrProfaneRoomName)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
			Creator: "alice",
			Name:    "lounge",
			Type:    domain.RoomType("secret"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRoomType)
	})
}

func TestRoomService_CreatePrivateRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "bob")

	room, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "bob",
		Type:    domain.RoomTypePrivate,
		Members: []string{"Carol", "bob", "carol"},
	})
	require.NoError(t, err)

	// Members are lowercased, deduped and sorted; the name is canonical.
	assert.Equal(t, []string{"bob", "carol"}, room.Members)
	assert.Equal(t, "bob, carol", room.Name)

	// Same group, different order, same canonical name.
	other, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "carol",
		Type:    domain.RoomTypePrivate,
		Members: []string{"bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, room.Name, other.Name)

	t.Run("no members rejected", func(t *testing.T) {
		_, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
			Creator: "bob",
			Type:    domain.RoomTypePrivate,
		})
		assert.ErrorIs(t, err, domain.ErrNoMembers)
	})
}

func TestRoomService_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "alice", func(u *domain.User) { u.IsAdmin = true })
	env.seedUser(t, "bob")

	public, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "alice", Name: "general", Type: domain.RoomTypePublic,
	})
	require.NoError(t, err)

	private, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "bob", Type: domain.RoomTypePrivate, Members: []string{"carol"},
	})
	require.NoError(t, err)

	roomIDs := func(username string) []string {
		rooms, err := env.svc.Room.ListVisibleRooms(ctx, username)
		require.NoError(t, err)
		ids := make([]string, len(rooms))
		for i, r := range rooms {
			ids[i] = r.ID
		}
		return ids
	}

	// Members see the private room; everyone sees the public one.
	assert.ElementsMatch(t, []string{public.ID, private.ID}, roomIDs("bob"))
	assert.ElementsMatch(t, []string{public.ID, private.ID}, roomIDs("carol"))
	assert.ElementsMatch(t, []string{public.ID}, roomIDs("alice"))
	assert.ElementsMatch(t, []string{public.ID}, roomIDs("dave"))

	// Non-members can't join the private room either.
	env.seedUser(t, "dave")
	_, err = env.svc.Room.JoinRoom(ctx, private.ID, "dave")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRoomService_JoinAndLeave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "alice", func(u *domain.User) { u.IsAdmin = true })
	env.seedUser(t, "bob")

	room, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "alice", Name: "general", Type: domain.RoomTypePublic,
	})
	require.NoError(t, err)

	joined, err := env.svc.Room.JoinRoom(ctx, room.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, joined.UserCount)

	joined, err = env.svc.Room.JoinRoom(ctx, room.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, joined.UserCount)

	// Joining twice is idempotent for the count.
	joined, err = env.svc.Room.JoinRoom(ctx, room.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, joined.UserCount)

	require.NoError(t, env.svc.Room.LeaveRoom(ctx, room.ID, "bob"))
	got, err := env.svc.Room.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UserCount)

	assert.Contains(t, env.bc.EventNames(), "user_joined")
	assert.Contains(t, env.bc.EventNames(), "user_left")

	t.Run("unknown room", func(t *testing.T) {
		_, err := env.svc.Room.JoinRoom(ctx, "nosuchroom", "alice")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.svc.Room.JoinRoom(ctx, room.ID, "ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestRoomService_PresenceExpiryCorrectsCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "alice", func(u *domain.User) { u.IsAdmin = true })
	env.seedUser(t, "bob")
	env.seedUser(t, "carol")

	room, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "alice", Name: "general", Type: domain.RoomTypePublic,
	})
	require.NoError(t, err)

	for _, user := range []string{"alice", "bob", "carol"} {
		_, err := env.svc.Room.JoinRoom(ctx, room.ID, user)
		require.NoError(t, err)
	}

	// Two users keep heartbeating, carol's client dies silently.
	env.mr.FastForward(env.cfg.PresenceTTL / 2)
	require.NoError(t, env.svc.Room.Heartbeat(ctx, room.ID, "alice"))
	require.NoError(t, env.svc.Room.Heartbeat(ctx, room.ID, "bob"))
	env.mr.FastForward(env.cfg.PresenceTTL/2 + time.Second)

	// The cached aggregate is stale until reconciled.
	got, err := env.svc.Room.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.UserCount)

	count, err := env.svc.Room.RefreshRoomUserCount(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err = env.svc.Room.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UserCount)
}

func TestRoomService_HeartbeatUnknownRoom(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.Room.Heartbeat(context.Background(), "nosuchroom", "alice")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomService_HeartbeatRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "bob")
	env.seedUser(t, "mallory")

	private, err := env.svc.Room.CreateRoom(ctx, service.CreateRoomInput{
		Creator: "bob",
		Type:    domain.RoomTypePrivate,
		Members: []string{"carol"},
	})
	require.NoError(t, err)

	// A non-member can't plant a presence marker via heartbeat.
	err = env.svc.Room.Heartbeat(ctx, private.ID, "mallory")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	count, err := env.svc.Room.RefreshRoomUserCount(ctx, private.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Unknown users are rejected too.
	err = env.svc.Room.Heartbeat(ctx, private.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// Members heartbeat normally.
	require.NoError(t, env.svc.Room.Heartbeat(ctx, private.ID, "bob"))
	count, err = env.svc.Room.RefreshRoomUserCount(ctx, private.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
