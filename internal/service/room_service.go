package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dom/webdesk-core/internal/broadcast"
	"github.com/dom/webdesk-core/internal/domain"
	"github.com/dom/webdesk-core/internal/repository"
)

var blockedRoomWords = []string{
	"admin", "moderator", "system",
}

type RoomService struct {
	roomRepo     repository.RoomRepository
	presenceRepo repository.PresenceRepository
	userRepo     repository.UserRepository
	broadcaster  broadcast.Broadcaster
	logger       *slog.Logger
}

func NewRoomService(repos *repository.Repositories, broadcaster broadcast.Broadcaster, logger *slog.Logger) *RoomService {
	return &RoomService{
		roomRepo:     repos.Room,
		presenceRepo: repos.Presence,
		userRepo:     repos.User,
		broadcaster:  broadcaster,
		logger:       logger,
	}
}

type CreateRoomInput struct {
	Creator string
	Name    string
	Type    domain.RoomType

	// Members applies to private rooms only; the creator is always
	// included. Ignored for public rooms.
	Members []string
}

func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*domain.Room, error) {
	creator := strings.ToLower(input.Creator)

	room := &domain.Room{
		ID:        uuid.NewString(),
		Type:      input.Type,
		CreatedBy: creator,
		CreatedAt: time.Now(),
	}

	switch input.Type {
	case domain.RoomTypePublic:
		user, err := s.userRepo.GetByUsername(ctx, creator)
		if err != nil {
			return nil, err
		}
		if !user.IsAdmin {
			return nil, domain.ErrForbidden
		}
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, domain.ErrEmptyRoomName
		}
		if containsBlockedWord(name) {
			return nil, domain.ErrProfaneRoomName
		}
		room.Name = name

	case domain.RoomTypePrivate:
		if len(input.Members) == 0 {
			return nil, domain.ErrNoMembers
		}
		members := normalizeMembers(append(input.Members, creator))
		room.Members = members
		// Canonical name from the sorted member set, so the same group
		// always maps to a stable display name regardless of creation order.
		room.Name = strings.Join(members, ", ")

	default:
		return nil, domain.ErrInvalidRoomType
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	if room.Type == domain.RoomTypePublic {
		s.publish(ctx, broadcast.LobbyChannel, "room_created", room)
	}

	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	return s.roomRepo.Get(ctx, roomID)
}

func (s *RoomService) JoinRoom(ctx context.Context, roomID, username string) (*domain.Room, error) {
	username = strings.ToLower(username)

	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	}
	if !room.VisibleTo(username) {
		return nil, domain.ErrForbidden
	}

	if err := s.presenceRepo.Refresh(ctx, roomID, username); err != nil {
		return nil, err
	}

	count, err := s.presenceRepo.Count(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.UserCount = count
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, err
	}

	s.publish(ctx, broadcast.RoomChannel(roomID), "user_joined", map[string]any{
		"username":  username,
		"userCount": count,
	})

	return room, nil
}

func (s *RoomService) LeaveRoom(ctx context.Context, roomID, username string) error {
	username = strings.ToLower(username)

	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		return err
	}

	if err := s.presenceRepo.Remove(ctx, roomID, username); err != nil {
		return err
	}

	count, err := s.presenceRepo.Count(ctx, roomID)
	if err != nil {
		return err
	}
	room.UserCount = count
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}

	s.publish(ctx, broadcast.RoomChannel(roomID), "user_left", map[string]any{
		"username":  username,
		"userCount": count,
	})

	return nil
}

// Heartbeat renews the presence marker without recomputing the aggregate.
// Same preconditions as JoinRoom: the room and user must exist and the room
// must be visible to the caller, so a non-member can never plant a marker in
// a private room.
func (s *RoomService) Heartbeat(ctx context.Context, roomID, username string) error {
	username = strings.ToLower(username)

	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return err
	}
	if !room.VisibleTo(username) {
		return domain.ErrForbidden
	}

	return s.presenceRepo.Refresh(ctx, roomID, username)
}

// ListVisibleRooms returns public rooms plus private rooms the requester
// belongs to. Reads never mutate room state.
func (s *RoomService) ListVisibleRooms(ctx context.Context, username string) ([]*domain.Room, error) {
	username = strings.ToLower(username)

	rooms, err := s.roomRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.VisibleTo(username) {
			visible = append(visible, room)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.Before(visible[j].CreatedAt)
	})
	return visible, nil
}

// RefreshRoomUserCount recomputes the aggregate from live markers and
// writes it back. This is the reconciliation path that corrects drift from
// markers expiring without an explicit leave.
func (s *RoomService) RefreshRoomUserCount(ctx context.Context, roomID string) (int, error) {
	room, err := s.roomRepo.Get(ctx, roomID)
	if err != nil {
		return 0, err
	}

	count, err := s.presenceRepo.Count(ctx, roomID)
	if err != nil {
		return 0, err
	}

	room.UserCount = count
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RoomService) publish(ctx context.Context, channel, event string, payload any) {
	if err := s.broadcaster.Publish(ctx, channel, event, payload); err != nil {
		s.logger.Warn("broadcast failed", "channel", channel, "event", event, "error", err)
	}
}

func containsBlockedWord(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range blockedRoomWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func normalizeMembers(members []string) []string {
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
