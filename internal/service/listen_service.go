package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dom/webdesk-core/internal/broadcast"
	"github.com/dom/webdesk-core/internal/domain"
	"github.com/dom/webdesk-core/internal/repository"
)

const maxEmojiLen = 8

type ListenService struct {
	listenRepo  repository.ListenSessionRepository
	broadcaster broadcast.Broadcaster
	logger      *slog.Logger
}

func NewListenService(repos *repository.Repositories, broadcaster broadcast.Broadcaster, logger *slog.Logger) *ListenService {
	return &ListenService{
		listenRepo:  repos.Listen,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *ListenService) CreateSession(ctx context.Context, host string) (*domain.ListenSession, error) {
	host = strings.ToLower(host)
	if host == "" {
		return nil, domain.ErrMissingCredentials
	}

	session := &domain.ListenSession{
		ID:         uuid.NewString(),
		Members:    []string{host},
		DJ:         host,
		CreatedAt:  time.Now(),
		LastSyncAt: time.Now(),
	}
	if err := s.listenRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, session.ID, "session_started", session)
	return session, nil
}

// GetSession is a plain fetch and does not extend the session's life.
func (s *ListenService) GetSession(ctx context.Context, id string) (*domain.ListenSession, error) {
	return s.listenRepo.Get(ctx, id)
}

// TouchSession resets the TTL. Issued by clients on active polling so idle
// sessions still expire even if occasionally peeked at.
func (s *ListenService) TouchSession(ctx context.Context, id string) error {
	return s.listenRepo.Touch(ctx, id)
}

func (s *ListenService) JoinSession(ctx context.Context, id, username string) (*domain.ListenSession, error) {
	username = strings.ToLower(username)

	session, err := s.listenRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.HasMember(username) {
		return session, nil
	}
	if len(session.Members) >= domain.MaxListenMembers {
		return nil, domain.ErrSessionFull
	}

	session.Members = append(session.Members, username)
	if err := s.listenRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, id, "member_joined", map[string]any{"username": username})
	return session, nil
}

func (s *ListenService) LeaveSession(ctx context.Context, id, username string) error {
	username = strings.ToLower(username)

	session, err := s.listenRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !session.RemoveMember(username) {
		return domain.ErrNotSessionMember
	}

	if len(session.Members) == 0 {
		if err := s.listenRepo.Delete(ctx, id); err != nil {
			return err
		}
		s.publish(ctx, id, "session_ended", nil)
		return nil
	}

	// DJ handoff to the longest-standing remaining member.
	if session.DJ == username {
		session.DJ = session.Members[0]
	}
	if err := s.listenRepo.Update(ctx, session); err != nil {
		return err
	}

	s.publish(ctx, id, "member_left", map[string]any{
		"username": username,
		"dj":       session.DJ,
	})
	return nil
}

func (s *ListenService) SetDJ(ctx context.Context, id, byUsername, djUsername string) error {
	byUsername = strings.ToLower(byUsername)
	djUsername = strings.ToLower(djUsername)

	session, err := s.listenRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if session.DJ != byUsername {
		return domain.ErrNotDJ
	}
	if !session.HasMember(djUsername) {
		return domain.ErrNotSessionMember
	}

	session.DJ = djUsername
	if err := s.listenRepo.Update(ctx, session); err != nil {
		return err
	}

	s.publish(ctx, id, "dj_changed", map[string]any{"dj": djUsername})
	return nil
}

// UpdateSync relays the DJ's playback position. Counts as activity, so the
// session TTL is refreshed.
func (s *ListenService) UpdateSync(ctx context.Context, id, username, trackRef string, positionSeconds float64) error {
	username = strings.ToLower(username)

	session, err := s.listenRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if session.DJ != username {
		return domain.ErrNotDJ
	}

	session.LastSyncAt = time.Now()
	if err := s.listenRepo.Update(ctx, session); err != nil {
		return err
	}
	if err := s.listenRepo.Touch(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, "sync", map[string]any{
		"track":    trackRef,
		"position": positionSeconds,
	})
	return nil
}

// PostReaction relays a transient reaction. Only the lastSyncAt timestamp
// is persisted; the reaction itself is not session history.
func (s *ListenService) PostReaction(ctx context.Context, id, username, emoji string) error {
	username = strings.ToLower(username)
	if utf8.RuneCountInString(emoji) > maxEmojiLen {
		return domain.ErrEmojiTooLong
	}

	session, err := s.listenRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !session.HasMember(username) {
		return domain.ErrNotSessionMember
	}

	session.LastSyncAt = time.Now()
	if err := s.listenRepo.Update(ctx, session); err != nil {
		return err
	}

	s.publish(ctx, id, "reaction", map[string]any{
		"username": username,
		"emoji":    emoji,
	})
	return nil
}

// EndSession deletes the record early and emits a terminal event. Any
// member may end the session.
func (s *ListenService) EndSession(ctx context.Context, id, username string) error {
	username = strings.ToLower(username)

	session, err := s.listenRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !session.HasMember(username) {
		return domain.ErrNotSessionMember
	}

	if err := s.listenRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, "session_ended", map[string]any{"endedBy": username})
	return nil
}

func (s *ListenService) publish(ctx context.Context, sessionID, event string, payload any) {
	channel := broadcast.ListenChannel(sessionID)
	if err := s.broadcaster.Publish(ctx, channel, event, payload); err != nil {
		s.logger.Warn("broadcast failed", "channel", channel, "event", event, "error", err)
	}
}
