package repository

import (
	"context"
	"time"

	"github.com/dom/webdesk-core/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	TouchLastActive(ctx context.Context, username string) error
}

// CredentialRepository stores one opaque password hash per user, isolated
// from session tokens. GetHash returns "" when no hash is stored.
type CredentialRepository interface {
	SetHash(ctx context.Context, username, hash string) error
	GetHash(ctx context.Context, username string) (string, error)
	HasPassword(ctx context.Context, username string) (bool, error)
}

// TokenRepository manages the session-token lifecycle: issuance, rotation
// with a grace window, validation, revocation and enumeration.
type TokenRepository interface {
	Issue(ctx context.Context, username string) (string, error)
	Rotate(ctx context.Context, username, oldToken string) (string, error)
	Validate(ctx context.Context, username, token string, allowExpired bool) (domain.TokenValidation, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, username string) error
	List(ctx context.Context, username string) ([]domain.TokenInfo, error)
}

// RateLimitResult reports the outcome of a limiter check. Count is the
// post-increment counter value; it is zero when the request was short-cut
// by an active block.
type RateLimitResult struct {
	Allowed      bool
	Blocked      bool
	Count        int64
	ResetSeconds int
}

// RateLimitRepository provides fixed-window counters plus an escalating
// hard-block. Keys compose hierarchically as scope, identifier class
// ("ip", "user") and identifier value.
type RateLimitRepository interface {
	CheckCounterLimit(ctx context.Context, scope, class, identifier string, window time.Duration, limit int64) (*RateLimitResult, error)
	CheckAndEscalateBlock(ctx context.Context, scope, class, identifier string, blockTTL, window time.Duration, limit int64) (*RateLimitResult, error)
}

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, id string) (*domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
	ListAll(ctx context.Context) ([]*domain.Room, error)
}

// PresenceRepository tracks TTL'd per-(room, user) markers whose mere
// existence denotes "currently present".
type PresenceRepository interface {
	Refresh(ctx context.Context, roomID, username string) error
	Remove(ctx context.Context, roomID, username string) error
	List(ctx context.Context, roomID string) ([]string, error)
	Count(ctx context.Context, roomID string) (int, error)
	RemoveAll(ctx context.Context, roomID string) error
}

// ListenSessionRepository stores listen-together session records. Get never
// extends the TTL; Touch is the explicit refresh path.
type ListenSessionRepository interface {
	Create(ctx context.Context, session *domain.ListenSession) error
	Get(ctx context.Context, id string) (*domain.ListenSession, error)
	Update(ctx context.Context, session *domain.ListenSession) error
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type Repositories struct {
	User       UserRepository
	Credential CredentialRepository
	Token      TokenRepository
	RateLimit  RateLimitRepository
	Room       RoomRepository
	Presence   PresenceRepository
	Listen     ListenSessionRepository
}
