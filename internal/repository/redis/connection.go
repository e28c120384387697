package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dom/webdesk-core/internal/config"
	"github.com/dom/webdesk-core/internal/repository"
)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := goredis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// NewRepositories builds the Redis-backed repositories. The User repository
// is Postgres-backed and filled in separately by the caller.
func NewRepositories(rdb *goredis.Client, cfg *config.Config) *repository.Repositories {
	return &repository.Repositories{
		Credential: NewCredentialRepository(rdb),
		Token:      NewTokenRepository(rdb, cfg.SessionTTL, cfg.GracePeriod),
		RateLimit:  NewRateLimitRepository(rdb),
		Room:       NewRoomRepository(rdb),
		Presence:   NewPresenceRepository(rdb, cfg.PresenceTTL),
		Listen:     NewListenSessionRepository(rdb, cfg.ListenSessionTTL),
	}
}
