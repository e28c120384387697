package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// presenceRepository tracks presence via bare TTL keys. A user who
// disconnects without leaving is evicted once their marker lapses; no
// heartbeat-timeout state machine is needed.
type presenceRepository struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewPresenceRepository(rdb *goredis.Client, ttl time.Duration) *presenceRepository {
	return &presenceRepository{rdb: rdb, ttl: ttl}
}

func (r *presenceRepository) Refresh(ctx context.Context, roomID, username string) error {
	return r.rdb.Set(ctx, presenceKey(roomID, username), "1", r.ttl).Err()
}

func (r *presenceRepository) Remove(ctx context.Context, roomID, username string) error {
	return r.rdb.Del(ctx, presenceKey(roomID, username)).Err()
}

func (r *presenceRepository) List(ctx context.Context, roomID string) ([]string, error) {
	prefix := presenceKey(roomID, "")
	var users []string
	iter := r.rdb.Scan(ctx, 0, presencePattern(roomID), 100).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning presence markers: %w", err)
	}
	return users, nil
}

func (r *presenceRepository) Count(ctx context.Context, roomID string) (int, error) {
	users, err := r.List(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (r *presenceRepository) RemoveAll(ctx context.Context, roomID string) error {
	users, err := r.List(ctx, roomID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	pipe := r.rdb.Pipeline()
	for _, username := range users {
		pipe.Del(ctx, presenceKey(roomID, username))
	}
	_, err = pipe.Exec(ctx)
	return err
}
