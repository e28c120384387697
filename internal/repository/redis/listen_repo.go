package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dom/webdesk-core/internal/domain"
)

type listenSessionRepository struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewListenSessionRepository(rdb *goredis.Client, ttl time.Duration) *listenSessionRepository {
	return &listenSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *listenSessionRepository) Create(ctx context.Context, session *domain.ListenSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, listenKey(session.ID), data, r.ttl).Err()
}

// Get reads without extending the TTL, so idle sessions still expire even
// when peeked at by background jobs.
func (r *listenSessionRepository) Get(ctx context.Context, id string) (*domain.ListenSession, error) {
	data, err := r.rdb.Get(ctx, listenKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var session domain.ListenSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &session, nil
}

func (r *listenSessionRepository) Update(ctx context.Context, session *domain.ListenSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, listenKey(session.ID), data, goredis.KeepTTL).Err()
}

// Touch resets the session TTL. Issued on active polling, not on reads.
func (r *listenSessionRepository) Touch(ctx context.Context, id string) error {
	ok, err := r.rdb.Expire(ctx, listenKey(id), r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *listenSessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, listenKey(id)).Err()
}
