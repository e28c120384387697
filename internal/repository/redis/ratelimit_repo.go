package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dom/webdesk-core/internal/repository"
)

type rateLimitRepository struct {
	rdb *goredis.Client
}

func NewRateLimitRepository(rdb *goredis.Client) *rateLimitRepository {
	return &rateLimitRepository{rdb: rdb}
}

// CheckCounterLimit atomically increments the fixed-window counter. The
// counter is never rolled back on rejection, so repeated abuse keeps
// accruing against the same window; the count only resets via TTL expiry.
func (r *rateLimitRepository) CheckCounterLimit(ctx context.Context, scope, class, identifier string, window time.Duration, limit int64) (*repository.RateLimitResult, error) {
	key := counterKey(scope, class, identifier)

	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("incrementing counter: %w", err)
	}
	if count == 1 {
		if err := r.rdb.Expire(ctx, key, window).Err(); err != nil {
			return nil, fmt.Errorf("setting counter window: %w", err)
		}
	}

	reset, err := r.rdb.TTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading counter ttl: %w", err)
	}
	if reset < 0 {
		reset = window
	}

	return &repository.RateLimitResult{
		Allowed:      count <= limit,
		Count:        count,
		ResetSeconds: int(reset.Seconds()),
	}, nil
}

// CheckAndEscalateBlock composes the counter with a persistent block. The
// block is checked first, so a blocked actor never touches counter logic;
// any exceedance sets the block with blockTTL. The counter is left to
// expire with its own window rather than being cleared on block-set.
func (r *rateLimitRepository) CheckAndEscalateBlock(ctx context.Context, scope, class, identifier string, blockTTL, window time.Duration, limit int64) (*repository.RateLimitResult, error) {
	bkey := blockKey(scope, class, identifier)

	blocked, err := r.rdb.Exists(ctx, bkey).Result()
	if err != nil {
		return nil, fmt.Errorf("checking block: %w", err)
	}
	if blocked > 0 {
		reset, err := r.rdb.TTL(ctx, bkey).Result()
		if err != nil {
			return nil, fmt.Errorf("reading block ttl: %w", err)
		}
		return &repository.RateLimitResult{
			Allowed:      false,
			Blocked:      true,
			ResetSeconds: int(reset.Seconds()),
		}, nil
	}

	res, err := r.CheckCounterLimit(ctx, scope, class, identifier, window, limit)
	if err != nil {
		return nil, err
	}

	// Every exceedance attempts the escalation, so a failed block write is
	// retried on the next attempt instead of leaving the actor un-escalated
	// for the rest of the window. SETNX keeps a concurrent writer from
	// restarting an existing block's clock.
	if !res.Allowed {
		set, err := r.rdb.SetNX(ctx, bkey, "1", blockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("setting block: %w", err)
		}
		res.Blocked = true
		if set {
			res.ResetSeconds = int(blockTTL.Seconds())
		} else {
			reset, err := r.rdb.TTL(ctx, bkey).Result()
			if err != nil {
				return nil, fmt.Errorf("reading block ttl: %w", err)
			}
			res.ResetSeconds = int(reset.Seconds())
		}
	}

	return res, nil
}
