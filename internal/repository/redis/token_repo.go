package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dom/webdesk-core/internal/domain"
)

// tokenBytes of entropy per token, rendered as hex. Collisions are
// cryptographically negligible; a SETNX miss is treated as an error rather
// than retried.
const tokenBytes = 32

const maskedSuffixLen = 6

type tokenRepository struct {
	rdb         *goredis.Client
	sessionTTL  time.Duration
	gracePeriod time.Duration
}

func NewTokenRepository(rdb *goredis.Client, sessionTTL, gracePeriod time.Duration) *tokenRepository {
	return &tokenRepository{
		rdb:         rdb,
		sessionTTL:  sessionTTL,
		gracePeriod: gracePeriod,
	}
}

func (r *tokenRepository) Issue(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", domain.ErrMissingCredentials
	}

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	token := hex.EncodeToString(buf)

	ok, err := r.rdb.SetNX(ctx, tokenKey(token), username, r.sessionTTL).Result()
	if err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}
	if !ok {
		return "", domain.ErrTokenCollision
	}

	// Index for enumeration/bulk revocation. The set outlives no token: its
	// TTL is refreshed to the session TTL on every issue, and stale members
	// are pruned on read. A token that can't be indexed is revoked on the
	// spot, otherwise it would stay live but invisible to List and
	// DeleteAllForUser.
	pipe := r.rdb.Pipeline()
	pipe.SAdd(ctx, userTokensKey(username), token)
	pipe.Expire(ctx, userTokensKey(username), r.sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.rdb.Del(ctx, tokenKey(token))
		return "", fmt.Errorf("indexing token: %w", err)
	}

	return token, nil
}

// Rotate retires oldToken and issues a replacement. The grace slot is
// written before the old token is deleted so there is never a moment with
// zero valid tokens and zero grace token; a failed grace write aborts the
// rotation.
func (r *tokenRepository) Rotate(ctx context.Context, username, oldToken string) (string, error) {
	if username == "" || oldToken == "" {
		return "", domain.ErrMissingCredentials
	}

	owner, err := r.rdb.Get(ctx, tokenKey(oldToken)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("looking up token: %w", err)
	}
	if owner != username {
		return "", domain.ErrInvalidToken
	}

	last := domain.LastToken{Token: oldToken, RotatedAt: time.Now()}
	data, err := json.Marshal(last)
	if err != nil {
		return "", err
	}
	if err := r.rdb.Set(ctx, lastTokenKey(username), data, r.gracePeriod).Err(); err != nil {
		return "", fmt.Errorf("writing grace slot: %w", err)
	}

	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, tokenKey(oldToken))
	pipe.SRem(ctx, userTokensKey(username), oldToken)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("retiring token: %w", err)
	}

	return r.Issue(ctx, username)
}

func (r *tokenRepository) Validate(ctx context.Context, username, token string, allowExpired bool) (domain.TokenValidation, error) {
	if username == "" || token == "" {
		return domain.TokenValidation{}, domain.ErrMissingCredentials
	}

	owner, err := r.rdb.Get(ctx, tokenKey(token)).Result()
	if err == nil {
		return domain.TokenValidation{Valid: owner == username}, nil
	}
	if !errors.Is(err, goredis.Nil) {
		return domain.TokenValidation{}, fmt.Errorf("looking up token: %w", err)
	}

	data, err := r.rdb.Get(ctx, lastTokenKey(username)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.TokenValidation{}, nil
	}
	if err != nil {
		return domain.TokenValidation{}, fmt.Errorf("looking up grace slot: %w", err)
	}

	var last domain.LastToken
	if err := json.Unmarshal(data, &last); err != nil {
		return domain.TokenValidation{}, fmt.Errorf("decoding grace slot: %w", err)
	}

	// The slot's own TTL normally enforces the window; the elapsed-time
	// check guards against a lagging expiry sweep.
	if last.Token != token || time.Since(last.RotatedAt) > r.gracePeriod {
		return domain.TokenValidation{}, nil
	}

	// A grace-window token presented to a strict check is expired, which is
	// distinct from unknown.
	if !allowExpired {
		return domain.TokenValidation{Expired: true}, domain.ErrTokenExpired
	}
	return domain.TokenValidation{Valid: true, Expired: true}, nil
}

// Delete revokes a single token. The grace slot is left untouched.
func (r *tokenRepository) Delete(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingCredentials
	}

	owner, err := r.rdb.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up token: %w", err)
	}

	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, tokenKey(token))
	pipe.SRem(ctx, userTokensKey(owner), token)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *tokenRepository) DeleteAllForUser(ctx context.Context, username string) error {
	if username == "" {
		return domain.ErrMissingCredentials
	}

	tokens, err := r.rdb.SMembers(ctx, userTokensKey(username)).Result()
	if err != nil {
		return fmt.Errorf("listing tokens: %w", err)
	}

	pipe := r.rdb.Pipeline()
	for _, token := range tokens {
		pipe.Del(ctx, tokenKey(token))
	}
	pipe.Del(ctx, userTokensKey(username))
	_, err = pipe.Exec(ctx)
	return err
}

// List enumerates active tokens as masked display records. Timestamps are
// derived from the remaining TTL, since the stored value is the bare
// username for compatibility with existing data. Stale index members are
// pruned as a side effect.
func (r *tokenRepository) List(ctx context.Context, username string) ([]domain.TokenInfo, error) {
	if username == "" {
		return nil, domain.ErrMissingCredentials
	}

	tokens, err := r.rdb.SMembers(ctx, userTokensKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}

	pipe := r.rdb.Pipeline()
	ttlCmds := make([]*goredis.DurationCmd, len(tokens))
	for i, token := range tokens {
		ttlCmds[i] = pipe.TTL(ctx, tokenKey(token))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("reading token ttls: %w", err)
	}

	now := time.Now()
	infos := make([]domain.TokenInfo, 0, len(tokens))
	var stale []interface{}
	for i, token := range tokens {
		ttl := ttlCmds[i].Val()
		if ttl <= 0 {
			stale = append(stale, token)
			continue
		}
		suffix := token
		if len(suffix) > maskedSuffixLen {
			suffix = suffix[len(suffix)-maskedSuffixLen:]
		}
		infos = append(infos, domain.TokenInfo{
			Suffix:    suffix,
			CreatedAt: now.Add(ttl - r.sessionTTL),
			ExpiresAt: now.Add(ttl),
		})
	}

	if len(stale) > 0 {
		r.rdb.SRem(ctx, userTokensKey(username), stale...)
	}

	return infos, nil
}
