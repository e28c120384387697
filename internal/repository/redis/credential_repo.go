package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
)

type credentialRepository struct {
	rdb *goredis.Client
}

func NewCredentialRepository(rdb *goredis.Client) *credentialRepository {
	return &credentialRepository{rdb: rdb}
}

// SetHash overwrites the stored hash unconditionally. No history is kept.
func (r *credentialRepository) SetHash(ctx context.Context, username, hash string) error {
	return r.rdb.Set(ctx, credentialKey(username), hash, 0).Err()
}

func (r *credentialRepository) GetHash(ctx context.Context, username string) (string, error) {
	hash, err := r.rdb.Get(ctx, credentialKey(username)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (r *credentialRepository) HasPassword(ctx context.Context, username string) (bool, error) {
	n, err := r.rdb.Exists(ctx, credentialKey(username)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
