package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/webdesk-core/internal/repository/redis"
	"github.com/dom/webdesk-core/internal/testutil"
)

func TestCredentialRepository(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	repo := redis.NewCredentialRepository(rdb)
	ctx := context.Background()

	hash, err := repo.GetHash(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, hash)

	has, err := repo.HasPassword(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.SetHash(ctx, "alice", "$2a$12$somehash"))

	hash, err = repo.GetHash(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$somehash", hash)

	has, err = repo.HasPassword(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, has)

	// Overwrite keeps no history.
	require.NoError(t, repo.SetHash(ctx, "alice", "$2a$12$newhash"))
	hash, err = repo.GetHash(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$newhash", hash)

	// Stored under the credential namespace, isolated from tokens.
	assert.True(t, mr.Exists("chat:password:alice"))
}
