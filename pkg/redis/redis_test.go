package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The server runs without redis when it is disabled or unreachable, so
// every helper must degrade to a no-op instead of panicking.
func TestHelpersWithoutClient(t *testing.T) {
	require.Nil(t, GetClient())
	ctx := context.Background()

	assert.NoError(t, BlacklistToken(ctx, "some-token", time.Minute))

	revoked, err := IsTokenBlacklisted(ctx, "some-token")
	assert.NoError(t, err)
	assert.False(t, revoked)

	assert.NoError(t, CacheJSON(ctx, "key", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	assert.ErrorIs(t, GetCachedJSON(ctx, "key", &dest), ErrCacheMiss)

	InvalidateCache(ctx, "key")

	assert.NoError(t, Close())
}
