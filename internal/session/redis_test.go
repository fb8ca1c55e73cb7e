package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	// Create an in-memory Redis server
	mr := miniredis.RunT(t)

	// Create Redis client pointing to miniredis
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, ttl)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestCartID_UnknownSession(t *testing.T) {
	store, _, cleanup := setupTestRedis(t, time.Hour)
	defer cleanup()

	cartID, err := store.CartID(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, cartID, "an unbound session is not an error")
}

func TestBindCart_RoundTrip(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, time.Hour)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.BindCart(ctx, "session-1", "cart-1"))

	cartID, err := store.CartID(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", cartID)

	// The binding is keyed per session.
	other, err := store.CartID(ctx, "session-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	// Rebinding overwrites.
	require.NoError(t, store.BindCart(ctx, "session-1", "cart-2"))
	cartID, err = store.CartID(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-2", cartID)

	assert.True(t, mr.Exists(sessionKey("session-1")))
}

func TestBindCart_Expires(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, time.Minute)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.BindCart(ctx, "session-1", "cart-1"))

	mr.FastForward(time.Minute + time.Second)

	cartID, err := store.CartID(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, cartID, "the binding lives no longer than the session TTL")
}

func TestCartID_ServerDown(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, time.Hour)
	defer cleanup()

	mr.Close()

	_, err := store.CartID(context.Background(), "session-1")
	assert.Error(t, err)
}
