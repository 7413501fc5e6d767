package dialog

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store, userID int64) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)

	st, err := Begin(FlowRegistration, t0)
	require.NoError(t, err)
	st, _, err = st.Advance("Иван", t0)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, userID, st))

	got, ok, err := store.Get(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlowRegistration, got.Flow)
	assert.Equal(t, StepCity, got.Step)
	assert.Equal(t, "Иван", got.Answer(StepFullName))

	_, ok, err = store.Get(ctx, userID+1)
	require.NoError(t, err)
	assert.False(t, ok, "states are isolated per user")

	require.NoError(t, store.Reset(ctx, userID))
	_, ok, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Minute), 1)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10 * time.Minute)
	now := t0
	store.now = func() time.Time { return now }

	st, err := Begin(FlowSearch, now)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, 5, st))

	now = now.Add(9 * time.Minute)
	_, ok, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = store.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Runs against a real server when TEST_REDIS_ADDR is set
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	store, err := NewRedisStore(context.Background(), "redis://"+addr+"/0", time.Minute)
	require.NoError(t, err)
	defer store.Close()

	userID := time.Now().UnixNano()
	exerciseStore(t, store, userID)

	ctx := context.Background()
	st, err := Begin(FlowBroadcast, t0)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, userID, st))
	defer store.Reset(ctx, userID)

	ttl, err := store.rdb.TTL(ctx, store.key(userID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}

func TestRedisStore_Key(t *testing.T) {
	store := newRedisStore(goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), 0)
	defer store.Close()

	assert.Equal(t, "coursebot:dialog:42", store.key(42))
	assert.Equal(t, DefaultTTL, store.ttl)
}
