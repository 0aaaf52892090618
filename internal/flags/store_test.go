package flags

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	require.NoError(t, client.FlushDB(ctx).Err())
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = client.FlushDB(ctx).Err()
	_ = client.Close()
}

func TestStore_UpsertAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	flag, err := store.Upsert(ctx, KeyAdvisoryEnabled, true)
	require.NoError(t, err)
	assert.Equal(t, KeyAdvisoryEnabled, flag.Key)
	assert.True(t, flag.Value)
	assert.NotZero(t, flag.UpdatedAt)

	got, err := store.Get(ctx, KeyAdvisoryEnabled)
	require.NoError(t, err)
	assert.Equal(t, flag.Key, got.Key)
	assert.True(t, got.Value)

	// Updating flips the value and moves the timestamp forward.
	time.Sleep(time.Millisecond)
	flag2, err := store.Upsert(ctx, KeyAdvisoryEnabled, false)
	require.NoError(t, err)
	assert.True(t, flag2.UpdatedAt.After(flag.UpdatedAt))

	got, err = store.Get(ctx, KeyAdvisoryEnabled)
	require.NoError(t, err)
	assert.False(t, got.Value)
}

func TestStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	flag, err := store.Get(context.Background(), "nonexistent.flag")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, flag)
}

func TestStore_IsEnabledDefaults(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	// Unset flags keep their defaults.
	assert.True(t, store.IsEnabled(ctx, KeyAlertingEnabled, true))
	assert.False(t, store.IsEnabled(ctx, KeyAlertingEnabled, false))

	// A set flag wins over the default.
	_, err = store.Upsert(ctx, KeyAlertingEnabled, false)
	require.NoError(t, err)
	assert.False(t, store.IsEnabled(ctx, KeyAlertingEnabled, true))
}

func TestStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Upsert(ctx, KeySocialEnabled, true)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, KeySocialEnabled))

	_, err = store.Get(ctx, KeySocialEnabled)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent flag is not an error.
	assert.NoError(t, store.Delete(ctx, "nonexistent.flag"))
}

func TestStore_List(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	want := map[string]bool{
		KeyAdvisoryEnabled: true,
		KeyAlertingEnabled: false,
		KeySocialEnabled:   true,
	}
	for k, v := range want {
		_, err := store.Upsert(ctx, k, v)
		require.NoError(t, err)
	}

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	got := make(map[string]bool, len(list))
	for _, f := range list {
		got[f.Key] = f.Value
	}
	assert.Equal(t, want, got)
}

func TestStore_InvalidKeys(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	for _, key := range []string{"", " ", "flag with spaces", "flag:with:colons", "flag\nnewline"} {
		_, err := store.Upsert(ctx, key, true)
		require.Error(t, err, "key %q should be rejected", key)
		assert.Contains(t, err.Error(), "invalid flag key")
	}

	for _, key := range []string{"advisory.enabled", "a", "flag_123", "deep.nested.toggle-name"} {
		_, err := store.Upsert(ctx, key, true)
		assert.NoError(t, err, "key %q should be accepted", key)
	}
}
