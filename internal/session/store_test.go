package session

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blogging-tool/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(expires time.Time) *State {
	s := &State{ExpiresAt: expires, PublishMessage: "hello"}
	s.Login(&models.User{ID: 7, UserName: "ada", Email: "ada@example.com"})
	s.MarkViewed(3)
	return s
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state := sampleState(time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, "abc", state))

	// Mutating the caller's copy must not leak into the store
	state.PublishMessage = "changed"

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.PublishMessage)
	assert.True(t, got.Authenticated)
	assert.Equal(t, int64(7), got.UserID)
	assert.True(t, got.HasViewed(3))

	require.NoError(t, store.Delete(ctx, "abc"))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "abc", sampleState(now.Add(time.Hour))))

	now = now.Add(59 * time.Minute)
	got, _ := store.Get(ctx, "abc")
	assert.NotNil(t, got, "session should still be alive before expiry")

	now = now.Add(2 * time.Minute)
	got, _ = store.Get(ctx, "abc")
	assert.Nil(t, got, "session should be gone after expiry")
	assert.Equal(t, 0, store.Len(), "expired entry should be evicted on read")
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", sampleState(time.Now().Add(time.Hour))))
	assert.True(t, mr.Exists("session:abc"))

	ttl := mr.TTL("session:abc")
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ada", got.User.UserName)
	assert.Equal(t, []int64{3}, got.ViewedArticles)

	require.NoError(t, store.Delete(ctx, "abc"))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_KeyExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", sampleState(time.Now().Add(time.Minute))))
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_SaveExpiredDeletes(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", sampleState(time.Now().Add(time.Hour))))
	require.NoError(t, store.Save(ctx, "abc", sampleState(time.Now().Add(-time.Second))))
	assert.False(t, mr.Exists("session:abc"))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "abc")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestState_OneShotMessages(t *testing.T) {
	s := &State{PublishMessage: "p", LikeMessage: "l"}

	assert.Equal(t, "p", s.PopPublishMessage())
	assert.Equal(t, "", s.PopPublishMessage())
	assert.Equal(t, "l", s.PopLikeMessage())
	assert.Equal(t, "", s.LikeMessage)
}

func TestState_MarkViewedIsIdempotent(t *testing.T) {
	s := &State{}
	s.MarkViewed(1)
	s.MarkViewed(1)
	s.MarkViewed(2)
	assert.Equal(t, []int64{1, 2}, s.ViewedArticles)
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		id := "expired-" + strconv.Itoa(i)
		require.NoError(t, store.Save(ctx, id, sampleState(now.Add(-time.Millisecond))))
	}
	require.NoError(t, store.Save(ctx, "alive", sampleState(now.Add(time.Hour))))
	require.Equal(t, 101, store.Len())

	assert.Equal(t, 100, store.Sweep())
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "alive")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMemoryStore_SweeperRunsInBackground(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Save(ctx, "old-"+strconv.Itoa(i), sampleState(time.Now().Add(-time.Second))))
	}

	stop := store.StartSweeper(5*time.Millisecond, zerolog.Nop())
	defer stop()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	stop()
	stop() // safe to call twice
}
