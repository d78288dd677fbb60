package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func TestRedisStoreTransition(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, time.Minute)
	started := time.Date(2024, 2, 3, 10, 0, 0, 123, time.UTC)
	id := uuid.NewString()
	defer client.Del(ctx, sessionKey(id))

	require.NoError(t, store.Save(ctx, &domain.CallSession{ID: id, StaffID: 42, StartedAt: started, State: domain.SessionStarted}))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.StaffID)
	assert.True(t, started.Equal(got.StartedAt))

	_, err = store.Transition(ctx, id, domain.SessionStarted, domain.SessionEnding)
	require.NoError(t, err)

	cur, err := store.Transition(ctx, id, domain.SessionStarted, domain.SessionEnding)
	assert.ErrorIs(t, err, ErrStateMismatch)
	assert.Equal(t, domain.SessionEnding, cur.State)

	_, err = store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	_, err := decodeSession(map[string]string{"staff_id": "x"})
	assert.Error(t, err)
}
