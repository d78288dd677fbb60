package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func TestMemoryStoreTransition(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.CallSession{ID: "s1", StaffID: 7, State: domain.SessionStarted}))

	s, err := store.Transition(ctx, "s1", domain.SessionStarted, domain.SessionEnding)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionEnding, s.State)

	s, err = store.Transition(ctx, "s1", domain.SessionStarted, domain.SessionEnding)
	assert.ErrorIs(t, err, ErrStateMismatch)
	require.NotNil(t, s)
	assert.Equal(t, domain.SessionEnding, s.State)

	_, err = store.Transition(ctx, "missing", domain.SessionStarted, domain.SessionEnding)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSingleWinner(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.CallSession{ID: "race", State: domain.SessionStarted}))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Transition(ctx, "race", domain.SessionStarted, domain.SessionEnding); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.CallSession{ID: "old", State: domain.SessionStarted}))
	now = now.Add(2 * time.Minute)

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}
