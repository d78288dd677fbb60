package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

const keyPrefix = "callcenter:call_session:"

// transitionScript compares and swaps the state field of a session hash.
var transitionScript = redis.NewScript(`
-- KEYS[1] = session hash
-- ARGV[1] = expected state
-- ARGV[2] = new state
--
-- Returns:
--   1 if swapped
--   0 if the session does not exist
--  -1 if the current state differs
local current = redis.call('HGET', KEYS[1], 'state')
if not current then
  return 0
end
if current ~= ARGV[1] then
  return -1
end
redis.call('HSET', KEYS[1], 'state', ARGV[2])
return 1
`)

// RedisStore keeps sessions as hashes with a TTL so abandoned call screens
// expire on their own.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func (r *RedisStore) Save(ctx context.Context, s *domain.CallSession) error {
	key := sessionKey(s.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"id":         s.ID,
			"staff_id":   strconv.FormatInt(s.StaffID, 10),
			"started_at": s.StartedAt.UTC().Format(time.RFC3339Nano),
			"state":      string(s.State),
		})
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save call session: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*domain.CallSession, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load call session: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodeSession(fields)
}

func (r *RedisStore) Transition(ctx context.Context, id string, from, to domain.SessionState) (*domain.CallSession, error) {
	res, err := transitionScript.Run(ctx, r.client, []string{sessionKey(id)}, string(from), string(to)).Int()
	if err != nil {
		return nil, fmt.Errorf("transition call session: %w", err)
	}
	switch res {
	case 0:
		return nil, ErrNotFound
	case -1:
		current, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return current, ErrStateMismatch
	}
	return r.Get(ctx, id)
}

func decodeSession(fields map[string]string) (*domain.CallSession, error) {
	staffID, err := strconv.ParseInt(fields["staff_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode call session staff_id: %w", err)
	}
	startedAt, err := time.Parse(time.RFC3339Nano, fields["started_at"])
	if err != nil {
		return nil, fmt.Errorf("decode call session started_at: %w", err)
	}
	return &domain.CallSession{
		ID:        fields["id"],
		StaffID:   staffID,
		StartedAt: startedAt,
		State:     domain.SessionState(fields["state"]),
	}, nil
}
