package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an abandoned dialogue is kept
const DefaultTTL = 30 * time.Minute

// Store keeps one dialogue state per user
type Store interface {
	// Get returns the user's state; ok is false when there is none or it expired
	Get(ctx context.Context, userID int64) (st State, ok bool, err error)
	Set(ctx context.Context, userID int64, st State) error
	Reset(ctx context.Context, userID int64) error
}

// MemoryStore is an in-process Store with lazy expiry
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[int64]State
	now    func() time.Time
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, states: make(map[int64]State), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[userID]
	if !ok {
		return State{}, false, nil
	}
	if m.now().Sub(st.UpdatedAt) > m.ttl {
		delete(m.states, userID)
		return State{}, false, nil
	}
	return st, true, nil
}

func (m *MemoryStore) Set(_ context.Context, userID int64, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.UpdatedAt = m.now()
	m.states[userID] = st
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}

// RedisStore keeps states in Redis so they survive restarts
type RedisStore struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to redisURL (redis://host:port/db) and pings it
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisStore(rdb, ttl), nil
}

func newRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "coursebot:dialog:"}
}

func (r *RedisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (State, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(userID)).Bytes()
	if err == goredis.Nil {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("redis get: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false, fmt.Errorf("decode dialogue state: %w", err)
	}
	return st, true, nil
}

func (r *RedisStore) Set(ctx context.Context, userID int64, st State) error {
	st.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Reset(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
