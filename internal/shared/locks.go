package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld indicates the critical section is already occupied.
var ErrLockHeld = errors.New("lock already held")

// SuperAdminRevokeLockKey guards the last-super-admin count-then-delete check.
const SuperAdminRevokeLockKey = "roles:super_admin:revoke:lock"

// Mutex is a coarse redis-backed lock for short critical sections.
type Mutex struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

// NewMutex constructs a Mutex for the given key.
func NewMutex(client *redis.Client, key string, ttl time.Duration) *Mutex {
	return &Mutex{client: client, key: key, ttl: ttl}
}

// Acquire takes the lock, retrying until ctx is cancelled.
func (m *Mutex) Acquire(ctx context.Context) error {
	token := uuid.NewString()
	for {
		ok, err := m.client.SetNX(ctx, m.key, token, m.ttl).Result()
		if err != nil {
			return fmt.Errorf("shared: acquire lock %s: %w", m.key, err)
		}
		if ok {
			m.token = token
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("shared: acquire lock %s: %w", m.key, ctx.Err())
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// TryAcquire takes the lock or fails immediately with ErrLockHeld.
func (m *Mutex) TryAcquire(ctx context.Context) error {
	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, m.key, token, m.ttl).Result()
	if err != nil {
		return fmt.Errorf("shared: acquire lock %s: %w", m.key, err)
	}
	if !ok {
		return ErrLockHeld
	}
	m.token = token
	return nil
}

// Release frees the lock if this Mutex still owns it.
func (m *Mutex) Release(ctx context.Context) error {
	if m.token == "" {
		return nil
	}
	// Delete only when the stored token matches; an expired lock may have
	// been re-acquired by another holder.
	const script = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`
	err := m.client.Eval(ctx, script, []string{m.key}, m.token).Err()
	m.token = ""
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("shared: release lock %s: %w", m.key, err)
	}
	return nil
}
