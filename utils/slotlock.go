// File: utils/slotlock.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrSlotBusy is returned when a slot lock could not be acquired in time.
var ErrSlotBusy = errors.New("slot is being modified by another request")

// SlotLocker serializes check-then-write sections per (property, hour slot) key.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// releaseScript deletes the key only if it still holds our owner token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisSlotLocker holds locks as SET NX PX keys so several instances share them.
type RedisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	poll   time.Duration
}

func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) *RedisSlotLocker {
	return &RedisSlotLocker{client: client, ttl: ttl, poll: 50 * time.Millisecond}
}

func (l *RedisSlotLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := SlotLockPrefix + key
	owner := uuid.NewString()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, owner, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire slot lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrSlotBusy
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrSlotBusy, ctx.Err())
		case <-time.After(l.poll):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, owner).Err(); err != nil && err != redis.Nil {
				GetLogger().Sugar().Warnf("slotlock: failed to release %s: %v", redisKey, err)
			}
		})
	}, nil
}

// LocalSlotLocker is an in-process keyed mutex used when Redis is not configured.
type LocalSlotLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewLocalSlotLocker() *LocalSlotLocker {
	return &LocalSlotLocker{held: make(map[string]chan struct{})}
}

func (l *LocalSlotLocker) Lock(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		released, busy := l.held[key]
		if !busy {
			released = make(chan struct{})
			l.held[key] = released
			l.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(released)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-released:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrSlotBusy, ctx.Err())
		}
	}
}

// NewSlotLocker picks the Redis locker when a client is available.
func NewSlotLocker(client *redis.Client, ttl time.Duration) SlotLocker {
	if client == nil {
		return NewLocalSlotLocker()
	}
	return NewRedisSlotLocker(client, ttl)
}
