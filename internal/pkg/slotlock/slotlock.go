// Package slotlock serializes check-then-write sections per (resource, date) key.
//
// Availability validation and the subsequent booking write are not naturally atomic;
// the lock guarantees that no two bookings for the same hall or vendor on the same
// date can interleave between the conflict check and the insert.
package slotlock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockHeld     = errors.New("slot lock is held by another request")
	ErrLockNotOwned = errors.New("slot lock is not owned by this token")
)

// Locker acquires and releases a mutual-exclusion lock for a resource/date pair.
type Locker interface {
	Acquire(ctx context.Context, resourceID uuid.UUID, date time.Time) (token string, err error)
	Release(ctx context.Context, resourceID uuid.UUID, date time.Time, token string) error
}

// RedisLocker implements Locker with SET NX PX and a check-token release script,
// so a slow holder can never release a lock re-acquired by someone else.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func lockKey(resourceID uuid.UUID, date time.Time) string {
	return "slotlock:" + resourceID.String() + ":" + date.Format("2006-01-02")
}

func (l *RedisLocker) Acquire(ctx context.Context, resourceID uuid.UUID, date time.Time) (string, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, lockKey(resourceID, date), token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

func (l *RedisLocker) Release(ctx context.Context, resourceID uuid.UUID, date time.Time, token string) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{lockKey(resourceID, date)}, token).Int()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrLockNotOwned
	}
	return nil
}
