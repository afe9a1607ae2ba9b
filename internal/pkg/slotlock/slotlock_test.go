package slotlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qasr/qasr-api/internal/pkg/slotlock"
)

func TestLocalLockerMutualExclusion(t *testing.T) {
	locker := slotlock.NewLocalLocker()
	resource := uuid.New()
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	token, err := locker.Acquire(context.Background(), resource, date)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if _, err := locker.Acquire(context.Background(), resource, date); err != slotlock.ErrLockHeld {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	// Different date on the same resource is an independent key
	otherDate := date.AddDate(0, 0, 1)
	otherToken, err := locker.Acquire(context.Background(), resource, otherDate)
	if err != nil {
		t.Fatalf("acquire for different date failed: %v", err)
	}
	if err := locker.Release(context.Background(), resource, otherDate, otherToken); err != nil {
		t.Fatalf("release for different date failed: %v", err)
	}

	if err := locker.Release(context.Background(), resource, date, "wrong-token"); err != slotlock.ErrLockNotOwned {
		t.Fatalf("expected ErrLockNotOwned for wrong token, got %v", err)
	}

	if err := locker.Release(context.Background(), resource, date, token); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if _, err := locker.Acquire(context.Background(), resource, date); err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	locker := slotlock.NewRedisLocker(client, 5*time.Second)
	resource := uuid.New()
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	token, err := locker.Acquire(context.Background(), resource, date)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if _, err := locker.Acquire(context.Background(), resource, date); err != slotlock.ErrLockHeld {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	if err := locker.Release(context.Background(), resource, date, "wrong-token"); err != slotlock.ErrLockNotOwned {
		t.Fatalf("expected ErrLockNotOwned for wrong token, got %v", err)
	}

	if err := locker.Release(context.Background(), resource, date, token); err != nil {
		t.Fatalf("release failed: %v", err)
	}
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	return client
}
