package slotlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]string
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]string)}
}

func (l *LocalLocker) Acquire(_ context.Context, resourceID uuid.UUID, date time.Time) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(resourceID, date)
	if _, held := l.locks[key]; held {
		return "", ErrLockHeld
	}
	token := uuid.New().String()
	l.locks[key] = token
	return token, nil
}

func (l *LocalLocker) Release(_ context.Context, resourceID uuid.UUID, date time.Time, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(resourceID, date)
	if l.locks[key] != token {
		return ErrLockNotOwned
	}
	delete(l.locks, key)
	return nil
}
