package memory

import (
	"context"
	"sync"
	"time"
)

// Locker is an in-process ports.Locker.
type Locker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewLocker(now func() time.Time) *Locker {
	return &Locker{held: make(map[string]time.Time), now: now}
}

// TryLock takes resource unless a holder's lease is still running. Release
// only drops the lease it granted.
func (l *Locker) TryLock(ctx context.Context, resource string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expires, ok := l.held[resource]; ok && l.now().Before(expires) {
		return nil, false, nil
	}
	lease := l.now().Add(ttl)
	l.held[resource] = lease

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[resource].Equal(lease) {
			delete(l.held, resource)
		}
		return nil
	}
	return release, true, nil
}
