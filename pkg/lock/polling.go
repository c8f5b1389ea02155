package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is a shared lease table. TryAcquire must succeed only if key is free
// or its previous lease has expired. Release must only remove a lease still held by owner.
type Store interface {
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

const (
	DefaultPollInterval = 25 * time.Millisecond
	abandonTimeout      = 2 * time.Second
)

// Polling turns a Store into a Locker by retrying TryAcquire until the context ends.
// Leases expire after ttl so a crashed holder cannot block a key forever.
type Polling struct {
	store    Store
	ttl      time.Duration
	interval time.Duration
}

func NewPolling(store Store, ttl, interval time.Duration) *Polling {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Polling{store: store, ttl: ttl, interval: interval}
}

func (p *Polling) Lock(ctx context.Context, key string) (Unlock, error) {
	owner := uuid.NewString()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, waitError(ctx, key)
		case <-timer.C:
		}

		ok, err := p.store.TryAcquire(ctx, key, owner, p.ttl)
		if err != nil {
			// The write may have landed before the error; drop our lease if so.
			p.abandon(key, owner)
			if ctx.Err() != nil {
				return nil, waitError(ctx, key)
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return p.unlocker(key, owner), nil
		}
		timer.Reset(p.interval)
	}
}

// abandon releases a lease that may or may not have been taken, using a
// context detached from the expired wait.
func (p *Polling) abandon(key, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), abandonTimeout)
	defer cancel()
	_ = p.store.Release(ctx, key, owner)
}

func (p *Polling) unlocker(key, owner string) Unlock {
	var (
		once sync.Once
		err  error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			err = p.store.Release(ctx, key, owner)
		})
		return err
	}
}
