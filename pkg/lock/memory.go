package lock

import (
	"context"
	"sync"
)

type memoryEntry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process keyed mutex. It only serializes callers within one process.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*memoryEntry
}

func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*memoryEntry)}
}

func (m *Memory) Lock(ctx context.Context, key string) (Unlock, error) {
	if ctx.Err() != nil {
		return nil, waitError(ctx, key)
	}

	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &memoryEntry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, waitError(ctx, key)
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
		return nil
	}, nil
}

func (m *Memory) release(key string, e *memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

// held is the number of keys with holders or waiters.
func (m *Memory) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
