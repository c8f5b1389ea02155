package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockStore struct {
	mu      sync.Mutex
	leases  map[string]string
	acqErr  error
	tries   int
	release int
}

func newMockStore() *mockStore {
	return &mockStore{leases: make(map[string]string)}
}

func (s *mockStore) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tries++
	if s.acqErr != nil {
		return false, s.acqErr
	}
	if _, held := s.leases[key]; held {
		return false, nil
	}
	s.leases[key] = owner
	return true, nil
}

func (s *mockStore) Release(ctx context.Context, key, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release++
	if s.leases[key] == owner {
		delete(s.leases, key)
	}
	return nil
}

func TestPolling_AcquireAndRelease(t *testing.T) {
	store := newMockStore()
	locker := NewPolling(store, time.Second, time.Millisecond)

	unlock, err := locker.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, held := store.leases["k"]; !held {
		t.Fatal("expected lease to be recorded")
	}

	if err := unlock(context.Background()); err != nil {
		t.Fatalf("unexpected unlock error: %v", err)
	}
	_ = unlock(context.Background())
	if store.release != 1 {
		t.Errorf("expected a single release call, got %d", store.release)
	}
}

func TestPolling_WaitsForRelease(t *testing.T) {
	store := newMockStore()
	locker := NewPolling(store, time.Second, time.Millisecond)

	unlock, err := locker.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = unlock(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	second, err := locker.Lock(ctx, "k")
	if err != nil {
		t.Fatalf("expected second lock after release, got %v", err)
	}
	_ = second(context.Background())
}

func TestPolling_TimesOut(t *testing.T) {
	store := newMockStore()
	store.leases["k"] = "someone-else"
	locker := NewPolling(store, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := locker.Lock(ctx, "k")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if store.tries < 2 {
		t.Errorf("expected repeated attempts, got %d", store.tries)
	}
}

func TestPolling_StoreErrorIsReturned(t *testing.T) {
	store := newMockStore()
	store.acqErr = errors.New("connection refused")
	locker := NewPolling(store, time.Second, time.Millisecond)

	_, err := locker.Lock(context.Background(), "k")
	if !errors.Is(err, store.acqErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("store failure should not look like a timeout")
	}
}

// lateStore records the lease but reports the wait deadline, as a slow
// database reply would.
type lateStore struct {
	*mockStore
}

func (s lateStore) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if _, err := s.mockStore.TryAcquire(ctx, key, owner, ttl); err != nil {
		return false, err
	}
	<-ctx.Done()
	return false, ctx.Err()
}

func TestPolling_DeadlineDuringAcquireLeavesNoLease(t *testing.T) {
	store := newMockStore()
	locker := NewPolling(lateStore{store}, time.Minute, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := locker.Lock(ctx, "k")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, held := store.leases["k"]; held {
		t.Error("lease written before the deadline must be released")
	}
}
