package utils

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// AttemptState is what the tracker knows about one client key.
type AttemptState struct {
	Count       int64
	LockedUntil time.Time
}

// AttemptStatus is the answer to "may this client try to log in".
type AttemptStatus struct {
	Blocked              bool
	Message              string
	RemainingLockSeconds int
}

// AttemptStore is the keyed store behind the tracker. A single-process
// deployment can run on the in-memory store; anything multi-instance needs
// the Redis one so counters are shared and increments atomic.
type AttemptStore interface {
	State(ctx context.Context, key string) (AttemptState, error)
	Increment(ctx context.Context, key string) (int64, error)
	SetLock(ctx context.Context, key string, until time.Time, count int64) error
	Reset(ctx context.Context, key string) error
}

// LoginAttempts enforces the lockout policy: after Threshold failures the
// key is locked for Lockout, the counter is pinned at the threshold, and
// only a successful login clears it.
type LoginAttempts struct {
	Store     AttemptStore
	Threshold int64
	Lockout   time.Duration
}

func (t *LoginAttempts) Check(ctx context.Context, key string) (AttemptStatus, error) {
	state, err := t.Store.State(ctx, key)
	if err != nil {
		return AttemptStatus{}, fmt.Errorf("%w: reading login attempts: %v", ErrPersistence, err)
	}

	remaining := time.Until(state.LockedUntil)
	if remaining <= 0 {
		return AttemptStatus{}, nil
	}

	secs := int(remaining.Seconds()) + 1
	return AttemptStatus{
		Blocked:              true,
		Message:              fmt.Sprintf("Too many failed login attempts. Try again in %d seconds.", secs),
		RemainingLockSeconds: secs,
	}, nil
}

func (t *LoginAttempts) Increment(ctx context.Context, key string) error {
	count, err := t.Store.Increment(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: incrementing login attempts: %v", ErrPersistence, err)
	}
	if count >= t.Threshold {
		// pin the counter at the threshold so it cannot grow unbounded
		until := time.Now().Add(t.Lockout)
		if err := t.Store.SetLock(ctx, key, until, t.Threshold); err != nil {
			return fmt.Errorf("%w: locking login attempts: %v", ErrPersistence, err)
		}
	}
	return nil
}

func (t *LoginAttempts) Reset(ctx context.Context, key string) error {
	if err := t.Store.Reset(ctx, key); err != nil {
		return fmt.Errorf("%w: resetting login attempts: %v", ErrPersistence, err)
	}
	return nil
}

// MemoryAttemptStore keeps attempt state in a mutex-guarded map. Fine for
// one process; counters are lost on restart, which only ever helps the
// attacker by one window.
type MemoryAttemptStore struct {
	mu     sync.Mutex
	states map[string]AttemptState
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{states: make(map[string]AttemptState)}
}

func (s *MemoryAttemptStore) State(_ context.Context, key string) (AttemptState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key], nil
}

func (s *MemoryAttemptStore) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[key]
	state.Count++
	s.states[key] = state
	return state.Count, nil
}

func (s *MemoryAttemptStore) SetLock(_ context.Context, key string, until time.Time, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = AttemptState{Count: count, LockedUntil: until}
	return nil
}

func (s *MemoryAttemptStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}
