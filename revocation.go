package session

import (
	"context"
	"sync"
	"time"
)

// RevocationStore tracks terminated session ids until the credential they
// belong to would have expired on its own. Lookups must be bounded; this is
// on the hot validation path.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// MemoryRevocationStore keeps revoked session ids in a map guarded by a
// RWMutex. A janitor goroutine evicts entries once their credential expiry
// passes, so the store stays bounded by the number of live sessions.
type MemoryRevocationStore struct {
	mu        sync.RWMutex
	stopGuard sync.Once
	stopChan  chan struct{}
	entries   map[string]time.Time
}

var _ RevocationStore = (*MemoryRevocationStore)(nil)

// NewMemoryRevocationStore creates a store with a janitor sweeping at the
// given interval. Zero interval defaults to one minute.
func NewMemoryRevocationStore(cleanupInterval time.Duration) *MemoryRevocationStore {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	s := &MemoryRevocationStore{
		stopChan: make(chan struct{}),
		entries:  make(map[string]time.Time),
	}

	go s.startCleanup(cleanupInterval)

	return s
}

func (s *MemoryRevocationStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if sessionID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[sessionID]; ok && existing.After(until) {
		return nil
	}
	s.entries[sessionID] = until

	return nil
}

func (s *MemoryRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	s.mu.RLock()
	until, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	// Past the natural expiry the credential fails on its own; treat the
	// entry as gone even if the janitor has not swept it yet.
	if time.Now().After(until) {
		return false, nil
	}

	return true, nil
}

// StopCleanup terminates the janitor goroutine. Safe to call more than once.
func (s *MemoryRevocationStore) StopCleanup() error {
	s.stopGuard.Do(func() {
		close(s.stopChan)
	})

	return nil
}

func (s *MemoryRevocationStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteExpired()
		case <-s.stopChan:
			return
		}
	}
}

func (s *MemoryRevocationStore) deleteExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for sid, until := range s.entries {
		if now.After(until) {
			delete(s.entries, sid)
		}
	}
}
