package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one quota check.
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// QuotaStore counts requests per scope in fixed windows. Implementations
// populate the Remaining/Reset values surfaced in rate-limit headers.
type QuotaStore interface {
	// Allow consumes one request from the scope's window and reports
	// whether it fit within limit.
	Allow(ctx context.Context, scope string, limit int, window time.Duration) (Decision, error)

	// Reset clears all counted windows.
	Reset(ctx context.Context) error
}

type memoryWindow struct {
	count int
	start time.Time
}

// MemoryQuotaStore is the in-process QuotaStore used by single-instance
// deployments and tests.
type MemoryQuotaStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

var _ QuotaStore = (*MemoryQuotaStore)(nil)

// MemoryQuotaOption customizes a MemoryQuotaStore.
type MemoryQuotaOption func(*MemoryQuotaStore)

// WithQuotaClock replaces the store's time source for deterministic tests.
func WithQuotaClock(now func() time.Time) MemoryQuotaOption {
	return func(s *MemoryQuotaStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryQuotaStore creates an empty in-memory quota store.
func NewMemoryQuotaStore(opts ...MemoryQuotaOption) *MemoryQuotaStore {
	s := &MemoryQuotaStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Allow implements QuotaStore with a fixed window per scope.
func (s *MemoryQuotaStore) Allow(_ context.Context, scope string, limit int, window time.Duration) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	w, exists := s.windows[scope]
	if !exists || !now.Before(w.start.Add(window)) {
		w = &memoryWindow{start: now}
		s.windows[scope] = w
	}

	w.count++

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   w.count <= limit,
		Remaining: remaining,
		Reset:     w.start.Add(window),
	}, nil
}

// Reset clears every counted window.
func (s *MemoryQuotaStore) Reset(_ context.Context) error {
	s.mu.Lock()
	s.windows = make(map[string]*memoryWindow)
	s.mu.Unlock()

	return nil
}
