// Package session stores the single active dialogue state per
// (requester, chat, service) key.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Key selects at most one active dialogue.
type Key struct {
	UserID  int64
	ChatID  int64
	Service string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d", k.Service, k.ChatID, k.UserID)
}

/// Store holds dialogue states of type S. All operations are total: Get
// reports absence instead of failing and Clear on a missing key is a no-op.
// Put overwrites unconditionally.
type Store[S any] interface {
	Get(ctx context.Context, key Key) (S, bool, error)
	Put(ctx context.Context, key Key, state S) error
	Clear(ctx context.Context, key Key) error
}

type memoryEntry[S any] struct {
	state    S
	deadline time.Time
}

// MemoryStore is an in-memory Store implementation with TTL expiry,
// used for tests and single-process deployments.
type MemoryStore[S any] struct {
	mu      sync.RWMutex
	entries map[Key]memoryEntry[S]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore constructs a MemoryStore. A non-positive ttl disables expiry.
func NewMemoryStore[S any](ttl time.Duration) *MemoryStore[S] {
	return &MemoryStore[S]{
		entries: make(map[Key]memoryEntry[S]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the stored state for key, expiring stale entries on the way.
func (m *MemoryStore[S]) Get(_ context.Context, key Key) (S, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	var zero S
	if !ok {
		return zero, false, nil
	}
	if !entry.deadline.IsZero() && m.now().After(entry.deadline) {
		m.mu.Lock()
		// Re-check under the write lock; a Put may have raced the expiry.
		if cur, still := m.entries[key]; still && !cur.deadline.IsZero() && m.now().After(cur.deadline) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return zero, false, nil
	}
	return entry.state, true, nil
}

// Put stores state for key, replacing any previous dialogue.
func (m *MemoryStore[S]) Put(_ context.Context, key Key, state S) error {
	var deadline time.Time
	if m.ttl > 0 {
		deadline = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry[S]{state: state, deadline: deadline}
	m.mu.Unlock()
	return nil
}

// Clear removes the dialogue for key if present.
func (m *MemoryStore[S]) Clear(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Sweep drops all expired entries and returns how many were removed.
func (m *MemoryStore[S]) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()
	removed := 0
	m.mu.Lock()
	for key, entry := range m.entries {
		if !entry.deadline.IsZero() && now.After(entry.deadline) {
			delete(m.entries, key)
			removed++
		}
	}
	m.mu.Unlock()
	return removed
}

// Len reports the number of live entries without expiring them.
func (m *MemoryStore[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
