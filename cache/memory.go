// Package cache provides caching implementations for Facet apply results.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/xraph/facet"
)

// Compile-time interface check.
var _ facet.Cache = (*Memory)(nil)

// Memory is an in-memory cache with TTL-based expiration. Entries are keyed
// by tenant, user and state fingerprint, so any clause edit produces a new
// key. Sessions also drop a user's entries on every edit.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	result    *facet.ApplyResult
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     30 * time.Second,
		maxSize: 1000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a cached apply result.
func (m *Memory) Get(_ context.Context, tenantID, userID, fingerprint string) (*facet.ApplyResult, bool) {
	key := cacheKey(tenantID, userID, fingerprint)
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.result, true
}

// Set stores an apply result.
func (m *Memory) Set(_ context.Context, tenantID, userID, fingerprint string, result *facet.ApplyResult) {
	key := cacheKey(tenantID, userID, fingerprint)
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			m.evictOldest()
		}
	}

	m.entries[key] = &entry{
		result:    result,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// InvalidateTenant removes all cached results for a tenant.
func (m *Memory) InvalidateTenant(_ context.Context, tenantID string) {
	m.invalidatePrefix(tenantID + "\x00")
}

// InvalidateUser removes all cached results for one user.
func (m *Memory) InvalidateUser(_ context.Context, tenantID, userID string) {
	m.invalidatePrefix(tenantID + "\x00" + userID + "\x00")
}

// Len reports the number of live and expired entries held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) invalidatePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

func cacheKey(tenantID, userID, fingerprint string) string {
	return tenantID + "\x00" + userID + "\x00" + fingerprint
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOldest removes the entry closest to expiry. Must hold write lock.
func (m *Memory) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for k, e := range m.entries {
		if oldest == "" || e.expiresAt.Before(at) {
			oldest, at = k, e.expiresAt
		}
	}
	delete(m.entries, oldest)
}
