// Package memory provides an in-memory implementation of the Facet composite
// store. It is intended for testing, fixtures and development.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

// Compile-time interface checks.
var (
	_ scope.Store = (*Store)(nil)
	_ tag.Store   = (*Store)(nil)
	_ store.Store = (*Store)(nil)
)

// Store is a thread-safe in-memory store for users and custom tags.
type Store struct {
	mu sync.RWMutex

	users map[string]*scope.User // tenantID/userID -> user
	tags  map[string][]*tag.Tag  // tenantID -> custom tags
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users: make(map[string]*scope.User),
		tags:  make(map[string][]*tag.Tag),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// User Store
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *scope.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userKey(u.TenantID, u.ID)
	if _, ok := s.users[k]; ok {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrConflict)
	}
	s.users[k] = u.Clone()
	return nil
}

func (s *Store) GetUser(_ context.Context, tenantID, userID string) (*scope.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userKey(tenantID, userID)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	return u.Clone(), nil
}

func (s *Store) UpdateUser(_ context.Context, u *scope.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userKey(u.TenantID, u.ID)
	prev, ok := s.users[k]
	if !ok {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
	}
	cp := u.Clone()
	cp.CreatedAt = prev.CreatedAt
	s.users[k] = cp
	return nil
}

func (s *Store) DeleteUser(_ context.Context, tenantID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userKey(tenantID, userID)
	if _, ok := s.users[k]; !ok {
		return fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	delete(s.users, k)
	return nil
}

func (s *Store) ListUsers(_ context.Context, filter *scope.ListFilter) ([]*scope.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*scope.User, 0, len(s.users))
	for _, u := range s.users {
		if filter != nil {
			if filter.TenantID != "" && u.TenantID != filter.TenantID {
				continue
			}
			if filter.Search != "" && !matchesSearch(u, filter.Search) {
				continue
			}
		}
		result = append(result, u.Clone())
	}
	slices.SortFunc(result, func(a, b *scope.User) int { return strings.Compare(a.ID, b.ID) })
	return applyPagination(result, paginationOpts(filter)), nil
}

// ──────────────────────────────────────────────────
// Tag Store
// ──────────────────────────────────────────────────

func (s *Store) LoadTags(_ context.Context, tenantID string) ([]*tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTags(s.tags[tenantID]), nil
}

func (s *Store) SaveTags(_ context.Context, tenantID string, tags []*tag.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tags) == 0 {
		delete(s.tags, tenantID)
		return nil
	}
	s.tags[tenantID] = copyTags(tags)
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func userKey(tenantID, userID string) string { return tenantID + "/" + userID }

func matchesSearch(u *scope.User, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(u.Name), q) ||
		strings.Contains(strings.ToLower(u.ID), q) ||
		strings.Contains(strings.ToLower(u.Email), q)
}

func copyTags(tags []*tag.Tag) []*tag.Tag {
	if tags == nil {
		return nil
	}
	out := make([]*tag.Tag, len(tags))
	for i, t := range tags {
		out[i] = t.Clone()
	}
	return out
}

type pagOpts struct{ limit, offset int }

func paginationOpts(f *scope.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 {
		if p.offset >= len(items) {
			return []*T{}
		}
		items = items[p.offset:]
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}
