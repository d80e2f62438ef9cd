// Package redis provides a Redis implementation of the Facet composite
// store. Each tenant's user directory and custom tag registry are kept as
// flat JSON lists under one namespaced key each, and mutations are applied
// with optimistic WATCH/MULTI transactions.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "facet"

// maxTxRetries bounds optimistic transaction retries under contention.
const maxTxRetries = 8

// getter is satisfied by both *goredis.Client and *goredis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

// Store is a Redis implementation of the composite Facet store.
type Store struct {
	rdb    *goredis.Client
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New wraps an existing client.
func New(rdb *goredis.Client, opts ...Option) *Store {
	s := &Store{rdb: rdb, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open parses a redis:// URL, connects and verifies connectivity.
func Open(ctx context.Context, url string, opts ...Option) (*Store, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("facet/redis: invalid url: %w", err)
	}
	rdb := goredis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("facet/redis: connect: %w", err)
	}
	return New(rdb, opts...), nil
}

// Migrate is a no-op: keys are created on first write.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

// Close closes the client.
func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) usersKey(tenantID string) string { return s.prefix + ":users:" + tenantID }
func (s *Store) tagsKey(tenantID string) string  { return s.prefix + ":tags:" + tenantID }

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *scope.User) error {
	return s.mutateUsers(ctx, u.TenantID, func(users []*scope.User) ([]*scope.User, error) {
		if indexOfUser(users, u.ID) >= 0 {
			return nil, fmt.Errorf("user %s: %w", u.ID, store.ErrConflict)
		}
		return append(users, u.Clone()), nil
	})
}

func (s *Store) GetUser(ctx context.Context, tenantID, userID string) (*scope.User, error) {
	users, err := s.loadUsers(ctx, s.rdb, tenantID)
	if err != nil {
		return nil, fmt.Errorf("facet: get user: %w", err)
	}
	i := indexOfUser(users, userID)
	if i < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	return users[i], nil
}

func (s *Store) UpdateUser(ctx context.Context, u *scope.User) error {
	return s.mutateUsers(ctx, u.TenantID, func(users []*scope.User) ([]*scope.User, error) {
		i := indexOfUser(users, u.ID)
		if i < 0 {
			return nil, fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
		}
		cp := u.Clone()
		cp.CreatedAt = users[i].CreatedAt
		users[i] = cp
		return users, nil
	})
}

func (s *Store) DeleteUser(ctx context.Context, tenantID, userID string) error {
	return s.mutateUsers(ctx, tenantID, func(users []*scope.User) ([]*scope.User, error) {
		i := indexOfUser(users, userID)
		if i < 0 {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
		}
		return slices.Delete(users, i, i+1), nil
	})
}

// ListUsers lists one tenant's users, or every tenant's when the filter
// names none.
func (s *Store) ListUsers(ctx context.Context, filter *scope.ListFilter) ([]*scope.User, error) {
	var tenants []string
	if filter != nil && filter.TenantID != "" {
		tenants = []string{filter.TenantID}
	} else {
		keyPrefix := s.usersKey("")
		iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			tenants = append(tenants, strings.TrimPrefix(iter.Val(), keyPrefix))
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("facet: list users: %w", err)
		}
	}

	var all []*scope.User
	for _, t := range tenants {
		users, err := s.loadUsers(ctx, s.rdb, t)
		if err != nil {
			return nil, fmt.Errorf("facet: list users: %w", err)
		}
		all = append(all, users...)
	}
	return filterUsers(all, filter), nil
}

// mutateUsers applies fn to the tenant's user list inside a WATCH/MULTI
// transaction, retrying when the key changes underneath it.
func (s *Store) mutateUsers(ctx context.Context, tenantID string, fn func([]*scope.User) ([]*scope.User, error)) error {
	key := s.usersKey(tenantID)
	txf := func(tx *goredis.Tx) error {
		users, err := s.loadUsers(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		next, err := fn(users)
		if err != nil {
			return err
		}
		payload, err := encodeUsers(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}
	return s.withRetry(ctx, key, txf)
}

func (s *Store) loadUsers(ctx context.Context, c getter, tenantID string) ([]*scope.User, error) {
	raw, err := c.Get(ctx, s.usersKey(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeUsers(raw)
}

// ──────────────────────────────────────────────────
// Tag operations
// ──────────────────────────────────────────────────

func (s *Store) LoadTags(ctx context.Context, tenantID string) ([]*tag.Tag, error) {
	raw, err := s.rdb.Get(ctx, s.tagsKey(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []*tag.Tag{}, nil
		}
		return nil, fmt.Errorf("facet: load tags: %w", err)
	}
	tags, err := decodeTags(raw)
	if err != nil {
		return nil, fmt.Errorf("facet: load tags: %w", err)
	}
	return tags, nil
}

// SaveTags overwrites the tenant's tag list. An empty list removes the key.
func (s *Store) SaveTags(ctx context.Context, tenantID string, tags []*tag.Tag) error {
	key := s.tagsKey(tenantID)
	if len(tags) == 0 {
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("facet: save tags: %w", err)
		}
		return nil
	}
	payload, err := encodeTags(tags)
	if err != nil {
		return fmt.Errorf("facet: save tags: %w", err)
	}
	if err := s.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("facet: save tags: %w", err)
	}
	return nil
}

func (s *Store) withRetry(ctx context.Context, key string, txf func(*goredis.Tx) error) error {
	for range maxTxRetries {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("facet/redis: %s: too much contention", key)
}

// ──────────────────────────────────────────────────
// Encoding helpers
// ──────────────────────────────────────────────────

func encodeUsers(users []*scope.User) ([]byte, error) {
	if users == nil {
		users = []*scope.User{}
	}
	return json.Marshal(users)
}

func decodeUsers(raw []byte) ([]*scope.User, error) {
	var users []*scope.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func encodeTags(tags []*tag.Tag) ([]byte, error) {
	return json.Marshal(tags)
}

func decodeTags(raw []byte) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	for _, t := range tags {
		t.IsDefault = false
	}
	return tags, nil
}

func indexOfUser(users []*scope.User, userID string) int {
	return slices.IndexFunc(users, func(u *scope.User) bool { return u.ID == userID })
}

// filterUsers applies search, id ordering and pagination.
func filterUsers(users []*scope.User, f *scope.ListFilter) []*scope.User {
	out := make([]*scope.User, 0, len(users))
	for _, u := range users {
		if f != nil && f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(u.Name), q) &&
				!strings.Contains(strings.ToLower(u.ID), q) &&
				!strings.Contains(strings.ToLower(u.Email), q) {
				continue
			}
		}
		out = append(out, u)
	}
	slices.SortStableFunc(out, func(a, b *scope.User) int { return strings.Compare(a.ID, b.ID) })
	if f == nil {
		return out
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*scope.User{}
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out
}
