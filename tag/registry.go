package tag

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Registry is the tag catalogue of one tenant: defaults plus persisted
// user-created tags. Mutations are saved through the Store immediately.
type Registry struct {
	mu       sync.RWMutex
	store    Store
	tenantID string
	defaults []*Tag
	custom   []*Tag
}

// NewRegistry creates a registry. Call Load before use.
func NewRegistry(store Store, tenantID string, defaults []*Tag) *Registry {
	ds := make([]*Tag, 0, len(defaults))
	for _, d := range defaults {
		cp := d.Clone()
		cp.IsDefault = true
		ds = append(ds, cp)
	}
	return &Registry{store: store, tenantID: tenantID, defaults: ds}
}

// Load reads persisted tags. Persisted entries that collide with a default
// key are ignored.
func (r *Registry) Load(ctx context.Context) error {
	tags, err := r.store.LoadTags(ctx, r.tenantID)
	if err != nil {
		return fmt.Errorf("tag: load %s: %w", r.tenantID, err)
	}
	custom := make([]*Tag, 0, len(tags))
	for _, t := range tags {
		if t == nil || r.isDefault(t.Key) {
			continue
		}
		cp := t.Clone()
		cp.IsDefault = false
		custom = append(custom, cp)
	}
	r.mu.Lock()
	r.custom = custom
	r.mu.Unlock()
	return nil
}

// List returns every tag, defaults first.
func (r *Registry) List() []*Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tag, 0, len(r.defaults)+len(r.custom))
	for _, t := range r.defaults {
		out = append(out, t.Clone())
	}
	for _, t := range r.custom {
		out = append(out, t.Clone())
	}
	return out
}

// Custom returns only the user-created tags.
func (r *Registry) Custom() []*Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tag, len(r.custom))
	for i, t := range r.custom {
		out[i] = t.Clone()
	}
	return out
}

// Keys returns every tag key, defaults first.
func (r *Registry) Keys() []string {
	tags := r.List()
	keys := make([]string, len(tags))
	for i, t := range tags {
		keys[i] = t.Key
	}
	return keys
}

// Get returns the tag with the given key.
func (r *Registry) Get(key string) (*Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t := r.find(key); t != nil {
		return t.Clone(), true
	}
	return nil, false
}

// IsDefault reports whether key names a built-in tag.
func (r *Registry) IsDefault(key string) bool { return r.isDefault(key) }

// Create adds a user tag. The key is normalised; values are raw labels.
func (r *Registry) Create(ctx context.Context, key, label string, values []string) (*Tag, error) {
	t := &Tag{
		Key:    NormalizeKey(key),
		Label:  strings.TrimSpace(label),
		Values: NormalizeValues(values),
	}
	if err := Validate(t); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(t.Key) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, t.Key)
	}
	next := append(cloneAll(r.custom), t)
	if err := r.save(ctx, next); err != nil {
		return nil, err
	}
	r.custom = next
	return t.Clone(), nil
}

// Update changes a user tag's label and/or values. Nil arguments are left
// unchanged.
func (r *Registry) Update(ctx context.Context, key string, label *string, values []string) (*Tag, error) {
	if r.isDefault(key) {
		return nil, fmt.Errorf("%w: %s", ErrDefaultImmutable, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.customIndex(key)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	updated := r.custom[idx].Clone()
	if label != nil {
		updated.Label = strings.TrimSpace(*label)
	}
	if values != nil {
		updated.Values = NormalizeValues(values)
	}
	if err := Validate(updated); err != nil {
		return nil, err
	}

	next := cloneAll(r.custom)
	next[idx] = updated
	if err := r.save(ctx, next); err != nil {
		return nil, err
	}
	r.custom = next
	return updated.Clone(), nil
}

// Delete removes a user tag.
func (r *Registry) Delete(ctx context.Context, key string) error {
	if r.isDefault(key) {
		return fmt.Errorf("%w: %s", ErrDefaultImmutable, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.customIndex(key)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	next := append(cloneAll(r.custom[:idx]), cloneAll(r.custom[idx+1:])...)
	if err := r.save(ctx, next); err != nil {
		return err
	}
	r.custom = next
	return nil
}

// save persists custom tags only. Must hold write lock.
func (r *Registry) save(ctx context.Context, custom []*Tag) error {
	if err := r.store.SaveTags(ctx, r.tenantID, custom); err != nil {
		return fmt.Errorf("tag: save %s: %w", r.tenantID, err)
	}
	return nil
}

func (r *Registry) isDefault(key string) bool {
	for _, d := range r.defaults {
		if d.Key == key {
			return true
		}
	}
	return false
}

// find looks up a tag by key. Must hold a lock.
func (r *Registry) find(key string) *Tag {
	for _, d := range r.defaults {
		if d.Key == key {
			return d
		}
	}
	if i := r.customIndex(key); i >= 0 {
		return r.custom[i]
	}
	return nil
}

func (r *Registry) customIndex(key string) int {
	for i, t := range r.custom {
		if t.Key == key {
			return i
		}
	}
	return -1
}

func cloneAll(tags []*Tag) []*Tag {
	out := make([]*Tag, len(tags))
	for i, t := range tags {
		out[i] = t.Clone()
	}
	return out
}
