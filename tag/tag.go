// Package tag manages custom tag definitions: user-defined key/value
// dimensions carried on records.
//
// Default tags ship with the engine. They cannot be updated or deleted and
// are never persisted; they are merged in when the registry loads.
package tag

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalid is returned when a tag has an empty label or no values.
	ErrInvalid = errors.New("tag: invalid tag")

	// ErrDuplicate is returned when a tag key already exists.
	ErrDuplicate = errors.New("tag: key already exists")

	// ErrNotFound is returned when a tag key is unknown.
	ErrNotFound = errors.New("tag: not found")

	// ErrDefaultImmutable is returned when updating or deleting a default tag.
	ErrDefaultImmutable = errors.New("tag: default tag cannot be modified")
)

// Value is one selectable value of a tag.
type Value struct {
	Value string `json:"value" yaml:"value" validate:"required,tagkey"`
	Label string `json:"label" yaml:"label" validate:"required"`
}

// Tag is a custom tag definition.
type Tag struct {
	Key       string  `json:"key" yaml:"key" validate:"required,tagkey"`
	Label     string  `json:"label" yaml:"label" validate:"required"`
	Values    []Value `json:"values" yaml:"values" validate:"required,min=1,dive"`
	IsDefault bool    `json:"is_default" yaml:"is_default"`
}

// Labels maps each value key to its label.
func (t *Tag) Labels() map[string]string {
	m := make(map[string]string, len(t.Values))
	for _, v := range t.Values {
		m[v.Value] = v.Label
	}
	return m
}

// HasValue reports whether value is one of the tag's value keys.
func (t *Tag) HasValue(value string) bool {
	for _, v := range t.Values {
		if v.Value == value {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (t *Tag) Clone() *Tag {
	cp := *t
	cp.Values = append([]Value(nil), t.Values...)
	return &cp
}

// Store persists the user-created tags of a tenant as one flat list.
type Store interface {
	// LoadTags returns the persisted tags for a tenant. A tenant with
	// nothing persisted yields an empty list and no error.
	LoadTags(ctx context.Context, tenantID string) ([]*Tag, error)

	// SaveTags replaces the persisted tags for a tenant.
	SaveTags(ctx context.Context, tenantID string, tags []*Tag) error
}

var (
	keyPattern    = regexp.MustCompile(`^[a-z0-9_-]+$`)
	keyDisallowed = regexp.MustCompile(`[^a-z0-9_-]+`)
)

// NormalizeKey lowercases s and replaces every run of whitespace or
// punctuation outside [a-z0-9_-] with a single underscore, so keys can be
// written unescaped in clause params.
func NormalizeKey(s string) string {
	key := keyDisallowed.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
	return strings.Trim(key, "_")
}

// ValidKey reports whether s is a well-formed tag or value key.
func ValidKey(s string) bool { return keyPattern.MatchString(s) }

// NormalizeValues turns raw value labels into values: labels are trimmed,
// blanks dropped, and each key derived with NormalizeKey. Later duplicates
// of a key are dropped.
func NormalizeValues(labels []string) []Value {
	out := make([]Value, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := NormalizeKey(l)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Value{Value: key, Label: l})
	}
	return out
}

// Defaults returns the built-in tags.
func Defaults() []*Tag {
	return []*Tag{
		{
			Key:   "project",
			Label: "Project",
			Values: []Value{
				{Value: "alpha", Label: "Project Alpha"},
				{Value: "beta", Label: "Project Beta"},
				{Value: "gamma", Label: "Project Gamma"},
			},
			IsDefault: true,
		},
		{
			Key:   "team",
			Label: "Team",
			Values: []Value{
				{Value: "frontend", Label: "Frontend"},
				{Value: "backend", Label: "Backend"},
				{Value: "platform", Label: "Platform"},
			},
			IsDefault: true,
		},
	}
}
