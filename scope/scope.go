// Package scope defines permission scopes and the users that own them.
//
// A scope bundles required filters, which lock a field to one value, and
// restricted tags, which cap a field to an allow-list. A field is locked,
// restricted or free within a scope, never both locked and restricted.
package scope

import (
	"errors"
	"fmt"

	"github.com/xraph/facet/clause"
)

var (
	// ErrInvalid is returned for malformed scopes or users.
	ErrInvalid = errors.New("scope: invalid")

	// ErrConflictingPolicy is returned when a field is both locked and restricted.
	ErrConflictingPolicy = errors.New("scope: field is both locked and restricted")

	// ErrDuplicateRequired is returned when a field has more than one required filter.
	ErrDuplicateRequired = errors.New("scope: duplicate required filter")
)

// RequiredFilter fixes a field to a single value within a scope.
type RequiredFilter struct {
	Field  clause.Field `json:"field" yaml:"field"`
	Value  string       `json:"value" yaml:"value"`
	Label  string       `json:"label" yaml:"label"`
	TagKey string       `json:"tag_key,omitempty" yaml:"tag_key,omitempty"`
}

// RestrictedTag caps the selectable values of a field.
type RestrictedTag struct {
	Field         clause.Field `json:"field" yaml:"field"`
	TagKey        string       `json:"tag_key,omitempty" yaml:"tag_key,omitempty"`
	AllowedValues []string     `json:"allowed_values" yaml:"allowed_values"`
}

// Scope is a named permission context.
type Scope struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	RequiredFilters []RequiredFilter `json:"required_filters,omitempty" yaml:"required_filters,omitempty"`
	RestrictedTags  []RestrictedTag  `json:"restricted_tags,omitempty" yaml:"restricted_tags,omitempty"`
}

// Key identifies a policy slot: a field, plus a tag key for custom tags.
type Key struct {
	Field  clause.Field
	TagKey string
}

// KeyOf normalises (field, tagKey). The tag key only matters for custom tags.
func KeyOf(field clause.Field, tagKey string) Key {
	if field != clause.FieldCustomTag {
		tagKey = ""
	}
	return Key{Field: field, TagKey: tagKey}
}

// Required returns the required filter for the slot, if any.
func (s *Scope) Required(field clause.Field, tagKey string) (RequiredFilter, bool) {
	k := KeyOf(field, tagKey)
	for _, rf := range s.RequiredFilters {
		if KeyOf(rf.Field, rf.TagKey) == k {
			return rf, true
		}
	}
	return RequiredFilter{}, false
}

// Restricted returns the restriction for the slot, if any.
func (s *Scope) Restricted(field clause.Field, tagKey string) (RestrictedTag, bool) {
	k := KeyOf(field, tagKey)
	for _, rt := range s.RestrictedTags {
		if KeyOf(rt.Field, rt.TagKey) == k {
			return rt, true
		}
	}
	return RestrictedTag{}, false
}

// Validate checks the scope's structural invariants.
func (s *Scope) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: scope id is required", ErrInvalid)
	}

	locked := make(map[Key]struct{}, len(s.RequiredFilters))
	for _, rf := range s.RequiredFilters {
		if err := checkSlot(rf.Field, rf.TagKey); err != nil {
			return fmt.Errorf("scope %s: required filter: %w", s.ID, err)
		}
		if rf.Value == "" {
			return fmt.Errorf("%w: scope %s: required %s has no value", ErrInvalid, s.ID, rf.Field)
		}
		k := KeyOf(rf.Field, rf.TagKey)
		if _, dup := locked[k]; dup {
			return fmt.Errorf("%w: scope %s: %s", ErrDuplicateRequired, s.ID, describeKey(k))
		}
		locked[k] = struct{}{}
	}

	restricted := make(map[Key]struct{}, len(s.RestrictedTags))
	for _, rt := range s.RestrictedTags {
		if err := checkSlot(rt.Field, rt.TagKey); err != nil {
			return fmt.Errorf("scope %s: restricted tag: %w", s.ID, err)
		}
		k := KeyOf(rt.Field, rt.TagKey)
		if _, both := locked[k]; both {
			return fmt.Errorf("%w: scope %s: %s", ErrConflictingPolicy, s.ID, describeKey(k))
		}
		if _, dup := restricted[k]; dup {
			return fmt.Errorf("%w: scope %s: %s restricted twice", ErrInvalid, s.ID, describeKey(k))
		}
		restricted[k] = struct{}{}
	}
	return nil
}

func checkSlot(field clause.Field, tagKey string) error {
	if !field.IsDiscrete() {
		return fmt.Errorf("%w: field %q cannot be locked or restricted", ErrInvalid, field)
	}
	if field == clause.FieldCustomTag && tagKey == "" {
		return fmt.Errorf("%w: custom_tag requires a tag key", ErrInvalid)
	}
	return nil
}

func describeKey(k Key) string {
	if k.TagKey != "" {
		return string(k.Field) + "[" + k.TagKey + "]"
	}
	return string(k.Field)
}
