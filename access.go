package facet

import (
	"fmt"
	"slices"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/scope"
)

// Access is the state of a field within a scope.
type Access int

const (
	// AccessFree means every known value is legal.
	AccessFree Access = iota

	// AccessLocked means a required filter fixes the field to one value.
	AccessLocked

	// AccessRestricted means only an allow-list of values is legal.
	AccessRestricted
)

func (a Access) String() string {
	switch a {
	case AccessLocked:
		return "locked"
	case AccessRestricted:
		return "restricted"
	}
	return "free"
}

// MarshalText implements encoding.TextMarshaler.
func (a Access) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// FieldPolicy is the single policy lookup result for a (scope, field) slot.
type FieldPolicy struct {
	Access Access `json:"access"`
	// Locked is the only legal value when Access is AccessLocked.
	Locked      string `json:"locked,omitempty"`
	LockedLabel string `json:"locked_label,omitempty"`
	// Allowed is the allow-list when Access is AccessRestricted.
	Allowed []string `json:"allowed,omitempty"`
}

// PolicyFor classifies a field within a scope. A required filter wins over
// a restriction on the same field. A nil scope leaves every field free.
func PolicyFor(s *scope.Scope, field clause.Field, tagKey string) FieldPolicy {
	if s == nil {
		return FieldPolicy{}
	}
	if rf, ok := s.Required(field, tagKey); ok {
		return FieldPolicy{Access: AccessLocked, Locked: rf.Value, LockedLabel: rf.Label}
	}
	if rt, ok := s.Restricted(field, tagKey); ok {
		return FieldPolicy{Access: AccessRestricted, Allowed: slices.Clone(rt.AllowedValues)}
	}
	return FieldPolicy{}
}

// AllowedValues returns the legal values, or ok=false when unrestricted.
func (p FieldPolicy) AllowedValues() ([]string, bool) {
	switch p.Access {
	case AccessLocked:
		return []string{p.Locked}, true
	case AccessRestricted:
		return slices.Clone(p.Allowed), true
	}
	return nil, false
}

// Allows reports whether value is legal under the policy.
func (p FieldPolicy) Allows(value string) bool {
	allowed, restricted := p.AllowedValues()
	return !restricted || slices.Contains(allowed, value)
}

// LockedValue returns the required value for the field, if locked.
func LockedValue(s *scope.Scope, field clause.Field, tagKey string) (string, bool) {
	p := PolicyFor(s, field, tagKey)
	return p.Locked, p.Access == AccessLocked
}

// AllowedValues returns the allow-list for the field: the singleton locked
// value if locked, the restriction if restricted, or ok=false when free.
func AllowedValues(s *scope.Scope, field clause.Field, tagKey string) ([]string, bool) {
	return PolicyFor(s, field, tagKey).AllowedValues()
}

// IsValueAllowed reports whether value may be used for the field in s.
func IsValueAllowed(s *scope.Scope, field clause.Field, tagKey, value string) bool {
	return PolicyFor(s, field, tagKey).Allows(value)
}

// AddableFields lists the fields a clause builder may offer in scope s:
// known fields that are neither locked nor already used by a clause in
// used. custom_tag stays addable while AddableTagKeys is non-empty.
func AddableFields(s *scope.Scope, used []clause.Clause, tagKeys []string) []clause.Field {
	inUse := make(map[clause.Field]struct{}, len(used))
	for _, c := range used {
		inUse[c.Field] = struct{}{}
	}

	var out []clause.Field
	for _, m := range clause.Fields() {
		if m.Field == clause.FieldCustomTag {
			if len(AddableTagKeys(s, used, tagKeys)) > 0 {
				out = append(out, m.Field)
			}
			continue
		}
		if _, taken := inUse[m.Field]; taken {
			continue
		}
		if _, locked := LockedValue(s, m.Field, ""); locked {
			continue
		}
		out = append(out, m.Field)
	}
	return out
}

// AddableTagKeys lists the tag keys, in the given order, that are neither
// locked in s nor already filtered by a custom_tag clause in used.
func AddableTagKeys(s *scope.Scope, used []clause.Clause, tagKeys []string) []string {
	var out []string
	for _, k := range tagKeys {
		if _, locked := LockedValue(s, clause.FieldCustomTag, k); locked {
			continue
		}
		taken := slices.ContainsFunc(used, func(c clause.Clause) bool {
			return c.Field == clause.FieldCustomTag && c.TagKey == k
		})
		if !taken {
			out = append(out, k)
		}
	}
	return out
}

// CheckClause validates c and checks it against the scope's policy. It
// rejects clauses on locked fields and clauses naming any value outside a
// restriction.
func CheckClause(s *scope.Scope, c clause.Clause) error {
	if err := clause.Validate(c); err != nil {
		return err
	}
	p := PolicyFor(s, c.Field, c.TagKey)
	switch p.Access {
	case AccessLocked:
		return fmt.Errorf("%w: %s", ErrFieldLocked, fieldName(c))
	case AccessRestricted:
		for _, v := range clause.Values(c.Operand) {
			if !p.Allows(v) {
				return fmt.Errorf("%w: %s=%s", ErrValueNotAllowed, fieldName(c), v)
			}
		}
	}
	return nil
}

func fieldName(c clause.Clause) string {
	if c.Field == clause.FieldCustomTag {
		return string(c.Field) + "[" + c.TagKey + "]"
	}
	return string(c.Field)
}
