package scope

import (
	"fmt"
	"time"
)

// User owns an ordered list of scopes. Scopes are unioned; the first is
// the default.
type User struct {
	ID          string    `json:"id" yaml:"id"`
	TenantID    string    `json:"tenant_id" yaml:"tenant_id"`
	Name        string    `json:"name" yaml:"name"`
	Email       string    `json:"email,omitempty" yaml:"email,omitempty"`
	Role        string    `json:"role,omitempty" yaml:"role,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Scopes      []Scope   `json:"scopes" yaml:"scopes"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// ScopeIDs returns the scope ids in order.
func (u *User) ScopeIDs() []string {
	ids := make([]string, len(u.Scopes))
	for i := range u.Scopes {
		ids[i] = u.Scopes[i].ID
	}
	return ids
}

// Scope returns the scope with the given id.
func (u *User) Scope(scopeID string) (*Scope, bool) {
	for i := range u.Scopes {
		if u.Scopes[i].ID == scopeID {
			return &u.Scopes[i], true
		}
	}
	return nil, false
}

// Validate checks the user has an id, at least one scope, unique scope ids,
// and that every scope is valid.
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalid)
	}
	if len(u.Scopes) == 0 {
		return fmt.Errorf("%w: user %s has no scopes", ErrInvalid, u.ID)
	}
	seen := make(map[string]struct{}, len(u.Scopes))
	for i := range u.Scopes {
		sc := &u.Scopes[i]
		if _, dup := seen[sc.ID]; dup {
			return fmt.Errorf("%w: user %s: duplicate scope %s", ErrInvalid, u.ID, sc.ID)
		}
		seen[sc.ID] = struct{}{}
		if err := sc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	cp := *u
	cp.Scopes = make([]Scope, len(u.Scopes))
	for i, sc := range u.Scopes {
		sc.RequiredFilters = append([]RequiredFilter(nil), sc.RequiredFilters...)
		rts := make([]RestrictedTag, len(sc.RestrictedTags))
		for j, rt := range sc.RestrictedTags {
			rt.AllowedValues = append([]string(nil), rt.AllowedValues...)
			rts[j] = rt
		}
		sc.RestrictedTags = rts
		cp.Scopes[i] = sc
	}
	return &cp
}

// ListFilter contains filters for listing users.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
