package api

import (
	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/scope"
)

// ──────────────────────────────────────────────────
// Filter requests
// ──────────────────────────────────────────────────

// ApplyRequest evaluates a user's scopes without touching their session.
// Clauses and Params are keyed by scope id; both may be given and are
// concatenated in that order.
type ApplyRequest struct {
	UserID  string                     `path:"userId" description:"User ID"`
	Clauses map[string][]clause.Clause `json:"clauses,omitempty" description:"Structured clauses per scope"`
	Params  map[string]string          `json:"params,omitempty" description:"Encoded clauses per scope (field:op:value|...)"`
}

// UserPathRequest is the path parameter naming a user.
type UserPathRequest struct {
	UserID string `path:"userId" description:"User ID"`
}

// ScopePathRequest is the path parameters naming a user's scope.
type ScopePathRequest struct {
	UserID  string `path:"userId" description:"User ID"`
	ScopeID string `path:"scopeId" description:"Scope ID"`
}

// OptionsRequest lists a field's selectable values within a scope.
type OptionsRequest struct {
	UserID  string `path:"userId" description:"User ID"`
	ScopeID string `path:"scopeId" description:"Scope ID"`
	Field   string `query:"field" description:"Filter field"`
	TagKey  string `query:"tag_key" description:"Custom tag key (field=custom_tag only)"`
}

// ──────────────────────────────────────────────────
// Clause requests
// ──────────────────────────────────────────────────

// AddClauseRequest is the body for adding a clause to a session scope.
type AddClauseRequest struct {
	UserID   string         `path:"userId" description:"User ID"`
	ScopeID  string         `path:"scopeId" description:"Scope ID"`
	Field    string         `json:"field" description:"Filter field"`
	Operator string         `json:"operator" description:"Operator"`
	Operand  clause.Encoded `json:"operand" description:"Operand (single, set or range)"`
	TagKey   string         `json:"tag_key,omitempty" description:"Custom tag key"`
}

// UpdateClauseRequest is the body for patching a clause. Omitted members
// are left unchanged.
type UpdateClauseRequest struct {
	UserID   string          `path:"userId" description:"User ID"`
	ScopeID  string          `path:"scopeId" description:"Scope ID"`
	ClauseID string          `path:"clauseId" description:"Clause ID"`
	Operator string          `json:"operator,omitempty" description:"New operator"`
	Operand  *clause.Encoded `json:"operand,omitempty" description:"New operand"`
}

// ClausePathRequest is the path parameters naming a clause.
type ClausePathRequest struct {
	UserID   string `path:"userId" description:"User ID"`
	ScopeID  string `path:"scopeId" description:"Scope ID"`
	ClauseID string `path:"clauseId" description:"Clause ID"`
}

// ──────────────────────────────────────────────────
// User requests
// ──────────────────────────────────────────────────

// CreateUserRequest is the body for adding a user to the directory.
type CreateUserRequest struct {
	ID          string        `json:"id" description:"User ID"`
	Name        string        `json:"name" description:"Display name"`
	Email       string        `json:"email,omitempty" description:"Email address"`
	Role        string        `json:"role,omitempty" description:"Role label"`
	Description string        `json:"description,omitempty" description:"Description"`
	Scopes      []scope.Scope `json:"scopes" description:"Permission scopes, default first"`
}

// UpdateUserRequest is the body for updating a user. Omitted members are
// left unchanged; a non-nil Scopes replaces the whole scope list.
type UpdateUserRequest struct {
	UserID      string        `path:"userId" description:"User ID"`
	Name        string        `json:"name,omitempty" description:"Display name"`
	Email       *string       `json:"email,omitempty" description:"Email address"`
	Role        *string       `json:"role,omitempty" description:"Role label"`
	Description *string       `json:"description,omitempty" description:"Description"`
	Scopes      []scope.Scope `json:"scopes,omitempty" description:"Permission scopes, default first"`
}

// ListUsersRequest holds query parameters for listing users.
type ListUsersRequest struct {
	Search string `query:"search" description:"Search by id, name or email"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Tag requests
// ──────────────────────────────────────────────────

// CreateTagRequest is the body for creating a custom tag.
type CreateTagRequest struct {
	Key    string   `json:"key" description:"Tag key (normalised to lower_snake)"`
	Label  string   `json:"label" description:"Display label"`
	Values []string `json:"values" description:"Allowed values"`
}

// UpdateTagRequest is the body for updating a custom tag.
type UpdateTagRequest struct {
	Key    string   `path:"key" description:"Tag key"`
	Label  *string  `json:"label,omitempty" description:"New label"`
	Values []string `json:"values,omitempty" description:"Replacement values"`
}

// TagPathRequest is the path parameter naming a tag.
type TagPathRequest struct {
	Key string `path:"key" description:"Tag key"`
}
