package api

import (
	"github.com/xraph/facet"
	"github.com/xraph/facet/clause"
)

// ClauseResponse is a clause plus its display value.
type ClauseResponse struct {
	ScopeID string        `json:"scope_id" description:"Scope the clause belongs to"`
	Clause  clause.Clause `json:"clause" description:"The clause"`
	Display string        `json:"display" description:"Human-readable value"`
}

// ScopeStateResponse lists one scope's effective clauses.
type ScopeStateResponse struct {
	ScopeID  string          `json:"scope_id" description:"Scope ID"`
	Required []clause.Clause `json:"required" description:"Locked clauses from the scope"`
	Clauses  []clause.Clause `json:"clauses" description:"User clauses"`
}

// RecordsResponse is an apply result plus the session's clause state.
type RecordsResponse struct {
	*facet.ApplyResult
	State []ScopeStateResponse `json:"state,omitempty" description:"Per-scope clauses behind the result"`
}

// OptionsResponse lists a field's options within a scope.
type OptionsResponse struct {
	Field   string         `json:"field" description:"Filter field"`
	TagKey  string         `json:"tag_key,omitempty" description:"Custom tag key"`
	Access  string         `json:"access" description:"free, locked or restricted"`
	Options []facet.FieldOption `json:"options" description:"Options with allowed flags"`
}

// FieldsResponse lists what a clause builder may offer in a scope.
type FieldsResponse struct {
	ScopeID string         `json:"scope_id" description:"Scope ID"`
	Fields  []clause.Field `json:"fields" description:"Addable fields"`
	TagKeys []string       `json:"tag_keys" description:"Addable custom tag keys"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T `json:"items" description:"List of items"`
	Limit  int `json:"limit" description:"Page size"`
	Offset int `json:"offset" description:"Page offset"`
}
