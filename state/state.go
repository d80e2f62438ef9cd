// Package state holds the per-scope lists of user-added clauses.
//
// A State is an immutable value. Every transition returns a new State and
// leaves the receiver untouched, so snapshots can be shared freely. Required
// filters are never stored here; they are implied by the scope.
//
// Lookup misses (unknown scope id, unknown clause id) are no-ops.
package state

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
)

// State maps scope ids to their ordered clause lists.
type State struct {
	order   []string
	clauses map[string][]clause.Clause
}

// Reset returns a state with one empty list per scope id. It is used
// whenever the active user, and hence the scope set, changes.
func Reset(scopeIDs ...string) State {
	s := State{
		order:   make([]string, 0, len(scopeIDs)),
		clauses: make(map[string][]clause.Clause, len(scopeIDs)),
	}
	for _, sid := range scopeIDs {
		if _, dup := s.clauses[sid]; dup {
			continue
		}
		s.order = append(s.order, sid)
		s.clauses[sid] = nil
	}
	return s
}

// ScopeIDs returns the scope ids in order.
func (s State) ScopeIDs() []string { return slices.Clone(s.order) }

// Has reports whether the state tracks scopeID.
func (s State) Has(scopeID string) bool {
	_, ok := s.clauses[scopeID]
	return ok
}

// Clauses returns a copy of the clauses for scopeID, or nil.
func (s State) Clauses(scopeID string) []clause.Clause {
	return slices.Clone(s.clauses[scopeID])
}

// Clause returns one clause by id.
func (s State) Clause(scopeID string, clauseID id.ClauseID) (clause.Clause, bool) {
	for _, c := range s.clauses[scopeID] {
		if c.ID == clauseID {
			return c, true
		}
	}
	return clause.Clause{}, false
}

// Len returns the total number of user clauses across scopes.
func (s State) Len() int {
	n := 0
	for _, cs := range s.clauses {
		n += len(cs)
	}
	return n
}

// HasActive reports whether any scope has a user clause.
func (s State) HasActive() bool { return s.Len() > 0 }

// Add appends a clause with a fresh id. The id is returned alongside the
// new state, or id.Nil if scopeID is unknown.
func (s State) Add(scopeID string, field clause.Field, op clause.Operator, operand clause.Operand, tagKey string) (State, id.ClauseID) {
	if !s.Has(scopeID) {
		return s, id.Nil
	}
	c := clause.Clause{
		ID:       id.NewClauseID(),
		Field:    field,
		Operator: op,
		Operand:  operand,
		TagKey:   tagKey,
	}
	next := s.with(scopeID, append(slices.Clone(s.clauses[scopeID]), c))
	return next, c.ID
}

// Update merges patch into the matching clause.
func (s State) Update(scopeID string, clauseID id.ClauseID, patch clause.Patch) State {
	list := s.clauses[scopeID]
	i := slices.IndexFunc(list, func(c clause.Clause) bool { return c.ID == clauseID })
	if i < 0 {
		return s
	}
	next := slices.Clone(list)
	next[i] = patch.Apply(next[i])
	return s.with(scopeID, next)
}

// Remove drops the matching clause.
func (s State) Remove(scopeID string, clauseID id.ClauseID) State {
	list := s.clauses[scopeID]
	i := slices.IndexFunc(list, func(c clause.Clause) bool { return c.ID == clauseID })
	if i < 0 {
		return s
	}
	next := make([]clause.Clause, 0, len(list)-1)
	next = append(next, list[:i]...)
	next = append(next, list[i+1:]...)
	return s.with(scopeID, next)
}

// ClearScope empties one scope's clauses.
func (s State) ClearScope(scopeID string) State {
	if !s.Has(scopeID) {
		return s
	}
	return s.with(scopeID, nil)
}

// ClearAll empties every scope's clauses, keeping the scope set.
func (s State) ClearAll() State { return Reset(s.order...) }

// Fingerprint is a stable textual key for the state's contents. Two states
// with the same scopes and clauses share a fingerprint; clause ids do not
// take part. Every value is written as its own JSON string so distinct
// value sets never collide.
func (s State) Fingerprint() string {
	scopes := make([]fingerprintScope, len(s.order))
	for i, sid := range s.order {
		list := s.clauses[sid]
		fs := fingerprintScope{ScopeID: sid, Clauses: make([]fingerprintClause, len(list))}
		for j, c := range list {
			fs.Clauses[j] = newFingerprintClause(c)
		}
		scopes[i] = fs
	}
	// Only strings are encoded, so Marshal cannot fail.
	b, _ := json.Marshal(scopes)
	return string(b)
}

type fingerprintScope struct {
	ScopeID string              `json:"s"`
	Clauses []fingerprintClause `json:"c"`
}

type fingerprintClause struct {
	Field    clause.Field       `json:"f"`
	Operator clause.Operator    `json:"o"`
	TagKey   string             `json:"k,omitempty"`
	Kind     clause.OperandKind `json:"t"`
	Values   []string           `json:"v"`
}

func newFingerprintClause(c clause.Clause) fingerprintClause {
	fc := fingerprintClause{Field: c.Field, Operator: c.Operator, TagKey: c.TagKey}
	enc := clause.Encode(c.Operand)
	fc.Kind = enc.Kind
	switch enc.Kind {
	case clause.OperandSingle:
		fc.Values = []string{enc.Value}
	case clause.OperandSet:
		fc.Values = enc.Values
	case clause.OperandRange:
		fc.Values = []string{enc.From.Format(time.RFC3339Nano)}
		if enc.To != nil {
			fc.Values = append(fc.Values, enc.To.Format(time.RFC3339Nano))
		}
	}
	return fc
}

// with returns a copy of s whose scopeID list is replaced by list. The map
// is copied; the clause slices are shared since they are never mutated.
func (s State) with(scopeID string, list []clause.Clause) State {
	next := State{
		order:   s.order,
		clauses: make(map[string][]clause.Clause, len(s.clauses)),
	}
	for k, v := range s.clauses {
		next.clauses[k] = v
	}
	next.clauses[scopeID] = list
	return next
}
