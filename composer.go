package facet

import (
	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/scope"
)

// Compose returns the full clause set of a scope: its required filters as
// locked "is" clauses, followed by the user's clauses. Collisions between a
// required filter and a user clause on the same field are kept; the AND of
// both may match nothing.
func Compose(s *scope.Scope, userClauses []clause.Clause) []clause.Clause {
	if s == nil {
		return append([]clause.Clause(nil), userClauses...)
	}
	out := make([]clause.Clause, 0, len(s.RequiredFilters)+len(userClauses))
	for _, rf := range s.RequiredFilters {
		out = append(out, RequiredClause(rf))
	}
	return append(out, userClauses...)
}

// RequiredClause converts a required filter to its equivalent clause.
func RequiredClause(rf scope.RequiredFilter) clause.Clause {
	c := clause.Clause{
		Field:    rf.Field,
		Operator: clause.OpIs,
		Operand:  clause.SingleValue(rf.Value),
		Locked:   true,
	}
	if rf.Field == clause.FieldCustomTag {
		c.TagKey = rf.TagKey
	}
	return c
}
