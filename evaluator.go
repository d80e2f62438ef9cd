package facet

import (
	"time"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/record"
)

// Evaluator decides whether a record satisfies one clause. Implementations
// must be pure and total: the same inputs always yield the same answer and
// no clause, however malformed, makes them fail.
type Evaluator interface {
	Evaluate(r *record.Record, c clause.Clause) bool
}

// DefaultEvaluator returns the built-in predicate evaluator.
func DefaultEvaluator() Evaluator { return predicateEvaluator{} }

// Evaluate runs the built-in evaluator.
func Evaluate(r *record.Record, c clause.Clause) bool { return predicateEvaluator{}.Evaluate(r, c) }

type predicateEvaluator struct{}

// Evaluate dispatches on (field, operator). Pairs outside the two legal
// families, such as a date operator on a discrete field, pass.
func (predicateEvaluator) Evaluate(r *record.Record, c clause.Clause) bool {
	switch {
	case c.Field.IsDiscrete() && c.Operator.IsEquality():
		value, ok := resolveField(r, c.Field, c.TagKey)
		return evaluateDiscrete(c.Operator, value, ok, c.Operand)
	case c.Field.IsDate() && c.Operator.IsDate():
		return evaluateDate(c.Operator, resolveDate(r, c.Field), c.Operand)
	}
	return true
}

// evaluateDiscrete treats a missing value as equal to nothing: inclusion
// operators fail and exclusion operators pass.
func evaluateDiscrete(op clause.Operator, value string, present bool, operand clause.Operand) bool {
	member := present && clause.Contains(operand, value)
	switch op {
	case clause.OpIs, clause.OpIsAnyOf:
		return member
	case clause.OpIsNot, clause.OpIsNoneOf:
		return !member
	}
	return true
}

func evaluateDate(op clause.Operator, d time.Time, operand clause.Operand) bool {
	var from time.Time
	var to *time.Time
	switch v := operand.(type) {
	case clause.SingleValue:
		// between needs a range; a lone date does not constrain it.
		if op == clause.OpBetween {
			return true
		}
		t, ok := clause.ParseDate(string(v))
		if !ok {
			return false
		}
		from = t
	case clause.DateRange:
		from, to = v.From, v.To
	default:
		return false
	}

	switch op {
	case clause.OpBefore:
		return d.Before(from)
	case clause.OpAfter:
		return d.After(from)
	case clause.OpBetween:
		if to == nil {
			return d.After(from)
		}
		return !d.Before(from) && !d.After(*to)
	}
	return true
}

// resolveField returns the record's value id for a discrete field. Empty
// ids, a missing manager and missing or empty tags all count as absent.
func resolveField(r *record.Record, f clause.Field, tagKey string) (string, bool) {
	var v string
	switch f {
	case clause.FieldStatus:
		v = string(r.Status)
	case clause.FieldDepartment:
		v = r.Department.ID
	case clause.FieldCostCenter:
		v = r.CostCenter.ID
	case clause.FieldLocation:
		v = r.Location.ID
	case clause.FieldWorkRole:
		v = r.WorkRole.ID
	case clause.FieldManager:
		if r.Manager != nil {
			v = r.Manager.ID
		}
	case clause.FieldEmploymentType:
		v = string(r.EmploymentType)
	case clause.FieldCustomTag:
		v = r.Tags[tagKey]
	}
	return v, v != ""
}

func resolveDate(r *record.Record, f clause.Field) time.Time {
	if f == clause.FieldEndDate {
		return r.EndDate
	}
	return r.StartDate
}
