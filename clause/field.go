// Package clause defines filter clauses: the field being filtered, the
// operator, and a tagged operand that is a single value, a value set or a
// date range.
package clause

// Field names a filterable dimension of a record.
type Field string

const (
	FieldStatus         Field = "status"
	FieldDepartment     Field = "department"
	FieldCostCenter     Field = "cost_center"
	FieldLocation       Field = "location"
	FieldWorkRole       Field = "work_role"
	FieldManager        Field = "manager"
	FieldEmploymentType Field = "employment_type"
	FieldStartDate      Field = "start_date"
	FieldEndDate        Field = "end_date"
	FieldCustomTag      Field = "custom_tag"
)

// Operator is a comparison operator for clauses.
type Operator string

const (
	// OpIs matches a single value.
	OpIs Operator = "is"

	// OpIsNot excludes a single value.
	OpIsNot Operator = "is_not"

	// OpIsAnyOf matches any value of a set.
	OpIsAnyOf Operator = "is_any_of"

	// OpIsNoneOf excludes every value of a set.
	OpIsNoneOf Operator = "is_none_of"

	// OpBefore matches dates strictly earlier than the operand.
	OpBefore Operator = "before"

	// OpAfter matches dates strictly later than the operand.
	OpAfter Operator = "after"

	// OpBetween matches dates inside an inclusive range.
	OpBetween Operator = "between"
)

var operatorLabels = map[Operator]string{
	OpIs:       "is",
	OpIsNot:    "is not",
	OpIsAnyOf:  "is any of",
	OpIsNoneOf: "is none of",
	OpBefore:   "is before",
	OpAfter:    "is after",
	OpBetween:  "is between",
}

// Label returns the human-readable operator name.
func (o Operator) Label() string {
	if l, ok := operatorLabels[o]; ok {
		return l
	}
	return string(o)
}

// IsEquality reports whether o belongs to the is/is_not/is_any_of/is_none_of family.
func (o Operator) IsEquality() bool {
	switch o {
	case OpIs, OpIsNot, OpIsAnyOf, OpIsNoneOf:
		return true
	}
	return false
}

// IsDate reports whether o is a date comparison.
func (o Operator) IsDate() bool {
	switch o {
	case OpBefore, OpAfter, OpBetween:
		return true
	}
	return false
}

// ValueKind describes the shape of values a field accepts.
type ValueKind string

const (
	KindMulti ValueKind = "multi"
	KindDate  ValueKind = "date"
)

// Meta describes a field: its label, legal operators and value kind.
type Meta struct {
	Field     Field      `json:"field"`
	Label     string     `json:"label"`
	Operators []Operator `json:"operators"`
	Kind      ValueKind  `json:"kind"`
}

var (
	equalityOps = []Operator{OpIs, OpIsNot, OpIsAnyOf, OpIsNoneOf}
	dateOps     = []Operator{OpBefore, OpAfter, OpBetween}
)

// fields is ordered the way the clause builder lists them.
var fields = []Meta{
	{FieldStatus, "Status", equalityOps, KindMulti},
	{FieldDepartment, "Department", equalityOps, KindMulti},
	{FieldCostCenter, "Cost Center", equalityOps, KindMulti},
	{FieldLocation, "Location", equalityOps, KindMulti},
	{FieldWorkRole, "Work Role", equalityOps, KindMulti},
	{FieldManager, "Manager", equalityOps, KindMulti},
	{FieldEmploymentType, "Employment Type", equalityOps, KindMulti},
	{FieldStartDate, "Start Date", dateOps, KindDate},
	{FieldEndDate, "End Date", dateOps, KindDate},
	{FieldCustomTag, "Tags", equalityOps, KindMulti},
}

// Fields returns metadata for every known field in display order.
func Fields() []Meta {
	out := make([]Meta, len(fields))
	for i, m := range fields {
		m.Operators = append([]Operator(nil), m.Operators...)
		out[i] = m
	}
	return out
}

// Lookup returns the metadata for f.
func Lookup(f Field) (Meta, bool) {
	for _, m := range fields {
		if m.Field == f {
			return m, true
		}
	}
	return Meta{}, false
}

// Known reports whether f is one of the defined fields.
func (f Field) Known() bool {
	_, ok := Lookup(f)
	return ok
}

// IsDate reports whether f holds a date.
func (f Field) IsDate() bool { return f == FieldStartDate || f == FieldEndDate }

// IsDiscrete reports whether f is a known field compared by value identity.
func (f Field) IsDiscrete() bool { return f.Known() && !f.IsDate() }

// Label returns the field's display label.
func (f Field) Label() string {
	if m, ok := Lookup(f); ok {
		return m.Label
	}
	return string(f)
}

// Allows reports whether op is legal for f.
func (f Field) Allows(op Operator) bool {
	m, ok := Lookup(f)
	if !ok {
		return false
	}
	for _, o := range m.Operators {
		if o == op {
			return true
		}
	}
	return false
}
