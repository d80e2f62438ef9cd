package clause

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xraph/facet/id"
)

// ErrInvalid is returned when a clause is malformed.
var ErrInvalid = errors.New("clause: invalid clause")

// Clause is a single filter condition.
type Clause struct {
	ID       id.ClauseID `json:"id"`
	Field    Field       `json:"field"`
	Operator Operator    `json:"operator"`
	Operand  Operand     `json:"-"`
	// TagKey names the custom tag dimension. Set only for FieldCustomTag.
	TagKey string `json:"tag_key,omitempty"`
	// Locked marks a clause derived from a scope's required filter.
	Locked bool `json:"locked,omitempty"`
}

// Patch carries the mutable parts of a clause. Nil members are left unchanged.
type Patch struct {
	Operator *Operator
	Operand  Operand
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool { return p.Operator == nil && p.Operand == nil }

// Apply returns c with the patch merged in.
func (p Patch) Apply(c Clause) Clause {
	if p.Operator != nil {
		c.Operator = *p.Operator
	}
	if p.Operand != nil {
		c.Operand = p.Operand
	}
	return c
}

type clauseJSON struct {
	ID       id.ClauseID `json:"id"`
	Field    Field       `json:"field"`
	Operator Operator    `json:"operator"`
	Operand  Encoded     `json:"operand"`
	TagKey   string      `json:"tag_key,omitempty"`
	Locked   bool        `json:"locked,omitempty"`
}

// MarshalJSON encodes the operand in its tagged wire form.
func (c Clause) MarshalJSON() ([]byte, error) {
	return json.Marshal(clauseJSON{
		ID:       c.ID,
		Field:    c.Field,
		Operator: c.Operator,
		Operand:  Encode(c.Operand),
		TagKey:   c.TagKey,
		Locked:   c.Locked,
	})
}

// UnmarshalJSON decodes a clause with a tagged operand.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var w clauseJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	op, err := w.Operand.Decode()
	if err != nil {
		return err
	}
	*c = Clause{
		ID:       w.ID,
		Field:    w.Field,
		Operator: w.Operator,
		Operand:  op,
		TagKey:   w.TagKey,
		Locked:   w.Locked,
	}
	return nil
}

// Validate checks that c is well formed: a known field, an operator legal
// for that field, an operand whose shape fits the operator, and a tag key
// exactly when the field is custom_tag.
//
// Evaluation never requires a valid clause; Validate exists for callers
// that build clauses from user input.
func Validate(c Clause) error {
	if !c.Field.Known() {
		return fmt.Errorf("%w: unknown field %q", ErrInvalid, c.Field)
	}
	if !c.Field.Allows(c.Operator) {
		return fmt.Errorf("%w: operator %q not allowed on %s", ErrInvalid, c.Operator, c.Field)
	}
	if c.Field == FieldCustomTag && c.TagKey == "" {
		return fmt.Errorf("%w: custom_tag requires a tag key", ErrInvalid)
	}
	if c.Field != FieldCustomTag && c.TagKey != "" {
		return fmt.Errorf("%w: tag key set on %s", ErrInvalid, c.Field)
	}

	switch c.Operator {
	case OpIs, OpIsNot:
		if v, ok := c.Operand.(SingleValue); !ok || v == "" {
			return fmt.Errorf("%w: %s takes a single value", ErrInvalid, c.Operator)
		}
	case OpIsAnyOf, OpIsNoneOf:
		if v, ok := c.Operand.(ValueSet); !ok || len(v) == 0 {
			return fmt.Errorf("%w: %s takes a non-empty value set", ErrInvalid, c.Operator)
		}
	case OpBefore, OpAfter:
		switch v := c.Operand.(type) {
		case SingleValue:
			if _, ok := ParseDate(string(v)); !ok {
				return fmt.Errorf("%w: %q is not a date", ErrInvalid, v)
			}
		case DateRange:
		default:
			return fmt.Errorf("%w: %s takes a date", ErrInvalid, c.Operator)
		}
	case OpBetween:
		r, ok := c.Operand.(DateRange)
		if !ok {
			return fmt.Errorf("%w: between takes a date range", ErrInvalid)
		}
		if r.To != nil && r.To.Before(r.From) {
			return fmt.Errorf("%w: range ends before it starts", ErrInvalid)
		}
	}
	return nil
}
