package clause

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operand is the right-hand side of a clause. It is one of SingleValue,
// ValueSet or DateRange.
type Operand interface {
	Kind() OperandKind
	isOperand()
}

// OperandKind tags the Operand variant on the wire.
type OperandKind string

const (
	OperandSingle OperandKind = "single"
	OperandSet    OperandKind = "set"
	OperandRange  OperandKind = "range"
)

// SingleValue is one value id, or one date for before/after.
type SingleValue string

// ValueSet is an unordered set of value ids. Order is kept for display.
type ValueSet []string

// DateRange is a date interval. A nil To means open-ended from From onward.
type DateRange struct {
	From time.Time
	To   *time.Time
}

func (SingleValue) Kind() OperandKind { return OperandSingle }
func (ValueSet) Kind() OperandKind    { return OperandSet }
func (DateRange) Kind() OperandKind   { return OperandRange }

func (SingleValue) isOperand() {}
func (ValueSet) isOperand()    {}
func (DateRange) isOperand()   {}

// Values returns the discrete values an operand names. Date ranges name none.
func Values(op Operand) []string {
	switch v := op.(type) {
	case SingleValue:
		return []string{string(v)}
	case ValueSet:
		return []string(v)
	}
	return nil
}

// Contains reports whether value is one of the operand's discrete values.
func Contains(op Operand, value string) bool {
	for _, v := range Values(op) {
		if v == value {
			return true
		}
	}
	return false
}

// dateLayouts are tried in order when a single value is read as a date.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, time.DateOnly}

// ParseDate reads s as an RFC 3339 timestamp or a YYYY-MM-DD date (UTC).
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Range builds a closed date range.
func Range(from, to time.Time) DateRange { return DateRange{From: from, To: &to} }

// Since builds an open-ended date range.
func Since(from time.Time) DateRange { return DateRange{From: from} }

// ──────────────────────────────────────────────────
// Wire form
// ──────────────────────────────────────────────────

// Encoded is the JSON form of an Operand.
type Encoded struct {
	Kind   OperandKind `json:"kind" yaml:"kind"`
	Value  string      `json:"value,omitempty" yaml:"value,omitempty"`
	Values []string    `json:"values,omitempty" yaml:"values,omitempty"`
	From   *time.Time  `json:"from,omitempty" yaml:"from,omitempty"`
	To     *time.Time  `json:"to,omitempty" yaml:"to,omitempty"`
}

// Encode converts op to its wire form. A nil operand encodes to the zero value.
func Encode(op Operand) Encoded {
	switch v := op.(type) {
	case SingleValue:
		return Encoded{Kind: OperandSingle, Value: string(v)}
	case ValueSet:
		return Encoded{Kind: OperandSet, Values: append([]string(nil), v...)}
	case DateRange:
		from := v.From
		e := Encoded{Kind: OperandRange, From: &from}
		if v.To != nil {
			to := *v.To
			e.To = &to
		}
		return e
	}
	return Encoded{}
}

// Decode converts the wire form back to an Operand.
func (e Encoded) Decode() (Operand, error) {
	switch e.Kind {
	case OperandSingle:
		return SingleValue(e.Value), nil
	case OperandSet:
		return ValueSet(append([]string(nil), e.Values...)), nil
	case OperandRange:
		if e.From == nil {
			return nil, fmt.Errorf("%w: date range without from", ErrInvalid)
		}
		r := DateRange{From: *e.From}
		if e.To != nil {
			to := *e.To
			r.To = &to
		}
		return r, nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown operand kind %q", ErrInvalid, e.Kind)
	}
}

// MarshalOperand encodes op as JSON.
func MarshalOperand(op Operand) ([]byte, error) { return json.Marshal(Encode(op)) }

// UnmarshalOperand decodes a JSON operand.
func UnmarshalOperand(data []byte) (Operand, error) {
	var e Encoded
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return e.Decode()
}
