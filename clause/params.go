package clause

import (
	"fmt"
	"strings"
	"time"
)

// Clause params are the compact text form used in URLs and on the command
// line: clauses are joined by "|", each written as field:operator:value.
// Sets are comma-joined and date ranges are written as from[,to]. Custom
// tags name their key in brackets, as in custom_tag[project]:is:alpha.

const (
	clauseSep = "|"
	valueSep  = ","
)

// FormatParams renders clauses in param form. IDs and lock flags are dropped.
func FormatParams(cs []Clause) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, FormatParam(c))
	}
	return strings.Join(parts, clauseSep)
}

// FormatParam renders one clause.
func FormatParam(c Clause) string {
	field := string(c.Field)
	if c.Field == FieldCustomTag {
		field += "[" + c.TagKey + "]"
	}
	return field + ":" + string(c.Operator) + ":" + formatValue(c.Operand)
}

func formatValue(op Operand) string {
	switch v := op.(type) {
	case SingleValue:
		return string(v)
	case ValueSet:
		return strings.Join(v, valueSep)
	case DateRange:
		s := formatDate(v.From)
		if v.To != nil {
			s += valueSep + formatDate(*v.To)
		}
		return s
	}
	return ""
}

func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// ParseParams parses the param form. Returned clauses carry no IDs.
// An empty string yields no clauses.
func ParseParams(s string) ([]Clause, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []Clause
	for _, part := range strings.Split(s, clauseSep) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseParam(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseParam parses a single field:operator:value clause.
func ParseParam(s string) (Clause, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(parts) != 3 {
		return Clause{}, fmt.Errorf("%w: %q is not field:operator:value", ErrInvalid, s)
	}

	c := Clause{Operator: Operator(parts[1])}
	field := parts[0]
	if open := strings.IndexByte(field, '['); open >= 0 && strings.HasSuffix(field, "]") {
		c.TagKey = field[open+1 : len(field)-1]
		field = field[:open]
	}
	c.Field = Field(field)
	if !c.Field.Known() {
		return Clause{}, fmt.Errorf("%w: unknown field %q", ErrInvalid, field)
	}

	raw := parts[2]
	switch {
	case c.Operator.IsDate():
		r, err := parseRange(raw)
		if err != nil {
			return Clause{}, err
		}
		c.Operand = r
	case c.Operator == OpIsAnyOf || c.Operator == OpIsNoneOf:
		var set ValueSet
		for _, v := range strings.Split(raw, valueSep) {
			if v = strings.TrimSpace(v); v != "" {
				set = append(set, v)
			}
		}
		c.Operand = set
	case c.Operator.IsEquality():
		c.Operand = SingleValue(raw)
	default:
		return Clause{}, fmt.Errorf("%w: unknown operator %q", ErrInvalid, c.Operator)
	}
	return c, nil
}

func parseRange(raw string) (DateRange, error) {
	fromRaw, toRaw, hasTo := strings.Cut(raw, valueSep)
	from, ok := ParseDate(strings.TrimSpace(fromRaw))
	if !ok {
		return DateRange{}, fmt.Errorf("%w: %q is not a date", ErrInvalid, fromRaw)
	}
	r := DateRange{From: from}
	if hasTo && strings.TrimSpace(toRaw) != "" {
		to, ok := ParseDate(strings.TrimSpace(toRaw))
		if !ok {
			return DateRange{}, fmt.Errorf("%w: %q is not a date", ErrInvalid, toRaw)
		}
		r.To = &to
	}
	return r, nil
}
