package clause

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders the operand for display. labels maps value ids to their
// labels; ids without a label are shown as-is. One or two set members are
// listed, larger sets are summarised as "N selected".
func Describe(c Clause, labels map[string]string) string {
	label := func(v string) string {
		if l, ok := labels[v]; ok && l != "" {
			return l
		}
		return v
	}

	switch v := c.Operand.(type) {
	case ValueSet:
		names := make([]string, len(v))
		for i, s := range v {
			names[i] = label(s)
		}
		switch len(names) {
		case 0:
			return ""
		case 1:
			return names[0]
		case 2:
			return strings.Join(names, " or ")
		}
		return fmt.Sprintf("%d selected", len(names))
	case DateRange:
		if c.Operator == OpBetween && v.To != nil {
			return shortDate(v.From) + " - " + shortDate(*v.To)
		}
		return shortDate(v.From)
	case SingleValue:
		if c.Field.IsDate() {
			if t, ok := ParseDate(string(v)); ok {
				return shortDate(t)
			}
		}
		return label(string(v))
	}
	return ""
}

// Summary renders "<Field> <operator> <value>", e.g. "Status is any of Pending or Approved".
func Summary(c Clause, labels map[string]string) string {
	field := c.Field.Label()
	if c.Field == FieldCustomTag && c.TagKey != "" {
		field = c.TagKey
	}
	return field + " " + c.Operator.Label() + " " + Describe(c, labels)
}

func shortDate(t time.Time) string { return t.UTC().Format("Jan 2") }
