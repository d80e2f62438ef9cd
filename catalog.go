package facet

import (
	"sort"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/tag"
)

// FieldOption is one selectable value for a field. Values outside a scope's
// restriction stay in the list with Allowed set to false.
type FieldOption struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Allowed bool   `json:"allowed"`
}

// OptionsFor builds the option list of a field. Enumerated fields list
// their fixed values; dimension fields list every value seen in records,
// sorted by label; custom tags list the registry values of tagKey. Date
// fields and unknown fields have no options.
func OptionsFor(field clause.Field, tagKey string, records []*record.Record, tags []*tag.Tag, policy FieldPolicy) []FieldOption {
	var opts []FieldOption
	switch field {
	case clause.FieldStatus:
		for _, s := range record.Statuses {
			opts = append(opts, FieldOption{Value: string(s), Label: s.Label()})
		}
	case clause.FieldEmploymentType:
		for _, et := range record.EmploymentTypes {
			opts = append(opts, FieldOption{Value: string(et), Label: et.Label()})
		}
	case clause.FieldDepartment, clause.FieldCostCenter, clause.FieldLocation,
		clause.FieldWorkRole, clause.FieldManager:
		opts = dimensionOptions(field, records)
	case clause.FieldCustomTag:
		for _, t := range tags {
			if t.Key != tagKey {
				continue
			}
			for _, v := range t.Values {
				opts = append(opts, FieldOption{Value: v.Value, Label: v.Label})
			}
		}
	default:
		return []FieldOption{}
	}

	for i := range opts {
		opts[i].Allowed = policy.Allows(opts[i].Value)
	}
	if opts == nil {
		opts = []FieldOption{}
	}
	return opts
}

// Labels maps option values to labels.
func Labels(opts []FieldOption) map[string]string {
	m := make(map[string]string, len(opts))
	for _, o := range opts {
		m[o.Value] = o.Label
	}
	return m
}

func dimensionOptions(field clause.Field, records []*record.Record) []FieldOption {
	seen := make(map[string]string)
	for _, r := range records {
		var d *record.Dimension
		switch field {
		case clause.FieldDepartment:
			d = &r.Department
		case clause.FieldCostCenter:
			d = &r.CostCenter
		case clause.FieldLocation:
			d = &r.Location
		case clause.FieldWorkRole:
			d = &r.WorkRole
		case clause.FieldManager:
			d = r.Manager
		}
		if d == nil || d.ID == "" {
			continue
		}
		if _, ok := seen[d.ID]; !ok {
			seen[d.ID] = d.Label
		}
	}

	opts := make([]FieldOption, 0, len(seen))
	for v, l := range seen {
		if l == "" {
			l = v
		}
		opts = append(opts, FieldOption{Value: v, Label: l})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Label != opts[j].Label {
			return opts[i].Label < opts[j].Label
		}
		return opts[i].Value < opts[j].Value
	})
	return opts
}
