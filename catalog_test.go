package facet

import (
	"fmt"
	"testing"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/tag"
)

func optionValues(opts []FieldOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func TestOptionsForEnumerations(t *testing.T) {
	status := OptionsFor(clause.FieldStatus, "", nil, nil, FieldPolicy{})
	if got := fmt.Sprint(optionValues(status)); got != "[pending approved rejected cancelled]" {
		t.Fatalf("status options = %s", got)
	}
	if status[1].Label != "Approved" || !status[1].Allowed {
		t.Fatalf("unexpected option %+v", status[1])
	}

	employment := OptionsFor(clause.FieldEmploymentType, "", nil, nil, FieldPolicy{})
	if got := fmt.Sprint(optionValues(employment)); got != "[full_time part_time contractor]" {
		t.Fatalf("employment options = %s", got)
	}
}

func TestOptionsForDimensionsSortedByLabel(t *testing.T) {
	records := []*record.Record{
		{ID: "1", Department: record.Dimension{ID: "d2", Label: "Sales"}},
		{ID: "2", Department: record.Dimension{ID: "d1", Label: "Engineering"}},
		{ID: "3", Department: record.Dimension{ID: "d2", Label: "Sales"}},
		{ID: "4", Department: record.Dimension{ID: "d3"}},
		{ID: "5"},
	}

	opts := OptionsFor(clause.FieldDepartment, "", records, nil, FieldPolicy{})
	if got := fmt.Sprint(optionValues(opts)); got != "[d1 d2 d3]" {
		t.Fatalf("department options = %s", got)
	}
	// A dimension without a label falls back to its id.
	if opts[2].Label != "d3" {
		t.Fatalf("label = %q", opts[2].Label)
	}
}

func TestOptionsForManagerSkipsAbsent(t *testing.T) {
	records := []*record.Record{
		{ID: "1", Manager: &record.Dimension{ID: "m1", Label: "Anna"}},
		{ID: "2"},
	}
	opts := OptionsFor(clause.FieldManager, "", records, nil, FieldPolicy{})
	if len(opts) != 1 || opts[0].Value != "m1" {
		t.Fatalf("manager options = %+v", opts)
	}
}

func TestOptionsForCustomTag(t *testing.T) {
	tags := []*tag.Tag{
		{Key: "project", Label: "Project", Values: []tag.Value{{Value: "alpha", Label: "Alpha"}, {Value: "beta", Label: "Beta"}}},
		{Key: "team", Label: "Team", Values: []tag.Value{{Value: "red", Label: "Red"}}},
	}

	opts := OptionsFor(clause.FieldCustomTag, "project", nil, tags, FieldPolicy{})
	if got := fmt.Sprint(optionValues(opts)); got != "[alpha beta]" {
		t.Fatalf("project options = %s", got)
	}

	if opts := OptionsFor(clause.FieldCustomTag, "missing", nil, tags, FieldPolicy{}); len(opts) != 0 {
		t.Fatalf("unknown tag key should have no options, got %+v", opts)
	}
}

func TestOptionsForFieldsWithoutValues(t *testing.T) {
	for _, f := range []clause.Field{clause.FieldStartDate, clause.FieldEndDate, "salary"} {
		opts := OptionsFor(f, "", testDataset(), nil, FieldPolicy{})
		if opts == nil || len(opts) != 0 {
			t.Fatalf("%s: expected empty non-nil options, got %v", f, opts)
		}
	}
}

func TestOptionsForMarksDisallowed(t *testing.T) {
	policy := FieldPolicy{Access: AccessRestricted, Allowed: []string{"pending", "approved"}}
	opts := OptionsFor(clause.FieldStatus, "", nil, nil, policy)

	allowed := make(map[string]bool)
	for _, o := range opts {
		allowed[o.Value] = o.Allowed
	}
	want := map[string]bool{"pending": true, "approved": true, "rejected": false, "cancelled": false}
	if fmt.Sprint(allowed) != fmt.Sprint(want) {
		t.Fatalf("allowed = %v, want %v", allowed, want)
	}

	locked := OptionsFor(clause.FieldDepartment, "", testDataset(), nil, FieldPolicy{Access: AccessLocked, Locked: "dept-4"})
	for _, o := range locked {
		if o.Allowed != (o.Value == "dept-4") {
			t.Fatalf("option %s allowed = %v", o.Value, o.Allowed)
		}
	}
}

func TestLabels(t *testing.T) {
	m := Labels(OptionsFor(clause.FieldStatus, "", nil, nil, FieldPolicy{}))
	if m["cancelled"] != "Cancelled" || len(m) != 4 {
		t.Fatalf("labels = %v", m)
	}
}
