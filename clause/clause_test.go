package clause

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, ok := ParseDate(s)
	if !ok {
		panic("bad date " + s)
	}
	return t
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		c    Clause
		ok   bool
	}{
		{"is single", Clause{Field: FieldStatus, Operator: OpIs, Operand: SingleValue("approved")}, true},
		{"is empty value", Clause{Field: FieldStatus, Operator: OpIs, Operand: SingleValue("")}, false},
		{"is with set", Clause{Field: FieldStatus, Operator: OpIs, Operand: ValueSet{"approved"}}, false},
		{"any of set", Clause{Field: FieldDepartment, Operator: OpIsAnyOf, Operand: ValueSet{"dept-1", "dept-2"}}, true},
		{"any of empty set", Clause{Field: FieldDepartment, Operator: OpIsAnyOf, Operand: ValueSet{}}, false},
		{"none of single", Clause{Field: FieldDepartment, Operator: OpIsNoneOf, Operand: SingleValue("dept-1")}, false},
		{"date op on discrete field", Clause{Field: FieldStatus, Operator: OpBefore, Operand: SingleValue("2025-01-01")}, false},
		{"equality op on date field", Clause{Field: FieldStartDate, Operator: OpIs, Operand: SingleValue("2025-01-01")}, false},
		{"before single date", Clause{Field: FieldStartDate, Operator: OpBefore, Operand: SingleValue("2025-01-01")}, true},
		{"before bad date", Clause{Field: FieldStartDate, Operator: OpBefore, Operand: SingleValue("soon")}, false},
		{"after range", Clause{Field: FieldEndDate, Operator: OpAfter, Operand: Since(date("2025-01-01"))}, true},
		{"between closed", Clause{Field: FieldStartDate, Operator: OpBetween, Operand: Range(date("2025-01-01"), date("2025-01-31"))}, true},
		{"between open", Clause{Field: FieldStartDate, Operator: OpBetween, Operand: Since(date("2025-01-01"))}, true},
		{"between inverted", Clause{Field: FieldStartDate, Operator: OpBetween, Operand: Range(date("2025-02-01"), date("2025-01-01"))}, false},
		{"between single", Clause{Field: FieldStartDate, Operator: OpBetween, Operand: SingleValue("2025-01-01")}, false},
		{"custom tag with key", Clause{Field: FieldCustomTag, Operator: OpIs, Operand: SingleValue("alpha"), TagKey: "project"}, true},
		{"custom tag without key", Clause{Field: FieldCustomTag, Operator: OpIs, Operand: SingleValue("alpha")}, false},
		{"tag key on builtin field", Clause{Field: FieldStatus, Operator: OpIs, Operand: SingleValue("approved"), TagKey: "project"}, false},
		{"unknown field", Clause{Field: "salary", Operator: OpIs, Operand: SingleValue("1")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.c)
			if tt.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("expected ErrInvalid, got %v", err)
				}
			}
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	in := []Clause{
		{Field: FieldStatus, Operator: OpIsAnyOf, Operand: ValueSet{"approved", "pending"}},
		{Field: FieldDepartment, Operator: OpIsNot, Operand: SingleValue("dept-3")},
		{Field: FieldStartDate, Operator: OpBetween, Operand: Range(date("2025-01-01"), date("2025-01-31"))},
		{Field: FieldEndDate, Operator: OpAfter, Operand: Since(date("2025-03-04T10:30:00Z"))},
		{Field: FieldCustomTag, Operator: OpIs, Operand: SingleValue("alpha"), TagKey: "project"},
	}

	s := FormatParams(in)
	want := "status:is_any_of:approved,pending|department:is_not:dept-3|" +
		"start_date:between:2025-01-01,2025-01-31|end_date:after:2025-03-04T10:30:00Z|" +
		"custom_tag[project]:is:alpha"
	if s != want {
		t.Fatalf("FormatParams:\n got %s\nwant %s", s, want)
	}

	out, err := ParseParams(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d clauses, got %d", len(in), len(out))
	}
	if FormatParams(out) != s {
		t.Fatalf("re-format mismatch: %s", FormatParams(out))
	}
	if out[4].TagKey != "project" || out[4].Field != FieldCustomTag {
		t.Fatalf("custom tag not parsed: %+v", out[4])
	}
	r, ok := out[2].Operand.(DateRange)
	if !ok || r.To == nil || !r.To.Equal(date("2025-01-31")) {
		t.Fatalf("range not parsed: %#v", out[2].Operand)
	}
}

func TestParseParamsErrors(t *testing.T) {
	for _, in := range []string{
		"status",
		"status:is",
		"salary:is:1",
		"status:matches:x",
		"start_date:before:yesterday",
		"start_date:between:2025-01-01,never",
	} {
		if _, err := ParseParams(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseParams(%q): expected ErrInvalid, got %v", in, err)
		}
	}

	out, err := ParseParams("   ")
	if err != nil || len(out) != 0 {
		t.Fatalf("empty params: %v %v", out, err)
	}
}

func TestDescribe(t *testing.T) {
	labels := map[string]string{"approved": "Approved", "pending": "Pending", "rejected": "Rejected"}

	tests := []struct {
		name string
		c    Clause
		want string
	}{
		{"single labelled", Clause{Field: FieldStatus, Operator: OpIs, Operand: SingleValue("approved")}, "Approved"},
		{"single unknown", Clause{Field: FieldStatus, Operator: OpIs, Operand: SingleValue("x")}, "x"},
		{"one of set", Clause{Field: FieldStatus, Operator: OpIsAnyOf, Operand: ValueSet{"pending"}}, "Pending"},
		{"two of set", Clause{Field: FieldStatus, Operator: OpIsAnyOf, Operand: ValueSet{"approved", "pending"}}, "Approved or Pending"},
		{"three of set", Clause{Field: FieldStatus, Operator: OpIsAnyOf, Operand: ValueSet{"approved", "pending", "rejected"}}, "3 selected"},
		{"closed range", Clause{Field: FieldStartDate, Operator: OpBetween, Operand: Range(date("2025-01-02"), date("2025-01-05"))}, "Jan 2 - Jan 5"},
		{"open range", Clause{Field: FieldStartDate, Operator: OpBetween, Operand: Since(date("2025-01-02"))}, "Jan 2"},
		{"single date", Clause{Field: FieldStartDate, Operator: OpBefore, Operand: SingleValue("2025-12-24")}, "Dec 24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.c, labels); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	sum := Summary(Clause{Field: FieldStatus, Operator: OpIsAnyOf, Operand: ValueSet{"approved", "pending"}}, labels)
	if sum != "Status is any of Approved or Pending" {
		t.Fatalf("Summary = %q", sum)
	}
}

func TestClauseJSON(t *testing.T) {
	to := date("2025-01-31")
	in := Clause{
		Field:    FieldStartDate,
		Operator: OpBetween,
		Operand:  DateRange{From: date("2025-01-01"), To: &to},
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Clause
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	r, ok := out.Operand.(DateRange)
	if !ok || !r.From.Equal(in.Operand.(DateRange).From) || r.To == nil || !r.To.Equal(to) {
		t.Fatalf("operand lost in round trip: %#v", out.Operand)
	}

	if err := json.Unmarshal([]byte(`{"field":"status","operator":"is","operand":{"kind":"blob"}}`), &out); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown operand kind, got %v", err)
	}
}

func TestPatchApply(t *testing.T) {
	c := Clause{Field: FieldStatus, Operator: OpIs, Operand: SingleValue("approved")}
	if !(Patch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}

	op := OpIsAnyOf
	got := Patch{Operator: &op, Operand: ValueSet{"approved", "pending"}}.Apply(c)
	if got.Operator != OpIsAnyOf || len(Values(got.Operand)) != 2 {
		t.Fatalf("patch not applied: %+v", got)
	}
	if c.Operator != OpIs {
		t.Fatal("Apply mutated its input")
	}
}
