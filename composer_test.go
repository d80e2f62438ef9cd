package facet

import (
	"testing"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/scope"
)

func TestCompose(t *testing.T) {
	sc := &scope.Scope{
		ID: "s",
		RequiredFilters: []scope.RequiredFilter{
			{Field: clause.FieldDepartment, Value: "dept-1"},
			{Field: clause.FieldCustomTag, TagKey: "project", Value: "alpha"},
		},
	}
	user := []clause.Clause{
		{Field: clause.FieldStatus, Operator: clause.OpIs, Operand: clause.SingleValue("approved")},
	}

	got := Compose(sc, user)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Field != clause.FieldDepartment || got[0].Operator != clause.OpIs || !got[0].Locked || !got[0].ID.IsNil() {
		t.Fatalf("unexpected required clause %+v", got[0])
	}
	if got[1].TagKey != "project" || got[1].Operand != clause.SingleValue("alpha") {
		t.Fatalf("tag key not carried through: %+v", got[1])
	}
	if got[2].Locked || got[2].Field != clause.FieldStatus {
		t.Fatalf("user clause changed: %+v", got[2])
	}

	// The input slice is not aliased.
	got[2].Field = clause.FieldLocation
	if user[0].Field != clause.FieldStatus {
		t.Fatal("Compose aliased the user clauses")
	}
}

func TestComposeEmptyScopeMatchesAll(t *testing.T) {
	if got := Compose(&scope.Scope{ID: "all"}, nil); len(got) != 0 {
		t.Fatalf("expected an empty clause set, got %+v", got)
	}
	if got := Compose(nil, nil); len(got) != 0 {
		t.Fatalf("expected an empty clause set for nil scope, got %+v", got)
	}
}

func TestRequiredClauseDropsStrayTagKey(t *testing.T) {
	c := RequiredClause(scope.RequiredFilter{Field: clause.FieldStatus, Value: "approved", TagKey: "project"})
	if c.TagKey != "" {
		t.Fatalf("tag key should only be kept for custom tags, got %q", c.TagKey)
	}
}
