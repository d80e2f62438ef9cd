package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

func testUser(tenantID, userID, name string) *scope.User {
	return &scope.User{
		ID:       userID,
		TenantID: tenantID,
		Name:     name,
		Scopes: []scope.Scope{{
			ID:   "dept-1",
			Name: "Engineering",
			RequiredFilters: []scope.RequiredFilter{
				{Field: clause.FieldDepartment, Value: "dept-1", Label: "Engineering"},
			},
		}},
	}
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := testUser("t1", "u1", "Ada")

	// Create
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, u); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Get
	got, err := s.GetUser(ctx, "t1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Ada" || len(got.Scopes) != 1 {
		t.Fatalf("unexpected user %+v", got)
	}

	// Returned copies do not alias stored state.
	got.Scopes[0].RequiredFilters[0].Value = "mutated"
	again, _ := s.GetUser(ctx, "t1", "u1")
	if again.Scopes[0].RequiredFilters[0].Value != "dept-1" {
		t.Fatal("stored user was mutated through a returned copy")
	}

	// Tenant isolation
	if _, err := s.GetUser(ctx, "t2", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}

	// Update
	u.Name = "Ada L."
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUser(ctx, "t1", "u1")
	if got.Name != "Ada L." {
		t.Fatal("update failed")
	}
	if err := s.UpdateUser(ctx, testUser("t1", "ghost", "x")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Delete
	if err := s.DeleteUser(ctx, "t1", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteUser(ctx, "t1", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, u := range []*scope.User{
		testUser("t1", "u3", "Carol"),
		testUser("t1", "u1", "Alice"),
		testUser("t1", "u2", "Bob"),
		testUser("t2", "u4", "Dan"),
	} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListUsers(ctx, &scope.ListFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 users, got %d", len(list))
	}
	for i, want := range []string{"u1", "u2", "u3"} {
		if list[i].ID != want {
			t.Fatalf("list[%d] = %s, want %s", i, list[i].ID, want)
		}
	}

	list, _ = s.ListUsers(ctx, &scope.ListFilter{TenantID: "t1", Search: "bo"})
	if len(list) != 1 || list[0].ID != "u2" {
		t.Fatalf("search returned %v", list)
	}

	list, _ = s.ListUsers(ctx, &scope.ListFilter{TenantID: "t1", Limit: 1, Offset: 1})
	if len(list) != 1 || list[0].ID != "u2" {
		t.Fatalf("pagination returned %v", list)
	}

	list, _ = s.ListUsers(ctx, &scope.ListFilter{TenantID: "t1", Offset: 10})
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil page, got %v", list)
	}

	all, _ := s.ListUsers(ctx, nil)
	if len(all) != 4 {
		t.Fatalf("expected 4 users, got %d", len(all))
	}
}

func TestTagPersistence(t *testing.T) {
	ctx := context.Background()
	s := New()

	tags, err := s.LoadTags(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected no tags, got %d", len(tags))
	}

	in := []*tag.Tag{{
		Key:    "region",
		Label:  "Region",
		Values: []tag.Value{{Value: "emea", Label: "EMEA"}},
	}}
	if err := s.SaveTags(ctx, "t1", in); err != nil {
		t.Fatal(err)
	}
	in[0].Label = "mutated"

	tags, _ = s.LoadTags(ctx, "t1")
	if len(tags) != 1 || tags[0].Label != "Region" {
		t.Fatalf("unexpected tags %+v", tags)
	}
	if other, _ := s.LoadTags(ctx, "t2"); len(other) != 0 {
		t.Fatal("tags leaked across tenants")
	}

	if err := s.SaveTags(ctx, "t1", nil); err != nil {
		t.Fatal(err)
	}
	if tags, _ = s.LoadTags(ctx, "t1"); len(tags) != 0 {
		t.Fatal("expected tags cleared")
	}
}
