package facet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/state"
	"github.com/xraph/facet/store/memory"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(recID, dept string, status record.Status, start string) *record.Record {
	d := day(start)
	return &record.Record{
		ID:         recID,
		Status:     status,
		StartDate:  d,
		EndDate:    d.AddDate(0, 0, 4),
		Department: record.Dimension{ID: dept, Label: "Dept " + dept},
		Location:   record.Dimension{ID: "loc-1", Label: "Stockholm"},
	}
}

// testDataset has ten records: four in dept-1, two in dept-4, four elsewhere.
// Start dates are distinct so the expected order is unambiguous.
func testDataset() []*record.Record {
	return []*record.Record{
		rec("r1", "dept-1", record.StatusApproved, "2025-03-10"),
		rec("r2", "dept-1", record.StatusPending, "2025-05-02"),
		rec("r3", "dept-1", record.StatusRejected, "2024-11-18"),
		rec("r4", "dept-1", record.StatusApproved, "2024-07-01"),
		rec("r5", "dept-2", record.StatusApproved, "2024-12-23"),
		rec("r6", "dept-4", record.StatusPending, "2025-06-16"),
		rec("r7", "dept-4", record.StatusCancelled, "2024-10-07"),
		rec("r8", "dept-6", record.StatusApproved, "2025-02-17"),
		rec("r9", "dept-6", record.StatusApproved, "2024-08-05"),
		rec("r10", "dept-7", record.StatusPending, "2025-04-14"),
	}
}

func adminUser() *scope.User {
	return &scope.User{ID: "admin", Name: "Admin", Scopes: []scope.Scope{{ID: "all", Name: "All"}}}
}

func managerUser() *scope.User {
	return &scope.User{
		ID:   "manager",
		Name: "Manager",
		Scopes: []scope.Scope{{
			ID:              "eng",
			Name:            "Engineering",
			RequiredFilters: []scope.RequiredFilter{{Field: clause.FieldDepartment, Value: "dept-1", Label: "Engineering"}},
			RestrictedTags:  []scope.RestrictedTag{{Field: clause.FieldStatus, AllowedValues: []string{"pending", "approved"}}},
		}},
	}
}

func multiUser() *scope.User {
	return &scope.User{
		ID:   "multi",
		Name: "Multi",
		Scopes: []scope.Scope{
			{ID: "a", Name: "A", RequiredFilters: []scope.RequiredFilter{{Field: clause.FieldDepartment, Value: "dept-1"}}},
			{ID: "b", Name: "B", RequiredFilters: []scope.RequiredFilter{{Field: clause.FieldDepartment, Value: "dept-4"}}},
		},
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, context.Context) {
	t.Helper()
	base := []Option{
		WithStore(memory.New()),
		WithDataset(record.Static(testDataset())),
	}
	eng, err := NewEngine(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTenant(context.Background(), "app1", "t1")
	for _, u := range []*scope.User{adminUser(), managerUser(), multiUser()} {
		if err := eng.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return eng, ctx
}

func ids(records []*record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func equalIDs(t *testing.T, got []*record.Record, want ...string) {
	t.Helper()
	g := ids(got)
	if fmt.Sprint(g) != fmt.Sprint(want) {
		t.Fatalf("records = %v, want %v", g, want)
	}
}

func TestNewEngine_RequiresStoreAndDataset(t *testing.T) {
	if _, err := NewEngine(WithDataset(record.Static(nil))); err == nil {
		t.Fatal("expected error when store is nil")
	}
	if _, err := NewEngine(WithStore(memory.New())); err == nil {
		t.Fatal("expected error when dataset is nil")
	}
}

func TestApply_AdminSeesAllNewestFirst(t *testing.T) {
	eng, ctx := newTestEngine(t)
	u := adminUser()

	res, err := eng.Apply(ctx, u, state.Reset(u.ScopeIDs()...))
	if err != nil {
		t.Fatal(err)
	}
	equalIDs(t, res.Records, "r6", "r2", "r10", "r1", "r8", "r5", "r3", "r7", "r9", "r4")
	if res.Total != 10 || res.Truncated {
		t.Fatalf("total = %d truncated = %v", res.Total, res.Truncated)
	}
	if res.RunID.String() == "" {
		t.Fatal("expected a run id")
	}
}

func TestApply_RequiredFilter(t *testing.T) {
	eng, ctx := newTestEngine(t)
	u := managerUser()

	res, err := eng.Apply(ctx, u, state.Reset(u.ScopeIDs()...))
	if err != nil {
		t.Fatal(err)
	}
	equalIDs(t, res.Records, "r2", "r1", "r3", "r4")
	for _, r := range res.Records {
		if r.Department.ID != "dept-1" {
			t.Fatalf("record %s escaped the required filter", r.ID)
		}
	}
}

func TestApplyClauses_UserClauseAndRequiredFilter(t *testing.T) {
	eng, ctx := newTestEngine(t)

	res, err := eng.ApplyClauses(ctx, managerUser(), map[string][]clause.Clause{
		"eng": {{Field: clause.FieldStatus, Operator: clause.OpIsAnyOf, Operand: clause.ValueSet{"approved", "pending"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	equalIDs(t, res.Records, "r2", "r1", "r4")
}

func TestApplyClauses_PolicyEnforced(t *testing.T) {
	eng, ctx := newTestEngine(t)
	u := managerUser()

	_, err := eng.ApplyClauses(ctx, u, map[string][]clause.Clause{
		"eng": {{Field: clause.FieldDepartment, Operator: clause.OpIs, Operand: clause.SingleValue("dept-2")}},
	})
	if !errors.Is(err, ErrFieldLocked) {
		t.Fatalf("expected ErrFieldLocked, got %v", err)
	}

	_, err = eng.ApplyClauses(ctx, u, map[string][]clause.Clause{
		"eng": {{Field: clause.FieldStatus, Operator: clause.OpIsAnyOf, Operand: clause.ValueSet{"approved", "rejected"}}},
	})
	if !errors.Is(err, ErrValueNotAllowed) {
		t.Fatalf("expected ErrValueNotAllowed, got %v", err)
	}
}

func TestApplyClauses_PolicyNotEnforced(t *testing.T) {
	off := false
	eng, ctx := newTestEngine(t, WithConfig(Config{EnforceAccessPolicy: &off}))

	// A user clause colliding with the required filter is ANDed in and
	// matches nothing.
	res, err := eng.ApplyClauses(ctx, managerUser(), map[string][]clause.Clause{
		"eng": {{Field: clause.FieldDepartment, Operator: clause.OpIs, Operand: clause.SingleValue("dept-2")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 0 {
		t.Fatalf("expected no records, got %v", ids(res.Records))
	}
}

func TestApplyClauses_IgnoresUnknownScope(t *testing.T) {
	eng, ctx := newTestEngine(t)

	res, err := eng.ApplyClauses(ctx, adminUser(), map[string][]clause.Clause{
		"nope": {{Field: clause.FieldStatus, Operator: clause.OpIs, Operand: clause.SingleValue("pending")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 10 {
		t.Fatalf("total = %d, want 10", res.Total)
	}
}

func TestApply_MaxResults(t *testing.T) {
	eng, ctx := newTestEngine(t, WithConfig(Config{MaxResults: 3}))
	u := adminUser()

	res, err := eng.Apply(ctx, u, state.Reset(u.ScopeIDs()...))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated || res.Total != 10 || len(res.Records) != 3 {
		t.Fatalf("truncated=%v total=%d len=%d", res.Truncated, res.Total, len(res.Records))
	}
	equalIDs(t, res.Records, "r6", "r2", "r10")
}

func TestApply_DatasetError(t *testing.T) {
	boom := errors.New("boom")
	eng, ctx := newTestEngine(t, WithDataset(record.ProviderFunc(func(context.Context) ([]*record.Record, error) {
		return nil, boom
	})))
	u := adminUser()
	if _, err := eng.Apply(ctx, u, state.Reset(u.ScopeIDs()...)); !errors.Is(err, boom) {
		t.Fatalf("expected dataset error, got %v", err)
	}
}

// countingCache records hits so tests can see the engine consult it.
type countingCache struct {
	entries map[string]*ApplyResult
	hits    int
}

func (c *countingCache) key(tenantID, userID, fp string) string { return tenantID + "|" + userID + "|" + fp }

func (c *countingCache) Get(_ context.Context, tenantID, userID, fp string) (*ApplyResult, bool) {
	r, ok := c.entries[c.key(tenantID, userID, fp)]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *countingCache) Set(_ context.Context, tenantID, userID, fp string, r *ApplyResult) {
	c.entries[c.key(tenantID, userID, fp)] = r
}

func (c *countingCache) InvalidateTenant(context.Context, string) { c.entries = map[string]*ApplyResult{} }

func (c *countingCache) InvalidateUser(context.Context, string, string) {
	c.entries = map[string]*ApplyResult{}
}

func TestApply_UsesCache(t *testing.T) {
	cc := &countingCache{entries: map[string]*ApplyResult{}}
	eng, ctx := newTestEngine(t, WithCache(cc))
	u, err := eng.GetUser(ctx, "manager")
	if err != nil {
		t.Fatal(err)
	}
	st := state.Reset(u.ScopeIDs()...)

	first, err := eng.Apply(ctx, u, st)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Apply(ctx, u, st)
	if err != nil {
		t.Fatal(err)
	}
	if cc.hits != 1 {
		t.Fatalf("hits = %d, want 1", cc.hits)
	}
	if first.RunID != second.RunID {
		t.Fatal("cached result should keep its run id")
	}

	// Updating the user drops cached results.
	if err := eng.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Apply(ctx, u, st); err != nil {
		t.Fatal(err)
	}
	if cc.hits != 1 {
		t.Fatalf("hits = %d after invalidation, want 1", cc.hits)
	}
}

func TestApplyClauses_CacheKeepsValueSetsApart(t *testing.T) {
	tagged := rec("t1", "dept-1", record.StatusApproved, "2025-01-06")
	tagged.Tags = map[string]string{"project": "x"}

	cc := &countingCache{entries: map[string]*ApplyResult{}}
	eng, ctx := newTestEngine(t, WithCache(cc), WithDataset(record.Static{tagged}))
	u, err := eng.GetUser(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}

	apply := func(values clause.ValueSet) *ApplyResult {
		t.Helper()
		res, err := eng.ApplyClauses(ctx, u, map[string][]clause.Clause{
			"all": {{Field: clause.FieldCustomTag, TagKey: "project", Operator: clause.OpIsAnyOf, Operand: values}},
		})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	if res := apply(clause.ValueSet{"x,y"}); res.Total != 0 {
		t.Fatalf("single value \"x,y\" matched %d records", res.Total)
	}
	if res := apply(clause.ValueSet{"x", "y"}); res.Total != 1 {
		t.Fatalf("set {x, y} matched %d records, want 1", res.Total)
	}
	if cc.hits != 0 {
		t.Fatalf("distinct value sets shared a cache entry (hits = %d)", cc.hits)
	}

	// The same clauses with fresh ids hit the cache.
	apply(clause.ValueSet{"x", "y"})
	if cc.hits != 1 {
		t.Fatalf("hits = %d, want 1", cc.hits)
	}
}

func TestSessionEditsInvalidateCache(t *testing.T) {
	cc := &countingCache{entries: map[string]*ApplyResult{}}
	eng, ctx := newTestEngine(t, WithCache(cc))
	sess, err := eng.NewSession(ctx, "multi")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sess.Records(ctx); err != nil {
		t.Fatal(err)
	}
	if len(cc.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(cc.entries))
	}

	if _, err := sess.AddClause(ctx, "a", clause.FieldStatus, clause.OpIs, clause.SingleValue("pending"), ""); err != nil {
		t.Fatal(err)
	}
	if len(cc.entries) != 0 {
		t.Fatal("adding a clause should drop the user's cached results")
	}

	res, err := sess.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	equalIDs(t, res.Records, "r6", "r2", "r7")

	sess.ClearAll(ctx)
	if len(cc.entries) != 0 {
		t.Fatal("clearing should drop the user's cached results")
	}
}

func TestOptions(t *testing.T) {
	eng, ctx := newTestEngine(t)
	u := managerUser()

	opts, err := eng.Options(ctx, u, "eng", clause.FieldStatus, "")
	if err != nil {
		t.Fatal(err)
	}
	allowed := map[string]bool{}
	for _, o := range opts {
		allowed[o.Value] = o.Allowed
	}
	want := map[string]bool{"pending": true, "approved": true, "rejected": false, "cancelled": false}
	if fmt.Sprint(allowed) != fmt.Sprint(want) {
		t.Fatalf("allowed = %v, want %v", allowed, want)
	}

	if _, err := eng.Options(ctx, u, "nope", clause.FieldStatus, ""); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}

func TestUserDirectory(t *testing.T) {
	eng, ctx := newTestEngine(t)

	if _, err := eng.GetUser(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := eng.CreateUser(ctx, adminUser()); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err := eng.CreateUser(ctx, &scope.User{ID: "noscopes"}); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}

	users, err := eng.ListUsers(ctx, &scope.ListFilter{Search: "man"})
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != "manager" {
		t.Fatalf("search returned %d users", len(users))
	}

	// Users are scoped to the tenant.
	other := WithTenant(context.Background(), "app1", "t2")
	if _, err := eng.GetUser(other, "admin"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected tenant isolation, got %v", err)
	}

	if err := eng.DeleteUser(ctx, "admin"); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteUser(ctx, "admin"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTags(t *testing.T) {
	eng, ctx := newTestEngine(t)

	tags, err := eng.ListTags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected the two default tags, got %d", len(tags))
	}

	created, err := eng.CreateTag(ctx, "Cost Type", "Cost type", []string{"Billable", "Internal"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Key != "cost_type" {
		t.Fatalf("key = %q", created.Key)
	}
	if _, err := eng.CreateTag(ctx, "cost type", "Again", []string{"x"}); !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}

	label := "Cost category"
	updated, err := eng.UpdateTag(ctx, "cost_type", &label, nil)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Label != label || len(updated.Values) != 2 {
		t.Fatalf("update lost data: %+v", updated)
	}

	if err := eng.DeleteTag(ctx, "project"); !errors.Is(err, ErrDefaultTagImmutable) {
		t.Fatalf("expected ErrDefaultTagImmutable, got %v", err)
	}
	if err := eng.DeleteTag(ctx, "cost_type"); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteTag(ctx, "cost_type"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}

	// Custom tags survive a fresh engine over the same store.
	if _, err := eng.CreateTag(ctx, "shift", "Shift", []string{"Day", "Night"}); err != nil {
		t.Fatal(err)
	}
	again, err := NewEngine(WithStore(eng.Store()), WithDataset(record.Static(nil)))
	if err != nil {
		t.Fatal(err)
	}
	reg, err := again.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Get("shift"); !ok {
		t.Fatal("custom tag was not persisted")
	}
}
