package facet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
)

// recorder captures session events in order.
type recorder struct{ events []string }

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnClauseAdded(_ context.Context, _ id.SessionID, scopeID string, c clause.Clause) error {
	r.events = append(r.events, "added:"+scopeID+":"+string(c.Field))
	return nil
}

func (r *recorder) OnClauseUpdated(_ context.Context, _ id.SessionID, scopeID string, c clause.Clause) error {
	r.events = append(r.events, "updated:"+scopeID+":"+string(c.Operator))
	return nil
}

func (r *recorder) OnClauseRemoved(_ context.Context, _ id.SessionID, scopeID string, _ id.ClauseID) error {
	r.events = append(r.events, "removed:"+scopeID)
	return nil
}

func (r *recorder) OnScopeCleared(_ context.Context, _ id.SessionID, scopeID string) error {
	r.events = append(r.events, "cleared:"+scopeID)
	return nil
}

func (r *recorder) OnStateReset(_ context.Context, _ id.SessionID, userID string, scopeIDs []string) error {
	r.events = append(r.events, "reset:"+userID+":"+strings.Join(scopeIDs, ","))
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	rec := &recorder{}
	eng, ctx := newTestEngine(t, WithPlugin(rec))

	sess, err := eng.NewSession(ctx, "multi")
	if err != nil {
		t.Fatal(err)
	}
	if got := sess.State().ScopeIDs(); fmt.Sprint(got) != "[a b]" {
		t.Fatalf("scopes = %v", got)
	}

	cid, err := sess.AddClause(ctx, "a", clause.FieldStatus, clause.OpIs, clause.SingleValue("pending"), "")
	if err != nil {
		t.Fatal(err)
	}
	if cid.IsNil() {
		t.Fatal("expected a clause id")
	}

	res, err := sess.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	equalIDs(t, res.Records, "r6", "r2", "r7")

	op := clause.OpIsNot
	if err := sess.UpdateClause(ctx, "a", cid, clause.Patch{Operator: &op}); err != nil {
		t.Fatal(err)
	}
	res, _ = sess.Records(ctx)
	equalIDs(t, res.Records, "r6", "r1", "r3", "r7", "r4")

	if !sess.RemoveClause(ctx, "a", cid) {
		t.Fatal("remove reported missing clause")
	}
	if sess.RemoveClause(ctx, "a", cid) {
		t.Fatal("second remove should report false")
	}
	if sess.State().HasActive() {
		t.Fatal("state should be empty")
	}

	want := []string{
		"reset:multi:a,b",
		"added:a:status",
		"updated:a:is_not",
		"removed:a",
	}
	if !slices.Equal(rec.events, want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
}

func TestSessionUnknownScopeIsNoop(t *testing.T) {
	eng, ctx := newTestEngine(t)
	sess, err := eng.NewSession(ctx, "multi")
	if err != nil {
		t.Fatal(err)
	}
	before := sess.State().Fingerprint()

	cid, err := sess.AddClause(ctx, "zzz", clause.FieldStatus, clause.OpIs, clause.SingleValue("pending"), "")
	if err != nil || !cid.IsNil() {
		t.Fatalf("add to unknown scope = %v, %v", cid, err)
	}
	if err := sess.UpdateClause(ctx, "a", id.NewClauseID(), clause.Patch{Operand: clause.SingleValue("x")}); err != nil {
		t.Fatal(err)
	}
	sess.ClearScope(ctx, "zzz")

	if sess.State().Fingerprint() != before {
		t.Fatal("unknown scope or clause changed the state")
	}
}

func TestSessionPolicy(t *testing.T) {
	eng, ctx := newTestEngine(t)
	sess, err := eng.NewSession(ctx, "manager")
	if err != nil {
		t.Fatal(err)
	}

	_, err = sess.AddClause(ctx, "eng", clause.FieldDepartment, clause.OpIs, clause.SingleValue("dept-2"), "")
	if !errors.Is(err, ErrFieldLocked) {
		t.Fatalf("locked field: got %v", err)
	}
	_, err = sess.AddClause(ctx, "eng", clause.FieldStatus, clause.OpIsAnyOf, clause.ValueSet{"pending", "rejected"}, "")
	if !errors.Is(err, ErrValueNotAllowed) {
		t.Fatalf("restricted value: got %v", err)
	}
	_, err = sess.AddClause(ctx, "eng", clause.FieldStatus, clause.OpBefore, clause.SingleValue("pending"), "")
	if !errors.Is(err, ErrInvalidClause) {
		t.Fatalf("bad operator: got %v", err)
	}

	cid, err := sess.AddClause(ctx, "eng", clause.FieldStatus, clause.OpIs, clause.SingleValue("approved"), "")
	if err != nil {
		t.Fatal(err)
	}
	err = sess.UpdateClause(ctx, "eng", cid, clause.Patch{Operand: clause.SingleValue("cancelled")})
	if !errors.Is(err, ErrValueNotAllowed) {
		t.Fatalf("update to restricted value: got %v", err)
	}
	c, _ := sess.State().Clause("eng", cid)
	if clause.Values(c.Operand)[0] != "approved" {
		t.Fatal("rejected update must leave the clause unchanged")
	}

	res, err := sess.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	equalIDs(t, res.Records, "r1", "r4")
}

func TestSessionPolicyNotEnforced(t *testing.T) {
	off := false
	eng, ctx := newTestEngine(t, WithConfig(Config{EnforceAccessPolicy: &off}))
	sess, err := eng.NewSession(ctx, "manager")
	if err != nil {
		t.Fatal(err)
	}

	// The clause is stored; the locked department still intersects it away.
	if _, err := sess.AddClause(ctx, "eng", clause.FieldDepartment, clause.OpIs, clause.SingleValue("dept-2"), ""); err != nil {
		t.Fatal(err)
	}
	res, err := sess.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 0 {
		t.Fatalf("expected no records, got %v", ids(res.Records))
	}
}

func TestSessionClear(t *testing.T) {
	rec := &recorder{}
	eng, ctx := newTestEngine(t, WithPlugin(rec))
	sess, _ := eng.NewSession(ctx, "multi")

	sess.AddClause(ctx, "a", clause.FieldStatus, clause.OpIs, clause.SingleValue("pending"), "")
	sess.AddClause(ctx, "b", clause.FieldStatus, clause.OpIs, clause.SingleValue("pending"), "")

	sess.ClearScope(ctx, "a")
	if len(sess.Clauses("a")) != 0 || len(sess.Clauses("b")) != 1 {
		t.Fatal("ClearScope touched the wrong scope")
	}

	sess.ClearAll(ctx)
	if sess.State().HasActive() {
		t.Fatal("ClearAll left clauses")
	}
	if fmt.Sprint(sess.State().ScopeIDs()) != "[a b]" {
		t.Fatal("ClearAll dropped scopes")
	}

	want := []string{"cleared:a", "cleared:a", "cleared:b"}
	if got := rec.events[len(rec.events)-3:]; !slices.Equal(got, want) {
		t.Fatalf("events = %v", got)
	}
}

func TestSessionSwitchUserResets(t *testing.T) {
	rec := &recorder{}
	eng, ctx := newTestEngine(t, WithPlugin(rec))
	sess, _ := eng.NewSession(ctx, "multi")
	sess.AddClause(ctx, "a", clause.FieldStatus, clause.OpIs, clause.SingleValue("pending"), "")

	if err := sess.SwitchUser(ctx, "manager"); err != nil {
		t.Fatal(err)
	}
	if sess.User().ID != "manager" {
		t.Fatal("user not switched")
	}
	if sess.State().HasActive() || fmt.Sprint(sess.State().ScopeIDs()) != "[eng]" {
		t.Fatalf("state not reset: %v", sess.State().ScopeIDs())
	}

	got, err := eng.Session(ctx, "manager")
	if err != nil || got != sess {
		t.Fatal("session not re-keyed to the new user")
	}
	if eng.lookupSession("t1", "multi") != nil {
		t.Fatal("old session key still present")
	}

	if err := sess.SwitchUser(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: got %v", err)
	}
	if sess.User().ID != "manager" {
		t.Fatal("failed switch changed the user")
	}
	if last := rec.events[len(rec.events)-1]; last != "reset:manager:eng" {
		t.Fatalf("last event = %s", last)
	}
}

func TestSessionAddableFields(t *testing.T) {
	eng, ctx := newTestEngine(t)
	sess, _ := eng.NewSession(ctx, "manager")

	fields, keys, err := sess.AddableFields(ctx, "eng")
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(fields, clause.FieldDepartment) {
		t.Fatal("locked department offered")
	}
	if !slices.Contains(fields, clause.FieldStatus) || !slices.Contains(fields, clause.FieldCustomTag) {
		t.Fatalf("fields = %v", fields)
	}
	if fmt.Sprint(keys) != "[project team]" {
		t.Fatalf("keys = %v", keys)
	}

	sess.AddClause(ctx, "eng", clause.FieldStatus, clause.OpIs, clause.SingleValue("pending"), "")
	sess.AddClause(ctx, "eng", clause.FieldCustomTag, clause.OpIs, clause.SingleValue("alpha"), "project")

	fields, keys, _ = sess.AddableFields(ctx, "eng")
	if slices.Contains(fields, clause.FieldStatus) {
		t.Fatal("status offered twice")
	}
	if fmt.Sprint(keys) != "[team]" {
		t.Fatalf("keys = %v", keys)
	}

	if _, _, err := sess.AddableFields(ctx, "zzz"); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("unknown scope: got %v", err)
	}
}

func TestSessionOptions(t *testing.T) {
	eng, ctx := newTestEngine(t)
	sess, _ := eng.NewSession(ctx, "manager")

	opts, err := sess.Options(ctx, "eng", clause.FieldStatus, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range opts {
		want := o.Value == "pending" || o.Value == "approved"
		if o.Allowed != want {
			t.Fatalf("option %s allowed = %v", o.Value, o.Allowed)
		}
	}
}

func TestEngineSessionReuse(t *testing.T) {
	eng, ctx := newTestEngine(t)
	a, err := eng.Session(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := eng.Session(ctx, "admin")
	if a != b {
		t.Fatal("Session should reuse the live session")
	}
	eng.EndSession(ctx, "admin")
	c, _ := eng.Session(ctx, "admin")
	if c == a {
		t.Fatal("EndSession should drop the session")
	}
}
