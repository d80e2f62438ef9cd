package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xraph/facet"
	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/tag"
)

func TestApplyMetrics(t *testing.T) {
	ctx := context.Background()
	p := New(prometheus.NewRegistry())

	result := &facet.ApplyResult{
		Records:    []*record.Record{{ID: "r1"}, {ID: "r2"}},
		Total:      3,
		Truncated:  true,
		EvalTimeNs: 1500,
	}
	if err := p.OnAfterApply(ctx, nil, result); err != nil {
		t.Fatal(err)
	}
	if err := p.OnAfterApply(ctx, nil, "not a result"); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(p.applies); got != 2 {
		t.Fatalf("apply_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.truncated); got != 1 {
		t.Fatalf("apply_truncated_total = %v, want 1", got)
	}
}

func TestClauseAndTagMetrics(t *testing.T) {
	ctx := context.Background()
	p := New(prometheus.NewRegistry())
	sid := id.NewSessionID()

	_ = p.OnClauseAdded(ctx, sid, "dept-1", clause.Clause{Field: clause.FieldStatus})
	_ = p.OnClauseAdded(ctx, sid, "dept-1", clause.Clause{Field: clause.FieldStatus})
	_ = p.OnClauseUpdated(ctx, sid, "dept-1", clause.Clause{Field: clause.FieldStartDate})
	_ = p.OnClauseRemoved(ctx, sid, "dept-1", id.NewClauseID())
	_ = p.OnStateReset(ctx, sid, "u1", []string{"dept-1"})
	_ = p.OnTagCreated(ctx, &tag.Tag{Key: "region"})
	_ = p.OnTagDeleted(ctx, "region")

	if got := testutil.ToFloat64(p.clauseEdits.WithLabelValues("add", "status")); got != 2 {
		t.Fatalf("add/status = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.clauseEdits.WithLabelValues("update", "start_date")); got != 1 {
		t.Fatalf("update/start_date = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.resets); got != 1 {
		t.Fatalf("resets = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.tagEdits.WithLabelValues("delete")); got != 1 {
		t.Fatalf("tag deletes = %v, want 1", got)
	}
}
