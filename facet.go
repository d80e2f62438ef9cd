// Package facet evaluates faceted filters over absence requests under a
// scoped permission model.
//
// A user owns one or more permission scopes. Within a scope, the scope's
// required filters and the user's own clauses are ANDed together; across
// scopes the matching records are unioned, deduplicated by id and sorted by
// start date, most recent first. Restricted fields cap which values the user
// may pick, and locked fields cannot be filtered at all.
//
//	eng, err := facet.NewEngine(
//	    facet.WithStore(memory.New()),
//	    facet.WithDataset(record.Static(records)),
//	)
//	sess, err := eng.NewSession(ctx, "user-manager")
//	_, err = sess.AddClause(ctx, "scope-engineering",
//	    clause.FieldStatus, clause.OpIsAnyOf, clause.ValueSet{"approved", "pending"}, "")
//	res, err := sess.Records(ctx)
package facet

import (
	"github.com/xraph/facet/id"
	"github.com/xraph/facet/record"
)

// ApplyResult is the outcome of one aggregation pass.
type ApplyResult struct {
	RunID id.RunID `json:"run_id"`
	// Records is the deduplicated union, sorted by start date descending.
	Records []*record.Record `json:"records"`
	// Scopes reports how many records each scope matched on its own,
	// before deduplication.
	Scopes     []ScopeResult `json:"scopes"`
	Total      int           `json:"total"`
	Truncated  bool          `json:"truncated,omitempty"`
	EvalTimeNs int64         `json:"eval_time_ns"`
}

// ScopeResult is the per-scope breakdown of an ApplyResult.
type ScopeResult struct {
	ScopeID string `json:"scope_id"`
	Matched int    `json:"matched"`
}

// IDs returns the record ids in result order.
func (r *ApplyResult) IDs() []string {
	ids := make([]string, len(r.Records))
	for i, rec := range r.Records {
		ids[i] = rec.ID
	}
	return ids
}
