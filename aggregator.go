package facet

import (
	"slices"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/state"
)

// Aggregator evaluates every scope of a user independently and unions the
// results.
type Aggregator struct {
	evaluator    Evaluator
	tieBreakByID bool
}

// NewAggregator creates an aggregator. A nil evaluator uses the default.
func NewAggregator(ev Evaluator, tieBreakByID bool) *Aggregator {
	if ev == nil {
		ev = DefaultEvaluator()
	}
	return &Aggregator{evaluator: ev, tieBreakByID: tieBreakByID}
}

// Matches reports whether r satisfies every clause.
func (a *Aggregator) Matches(r *record.Record, clauses []clause.Clause) bool {
	for _, c := range clauses {
		if !a.evaluator.Evaluate(r, c) {
			return false
		}
	}
	return true
}

// Filter returns the records satisfying every clause, in input order.
func (a *Aggregator) Filter(records []*record.Record, clauses []clause.Clause) []*record.Record {
	out := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if a.Matches(r, clauses) {
			out = append(out, r)
		}
	}
	return out
}

// Apply runs the multi-scope aggregation:
//  1. each scope's required filters and stored clauses filter the records;
//  2. results are unioned in scope order, keeping the first occurrence of
//     each record id;
//  3. the union is stable-sorted by start date, latest first.
//
// A user without scopes sees nothing. A scope with no required filters and
// no clauses sees everything.
func (a *Aggregator) Apply(records []*record.Record, u *scope.User, st state.State) ([]*record.Record, []ScopeResult) {
	if u == nil || len(u.Scopes) == 0 {
		return []*record.Record{}, nil
	}

	seen := make(map[string]struct{}, len(records))
	union := make([]*record.Record, 0, len(records))
	breakdown := make([]ScopeResult, 0, len(u.Scopes))

	for i := range u.Scopes {
		sc := &u.Scopes[i]
		matched := a.Filter(records, Compose(sc, st.Clauses(sc.ID)))
		breakdown = append(breakdown, ScopeResult{ScopeID: sc.ID, Matched: len(matched)})
		for _, r := range matched {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			union = append(union, r)
		}
	}

	slices.SortStableFunc(union, a.compare)
	return union, breakdown
}

func (a *Aggregator) compare(x, y *record.Record) int {
	if c := y.StartDate.Compare(x.StartDate); c != 0 {
		return c
	}
	if a.tieBreakByID {
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		}
	}
	return 0
}
