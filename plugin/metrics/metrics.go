// Package metrics provides a Prometheus plugin that counts apply passes,
// clause edits and registry mutations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xraph/facet"
	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
	"github.com/xraph/facet/plugin"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/tag"
)

// Compile-time hook checks.
var (
	_ plugin.Plugin        = (*Plugin)(nil)
	_ plugin.AfterApply    = (*Plugin)(nil)
	_ plugin.ClauseAdded   = (*Plugin)(nil)
	_ plugin.ClauseUpdated = (*Plugin)(nil)
	_ plugin.ClauseRemoved = (*Plugin)(nil)
	_ plugin.ScopeCleared  = (*Plugin)(nil)
	_ plugin.StateReset    = (*Plugin)(nil)
	_ plugin.TagCreated    = (*Plugin)(nil)
	_ plugin.TagUpdated    = (*Plugin)(nil)
	_ plugin.TagDeleted    = (*Plugin)(nil)
)

// Plugin records Prometheus metrics for engine events.
type Plugin struct {
	applies       prometheus.Counter
	truncated     prometheus.Counter
	applyDuration prometheus.Histogram
	matched       prometheus.Histogram
	clauseEdits   *prometheus.CounterVec
	resets        prometheus.Counter
	tagEdits      *prometheus.CounterVec
}

// New registers the facet collectors with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Plugin {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Plugin{
		applies: f.NewCounter(prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "apply_total",
			Help:      "Total number of aggregation passes.",
		}),
		truncated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "apply_truncated_total",
			Help:      "Aggregation passes whose result hit the configured limit.",
		}),
		applyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "facet",
			Name:      "apply_duration_seconds",
			Help:      "Time spent evaluating and merging scopes.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		matched: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "facet",
			Name:      "apply_matched_records",
			Help:      "Records returned per aggregation pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		clauseEdits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "clause_edits_total",
			Help:      "Clause mutations by kind and field.",
		}, []string{"op", "field"}),
		resets: f.NewCounter(prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "state_resets_total",
			Help:      "Filter state resets caused by user switches.",
		}),
		tagEdits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "tag_edits_total",
			Help:      "Custom tag registry mutations by kind.",
		}, []string{"op"}),
	}
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "metrics" }

// OnAfterApply implements plugin.AfterApply.
func (p *Plugin) OnAfterApply(_ context.Context, _ *scope.User, result any) error {
	p.applies.Inc()
	r, ok := result.(*facet.ApplyResult)
	if !ok || r == nil {
		return nil
	}
	p.applyDuration.Observe(time.Duration(r.EvalTimeNs).Seconds())
	p.matched.Observe(float64(len(r.Records)))
	if r.Truncated {
		p.truncated.Inc()
	}
	return nil
}

// OnClauseAdded implements plugin.ClauseAdded.
func (p *Plugin) OnClauseAdded(_ context.Context, _ id.SessionID, _ string, c clause.Clause) error {
	p.clauseEdits.WithLabelValues("add", string(c.Field)).Inc()
	return nil
}

// OnClauseUpdated implements plugin.ClauseUpdated.
func (p *Plugin) OnClauseUpdated(_ context.Context, _ id.SessionID, _ string, c clause.Clause) error {
	p.clauseEdits.WithLabelValues("update", string(c.Field)).Inc()
	return nil
}

// OnClauseRemoved implements plugin.ClauseRemoved.
func (p *Plugin) OnClauseRemoved(_ context.Context, _ id.SessionID, _ string, _ id.ClauseID) error {
	p.clauseEdits.WithLabelValues("remove", "").Inc()
	return nil
}

// OnScopeCleared implements plugin.ScopeCleared.
func (p *Plugin) OnScopeCleared(_ context.Context, _ id.SessionID, _ string) error {
	p.clauseEdits.WithLabelValues("clear", "").Inc()
	return nil
}

// OnStateReset implements plugin.StateReset.
func (p *Plugin) OnStateReset(_ context.Context, _ id.SessionID, _ string, _ []string) error {
	p.resets.Inc()
	return nil
}

// OnTagCreated implements plugin.TagCreated.
func (p *Plugin) OnTagCreated(_ context.Context, _ *tag.Tag) error {
	p.tagEdits.WithLabelValues("create").Inc()
	return nil
}

// OnTagUpdated implements plugin.TagUpdated.
func (p *Plugin) OnTagUpdated(_ context.Context, _ *tag.Tag) error {
	p.tagEdits.WithLabelValues("update").Inc()
	return nil
}

// OnTagDeleted implements plugin.TagDeleted.
func (p *Plugin) OnTagDeleted(_ context.Context, _ string) error {
	p.tagEdits.WithLabelValues("delete").Inc()
	return nil
}
