package facet

import (
	"log/slog"

	"github.com/xraph/facet/plugin"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithDataset sets the record provider.
func WithDataset(p record.Provider) Option { return func(e *Engine) { e.dataset = p } }

// WithEvaluator replaces the predicate evaluator.
func WithEvaluator(ev Evaluator) Option { return func(e *Engine) { e.evaluator = ev } }

// WithCache sets the apply result cache.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithDefaultTags replaces the built-in tag definitions.
func WithDefaultTags(tags ...*tag.Tag) Option {
	return func(e *Engine) { e.defaultTags = tags }
}

// WithPlugin registers a plugin with the engine.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(x)
	}
}
