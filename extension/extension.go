// Package extension provides a Forge extension entry point for Facet.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/facet"
	"github.com/xraph/facet/api"
	"github.com/xraph/facet/cache"
	"github.com/xraph/facet/internal/fixture"
	"github.com/xraph/facet/plugin"
	"github.com/xraph/facet/plugin/metrics"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "facet"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Scoped faceted-filter engine for absence records"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Facet as a Forge extension.
type Extension struct {
	config     Config
	eng        *facet.Engine
	apiHandler *api.API
	logger     *slog.Logger
	store      store.Store
	dataset    record.Provider
	fixture    *fixture.File
	facetOpts  []facet.Option
	plugins    []plugin.Plugin
}

// New creates a Facet Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Facet engine.
func (e *Extension) Engine() *facet.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*facet.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("facet: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	s, err := e.resolveStore(context.Background(), fapp)
	if err != nil {
		return err
	}

	dataset := e.dataset
	if dataset == nil && e.config.FixturePath != "" {
		f, err := fixture.Load(e.config.FixturePath)
		if err != nil {
			return fmt.Errorf("facet: load fixture: %w", err)
		}
		e.fixture = f
		dataset = f.Provider()
	}

	opts := make([]facet.Option, 0, len(e.facetOpts)+len(e.plugins)+6)
	opts = append(opts,
		facet.WithLogger(logger),
		facet.WithStore(s),
		facet.WithConfig(e.engineConfig()),
	)
	if dataset != nil {
		opts = append(opts, facet.WithDataset(dataset))
	}
	if e.config.CacheTTL > 0 {
		opts = append(opts, facet.WithCache(cache.NewMemory(cache.WithTTL(e.config.CacheTTL))))
	}

	// Append user-provided options (may override store or dataset).
	opts = append(opts, e.facetOpts...)

	if e.config.Metrics {
		opts = append(opts, facet.WithPlugin(metrics.New(prometheus.DefaultRegisterer)))
	}
	for _, x := range e.plugins {
		opts = append(opts, facet.WithPlugin(x))
	}

	eng, err := facet.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("facet: create engine: %w", err)
	}
	e.eng = eng

	router := fapp.Router()
	if e.config.BasePath != "" {
		router = router.Group(e.config.BasePath)
	}
	e.apiHandler = api.New(eng, router)

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(router); err != nil {
			return fmt.Errorf("facet: register routes: %w", err)
		}
	}

	return nil
}

func (e *Extension) engineConfig() facet.Config {
	cfg := facet.DefaultConfig()
	cfg.CacheTTL = e.config.CacheTTL
	cfg.MaxResults = e.config.MaxResults
	cfg.TieBreakByID = e.config.TieBreakByID
	if e.config.EnforceAccessPolicy != nil {
		cfg.EnforceAccessPolicy = e.config.EnforceAccessPolicy
	}
	return cfg
}

// Start runs migrations if enabled, seeds the fixture, and starts the engine.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("facet: extension not initialized")
	}

	// Run migrations unless disabled.
	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("facet: migration failed: %w", err)
			}
		}
	}

	if e.fixture != nil {
		if err := e.fixture.Seed(ctx, e.eng.Store()); err != nil {
			return fmt.Errorf("facet: %w", err)
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the facet engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("facet: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("facet: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all facet API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
