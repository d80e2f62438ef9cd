package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/xraph/facet"
	"github.com/xraph/facet/cache"
	"github.com/xraph/facet/internal/config"
	"github.com/xraph/facet/internal/fixture"
	"github.com/xraph/facet/internal/logging"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/store/memory"
	redisstore "github.com/xraph/facet/store/redis"
)

// runtime carries state shared by every command of one invocation.
type runtime struct {
	configPath string

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func (rt *runtime) init(cmd *cobra.Command) error {
	if err := validateOutputFormat(outputFormat(cmd)); err != nil {
		return err
	}
	cfg, err := config.Load(rt.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	rt.cfg, rt.logger, rt.closer = cfg, logger, closer
	return nil
}

func (rt *runtime) close() {
	if rt.closer != nil {
		_ = rt.closer.Close()
	}
}

// session is an engine wired to the configured store and fixture dataset,
// plus the tenant context commands run under.
type session struct {
	ctx     context.Context
	eng     *facet.Engine
	fixture *fixture.File
	store   store.Store
}

func (rt *runtime) open(ctx context.Context) (*session, error) {
	if rt.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}

	f := fixture.Sample()
	if rt.cfg.Fixture != "" {
		loaded, err := fixture.Load(rt.cfg.Fixture)
		if err != nil {
			return nil, err
		}
		f = loaded
	}
	if rt.cfg.Tenant != "" {
		f.Tenant = rt.cfg.Tenant
		for _, u := range f.Users {
			u.TenantID = f.Tenant
		}
	}

	s, err := rt.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	if err := seed(ctx, s, f, rt.cfg.Store.Driver); err != nil {
		_ = s.Close()
		return nil, err
	}

	engCfg := rt.cfg.Engine.Facet()
	opts := []facet.Option{
		facet.WithLogger(rt.logger),
		facet.WithStore(s),
		facet.WithDataset(f.Provider()),
		facet.WithConfig(engCfg),
	}
	if engCfg.CacheTTL > 0 {
		opts = append(opts, facet.WithCache(cache.NewMemory(cache.WithTTL(engCfg.CacheTTL))))
	}
	eng, err := facet.NewEngine(opts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return &session{
		ctx:     facet.WithTenant(ctx, "facet-cli", f.Tenant),
		eng:     eng,
		fixture: f,
		store:   s,
	}, nil
}

func (rt *runtime) openStore(ctx context.Context) (store.Store, error) {
	switch rt.cfg.Store.Driver {
	case "", "memory":
		return memory.New(), nil
	case "redis":
		if rt.cfg.Store.RedisURL == "" {
			return nil, errors.New("store.redis_url is required for the redis driver")
		}
		return redisstore.Open(ctx, rt.cfg.Store.RedisURL, redisstore.WithPrefix(rt.cfg.Store.Prefix))
	default:
		return nil, fmt.Errorf("unsupported store driver %q: use memory or redis", rt.cfg.Store.Driver)
	}
}

// seed loads fixture data into the store. A memory store starts empty, so
// it gets users and tags. A persistent store only gains the fixture users
// it does not have yet; its tags are left alone.
func seed(ctx context.Context, s store.Store, f *fixture.File, driver string) error {
	if driver == "" || driver == "memory" {
		return f.Seed(ctx, s)
	}
	for _, u := range f.Users {
		err := s.CreateUser(ctx, u.Clone())
		if err != nil && !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *session) Close() error { return s.store.Close() }
