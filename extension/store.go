package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"

	"github.com/xraph/facet/store"
	"github.com/xraph/facet/store/memory"
	mongostore "github.com/xraph/facet/store/mongo"
	pgstore "github.com/xraph/facet/store/postgres"
	redisstore "github.com/xraph/facet/store/redis"
	sqlitestore "github.com/xraph/facet/store/sqlite"
)

// resolveStore picks the store backend: an explicitly provided store wins,
// then one registered in the container, then the configured driver.
func (e *Extension) resolveStore(ctx context.Context, fapp forge.App) (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		return s, nil
	}

	switch e.config.Driver {
	case "", "memory":
		return memory.New(), nil
	case "redis":
		if e.config.RedisURL == "" {
			return nil, errors.New("facet: driver redis requires redis_url")
		}
		return redisstore.Open(ctx, e.config.RedisURL)
	case "sqlite", "postgres", "mongo":
		db, err := forge.Inject[*grove.DB](fapp.Container())
		if err != nil {
			return nil, fmt.Errorf("facet: driver %s needs a grove database in the container: %w", e.config.Driver, err)
		}
		return groveStore(e.config.Driver, db), nil
	default:
		return nil, fmt.Errorf("facet: unknown store driver %q", e.config.Driver)
	}
}

func groveStore(driver string, db *grove.DB) store.Store {
	switch driver {
	case "postgres":
		return pgstore.New(db)
	case "mongo":
		return mongostore.New(db)
	default:
		return sqlitestore.New(db)
	}
}
