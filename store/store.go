// Package store defines the aggregate persistence interface. Each subsystem
// (scope for the user directory, tag for the custom tag registry) defines
// its own store interface. The composite Store composes them.
// Backends: Memory, SQLite, Postgres, MongoDB and Redis.
package store

import (
	"context"
	"errors"

	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/tag"
)

// ErrNotFound is returned by every backend when a user does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned when creating a user whose id is already taken.
var ErrConflict = errors.New("store: already exists")

// Store is the aggregate persistence interface.
// A single backend implements all subsystem stores.
type Store interface {
	scope.Store
	tag.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
