// Package plugin defines the plugin system for Facet.
// Plugins are notified of lifecycle events (filters applied, clauses
// edited, users and tags changed) and can react with logging, metrics
// or auditing.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/tag"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Apply lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeApply is called before an aggregation pass runs for a user.
type BeforeApply interface {
	OnBeforeApply(ctx context.Context, u *scope.User) error
}

// AfterApply is called after an aggregation pass completes.
// The result parameter is *facet.ApplyResult (passed as any to avoid an import cycle).
type AfterApply interface {
	OnAfterApply(ctx context.Context, u *scope.User, result any) error
}

// ──────────────────────────────────────────────────
// Clause lifecycle hooks
// ──────────────────────────────────────────────────

// ClauseAdded is called after a session appends a clause to a scope.
type ClauseAdded interface {
	OnClauseAdded(ctx context.Context, sessionID id.SessionID, scopeID string, c clause.Clause) error
}

// ClauseUpdated is called after a session patches a clause.
type ClauseUpdated interface {
	OnClauseUpdated(ctx context.Context, sessionID id.SessionID, scopeID string, c clause.Clause) error
}

// ClauseRemoved is called after a session removes a clause.
type ClauseRemoved interface {
	OnClauseRemoved(ctx context.Context, sessionID id.SessionID, scopeID string, clauseID id.ClauseID) error
}

// ScopeCleared is called after a scope's clauses are cleared.
type ScopeCleared interface {
	OnScopeCleared(ctx context.Context, sessionID id.SessionID, scopeID string) error
}

// StateReset is called when a session switches user and its state is
// rebuilt with one empty clause list per scope.
type StateReset interface {
	OnStateReset(ctx context.Context, sessionID id.SessionID, userID string, scopeIDs []string) error
}

// ──────────────────────────────────────────────────
// User lifecycle hooks
// ──────────────────────────────────────────────────

// UserCreated is called after a user is added to the directory.
type UserCreated interface {
	OnUserCreated(ctx context.Context, u *scope.User) error
}

// UserUpdated is called after a user's scopes or profile change.
type UserUpdated interface {
	OnUserUpdated(ctx context.Context, u *scope.User) error
}

// UserDeleted is called after a user is removed.
type UserDeleted interface {
	OnUserDeleted(ctx context.Context, tenantID, userID string) error
}

// ──────────────────────────────────────────────────
// Tag lifecycle hooks
// ──────────────────────────────────────────────────

// TagCreated is called after a custom tag is created.
type TagCreated interface {
	OnTagCreated(ctx context.Context, t *tag.Tag) error
}

// TagUpdated is called after a custom tag is updated.
type TagUpdated interface {
	OnTagUpdated(ctx context.Context, t *tag.Tag) error
}

// TagDeleted is called after a custom tag is deleted.
type TagDeleted interface {
	OnTagDeleted(ctx context.Context, key string) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
