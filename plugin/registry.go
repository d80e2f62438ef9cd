package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/tag"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeApplyEntry struct {
	name string
	hook BeforeApply
}
type afterApplyEntry struct {
	name string
	hook AfterApply
}
type clauseAddedEntry struct {
	name string
	hook ClauseAdded
}
type clauseUpdatedEntry struct {
	name string
	hook ClauseUpdated
}
type clauseRemovedEntry struct {
	name string
	hook ClauseRemoved
}
type scopeClearedEntry struct {
	name string
	hook ScopeCleared
}
type stateResetEntry struct {
	name string
	hook StateReset
}
type userCreatedEntry struct {
	name string
	hook UserCreated
}
type userUpdatedEntry struct {
	name string
	hook UserUpdated
}
type userDeletedEntry struct {
	name string
	hook UserDeleted
}
type tagCreatedEntry struct {
	name string
	hook TagCreated
}
type tagUpdatedEntry struct {
	name string
	hook TagUpdated
}
type tagDeletedEntry struct {
	name string
	hook TagDeleted
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeApply   []beforeApplyEntry
	afterApply    []afterApplyEntry
	clauseAdded   []clauseAddedEntry
	clauseUpdated []clauseUpdatedEntry
	clauseRemoved []clauseRemovedEntry
	scopeCleared  []scopeClearedEntry
	stateReset    []stateResetEntry
	userCreated   []userCreatedEntry
	userUpdated   []userUpdatedEntry
	userDeleted   []userDeletedEntry
	tagCreated    []tagCreatedEntry
	tagUpdated    []tagUpdatedEntry
	tagDeleted    []tagDeletedEntry
	shutdown      []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeApply); ok {
		r.beforeApply = append(r.beforeApply, beforeApplyEntry{name, h})
	}
	if h, ok := p.(AfterApply); ok {
		r.afterApply = append(r.afterApply, afterApplyEntry{name, h})
	}
	if h, ok := p.(ClauseAdded); ok {
		r.clauseAdded = append(r.clauseAdded, clauseAddedEntry{name, h})
	}
	if h, ok := p.(ClauseUpdated); ok {
		r.clauseUpdated = append(r.clauseUpdated, clauseUpdatedEntry{name, h})
	}
	if h, ok := p.(ClauseRemoved); ok {
		r.clauseRemoved = append(r.clauseRemoved, clauseRemovedEntry{name, h})
	}
	if h, ok := p.(ScopeCleared); ok {
		r.scopeCleared = append(r.scopeCleared, scopeClearedEntry{name, h})
	}
	if h, ok := p.(StateReset); ok {
		r.stateReset = append(r.stateReset, stateResetEntry{name, h})
	}
	if h, ok := p.(UserCreated); ok {
		r.userCreated = append(r.userCreated, userCreatedEntry{name, h})
	}
	if h, ok := p.(UserUpdated); ok {
		r.userUpdated = append(r.userUpdated, userUpdatedEntry{name, h})
	}
	if h, ok := p.(UserDeleted); ok {
		r.userDeleted = append(r.userDeleted, userDeletedEntry{name, h})
	}
	if h, ok := p.(TagCreated); ok {
		r.tagCreated = append(r.tagCreated, tagCreatedEntry{name, h})
	}
	if h, ok := p.(TagUpdated); ok {
		r.tagUpdated = append(r.tagUpdated, tagUpdatedEntry{name, h})
	}
	if h, ok := p.(TagDeleted); ok {
		r.tagDeleted = append(r.tagDeleted, tagDeletedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Apply event emitters
// ──────────────────────────────────────────────────

// EmitBeforeApply notifies all plugins that implement BeforeApply.
func (r *Registry) EmitBeforeApply(ctx context.Context, u *scope.User) {
	for _, e := range r.beforeApply {
		if err := e.hook.OnBeforeApply(ctx, u); err != nil {
			r.logHookError("OnBeforeApply", e.name, err)
		}
	}
}

// EmitAfterApply notifies all plugins that implement AfterApply.
func (r *Registry) EmitAfterApply(ctx context.Context, u *scope.User, result any) {
	for _, e := range r.afterApply {
		if err := e.hook.OnAfterApply(ctx, u, result); err != nil {
			r.logHookError("OnAfterApply", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Clause event emitters
// ──────────────────────────────────────────────────

// EmitClauseAdded notifies all plugins that implement ClauseAdded.
func (r *Registry) EmitClauseAdded(ctx context.Context, sessionID id.SessionID, scopeID string, c clause.Clause) {
	for _, e := range r.clauseAdded {
		if err := e.hook.OnClauseAdded(ctx, sessionID, scopeID, c); err != nil {
			r.logHookError("OnClauseAdded", e.name, err)
		}
	}
}

// EmitClauseUpdated notifies all plugins that implement ClauseUpdated.
func (r *Registry) EmitClauseUpdated(ctx context.Context, sessionID id.SessionID, scopeID string, c clause.Clause) {
	for _, e := range r.clauseUpdated {
		if err := e.hook.OnClauseUpdated(ctx, sessionID, scopeID, c); err != nil {
			r.logHookError("OnClauseUpdated", e.name, err)
		}
	}
}

// EmitClauseRemoved notifies all plugins that implement ClauseRemoved.
func (r *Registry) EmitClauseRemoved(ctx context.Context, sessionID id.SessionID, scopeID string, clauseID id.ClauseID) {
	for _, e := range r.clauseRemoved {
		if err := e.hook.OnClauseRemoved(ctx, sessionID, scopeID, clauseID); err != nil {
			r.logHookError("OnClauseRemoved", e.name, err)
		}
	}
}

// EmitScopeCleared notifies all plugins that implement ScopeCleared.
func (r *Registry) EmitScopeCleared(ctx context.Context, sessionID id.SessionID, scopeID string) {
	for _, e := range r.scopeCleared {
		if err := e.hook.OnScopeCleared(ctx, sessionID, scopeID); err != nil {
			r.logHookError("OnScopeCleared", e.name, err)
		}
	}
}

// EmitStateReset notifies all plugins that implement StateReset.
func (r *Registry) EmitStateReset(ctx context.Context, sessionID id.SessionID, userID string, scopeIDs []string) {
	for _, e := range r.stateReset {
		if err := e.hook.OnStateReset(ctx, sessionID, userID, scopeIDs); err != nil {
			r.logHookError("OnStateReset", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// User event emitters
// ──────────────────────────────────────────────────

// EmitUserCreated notifies all plugins that implement UserCreated.
func (r *Registry) EmitUserCreated(ctx context.Context, u *scope.User) {
	for _, e := range r.userCreated {
		if err := e.hook.OnUserCreated(ctx, u); err != nil {
			r.logHookError("OnUserCreated", e.name, err)
		}
	}
}

// EmitUserUpdated notifies all plugins that implement UserUpdated.
func (r *Registry) EmitUserUpdated(ctx context.Context, u *scope.User) {
	for _, e := range r.userUpdated {
		if err := e.hook.OnUserUpdated(ctx, u); err != nil {
			r.logHookError("OnUserUpdated", e.name, err)
		}
	}
}

// EmitUserDeleted notifies all plugins that implement UserDeleted.
func (r *Registry) EmitUserDeleted(ctx context.Context, tenantID, userID string) {
	for _, e := range r.userDeleted {
		if err := e.hook.OnUserDeleted(ctx, tenantID, userID); err != nil {
			r.logHookError("OnUserDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Tag event emitters
// ──────────────────────────────────────────────────

// EmitTagCreated notifies all plugins that implement TagCreated.
func (r *Registry) EmitTagCreated(ctx context.Context, t *tag.Tag) {
	for _, e := range r.tagCreated {
		if err := e.hook.OnTagCreated(ctx, t); err != nil {
			r.logHookError("OnTagCreated", e.name, err)
		}
	}
}

// EmitTagUpdated notifies all plugins that implement TagUpdated.
func (r *Registry) EmitTagUpdated(ctx context.Context, t *tag.Tag) {
	for _, e := range r.tagUpdated {
		if err := e.hook.OnTagUpdated(ctx, t); err != nil {
			r.logHookError("OnTagUpdated", e.name, err)
		}
	}
}

// EmitTagDeleted notifies all plugins that implement TagDeleted.
func (r *Registry) EmitTagDeleted(ctx context.Context, key string) {
	for _, e := range r.tagDeleted {
		if err := e.hook.OnTagDeleted(ctx, key); err != nil {
			r.logHookError("OnTagDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Hook errors are never propagated to the caller.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
