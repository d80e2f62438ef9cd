package facet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
	"github.com/xraph/facet/plugin"
	"github.com/xraph/facet/record"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/state"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

// Engine is the central filter engine. It owns the dataset provider, the
// user directory and tag registries, runs aggregation passes, and fires
// plugin hooks.
type Engine struct {
	store       store.Store
	dataset     record.Provider
	evaluator   Evaluator
	aggregator  *Aggregator
	cache       Cache
	plugins     *plugin.Registry
	logger      *slog.Logger
	config      Config
	defaultTags []*tag.Tag

	mu         sync.Mutex
	registries map[string]*tag.Registry
	sessions   map[string]*Session
}

// NewEngine creates a new engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		evaluator:   DefaultEvaluator(),
		logger:      slog.Default(),
		config:      DefaultConfig(),
		defaultTags: tag.Defaults(),
		registries:  make(map[string]*tag.Registry),
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("facet: store is required")
	}
	if e.dataset == nil {
		return nil, errors.New("facet: dataset provider is required")
	}
	e.aggregator = NewAggregator(e.evaluator, e.config.TieBreakByID)
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Aggregator returns the engine's aggregator.
func (e *Engine) Aggregator() *Aggregator { return e.aggregator }

// Start checks store connectivity.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("facet: ping store: %w", err)
	}
	return nil
}

// Stop notifies plugins of shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Aggregation
// ──────────────────────────────────────────────────

// Apply evaluates the user's scopes against the full dataset with the
// clauses held in st. This is the hot path.
func (e *Engine) Apply(ctx context.Context, u *scope.User, st state.State) (*ApplyResult, error) {
	start := time.Now()
	tenant := tenantFromContext(ctx)
	fingerprint := st.Fingerprint()

	// 1. Cache hit?
	if e.cache != nil && u != nil {
		if cached, ok := e.cache.Get(ctx, tenant.tenantID, u.ID, fingerprint); ok {
			hit := *cached
			hit.EvalTimeNs = time.Since(start).Nanoseconds()
			return &hit, nil
		}
	}

	// 2. Plugin hook: before apply.
	if e.plugins != nil {
		e.plugins.EmitBeforeApply(ctx, u)
	}

	// 3. Re-read the whole dataset.
	records, err := e.dataset.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("facet: load dataset: %w", err)
	}

	// 4. Per-scope intersection, cross-scope union, sort.
	matched, breakdown := e.aggregator.Apply(records, u, st)
	result := &ApplyResult{
		RunID:   id.NewRunID(),
		Records: matched,
		Scopes:  breakdown,
		Total:   len(matched),
	}
	if limit := e.config.MaxResults; limit > 0 && len(matched) > limit {
		result.Records = matched[:limit]
		result.Truncated = true
	}
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	userID := ""
	if u != nil {
		userID = u.ID
	}
	e.logger.Debug("facet apply",
		slog.String("run_id", result.RunID.String()),
		slog.String("tenant_id", tenant.tenantID),
		slog.String("user_id", userID),
		slog.Int("records", len(records)),
		slog.Int("matched", result.Total),
		slog.Duration("elapsed", time.Duration(result.EvalTimeNs)),
	)

	// 5. Cache the result.
	if e.cache != nil && u != nil {
		e.cache.Set(ctx, tenant.tenantID, u.ID, fingerprint, result)
	}

	// 6. Plugin hook: after apply.
	if e.plugins != nil {
		e.plugins.EmitAfterApply(ctx, u, result)
	}
	return result, nil
}

// ApplyClauses evaluates the user's scopes with ad hoc clauses keyed by
// scope id, without touching any session. Clauses for scopes the user does
// not own are ignored. With the access policy enforced, a clause on a
// locked field or with a disallowed value fails the whole call.
func (e *Engine) ApplyClauses(ctx context.Context, u *scope.User, clauses map[string][]clause.Clause) (*ApplyResult, error) {
	st := state.Reset(u.ScopeIDs()...)
	for _, scopeID := range st.ScopeIDs() {
		sc, _ := u.Scope(scopeID)
		for _, c := range clauses[scopeID] {
			if e.config.accessPolicyEnforced() {
				if err := CheckClause(sc, c); err != nil {
					return nil, err
				}
			}
			st, _ = st.Add(scopeID, c.Field, c.Operator, c.Operand, c.TagKey)
		}
	}
	for scopeID := range clauses {
		if !st.Has(scopeID) {
			e.logger.Warn("facet: ignoring clauses for unknown scope",
				slog.String("user_id", u.ID),
				slog.String("scope_id", scopeID),
			)
		}
	}
	return e.Apply(ctx, u, st)
}

// Options returns the selectable values of a field in one of the user's
// scopes, each marked allowed or not under the scope's policy.
func (e *Engine) Options(ctx context.Context, u *scope.User, scopeID string, field clause.Field, tagKey string) ([]FieldOption, error) {
	sc, ok := u.Scope(scopeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScopeNotFound, scopeID)
	}
	records, err := e.dataset.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("facet: load dataset: %w", err)
	}
	var tags []*tag.Tag
	if field == clause.FieldCustomTag {
		reg, err := e.Tags(ctx)
		if err != nil {
			return nil, err
		}
		tags = reg.List()
	}
	return OptionsFor(field, tagKey, records, tags, PolicyFor(sc, field, tagKey)), nil
}

// ──────────────────────────────────────────────────
// Users
// ──────────────────────────────────────────────────

// GetUser loads a user of the context's tenant.
func (e *Engine) GetUser(ctx context.Context, userID string) (*scope.User, error) {
	tenant := tenantFromContext(ctx)
	u, err := e.store.GetUser(ctx, tenant.tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("facet: get user %s: %w", userID, err)
	}
	return u, nil
}

// ListUsers lists users of the context's tenant.
func (e *Engine) ListUsers(ctx context.Context, filter *scope.ListFilter) ([]*scope.User, error) {
	f := scope.ListFilter{}
	if filter != nil {
		f = *filter
	}
	if f.TenantID == "" {
		f.TenantID = tenantFromContext(ctx).tenantID
	}
	return e.store.ListUsers(ctx, &f)
}

// CreateUser validates and stores a new user.
func (e *Engine) CreateUser(ctx context.Context, u *scope.User) error {
	if u.TenantID == "" {
		u.TenantID = tenantFromContext(ctx).tenantID
	}
	if err := u.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := e.store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("facet: create user %s: %w", u.ID, err)
	}
	if e.plugins != nil {
		e.plugins.EmitUserCreated(ctx, u)
	}
	return nil
}

// UpdateUser replaces a user's profile and scopes. A live session for the
// user is reset, since its clauses belong to the old scope set.
func (e *Engine) UpdateUser(ctx context.Context, u *scope.User) error {
	if u.TenantID == "" {
		u.TenantID = tenantFromContext(ctx).tenantID
	}
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, u.ID)
		}
		return fmt.Errorf("facet: update user %s: %w", u.ID, err)
	}
	if e.cache != nil {
		e.cache.InvalidateUser(ctx, u.TenantID, u.ID)
	}
	if sess := e.lookupSession(u.TenantID, u.ID); sess != nil {
		sess.SetUser(ctx, u)
	}
	if e.plugins != nil {
		e.plugins.EmitUserUpdated(ctx, u)
	}
	return nil
}

// DeleteUser removes a user and ends their session.
func (e *Engine) DeleteUser(ctx context.Context, userID string) error {
	tenantID := tenantFromContext(ctx).tenantID
	if err := e.store.DeleteUser(ctx, tenantID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return fmt.Errorf("facet: delete user %s: %w", userID, err)
	}
	e.mu.Lock()
	delete(e.sessions, sessionKey(tenantID, userID))
	e.mu.Unlock()
	if e.cache != nil {
		e.cache.InvalidateUser(ctx, tenantID, userID)
	}
	if e.plugins != nil {
		e.plugins.EmitUserDeleted(ctx, tenantID, userID)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Tags
// ──────────────────────────────────────────────────

// Tags returns the tag registry of the context's tenant, loading it from
// the store on first use.
func (e *Engine) Tags(ctx context.Context) (*tag.Registry, error) {
	tenantID := tenantFromContext(ctx).tenantID
	e.mu.Lock()
	defer e.mu.Unlock()
	if reg, ok := e.registries[tenantID]; ok {
		return reg, nil
	}
	reg := tag.NewRegistry(e.store, tenantID, e.defaultTags)
	if err := reg.Load(ctx); err != nil {
		return nil, fmt.Errorf("facet: %w", err)
	}
	e.registries[tenantID] = reg
	return reg, nil
}

// ListTags returns every tag of the tenant, defaults first.
func (e *Engine) ListTags(ctx context.Context) ([]*tag.Tag, error) {
	reg, err := e.Tags(ctx)
	if err != nil {
		return nil, err
	}
	return reg.List(), nil
}

// CreateTag adds a user-defined tag.
func (e *Engine) CreateTag(ctx context.Context, key, label string, values []string) (*tag.Tag, error) {
	reg, err := e.Tags(ctx)
	if err != nil {
		return nil, err
	}
	t, err := reg.Create(ctx, key, label, values)
	if err != nil {
		return nil, err
	}
	if e.plugins != nil {
		e.plugins.EmitTagCreated(ctx, t)
	}
	return t, nil
}

// UpdateTag changes a user-defined tag. Nil arguments are left unchanged.
func (e *Engine) UpdateTag(ctx context.Context, key string, label *string, values []string) (*tag.Tag, error) {
	reg, err := e.Tags(ctx)
	if err != nil {
		return nil, err
	}
	t, err := reg.Update(ctx, key, label, values)
	if err != nil {
		return nil, err
	}
	if e.plugins != nil {
		e.plugins.EmitTagUpdated(ctx, t)
	}
	return t, nil
}

// DeleteTag removes a user-defined tag.
func (e *Engine) DeleteTag(ctx context.Context, key string) error {
	reg, err := e.Tags(ctx)
	if err != nil {
		return err
	}
	if err := reg.Delete(ctx, key); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitTagDeleted(ctx, key)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Sessions
// ──────────────────────────────────────────────────

// NewSession starts a fresh session for a user, replacing any existing one.
func (e *Engine) NewSession(ctx context.Context, userID string) (*Session, error) {
	u, err := e.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess := newSession(e, tenantFromContext(ctx).tenantID)
	sess.SetUser(ctx, u)

	e.mu.Lock()
	e.sessions[sessionKey(sess.tenantID, userID)] = sess
	e.mu.Unlock()
	return sess, nil
}

// Session returns the user's live session, starting one if needed.
func (e *Engine) Session(ctx context.Context, userID string) (*Session, error) {
	if sess := e.lookupSession(tenantFromContext(ctx).tenantID, userID); sess != nil {
		return sess, nil
	}
	return e.NewSession(ctx, userID)
}

// EndSession discards the user's live session, if any.
func (e *Engine) EndSession(ctx context.Context, userID string) {
	tenantID := tenantFromContext(ctx).tenantID
	e.mu.Lock()
	delete(e.sessions, sessionKey(tenantID, userID))
	e.mu.Unlock()
}

func (e *Engine) lookupSession(tenantID, userID string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[sessionKey(tenantID, userID)]
}

func sessionKey(tenantID, userID string) string { return tenantID + "/" + userID }
