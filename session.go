package facet

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xraph/facet/clause"
	"github.com/xraph/facet/id"
	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/state"
)

// Session is the single writer of one user's filter state. All mutators
// take the session lock, swap in a new immutable snapshot and then notify
// plugins. Changing the user resets the state.
type Session struct {
	id       id.SessionID
	engine   *Engine
	tenantID string

	mu    sync.Mutex
	user  *scope.User
	state state.State
}

func newSession(e *Engine, tenantID string) *Session {
	return &Session{id: id.NewSessionID(), engine: e, tenantID: tenantID}
}

// ID returns the session id.
func (s *Session) ID() id.SessionID { return s.id }

// User returns a copy of the active user.
func (s *Session) User() *scope.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	return s.user.Clone()
}

// State returns the current snapshot.
func (s *Session) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Clauses returns the user clauses of one scope.
func (s *Session) Clauses(scopeID string) []clause.Clause { return s.State().Clauses(scopeID) }

// SetUser makes u the active user and resets the state to one empty list
// per scope of u. Clauses of the previous user never carry over.
func (s *Session) SetUser(ctx context.Context, u *scope.User) {
	s.mu.Lock()
	s.user = u.Clone()
	s.state = state.Reset(u.ScopeIDs()...)
	scopeIDs := s.state.ScopeIDs()
	s.mu.Unlock()

	s.invalidate(ctx, u.ID)
	if p := s.engine.plugins; p != nil {
		p.EmitStateReset(ctx, s.id, u.ID, scopeIDs)
	}
}

// SwitchUser loads another user of the session's tenant and makes it active.
func (s *Session) SwitchUser(ctx context.Context, userID string) error {
	u, err := s.engine.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	prev := s.User()
	s.SetUser(ctx, u)

	e := s.engine
	e.mu.Lock()
	if prev != nil {
		if e.sessions[sessionKey(s.tenantID, prev.ID)] == s {
			delete(e.sessions, sessionKey(s.tenantID, prev.ID))
		}
	}
	e.sessions[sessionKey(s.tenantID, u.ID)] = s
	e.mu.Unlock()
	return nil
}

// AddClause appends a clause to one scope and returns its id. An unknown
// scope id is a no-op returning id.Nil. When the engine enforces access
// policy, clauses on locked fields or with disallowed values are rejected.
func (s *Session) AddClause(ctx context.Context, scopeID string, field clause.Field, op clause.Operator, operand clause.Operand, tagKey string) (id.ClauseID, error) {
	s.mu.Lock()
	sc, ok := s.scope(scopeID)
	if !ok {
		s.mu.Unlock()
		s.logMiss("add clause", scopeID, id.Nil)
		return id.Nil, nil
	}
	if s.engine.config.accessPolicyEnforced() {
		draft := clause.Clause{Field: field, Operator: op, Operand: operand, TagKey: tagKey}
		if err := CheckClause(sc, draft); err != nil {
			s.mu.Unlock()
			return id.Nil, err
		}
	}
	next, cid := s.state.Add(scopeID, field, op, operand, tagKey)
	s.state = next
	added, _ := next.Clause(scopeID, cid)
	userID := s.user.ID
	s.mu.Unlock()

	s.invalidate(ctx, userID)
	if p := s.engine.plugins; p != nil {
		p.EmitClauseAdded(ctx, s.id, scopeID, added)
	}
	return cid, nil
}

// UpdateClause merges patch into a clause. Unknown scope or clause ids are
// no-ops.
func (s *Session) UpdateClause(ctx context.Context, scopeID string, clauseID id.ClauseID, patch clause.Patch) error {
	s.mu.Lock()
	sc, ok := s.scope(scopeID)
	current, found := s.state.Clause(scopeID, clauseID)
	if !ok || !found {
		s.mu.Unlock()
		s.logMiss("update clause", scopeID, clauseID)
		return nil
	}
	if s.engine.config.accessPolicyEnforced() {
		if err := CheckClause(sc, patch.Apply(current)); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.state = s.state.Update(scopeID, clauseID, patch)
	updated, _ := s.state.Clause(scopeID, clauseID)
	userID := s.user.ID
	s.mu.Unlock()

	s.invalidate(ctx, userID)
	if p := s.engine.plugins; p != nil {
		p.EmitClauseUpdated(ctx, s.id, scopeID, updated)
	}
	return nil
}

// RemoveClause drops a clause and reports whether it existed.
func (s *Session) RemoveClause(ctx context.Context, scopeID string, clauseID id.ClauseID) bool {
	s.mu.Lock()
	_, found := s.state.Clause(scopeID, clauseID)
	if !found {
		s.mu.Unlock()
		s.logMiss("remove clause", scopeID, clauseID)
		return false
	}
	s.state = s.state.Remove(scopeID, clauseID)
	userID := s.userID()
	s.mu.Unlock()

	s.invalidate(ctx, userID)
	if p := s.engine.plugins; p != nil {
		p.EmitClauseRemoved(ctx, s.id, scopeID, clauseID)
	}
	return true
}

// ClearScope empties one scope's clauses.
func (s *Session) ClearScope(ctx context.Context, scopeID string) {
	s.mu.Lock()
	known := s.state.Has(scopeID)
	s.state = s.state.ClearScope(scopeID)
	userID := s.userID()
	s.mu.Unlock()

	if !known {
		s.logMiss("clear scope", scopeID, id.Nil)
		return
	}
	s.invalidate(ctx, userID)
	if p := s.engine.plugins; p != nil {
		p.EmitScopeCleared(ctx, s.id, scopeID)
	}
}

// ClearAll empties every scope's clauses.
func (s *Session) ClearAll(ctx context.Context) {
	s.mu.Lock()
	scopeIDs := s.state.ScopeIDs()
	s.state = s.state.ClearAll()
	userID := s.userID()
	s.mu.Unlock()

	s.invalidate(ctx, userID)
	if p := s.engine.plugins; p != nil {
		for _, sid := range scopeIDs {
			p.EmitScopeCleared(ctx, s.id, sid)
		}
	}
}

// Records runs a full aggregation pass over the current snapshot.
func (s *Session) Records(ctx context.Context) (*ApplyResult, error) {
	s.mu.Lock()
	u, st := s.user, s.state
	s.mu.Unlock()
	return s.engine.Apply(ctx, u, st)
}

// Options returns the selectable values of a field in one scope.
func (s *Session) Options(ctx context.Context, scopeID string, field clause.Field, tagKey string) ([]FieldOption, error) {
	u := s.User()
	if u == nil {
		return nil, ErrUserNotFound
	}
	return s.engine.Options(ctx, u, scopeID, field, tagKey)
}

// AddableFields lists the fields, and the tag keys for custom_tag, that a
// clause builder may offer in one scope given the clauses already present.
func (s *Session) AddableFields(ctx context.Context, scopeID string) ([]clause.Field, []string, error) {
	reg, err := s.engine.Tags(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	sc, ok := s.scope(scopeID)
	used := s.state.Clauses(scopeID)
	s.mu.Unlock()
	if !ok {
		return nil, nil, ErrScopeNotFound
	}
	keys := reg.Keys()
	return AddableFields(sc, used, keys), AddableTagKeys(sc, used, keys), nil
}

// scope returns one of the active user's scopes. Must hold s.mu.
func (s *Session) scope(scopeID string) (*scope.Scope, bool) {
	if s.user == nil || !s.state.Has(scopeID) {
		return nil, false
	}
	return s.user.Scope(scopeID)
}

// userID returns the active user's id. Must hold s.mu.
func (s *Session) userID() string {
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// invalidate drops the user's cached apply results.
func (s *Session) invalidate(ctx context.Context, userID string) {
	if c := s.engine.cache; c != nil && userID != "" {
		c.InvalidateUser(ctx, s.tenantID, userID)
	}
}

func (s *Session) logMiss(op, scopeID string, clauseID id.ClauseID) {
	s.engine.logger.Debug("facet: session lookup miss",
		slog.String("op", op),
		slog.String("session_id", s.id.String()),
		slog.String("scope_id", scopeID),
		slog.String("clause_id", clauseID.String()),
	)
}
