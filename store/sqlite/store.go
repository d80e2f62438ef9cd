package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a SQLite implementation of the composite Facet store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("facet/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("facet/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *scope.User) error {
	exists, err := s.userExists(ctx, u.TenantID, u.ID)
	if err != nil {
		return fmt.Errorf("facet: create user: %w", err)
	}
	if exists {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrConflict)
	}
	m, err := userToModel(u)
	if err != nil {
		return fmt.Errorf("facet: create user: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("facet: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, tenantID, userID string) (*scope.User, error) {
	m := new(userModel)
	err := s.sdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("facet: get user: %w", err)
	}
	u, err := userFromModel(m)
	if err != nil {
		return nil, fmt.Errorf("facet: get user: %w", err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *scope.User) error {
	prev, err := s.GetUser(ctx, u.TenantID, u.ID)
	if err != nil {
		return err
	}
	m, err := userToModel(u)
	if err != nil {
		return fmt.Errorf("facet: update user: %w", err)
	}
	m.CreatedAt = prev.CreatedAt
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("facet: update user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, tenantID, userID string) error {
	exists, err := s.userExists(ctx, tenantID, userID)
	if err != nil {
		return fmt.Errorf("facet: delete user: %w", err)
	}
	if !exists {
		return fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	_, err = s.sdb.NewDelete((*userModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facet: delete user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter *scope.ListFilter) ([]*scope.User, error) {
	var models []userModel
	q := s.sdb.NewSelect(&models).OrderExpr("id ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			q = q.Where("(LOWER(name) LIKE LOWER(?) OR LOWER(id) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?))", like, like, like)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("facet: list users: %w", err)
	}
	result := make([]*scope.User, len(models))
	for i := range models {
		u, err := userFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("facet: list users: %w", err)
		}
		result[i] = u
	}
	return result, nil
}

func (s *Store) userExists(ctx context.Context, tenantID, userID string) (bool, error) {
	n, err := s.sdb.NewSelect((*userModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("id = ?", userID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ──────────────────────────────────────────────────
// Tag operations
// ──────────────────────────────────────────────────

func (s *Store) LoadTags(ctx context.Context, tenantID string) ([]*tag.Tag, error) {
	var models []tagModel
	err := s.sdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		OrderExpr("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("facet: load tags: %w", err)
	}
	result := make([]*tag.Tag, 0, len(models))
	for i := range models {
		t, err := tagFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("facet: load tags: %w", err)
		}
		result = append(result, t)
	}
	return result, nil
}

// SaveTags replaces the tenant's custom tags in one transaction.
func (s *Store) SaveTags(ctx context.Context, tenantID string, tags []*tag.Tag) error {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("facet: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.NewDelete((*tagModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facet: clear tags: %w", err)
	}

	if len(tags) > 0 {
		models := make([]tagModel, len(tags))
		for i, t := range tags {
			m, err := tagToModel(tenantID, i, t)
			if err != nil {
				return fmt.Errorf("facet: save tags: %w", err)
			}
			models[i] = *m
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("facet: save tags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("facet: commit tx: %w", err)
	}
	return nil
}
