// Package mongo provides a MongoDB implementation of the Facet composite
// store backed by grove's mongo driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/store"
	"github.com/xraph/facet/tag"
)

// Collection name constants.
const (
	colUsers = "facet_users"
	colTags  = "facet_tags"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Facet store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all facet collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("facet/mongo: migrate %s indexes: %w", col, err)
		}
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all facet collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *scope.User) error {
	n, err := s.mdb.NewFind((*userModel)(nil)).
		Filter(bson.M{"_id": userKey(u.TenantID, u.ID)}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("facet: create user: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrConflict)
	}
	if _, err := s.mdb.NewInsert(userToModel(u)).Exec(ctx); err != nil {
		return fmt.Errorf("facet: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, tenantID, userID string) (*scope.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userKey(tenantID, userID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("facet: get user: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) UpdateUser(ctx context.Context, u *scope.User) error {
	prev, err := s.GetUser(ctx, u.TenantID, u.ID)
	if err != nil {
		return err
	}
	m := userToModel(u)
	m.CreatedAt = prev.CreatedAt
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Key}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facet: update user: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, tenantID, userID string) error {
	key := userKey(tenantID, userID)
	n, err := s.mdb.NewFind((*userModel)(nil)).
		Filter(bson.M{"_id": key}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("facet: delete user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	_, err = s.mdb.NewDelete((*userModel)(nil)).
		Filter(bson.M{"_id": key}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facet: delete user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter *scope.ListFilter) ([]*scope.User, error) {
	var models []userModel
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.Search != "" {
			re := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
			f["$or"] = bson.A{
				bson.M{"name": re},
				bson.M{"user_id": re},
				bson.M{"email": re},
			}
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "user_id", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("facet: list users: %w", err)
	}
	result := make([]*scope.User, len(models))
	for i := range models {
		result[i] = userFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Tag operations
// ──────────────────────────────────────────────────

func (s *Store) LoadTags(ctx context.Context, tenantID string) ([]*tag.Tag, error) {
	var m tagSetModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tenantID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return []*tag.Tag{}, nil
		}
		return nil, fmt.Errorf("facet: load tags: %w", err)
	}
	return tagsFromModel(&m), nil
}

// SaveTags replaces the tenant's tag document, inserting it on first save.
func (s *Store) SaveTags(ctx context.Context, tenantID string, tags []*tag.Tag) error {
	m := tagSetToModel(tenantID, tags)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("facet: save tags: %w", err)
	}
	if res.MatchedCount() > 0 {
		return nil
	}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("facet: save tags: %w", err)
	}
	return nil
}
