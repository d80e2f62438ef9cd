package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/facet/scope"
	"github.com/xraph/facet/tag"
)

// ──────────────────────────────────────────────────
// User model
// ──────────────────────────────────────────────────

type userModel struct {
	grove.BaseModel `grove:"table:facet_users"`
	Key             string        `grove:"id,pk"        bson:"_id"`
	ID              string        `grove:"user_id"      bson:"user_id"`
	TenantID        string        `grove:"tenant_id"    bson:"tenant_id"`
	Name            string        `grove:"name"         bson:"name"`
	Email           string        `grove:"email"        bson:"email,omitempty"`
	Role            string        `grove:"role"         bson:"role,omitempty"`
	Description     string        `grove:"description"  bson:"description,omitempty"`
	Scopes          []scope.Scope `grove:"scopes"       bson:"scopes"`
	CreatedAt       time.Time     `grove:"created_at"   bson:"created_at"`
	UpdatedAt       time.Time     `grove:"updated_at"   bson:"updated_at"`
}

// userKey is the document id: users are unique per tenant.
func userKey(tenantID, userID string) string { return tenantID + "/" + userID }

func userToModel(u *scope.User) *userModel {
	return &userModel{
		Key:         userKey(u.TenantID, u.ID),
		ID:          u.ID,
		TenantID:    u.TenantID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Description: u.Description,
		Scopes:      u.Scopes,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func userFromModel(m *userModel) *scope.User {
	return &scope.User{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Email:       m.Email,
		Role:        m.Role,
		Description: m.Description,
		Scopes:      m.Scopes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Tag set model
// ──────────────────────────────────────────────────

// tagSetModel holds every custom tag of one tenant in a single document,
// so a save is one atomic write.
type tagSetModel struct {
	grove.BaseModel `grove:"table:facet_tags"`
	TenantID        string     `grove:"id,pk"       bson:"_id"`
	Tags            []tagEntry `grove:"tags"        bson:"tags"`
	UpdatedAt       time.Time  `grove:"updated_at"  bson:"updated_at"`
}

type tagEntry struct {
	Key    string      `bson:"key"`
	Label  string      `bson:"label"`
	Values []tag.Value `bson:"values"`
}

func tagSetToModel(tenantID string, tags []*tag.Tag) *tagSetModel {
	entries := make([]tagEntry, len(tags))
	for i, t := range tags {
		entries[i] = tagEntry{Key: t.Key, Label: t.Label, Values: t.Values}
	}
	return &tagSetModel{TenantID: tenantID, Tags: entries, UpdatedAt: time.Now().UTC()}
}

func tagsFromModel(m *tagSetModel) []*tag.Tag {
	out := make([]*tag.Tag, len(m.Tags))
	for i, e := range m.Tags {
		out[i] = &tag.Tag{Key: e.Key, Label: e.Label, Values: e.Values}
	}
	return out
}
