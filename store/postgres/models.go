package postgres

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
	TenantID        string        `grove:"tenant_id,pk"`
	ID              string        `grove:"id,pk"`
	Name            string        `grove:"name,notnull"`
	Email           string        `grove:"email"`
	Role            string        `grove:"role"`
	Description     string        `grove:"description"`
	Scopes          []scope.Scope `grove:"scopes,type:jsonb"`
	CreatedAt       time.Time     `grove:"created_at,notnull"`
	UpdatedAt       time.Time     `grove:"updated_at,notnull"`
}

func userToModel(u *scope.User) *userModel {
	return &userModel{
		TenantID:    u.TenantID,
		ID:          u.ID,
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
// Tag model
// ──────────────────────────────────────────────────

type tagModel struct {
	grove.BaseModel `grove:"table:facet_tags"`
	TenantID        string      `grove:"tenant_id,pk"`
	Key             string      `grove:"key,pk"`
	Label           string      `grove:"label,notnull"`
	Values          []tag.Value `grove:"tag_values,type:jsonb"`
	Position        int         `grove:"position,notnull"`
}

func tagToModel(tenantID string, pos int, t *tag.Tag) tagModel {
	return tagModel{
		TenantID: tenantID,
		Key:      t.Key,
		Label:    t.Label,
		Values:   t.Values,
		Position: pos,
	}
}

func tagFromModel(m *tagModel) *tag.Tag {
	return &tag.Tag{Key: m.Key, Label: m.Label, Values: m.Values}
}
