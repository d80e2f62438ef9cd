package sqlite

import (
	"encoding/json"
	"fmt"
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
	TenantID        string    `grove:"tenant_id,pk"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	Email           string    `grove:"email"`
	Role            string    `grove:"role"`
	Description     string    `grove:"description"`
	Scopes          string    `grove:"scopes,notnull"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func userToModel(u *scope.User) (*userModel, error) {
	scopes, err := json.Marshal(u.Scopes)
	if err != nil {
		return nil, fmt.Errorf("marshal user scopes: %w", err)
	}
	return &userModel{
		TenantID:    u.TenantID,
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Description: u.Description,
		Scopes:      string(scopes),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}, nil
}

func userFromModel(m *userModel) (*scope.User, error) {
	var scopes []scope.Scope
	if m.Scopes != "" {
		if err := json.Unmarshal([]byte(m.Scopes), &scopes); err != nil {
			return nil, fmt.Errorf("unmarshal user scopes: %w", err)
		}
	}
	return &scope.User{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Email:       m.Email,
		Role:        m.Role,
		Description: m.Description,
		Scopes:      scopes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Tag model
// ──────────────────────────────────────────────────

type tagModel struct {
	grove.BaseModel `grove:"table:facet_tags"`
	TenantID        string `grove:"tenant_id,pk"`
	Key             string `grove:"key,pk"`
	Label           string `grove:"label,notnull"`
	Values          string `grove:"tag_values,notnull"` // JSON text
	Position        int    `grove:"position,notnull"`
}

func tagToModel(tenantID string, pos int, t *tag.Tag) (*tagModel, error) {
	values, err := json.Marshal(t.Values)
	if err != nil {
		return nil, fmt.Errorf("marshal tag values: %w", err)
	}
	return &tagModel{
		TenantID: tenantID,
		Key:      t.Key,
		Label:    t.Label,
		Values:   string(values),
		Position: pos,
	}, nil
}

func tagFromModel(m *tagModel) (*tag.Tag, error) {
	var values []tag.Value
	if err := json.Unmarshal([]byte(m.Values), &values); err != nil {
		return nil, fmt.Errorf("unmarshal tag values: %w", err)
	}
	return &tag.Tag{Key: m.Key, Label: m.Label, Values: values}, nil
}
