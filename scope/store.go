package scope

import "context"

// Store defines persistence operations for users and their scopes.
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, u *User) error

	// GetUser retrieves a user by tenant and id.
	GetUser(ctx context.Context, tenantID, userID string) (*User, error)

	// UpdateUser replaces a user's profile and scopes.
	UpdateUser(ctx context.Context, u *User) error

	// DeleteUser removes a user.
	DeleteUser(ctx context.Context, tenantID, userID string) error

	// ListUsers returns users matching the filter, ordered by id.
	ListUsers(ctx context.Context, filter *ListFilter) ([]*User, error)
}
