package facet

import "context"

// Cache stores apply results keyed by tenant, user and state fingerprint.
type Cache interface {
	// Get returns a cached result, if available.
	Get(ctx context.Context, tenantID, userID, fingerprint string) (*ApplyResult, bool)

	// Set stores a result.
	Set(ctx context.Context, tenantID, userID, fingerprint string, result *ApplyResult)

	// InvalidateTenant removes all cached results for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)

	// InvalidateUser removes all cached results for one user.
	InvalidateUser(ctx context.Context, tenantID, userID string)
}
