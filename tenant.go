package facet

import (
	"context"

	"github.com/xraph/forge"
)

type tenantScope struct {
	appID    string
	tenantID string
}

// tenantFromContext extracts the tenant from forge.Scope, falling back to
// WithTenant values in standalone mode.
func tenantFromContext(ctx context.Context) tenantScope {
	if s, ok := forge.ScopeFrom(ctx); ok {
		return tenantScope{appID: s.AppID(), tenantID: s.OrgID()}
	}
	return tenantScope{
		appID:    appIDFromContext(ctx),
		tenantID: tenantIDFromContext(ctx),
	}
}

// TenantID returns the tenant the context is scoped to.
func TenantID(ctx context.Context) string { return tenantFromContext(ctx).tenantID }
