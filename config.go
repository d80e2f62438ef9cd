package facet

import "time"

// Config holds configuration for the facet engine.
type Config struct {
	// CacheTTL is the time-to-live for cached apply results.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// MaxResults caps the number of records returned by one apply pass.
	// Zero means unlimited.
	MaxResults int `json:"max_results,omitempty"`

	// TieBreakByID orders records with equal start dates by id. When off,
	// ties keep their union order.
	TieBreakByID bool `json:"tie_break_by_id,omitempty"`

	// EnforceAccessPolicy makes sessions reject clauses on locked fields
	// and values outside a restriction. Defaults to true.
	EnforceAccessPolicy *bool `json:"enforce_access_policy,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		EnforceAccessPolicy: &t,
	}
}

func (c Config) accessPolicyEnforced() bool {
	return c.EnforceAccessPolicy == nil || *c.EnforceAccessPolicy
}
