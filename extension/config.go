package extension

import "time"

// Config holds the Facet extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.facet" or "facet" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is an optional URL prefix for facet routes.
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// Driver selects the store backend when none is provided or registered
	// in the container: memory, sqlite, postgres, mongo or redis. The grove
	// drivers resolve a *grove.DB from the container.
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// RedisURL is the connection URL for the redis driver.
	RedisURL string `json:"redis_url" mapstructure:"redis_url" yaml:"redis_url"`

	// FixturePath points at a YAML fixture used as the record dataset when
	// no provider is set. Its users and tags are seeded on start.
	FixturePath string `json:"fixture_path" mapstructure:"fixture_path" yaml:"fixture_path"`

	// CacheTTL enables the in-memory result cache when positive.
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl" yaml:"cache_ttl"`

	// MaxResults caps the records returned by one apply pass. Zero means unlimited.
	MaxResults int `json:"max_results" mapstructure:"max_results" yaml:"max_results"`

	// TieBreakByID orders records with equal start dates by id.
	TieBreakByID bool `json:"tie_break_by_id" mapstructure:"tie_break_by_id" yaml:"tie_break_by_id"`

	// EnforceAccessPolicy rejects clauses on locked fields and values
	// outside a restriction. Defaults to true.
	EnforceAccessPolicy *bool `json:"enforce_access_policy" mapstructure:"enforce_access_policy" yaml:"enforce_access_policy"`

	// Metrics registers the Prometheus plugin on the default registerer.
	Metrics bool `json:"metrics" mapstructure:"metrics" yaml:"metrics"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		Driver:              "memory",
		CacheTTL:            30 * time.Second,
		EnforceAccessPolicy: &t,
	}
}
