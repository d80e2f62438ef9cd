// Package config loads the facet CLI configuration from config files,
// .env files, FACET_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xraph/facet"
)

// EnvPrefix prefixes every environment override, e.g. FACET_STORE_DRIVER.
const EnvPrefix = "FACET"

// Config is the CLI configuration.
type Config struct {
	Tenant  string       `mapstructure:"tenant"  yaml:"tenant"`
	Fixture string       `mapstructure:"fixture" yaml:"fixture"`
	Store   StoreConfig  `mapstructure:"store"   yaml:"store"`
	Engine  EngineConfig `mapstructure:"engine"  yaml:"engine"`
	Log     LogConfig    `mapstructure:"log"     yaml:"log"`
}

// StoreConfig selects the persistence backend for users and tags.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"    yaml:"driver"`
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
	Prefix   string `mapstructure:"prefix"    yaml:"prefix"`
}

// EngineConfig mirrors facet.Config in file-friendly form.
type EngineConfig struct {
	CacheTTL            string `mapstructure:"cache_ttl"             yaml:"cache_ttl"`
	MaxResults          int    `mapstructure:"max_results"           yaml:"max_results"`
	TieBreakByID        bool   `mapstructure:"tie_break_by_id"       yaml:"tie_break_by_id"`
	EnforceAccessPolicy bool   `mapstructure:"enforce_access_policy" yaml:"enforce_access_policy"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level      string         `mapstructure:"level"       yaml:"level"`
	File       string         `mapstructure:"file"        yaml:"file"`
	JSON       bool           `mapstructure:"json"        yaml:"json"`
	NoTerminal bool           `mapstructure:"no_terminal" yaml:"no_terminal"`
	Rotation   RotationConfig `mapstructure:"rotation"    yaml:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"    yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"     yaml:"max_age"`
	Compress   bool `mapstructure:"compress"    yaml:"compress"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver: "memory",
			Prefix: "facet",
		},
		Engine: EngineConfig{
			CacheTTL:            "0s",
			EnforceAccessPolicy: true,
		},
		Log: LogConfig{
			Level: "warn",
			Rotation: RotationConfig{
				MaxSize:    64,
				MaxBackups: 3,
				MaxAge:     14,
			},
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("tenant", d.Tenant)
	v.SetDefault("fixture", d.Fixture)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.redis_url", d.Store.RedisURL)
	v.SetDefault("store.prefix", d.Store.Prefix)

	v.SetDefault("engine.cache_ttl", d.Engine.CacheTTL)
	v.SetDefault("engine.max_results", d.Engine.MaxResults)
	v.SetDefault("engine.tie_break_by_id", d.Engine.TieBreakByID)
	v.SetDefault("engine.enforce_access_policy", d.Engine.EnforceAccessPolicy)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.no_terminal", d.Log.NoTerminal)
	v.SetDefault("log.rotation.max_size", d.Log.Rotation.MaxSize)
	v.SetDefault("log.rotation.max_backups", d.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age", d.Log.Rotation.MaxAge)
	v.SetDefault("log.rotation.compress", d.Log.Rotation.Compress)
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"tenant":    "tenant",
	"fixture":   "fixture",
	"store":     "store.driver",
	"redis-url": "store.redis_url",
	"log-level": "log.level",
	"log-json":  "log.json",
}

var (
	envFiles       = []string{".env", ".env.local"}
	envKeyReplacer = strings.NewReplacer(".", "_")
)

// Load reads the configuration. An empty path searches config.yaml in the
// working directory, ./config, /etc/facet and $HOME/.facet. Flags present
// in flags and listed in FlagKeys override file and environment values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	loadEnvFiles(".")
	if path != "" {
		v.SetConfigFile(path)
		loadEnvFiles(filepath.Dir(path))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range []string{".", "./config", "/etc/facet", "$HOME/.facet"} {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := cfg.Engine.cacheTTL(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		// Missing .env files are fine.
		_ = godotenv.Load(filepath.Join(dir, name))
	}
}

// Facet converts the engine section to a facet.Config.
func (c EngineConfig) Facet() facet.Config {
	cfg := facet.DefaultConfig()
	cfg.CacheTTL, _ = c.cacheTTL()
	cfg.MaxResults = c.MaxResults
	cfg.TieBreakByID = c.TieBreakByID
	enforce := c.EnforceAccessPolicy
	cfg.EnforceAccessPolicy = &enforce
	return cfg
}

func (c EngineConfig) cacheTTL() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("engine.cache_ttl: %w", err)
	}
	return d, nil
}
