package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "UNITSTATS_CONFIG"

// DefaultPath is used when PathEnv is not set.
const DefaultPath = "config/unitstats.yaml"

// Service holds all configuration for the stat service.
type Service struct {
	// Network
	BindAddress string `yaml:"bind_address" env:"UNITSTATS_BIND_ADDRESS"`
	Port        int    `yaml:"port"         env:"UNITSTATS_PORT"`

	LogLevel string `yaml:"log_level" env:"UNITSTATS_LOG_LEVEL"` // debug|info|warn|error

	Feed     FeedConfig     `yaml:"feed"`
	Database DatabaseConfig `yaml:"database"`
	Data     DataConfig     `yaml:"data"`
	Engine   EngineConfig   `yaml:"engine"`
}

// FeedConfig points at the published sheet exports.
type FeedConfig struct {
	UnitsURL        string        `yaml:"units_url"        env:"UNITSTATS_FEED_UNITS_URL"`
	ModsURL         string        `yaml:"mods_url"         env:"UNITSTATS_FEED_MODS_URL"`
	TiersURL        string        `yaml:"tiers_url"        env:"UNITSTATS_FEED_TIERS_URL"`
	Timeout         time.Duration `yaml:"timeout"          env:"UNITSTATS_FEED_TIMEOUT"`          // per request (default: 10s)
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"UNITSTATS_FEED_REFRESH_INTERVAL"` // default: 15m
}

// DatabaseConfig holds PostgreSQL connection parameters.
// The snapshot store is optional; Enabled=false runs purely from the feed.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"  env:"UNITSTATS_DB_ENABLED"`
	Host     string `yaml:"host"     env:"UNITSTATS_DB_HOST"`
	Port     int    `yaml:"port"     env:"UNITSTATS_DB_PORT"`
	User     string `yaml:"user"     env:"UNITSTATS_DB_USER"`
	Password string `yaml:"password" env:"UNITSTATS_DB_PASSWORD"`
	DBName   string `yaml:"dbname"   env:"UNITSTATS_DB_NAME"`
	SSLMode  string `yaml:"sslmode"  env:"UNITSTATS_DB_SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DataConfig holds optional override files for the static tables.
// Empty paths use the built-in tables.
type DataConfig struct {
	ModifierTable string `yaml:"modifier_table" env:"UNITSTATS_DATA_MODIFIER_TABLE"`
	ModCatalog    string `yaml:"mod_catalog"    env:"UNITSTATS_DATA_MOD_CATALOG"`
}

// EngineConfig tunes stat computation.
type EngineConfig struct {
	MaxLevel     int    `yaml:"max_level"     env:"UNITSTATS_ENGINE_MAX_LEVEL"`
	RarityPolicy string `yaml:"rarity_policy" env:"UNITSTATS_ENGINE_RARITY_POLICY"` // last_wins|none
}

// Default returns Service config with sensible defaults.
func Default() Service {
	return Service{
		BindAddress: "0.0.0.0",
		Port:        8080,
		LogLevel:    "info",
		Feed: FeedConfig{
			Timeout:         10 * time.Second,
			RefreshInterval: 15 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "unitstats",
			Password: "unitstats",
			DBName:   "unitstats",
			SSLMode:  "disable",
		},
		Engine: EngineConfig{
			MaxLevel:     25,
			RarityPolicy: "last_wins",
		},
	}
}

// Path returns the config path from PathEnv, or DefaultPath.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads service config from a YAML file, then applies UNITSTATS_*
// environment overrides. If the file doesn't exist, starts from defaults.
func Load(path string) (Service, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("applying environment overrides: %w", err)
	}

	return cfg, nil
}
