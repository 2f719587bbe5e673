// Package config loads the catalog server configuration from defaults, an
// optional YAML file and CATALOG_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageInMemory = "in-memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

const envPrefix = "CATALOG"

// Config holds server configuration.
type Config struct {
	Address  string `mapstructure:"address"`
	Port     int    `mapstructure:"port"`
	Storage  string `mapstructure:"storage"`
	LogLevel string `mapstructure:"log_level"`
	// Seed fills an in-memory store with demo records at startup.
	Seed bool `mapstructure:"seed"`

	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// StoreTimeout bounds connecting to a store at startup.
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

// MongoConfig configures the MongoDB document store.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// PostgresConfig configures the PostgreSQL store.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// Validate checks that the selected storage backend is known and configured.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageInMemory:
	case StorageMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri must be set for %s storage", StorageMongo)
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo.database must be set for %s storage", StorageMongo)
		}
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn must be set for %s storage", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown storage type %q (expected %s, %s or %s)",
			c.Storage, StorageInMemory, StorageMongo, StoragePostgres)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("address", "")
	v.SetDefault("port", 3000)
	v.SetDefault("storage", StorageInMemory)
	v.SetDefault("log_level", "info")
	v.SetDefault("seed", false)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "recipe")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("read_timeout", 10*time.Second)
	v.SetDefault("write_timeout", 30*time.Second)
	v.SetDefault("idle_timeout", 120*time.Second)
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("store_timeout", 10*time.Second)
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
