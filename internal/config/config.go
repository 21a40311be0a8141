package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Dedupe   DedupeConfig   `yaml:"dedupe" mapstructure:"dedupe"`
	Import   ImportConfig   `yaml:"import" mapstructure:"import"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the document store backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional Postgres pool tuning.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// DedupeConfig configures the reconciliation pass. Batch sizes must stay
// below the store's per-batch ceiling; keeper and delete batches are
// tuned independently.
type DedupeConfig struct {
	PageSize        int `yaml:"page_size" mapstructure:"page_size"`
	KeeperBatchSize int `yaml:"keeper_batch_size" mapstructure:"keeper_batch_size"`
	DeleteBatchSize int `yaml:"delete_batch_size" mapstructure:"delete_batch_size"`
}

// ImportConfig configures the import-time resolver.
type ImportConfig struct {
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
	MaxImages int `yaml:"max_images" mapstructure:"max_images"`
}

// OverpassConfig configures the Overpass POI fetch client.
type OverpassConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SPOTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "spots.db")
	v.SetDefault("dedupe.page_size", 500)
	v.SetDefault("dedupe.keeper_batch_size", 450)
	v.SetDefault("dedupe.delete_batch_size", 450)
	v.SetDefault("import.batch_size", 250)
	v.SetDefault("import.max_images", 5)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 30)
	v.SetDefault("overpass.max_retries", 3)
	v.SetDefault("overpass.rate_per_sec", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration needed by the named subsystem.
func (c *Config) Validate(section string) error {
	switch section {
	case "store":
		switch c.Store.Driver {
		case "sqlite":
		case "postgres":
			if c.Store.DatabaseURL == "" {
				return eris.New("config: store.database_url is required for the postgres driver (SPOTS_STORE_DATABASE_URL)")
			}
		default:
			return eris.Errorf("config: unsupported store driver: %s", c.Store.Driver)
		}
	case "overpass":
		if c.Overpass.BaseURL == "" {
			return eris.New("config: overpass.base_url must not be empty")
		}
	default:
		return eris.Errorf("config: unknown section: %s", section)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
