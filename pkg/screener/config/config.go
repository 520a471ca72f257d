// Package config loads screener settings from defaults, an optional config
// file, a .env file and SCREENER_* environment variables, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/universe"
	"github.com/komsit37/screener/pkg/screener/yahoo"
)

// EnvPrefix prefixes every environment override, e.g. SCREENER_SERVER_ADDR.
const EnvPrefix = "SCREENER"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Universe  UniverseConfig  `mapstructure:"universe"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr          string        `mapstructure:"addr" validate:"required"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
	AccessLogPath string        `mapstructure:"access_log_path"`
}

type ProviderConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit   int           `mapstructure:"rate_limit" validate:"gte=0"` // requests/second, 0 = unlimited
	Concurrency int           `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	PriceWindow time.Duration `mapstructure:"price_window" validate:"gte=0"`
	// UseYF takes live price and name from yf-go.
	UseYF bool `mapstructure:"use_yf"`
}

type CacheConfig struct {
	Driver    string        `mapstructure:"driver" validate:"oneof=memory badger none"`
	Path      string        `mapstructure:"path"` // badger directory; empty = in-memory badger
	Size      int           `mapstructure:"size" validate:"gte=0"`
	BatchTTL  time.Duration `mapstructure:"batch_ttl" validate:"gt=0"`
	TickerTTL time.Duration `mapstructure:"ticker_ttl" validate:"gt=0"`
	// Retention bounds how long stale entries stay on disk (badger only).
	Retention time.Duration `mapstructure:"retention" validate:"gte=0"`
}

type UniverseConfig struct {
	Path      string `mapstructure:"path" validate:"required"`
	Limit     int    `mapstructure:"limit" validate:"gte=0"`
	SourceURL string `mapstructure:"source_url" validate:"required,url"`
	Symbols   string `mapstructure:"symbols"` // symbol filter expression
}

type SeedConfig struct {
	Path string `mapstructure:"path"`
}

type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format        string `mapstructure:"format" validate:"oneof=json pretty"`
	FileEnabled   bool   `mapstructure:"file_enabled"`
	FilePath      string `mapstructure:"file_path" validate:"required_if=FileEnabled true"`
	RotationSize  int    `mapstructure:"rotation_size" validate:"gte=0"` // MB
	RetentionDays int    `mapstructure:"retention_days" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":4000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.access_log_path", "")

	v.SetDefault("provider.base_url", yahoo.DefaultBaseURL)
	v.SetDefault("provider.timeout", yahoo.DefaultTimeout)
	v.SetDefault("provider.rate_limit", yahoo.DefaultRateLimit)
	v.SetDefault("provider.concurrency", 8)
	v.SetDefault("provider.price_window", yahoo.DefaultPriceWindow)
	v.SetDefault("provider.use_yf", false)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.path", "data/cache")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.batch_ttl", cache.BatchTTL)
	v.SetDefault("cache.ticker_ttl", cache.TickerTTL)
	v.SetDefault("cache.retention", 24*time.Hour)

	v.SetDefault("universe.path", "data/universe.yaml")
	v.SetDefault("universe.limit", universe.DefaultLimit)
	v.SetDefault("universe.source_url", universe.DefaultSourceURL)
	v.SetDefault("universe.symbols", "")

	v.SetDefault("seed.path", "data/samples")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.spec", "@every 50m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "pretty")
	v.SetDefault("logging.file_enabled", false)
	v.SetDefault("logging.file_path", "logs")
	v.SetDefault("logging.rotation_size", 50)
	v.SetDefault("logging.retention_days", 7)
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads path (yaml, toml or json; empty to skip) over the defaults. A
// .env file in the working directory is loaded first when present; values
// already in the environment win over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
