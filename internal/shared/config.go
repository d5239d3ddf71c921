package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	AppEnv         string        `mapstructure:"APP_ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr       string        `mapstructure:"HTTP_ADDR"`
	MetricsAddr    string        `mapstructure:"METRICS_ADDR"`
	StorageDriver  string        `mapstructure:"STORAGE_DRIVER"`
	MongoURI       string        `mapstructure:"MONGO_URI"`
	MongoDatabase  string        `mapstructure:"MONGO_DATABASE"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPass      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	CacheTTL       time.Duration `mapstructure:"-"`
	JWTSecret      string        `mapstructure:"AUTH_JWT_SECRET"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// bulk importer (cmd/importer)
	FeedBaseURL  string `mapstructure:"FEED_BASE_URL"`
	FeedKey      string `mapstructure:"FEED_API_KEY"`
	FeedRPS      int    `mapstructure:"FEED_RPS"`
	ImportOwner  string `mapstructure:"IMPORT_OWNER_ID"`
	ImportEmail  string `mapstructure:"IMPORT_OWNER_EMAIL"`
	ImportWorker int    `mapstructure:"IMPORT_WORKERS"`
	PushGateway  string `mapstructure:"PUSHGATEWAY_URL"`
}

var keys = map[string]any{
	"APP_ENV":           "prod",
	"LOG_LEVEL":         "info",
	"HTTP_ADDR":         ":8080",
	"METRICS_ADDR":      "",
	"STORAGE_DRIVER":    DriverMongo,
	"MONGO_URI":         "mongodb://localhost:27017",
	"MONGO_DATABASE":    "estate",
	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"CACHE_TTL_SECONDS": 300,
	"AUTH_JWT_SECRET":   "",
	"RATE_LIMIT_RPS":    0.0,
	"RATE_LIMIT_BURST":  20,
	"REQUEST_TIMEOUT":   "15s",

	"FEED_BASE_URL":      "",
	"FEED_API_KEY":       "",
	"FEED_RPS":           5,
	"IMPORT_OWNER_ID":    "",
	"IMPORT_OWNER_EMAIL": "",
	"IMPORT_WORKERS":     8,
	"PUSHGATEWAY_URL":    "",
}

// Load reads configuration from the environment, with an optional .env file
// in the working directory underneath it.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err == nil {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("config file loaded")
	}
	return load(v)
}

// LoadWith builds a Config from explicit overrides on top of the defaults.
// Environment variables are ignored.
func LoadWith(overrides map[string]any) (Config, error) {
	v := viper.New()
	for k, val := range overrides {
		v.Set(k, val)
	}
	return loadDefaults(v)
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	for k := range keys {
		// AutomaticEnv only covers Get; Unmarshal needs explicit binds
		_ = v.BindEnv(k)
	}
	return loadDefaults(v)
}

func loadDefaults(v *viper.Viper) (Config, error) {
	for k, def := range keys {
		v.SetDefault(k, def)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to bind config: %w", err)
	}
	c.CacheTTL = time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is empty; trusting X-User-ID headers")
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
