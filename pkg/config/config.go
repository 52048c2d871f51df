// Package config loads the runtime configuration: defaults, then an optional
// YAML file, then ONTIME_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ontime-app/ontime/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	EnvironmentPrefix = "ONTIME_"
	ConfigFileEnv     = "ONTIME_CONFIG"
)

type Config struct {
	TAGO    TAGOConfig    `yaml:"tago"`
	Search  SearchConfig  `yaml:"search"`
	Refresh RefreshConfig `yaml:"refresh"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Redis   RedisConfig   `yaml:"redis"`
	MongoDB MongoDBConfig `yaml:"mongodb"`
	API     APIConfig     `yaml:"api"`
}

type TAGOConfig struct {
	ServiceKey string        `yaml:"service_key" validate:"required"`
	BaseURL    string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout    time.Duration `yaml:"timeout" validate:"min=100ms"`

	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`

	StationPageSize int `yaml:"station_page_size" validate:"gte=1,lte=1000"`
	RoutePageSize   int `yaml:"route_page_size" validate:"gte=1,lte=1000"`
	ArrivalPageSize int `yaml:"arrival_page_size" validate:"gte=1,lte=1000"`
}

type SearchConfig struct {
	DebounceDelay    time.Duration `yaml:"debounce_delay" validate:"min=0s"`
	MinQueryLength   int           `yaml:"min_query_length" validate:"gte=1"`
	Concurrency      int           `yaml:"concurrency" validate:"gte=1,lte=64"`
	ArrivalsPerRoute int           `yaml:"arrivals_per_route" validate:"gte=1"`
}

type RefreshConfig struct {
	Interval     time.Duration `yaml:"interval" validate:"min=1s"`
	RouteTimeout time.Duration `yaml:"route_timeout" validate:"min=100ms"`
	Concurrency  int           `yaml:"concurrency" validate:"gte=1,lte=64"`
	MaxRetries   int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryBackoff time.Duration `yaml:"retry_backoff" validate:"min=0s"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory sqlite redis mongodb"`
	Path    string `yaml:"path" validate:"required_if=Backend sqlite"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend" validate:"oneof=memory redis"`
	SessionLength time.Duration `yaml:"session_length" validate:"min=1m"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database" validate:"gte=0"`
	Prefix   string `yaml:"prefix"`
}

type MongoDBConfig struct {
	Connection string `yaml:"connection"`
	Database   string `yaml:"database"`
}

type APIConfig struct {
	ListenAddress string `yaml:"listen_address" validate:"required"`
}

// Default returns the configuration the mobile client shipped with.
func Default() *Config {
	return &Config{
		TAGO: TAGOConfig{
			Timeout:         5 * time.Second,
			StationPageSize: 20,
			RoutePageSize:   50,
			ArrivalPageSize: 20,
		},
		Search: SearchConfig{
			DebounceDelay:    300 * time.Millisecond,
			MinQueryLength:   2,
			Concurrency:      4,
			ArrivalsPerRoute: 2,
		},
		Refresh: RefreshConfig{
			Interval:     30 * time.Second,
			RouteTimeout: 5 * time.Second,
			Concurrency:  4,
			MaxRetries:   2,
			RetryBackoff: 250 * time.Millisecond,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "ontime.db",
		},
		Cache: CacheConfig{
			Backend:       "memory",
			SessionLength: 12 * time.Hour,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		MongoDB: MongoDBConfig{
			Connection: "mongodb://localhost:27017/",
			Database:   "ontime",
		},
		API: APIConfig{
			ListenAddress: ":8080",
		},
	}
}

// Load builds the configuration. path may be empty, in which case the file
// named by ONTIME_CONFIG is used if set.
func Load(path string) (*Config, error) {
	config := Default()
	env := util.GetEnvironmentVariables()

	if path == "" {
		path = env[ConfigFileEnv]
	}
	if path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironment(util.GetPrefixedEnvironmentVariables(EnvironmentPrefix)); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unable to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnvironment overrides fields from variables already stripped of the
// ONTIME_ prefix.
func (c *Config) ApplyEnvironment(env map[string]string) error {
	texts := map[string]*string{
		"TAGO_SERVICE_KEY":   &c.TAGO.ServiceKey,
		"TAGO_BASE_URL":      &c.TAGO.BaseURL,
		"STORAGE_BACKEND":    &c.Storage.Backend,
		"STORAGE_PATH":       &c.Storage.Path,
		"CACHE_BACKEND":      &c.Cache.Backend,
		"REDIS_ADDRESS":      &c.Redis.Address,
		"REDIS_PASSWORD":     &c.Redis.Password,
		"REDIS_PREFIX":       &c.Redis.Prefix,
		"MONGODB_CONNECTION": &c.MongoDB.Connection,
		"MONGODB_DATABASE":   &c.MongoDB.Database,
		"API_LISTEN":         &c.API.ListenAddress,
	}
	for name, field := range texts {
		if value, ok := env[name]; ok {
			*field = value
		}
	}

	durations := map[string]*time.Duration{
		"TAGO_TIMEOUT":          &c.TAGO.Timeout,
		"SEARCH_DEBOUNCE":       &c.Search.DebounceDelay,
		"REFRESH_INTERVAL":      &c.Refresh.Interval,
		"REFRESH_ROUTE_TIMEOUT": &c.Refresh.RouteTimeout,
		"CACHE_SESSION_LENGTH":  &c.Cache.SessionLength,
	}
	var errs []error
	for name, field := range durations {
		value, ok := env[name]
		if !ok {
			continue
		}
		duration, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvironmentPrefix, name, err))
			continue
		}
		*field = duration
	}

	ints := map[string]*int{
		"REDIS_DATABASE":      &c.Redis.Database,
		"REFRESH_CONCURRENCY": &c.Refresh.Concurrency,
		"REFRESH_MAX_RETRIES": &c.Refresh.MaxRetries,
		"TAGO_BURST":          &c.TAGO.Burst,
	}
	for name, field := range ints {
		value, ok := env[name]
		if !ok {
			continue
		}
		number, err := strconv.Atoi(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvironmentPrefix, name, err))
			continue
		}
		*field = number
	}

	if value, ok := env["TAGO_RPS"]; ok {
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTAGO_RPS: %w", EnvironmentPrefix, err))
		} else {
			c.TAGO.RequestsPerSecond = rps
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Storage.Backend == "redis" && c.Redis.Address == "" {
		return errors.New("invalid configuration: redis storage requires redis.address")
	}
	if (c.Storage.Backend == "mongodb") && c.MongoDB.Connection == "" {
		return errors.New("invalid configuration: mongodb storage requires mongodb.connection")
	}

	return nil
}
