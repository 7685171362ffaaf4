package petango

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Config is the file or environment form of the client options.
type Config struct {
	AuthKey          string            `yaml:"auth_key" validate:"required"`
	BaseURL          string            `yaml:"base_url" validate:"omitempty,url,startswith=http"`
	CacheTTL         time.Duration     `yaml:"cache_ttl" validate:"gte=0"`
	Timeout          time.Duration     `yaml:"timeout" validate:"gte=0"`
	Headers          map[string]string `yaml:"headers"`
	CoalesceRequests bool              `yaml:"coalesce_requests"`
	Redis            *RedisConfig      `yaml:"redis" validate:"omitempty"`
}

// RedisConfig selects a Redis cache instead of the in-memory one.
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix"`
}

// LoadConfigFile reads a YAML config, expanding $VARS from the environment.
func LoadConfigFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := new(Config)
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(content))), cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFromEnv builds a Config from PETANGO_* variables.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		AuthKey: os.Getenv("PETANGO_AUTH_KEY"),
		BaseURL: os.Getenv("PETANGO_BASE_URL"),
	}

	var err error
	if cfg.CacheTTL, err = envDuration("PETANGO_CACHE_TTL"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = envDuration("PETANGO_TIMEOUT"); err != nil {
		return nil, err
	}
	if v := os.Getenv("PETANGO_COALESCE_REQUESTS"); v != "" {
		if cfg.CoalesceRequests, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("PETANGO_COALESCE_REQUESTS: %w", err)
		}
	}
	if addr := os.Getenv("PETANGO_REDIS_ADDR"); addr != "" {
		cfg.Redis = &RedisConfig{
			Addr:     addr,
			Password: os.Getenv("PETANGO_REDIS_PASSWORD"),
			Prefix:   os.Getenv("PETANGO_REDIS_PREFIX"),
		}
		if db := os.Getenv("PETANGO_REDIS_DB"); db != "" {
			if cfg.Redis.DB, err = strconv.Atoi(db); err != nil {
				return nil, fmt.Errorf("PETANGO_REDIS_DB: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envDuration(name string) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// Validate checks the config, naming fields by their yaml keys.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Options converts the config to client options. Zero values keep defaults.
func (c *Config) Options() []Option {
	var opts []Option
	if c.BaseURL != "" {
		opts = append(opts, WithBaseURL(c.BaseURL))
	}
	if c.CacheTTL > 0 {
		opts = append(opts, WithCacheTTL(c.CacheTTL))
	}
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	for k, v := range c.Headers {
		opts = append(opts, WithHeader(k, v))
	}
	if c.CoalesceRequests {
		opts = append(opts, WithRequestCoalescing())
	}
	if c.Redis != nil {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		opts = append(opts, WithCache(NewRedisCache(rdb, c.Redis.Prefix)))
	}
	return opts
}

// NewFromConfig builds a client from cfg; extra options are applied last.
func NewFromConfig(cfg *Config, extra ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := New(cfg.AuthKey, append(cfg.Options(), extra...)...)
	if err := client.ValidationError(); err != nil {
		return nil, err
	}
	return client, nil
}

// LoadEnv wraps godotenv.Load, expanding a leading ~ to $HOME.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if strings.HasPrefix(file, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			file = strings.Replace(file, "~", home, 1)
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}
