// Package config loads the service configuration from an optional YAML
// file, then applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "secret"

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type Config struct {
	Env       string          `yaml:"env"`
	Port      string          `yaml:"port"`
	DBShards  []string        `yaml:"db_shards"` // first shard also holds users and items
	RedisAddr string          `yaml:"redis_addr"`
	JWTSecret string          `yaml:"jwt_secret"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Admin     AdminConfig     `yaml:"admin"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

func defaultConfig() *Config {
	return &Config{
		Env:       "development",
		Port:      "8080",
		DBShards:  []string{"root:@tcp(127.0.0.1:3306)/consignment-db?parseTime=true"},
		RedisAddr: "localhost:6379",
		JWTSecret: defaultJWTSecret,
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092", "localhost:9093", "localhost:9094"},
			Topic:   "consignment-orders",
			GroupID: "consignment-dashboard-group",
		},
		RateLimit: RateLimitConfig{PerSecond: 5, Burst: 10},
	}
}

// Load reads the config at path. A missing file yields the defaults.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("ENV"); v != "" {
		cfg.Env = v
	}
	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("DB_SHARDS"); v != "" {
		cfg.DBShards = splitList(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := getenv("ADMIN_EMAIL"); v != "" {
		cfg.Admin.Email = v
	}
	if v := getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := getenv("RATE_LIMIT_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_SECOND: %w", err)
		}
		cfg.RateLimit.PerSecond = f
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.DBShards) == 0 {
		return errors.New("config: at least one database shard is required")
	}
	if c.Env == "production" && c.JWTSecret == defaultJWTSecret {
		return errors.New("config: jwt_secret must be set in production")
	}
	return nil
}

// IsTest reports whether external brokers should be skipped.
func (c *Config) IsTest() bool { return c.Env == "test" }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
