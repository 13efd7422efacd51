package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source types.
const (
	SourceHTTP  = "http"
	SourceRedis = "redis"
	SourceSQL   = "sql"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Sources []Source `yaml:"sources"`
	Redis   struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	SQL struct {
		Driver   string        `yaml:"driver"`
		DSN      string        `yaml:"dsn"`
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Database string        `yaml:"database"`
		User     string        `yaml:"user"`
		Password string        `yaml:"password"`
		UseHTTP  bool          `yaml:"use_http"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"sql"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	Warmup struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule"`
	} `yaml:"warmup"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"ratelimit"`
}

// Source describes one upstream report feed. PriceBlock pins the field holding
// the price-analysis block; when empty the block is detected.
type Source struct {
	Name       string        `yaml:"name"`
	Type       string        `yaml:"type"`
	URL        string        `yaml:"url"`
	Key        string        `yaml:"key"`
	Table      string        `yaml:"table"`
	DateCol    string        `yaml:"date_column"`
	PriceBlock string        `yaml:"price_block"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Load reads, defaults and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables
// before validating.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.SQL.Driver == "" {
		c.SQL.Driver = "clickhouse"
	}
	if c.Warmup.Schedule == "" {
		c.Warmup.Schedule = "@every 14m"
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	for i := range c.Sources {
		if c.Sources[i].Type == "" {
			c.Sources[i].Type = SourceHTTP
		}
		if c.Sources[i].DateCol == "" {
			c.Sources[i].DateCol = "date"
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources cannot be empty")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sources[%d].name %q is duplicated", i, s.Name)
		}
		seen[s.Name] = true

		switch s.Type {
		case SourceHTTP:
			if s.URL == "" {
				return fmt.Errorf("source %q: url is required", s.Name)
			}
		case SourceRedis:
			if s.Key == "" {
				return fmt.Errorf("source %q: key is required", s.Name)
			}
			if c.Redis.Addr == "" {
				return fmt.Errorf("source %q: redis.addr is required", s.Name)
			}
		case SourceSQL:
			if s.Table == "" {
				return fmt.Errorf("source %q: table is required", s.Name)
			}
		default:
			return fmt.Errorf("source %q: type must be 'http', 'redis' or 'sql', got '%s'", s.Name, s.Type)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}
	return nil
}

// HasSourceType reports whether any source uses the given type.
func (c *Config) HasSourceType(typ string) bool {
	for _, s := range c.Sources {
		if s.Type == typ {
			return true
		}
	}
	return false
}
