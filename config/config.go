package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Embedding EmbeddingConfig
	Matching  MatchingConfig
	Retry     RetryConfig
	Workers   WorkersConfig
	Cache     CacheConfig
	Output    OutputConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmbeddingConfig holds embedding oracle configuration
type EmbeddingConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Dimensions        int           `mapstructure:"dimensions"`
	BatchSize         int           `mapstructure:"batch_size"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// MatchingConfig holds matcher configuration
type MatchingConfig struct {
	SimilarityThreshold  float64  `mapstructure:"similarity_threshold"`
	ScrapedCapPerCluster int      `mapstructure:"scraped_cap_per_cluster"`
	AmazonURLMarkers     []string `mapstructure:"amazon_url_markers"`
}

// RetryConfig holds the embedding retry envelope
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BackoffMin  time.Duration `mapstructure:"backoff_min"`
	BackoffMax  time.Duration `mapstructure:"backoff_max"`
}

// WorkersConfig holds the cluster task pool size
type WorkersConfig struct {
	Max int `mapstructure:"max"`
}

// CacheConfig holds embedding-cache configuration
type CacheConfig struct {
	Type      string        `mapstructure:"type"` // "memory", "redis" or "none"
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// OutputConfig holds record sink configuration
type OutputConfig struct {
	Type        string `mapstructure:"type"` // "jsonl" or "postgres"
	Dir         string `mapstructure:"dir"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Embedding defaults
	v.SetDefault("embedding.base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding.model", "text-embedding-3-large")
	v.SetDefault("embedding.dimensions", 0) // derived from model when 0
	v.SetDefault("embedding.batch_size", 1000)
	v.SetDefault("embedding.timeout", "180s")
	v.SetDefault("embedding.requests_per_second", 3)

	// Matching defaults
	v.SetDefault("matching.similarity_threshold", 0.3)
	v.SetDefault("matching.scraped_cap_per_cluster", 100)
	v.SetDefault("matching.amazon_url_markers", []string{"amazon"})

	// Retry defaults
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.backoff_min", "1s")
	v.SetDefault("retry.backoff_max", "60s")

	// Worker pool default is small, tied to the embedding API's
	// concurrency allowance
	v.SetDefault("workers.max", 4)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "168h")

	// Output defaults
	v.SetDefault("output.type", "jsonl")
	v.SetDefault("output.dir", "./out")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Embedding.APIKey == "" {
		return fmt.Errorf("embedding API key is required (set PRICELENS_EMBEDDING_API_KEY)")
	}

	if config.Matching.SimilarityThreshold <= -1 || config.Matching.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (-1, 1], got: %v", config.Matching.SimilarityThreshold)
	}

	switch config.Cache.Type {
	case "memory", "none":
	case "redis":
		if config.Cache.RedisAddr == "" {
			return fmt.Errorf("Redis address is required when cache type is 'redis'")
		}
	default:
		return fmt.Errorf("cache type must be 'memory', 'redis' or 'none', got: %s", config.Cache.Type)
	}

	switch config.Output.Type {
	case "jsonl":
		if config.Output.Dir == "" {
			return fmt.Errorf("output dir is required when output type is 'jsonl'")
		}
	case "postgres":
		if config.Output.PostgresDSN == "" {
			return fmt.Errorf("Postgres DSN is required when output type is 'postgres'")
		}
	default:
		return fmt.Errorf("output type must be 'jsonl' or 'postgres', got: %s", config.Output.Type)
	}

	if config.Workers.Max < 1 {
		return fmt.Errorf("workers.max must be at least 1, got: %d", config.Workers.Max)
	}

	return nil
}
