package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "SURVEYRESPONDER"
	dotEnvFile = ".env"
)

type Config struct {
	Logger     LoggerConfig
	LLM        LLMConfig
	Ollama     OllamaConfig
	OpenAI     OpenAIConfig
	Generation GenerationConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Archive    ArchiveConfig
}

type LoggerConfig struct {
	Level string
	Env   string
}

type LLMConfig struct {
	Provider string
	Timeout  time.Duration
}

type OllamaConfig struct {
	ServerURL string
	Model     string
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type GenerationConfig struct {
	MaxAttempts int
	Concurrency int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL time.Duration
}

// ArchiveConfig enables the Oracle results archive when DSN is set.
type ArchiveConfig struct {
	DSN string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("ollama.server_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.1:latest")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.concurrency", 1)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("archive.dsn", "")
}

// LoadConfig reads configuration from an optional YAML file and the environment.
// An empty configFile searches "." and "./config" for config.yaml; a missing
// file is not an error in that case. Variables from ./.env are added to the
// environment first, without overriding ones already set.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(v.GetString("llm.provider")),
			Timeout:  v.GetDuration("llm.timeout"),
		},
		Ollama: OllamaConfig{
			ServerURL: v.GetString("ollama.server_url"),
			Model:     v.GetString("ollama.model"),
		},
		OpenAI: OpenAIConfig{
			BaseURL: v.GetString("openai.base_url"),
			APIKey:  v.GetString("openai.api_key"),
			Model:   v.GetString("openai.model"),
		},
		Generation: GenerationConfig{
			MaxAttempts: v.GetInt("generation.max_attempts"),
			Concurrency: v.GetInt("generation.concurrency"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			TTL: v.GetDuration("cache.ttl"),
		},
		Archive: ArchiveConfig{
			DSN: v.GetString("archive.dsn"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultModel returns the configured model of the selected provider.
func (c *Config) DefaultModel() string {
	if c.LLM.Provider == "openai" {
		return c.OpenAI.Model
	}
	return c.Ollama.Model
}

// Validate checks values that would otherwise fail late inside a run.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unsupported llm.provider %q (want ollama or openai)", c.LLM.Provider)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Generation.Concurrency < 1 {
		return fmt.Errorf("generation.concurrency must be at least 1, got %d", c.Generation.Concurrency)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	return nil
}
