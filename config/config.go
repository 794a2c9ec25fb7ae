package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Session   SessionConfig   `mapstructure:"session"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Listen   string `mapstructure:"listen"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// LLMConfig contains the generative backend configuration. An empty APIKey
// means no backend is configured and synthesis stays on its fallback path;
// it is not a startup error.
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"` // openai, gemini
	APIKey          string        `mapstructure:"api_key"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// WebSearchConfig contains web search provider settings
type WebSearchConfig struct {
	Provider   string        `mapstructure:"provider"` // serper, brave
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func (w WebSearchConfig) Validate() error {
	if strings.TrimSpace(w.APIKey) == "" {
		return fmt.Errorf("web_search.api_key is required (set MEDRESEARCH_WEB_SEARCH_API_KEY)")
	}
	if w.Provider == "" {
		return fmt.Errorf("web_search.provider is required")
	}
	return nil
}

// QdrantConfig contains vector store connection settings
type QdrantConfig struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	Dimension int           `mapstructure:"dimension"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func (q QdrantConfig) Validate() error {
	if strings.TrimSpace(q.URL) == "" {
		return fmt.Errorf("qdrant.url is required")
	}
	if q.Dimension <= 0 {
		return fmt.Errorf("qdrant.dimension must be > 0")
	}
	return nil
}

// SessionConfig selects the session history backend
type SessionConfig struct {
	Backend string        `mapstructure:"backend"` // inmemory, redis
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

func (s SessionConfig) Validate() error {
	switch s.Backend {
	case "", "inmemory":
		return nil
	case "redis":
		if strings.TrimSpace(s.Redis.Host) == "" || strings.TrimSpace(s.Redis.Port) == "" {
			return fmt.Errorf("session.redis.host/port required when backend is redis")
		}
		return nil
	default:
		return fmt.Errorf("session.backend must be inmemory or redis, got %q", s.Backend)
	}
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UploadsConfig contains upload staging settings
type UploadsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig loads config from file, with MEDRESEARCH_* env overrides.
// There are no default credentials: API keys come from the file or the
// environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.listen", ":2000")
	v.SetDefault("general.log_level", "info")
	// Credential keys default to empty so env-only values are picked up;
	// there is deliberately no usable default for any of them.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("web_search.api_key", "")
	v.SetDefault("qdrant.api_key", "")
	v.SetDefault("session.redis.host", "")
	v.SetDefault("session.redis.port", "")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.completion_model", "gemini-1.5-flash")
	// Matches the default provider; openai setups override this together
	// with llm.provider.
	v.SetDefault("llm.embedding_model", "text-embedding-004")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("web_search.provider", "serper")
	v.SetDefault("web_search.max_results", 10)
	v.SetDefault("web_search.timeout", 30*time.Second)
	v.SetDefault("qdrant.url", "http://localhost:6333")
	v.SetDefault("qdrant.dimension", 384)
	v.SetDefault("qdrant.timeout", 15*time.Second)
	v.SetDefault("session.backend", "inmemory")
	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("uploads.dir", "uploads")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("MEDRESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when the environment carries the settings.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.WebSearch.Validate(); err != nil {
		return nil, err
	}
	if err := config.Qdrant.Validate(); err != nil {
		return nil, err
	}
	if err := config.Session.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
