package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string         `mapstructure:"port"`
	AIEndpoint     string         `mapstructure:"ai_endpoint"`
	Model          string         `mapstructure:"model"`
	EmbeddingModel string         `mapstructure:"embedding_model"`
	OpenAIAPIKey   string         `mapstructure:"OPENAI_API_KEY"`
	MongoDBURI     string         `mapstructure:"MONGODB_URI"`
	Database       string         `mapstructure:"database"`
	LogLevel       string         `mapstructure:"log_level"`
	MaxUploadBytes int64          `mapstructure:"max_upload_bytes"`
	Document       DocumentConfig `mapstructure:"document"`
	Provider       ProviderConfig `mapstructure:"provider"`
	Agent          AgentConfig    `mapstructure:"agent"`
}

type DocumentConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	TopK         int `mapstructure:"top_k"`
}

// ProviderConfig bounds every call to the embedding/completion provider.
type ProviderConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type AgentConfig struct {
	MaxIterations int           `mapstructure:"max_iterations"`
	EvalTimeout   time.Duration `mapstructure:"eval_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("ai_endpoint", "https://api.openai.com/v1")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("database", "docqa")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_bytes", 20<<20)

	v.SetDefault("document.chunk_size", 500)
	v.SetDefault("document.chunk_overlap", 200)
	v.SetDefault("document.top_k", 4)

	v.SetDefault("provider.timeout", 60*time.Second)
	v.SetDefault("provider.retries", 2)

	v.SetDefault("agent.max_iterations", 10)
	v.SetDefault("agent.eval_timeout", 5*time.Second)
}

// LoadConfig reads configPath if it exists and overlays environment
// variables. A missing file is not an error; everything can come from env.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set up Viper to read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("MONGODB_URI", "MONGODB_URI", "MONGO_DETAILS")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// Validate checks what every command needs: provider credentials and a sane
// chunking setup.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.Document.ChunkSize <= 0 {
		return fmt.Errorf("document.chunk_size must be positive, got %d", c.Document.ChunkSize)
	}
	if c.Document.ChunkOverlap < 0 || c.Document.ChunkOverlap >= c.Document.ChunkSize {
		return fmt.Errorf("document.chunk_overlap must be in [0, %d), got %d", c.Document.ChunkSize, c.Document.ChunkOverlap)
	}
	if c.Document.TopK <= 0 {
		return fmt.Errorf("document.top_k must be positive, got %d", c.Document.TopK)
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	return nil
}

// ValidateStorage is required only by commands that persist results.
func (c *Config) ValidateStorage() error {
	if c.MongoDBURI == "" {
		return errors.New("MONGODB_URI (or MONGO_DETAILS) is required")
	}
	if c.Database == "" {
		return errors.New("database name is required")
	}
	return nil
}
