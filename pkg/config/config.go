// Package config loads application configuration from a yaml file and
// environment variables via viper.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Generate  GenerateConfig  `mapstructure:"generate"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// CorpusConfig locates the pre-built corpus artifacts.
type CorpusConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// EmbeddingConfig holds embedding provider configuration. Model and dims
// default to what the search index declares.
type EmbeddingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Dims    int    `mapstructure:"dims"`
}

// GenerateConfig holds generative model provider configuration.
type GenerateConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Load loads configuration from viper's current state, applying defaults
// and environment overrides.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)
	return config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("corpus.data_dir", "./data")

	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dims", 512)

	viper.SetDefault("generate.model", "gpt-4o-mini")
	viper.SetDefault("generate.temperature", 0.7)
	viper.SetDefault("generate.max_tokens", 1200)
	viper.SetDefault("generate.timeout_seconds", 10)
}

func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
		if config.Generate.APIKey == "" {
			config.Generate.APIKey = apiKey
		}
	}
	if dir := os.Getenv("CORPUS_DATA_DIR"); dir != "" {
		config.Corpus.DataDir = dir
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
		config.Server.Port = viper.GetInt("server.port")
	}
}
