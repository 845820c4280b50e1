package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "./data", cfg.Corpus.DataDir)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 512, cfg.Embedding.Dims)
	assert.Equal(t, "gpt-4o-mini", cfg.Generate.Model)
	assert.Equal(t, float32(0.7), cfg.Generate.Temperature)
	assert.Equal(t, 1200, cfg.Generate.MaxTokens)
	assert.Equal(t, 10, cfg.Generate.TimeoutSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CORPUS_DATA_DIR", "/srv/corpus")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	// One key feeds both providers unless they are configured separately.
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-test", cfg.Generate.APIKey)
	assert.Equal(t, "/srv/corpus", cfg.Corpus.DataDir)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadExplicitKeyWinsOverEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("generate.api_key", "sk-explicit")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-explicit", cfg.Generate.APIKey)
	assert.Equal(t, "sk-env", cfg.Embedding.APIKey)
}
