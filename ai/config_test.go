package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434", cfg.Host)
	assert.Equal(t, "llama3.2", cfg.ChatModel)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 0.7, cfg.Temperature)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434", cfg.Host)
		assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080"))

		assert.Equal(t, "http://custom:8080", cfg.Host)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithChatModel("qwen2.5:3b"),
			WithEmbeddingModel("embeddinggemma"),
		)

		assert.Equal(t, "qwen2.5:3b", cfg.ChatModel)
		assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	})

	t.Run("with custom temperature", func(t *testing.T) {
		cfg := NewConfig(WithTemperature(0.2))

		assert.Equal(t, 0.2, cfg.Temperature)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "bare host unchanged", host: "http://localhost:11434", want: "http://localhost:11434"},
		{name: "trailing slash stripped", host: "http://localhost:11434/", want: "http://localhost:11434"},
		{name: "v1 suffix stripped", host: "http://localhost:11434/v1", want: "http://localhost:11434"},
		{name: "v1 with trailing slash stripped", host: "http://localhost:11434/v1/", want: "http://localhost:11434"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithHost(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing chat model", func(t *testing.T) {
		cfg := NewConfig(WithChatModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("temperature out of range", func(t *testing.T) {
		cfg := NewConfig(WithTemperature(3.5))
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434", cfg.Host)
	})
}
