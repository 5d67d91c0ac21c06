package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Chroma.URL)
	assert.Equal(t, "documents", cfg.Chroma.Collection)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 32, cfg.Embedding.BatchSize)
	assert.Equal(t, 400, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 1200, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 200, cfg.Chunking.OverlapSize)
	assert.False(t, cfg.Chunking.StructureAware)
	assert.Equal(t, 3, cfg.Retrieval.TopKResults)
	assert.Equal(t, 0.45, cfg.Retrieval.SimilarityThreshold)
	assert.Equal(t, 0.75, cfg.Retrieval.HighSimilarityThreshold)
	assert.Equal(t, 0.60, cfg.Retrieval.ModerateSimilarityThreshold)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
chroma:
  url: http://chroma.internal:9000
  collection: articles
chunking:
  max_chunk_size: 800
  structure_aware: true
retrieval:
  top_k_results: 5
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://chroma.internal:9000", cfg.Chroma.URL)
	assert.Equal(t, "articles", cfg.Chroma.Collection)
	assert.Equal(t, 800, cfg.Chunking.MaxChunkSize)
	assert.True(t, cfg.Chunking.StructureAware)
	assert.Equal(t, 5, cfg.Retrieval.TopKResults)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, 400, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 0.45, cfg.Retrieval.SimilarityThreshold)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key", cfg.Embedding.APIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Chroma.URL = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Chroma.Collection = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Embedding.Model = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Chunking.MinChunkSize = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Chunking.MaxChunkSize = cfg.Chunking.MinChunkSize
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Chunking.OverlapSize = cfg.Chunking.MaxChunkSize
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Retrieval.TopKResults = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Retrieval.SimilarityThreshold = 1.5
	assert.Error(t, cfg.Validate())
}
