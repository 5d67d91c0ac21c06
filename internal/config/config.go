// Package config loads the application configuration from file and
// environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Chroma    ChromaConfig    `mapstructure:"chroma"`
	Embedding EmbeddingConfig `mapstructure:"embeddings"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Log       LogConfig       `mapstructure:"log"`
}

// ChromaConfig holds ChromaDB related configuration.
type ChromaConfig struct {
	URL        string `mapstructure:"url"`
	Collection string `mapstructure:"collection"`
}

// EmbeddingConfig holds embedding related configuration.
type EmbeddingConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	BatchSize int    `mapstructure:"batch_size"`
}

// ChunkingConfig holds segmenter sizing, in characters.
type ChunkingConfig struct {
	MinChunkSize   int  `mapstructure:"min_chunk_size"`
	MaxChunkSize   int  `mapstructure:"max_chunk_size"`
	OverlapSize    int  `mapstructure:"overlap_size"`
	StructureAware bool `mapstructure:"structure_aware"`
}

// RetrievalConfig holds the retrieval filter thresholds.
type RetrievalConfig struct {
	TopKResults                 int     `mapstructure:"top_k_results"`
	SimilarityThreshold         float64 `mapstructure:"similarity_threshold"`
	HighSimilarityThreshold     float64 `mapstructure:"high_similarity_threshold"`
	ModerateSimilarityThreshold float64 `mapstructure:"moderate_similarity_threshold"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig loads configuration from an optional file and from
// environment variables. OPENAI_API_KEY overrides embeddings.api_key.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	if err := v.BindEnv("embeddings.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("chroma.url", "http://localhost:8000")
	v.SetDefault("chroma.collection", "documents")

	// Embedding defaults
	v.SetDefault("embeddings.model", "text-embedding-3-small")
	v.SetDefault("embeddings.batch_size", 32)
	v.SetDefault("embeddings.base_url", "")

	// Chunking defaults
	v.SetDefault("chunking.min_chunk_size", 400)
	v.SetDefault("chunking.max_chunk_size", 1200)
	v.SetDefault("chunking.overlap_size", 200)
	v.SetDefault("chunking.structure_aware", false)

	// Retrieval defaults
	v.SetDefault("retrieval.top_k_results", 3)
	v.SetDefault("retrieval.similarity_threshold", 0.45)
	v.SetDefault("retrieval.high_similarity_threshold", 0.75)
	v.SetDefault("retrieval.moderate_similarity_threshold", 0.60)

	v.SetDefault("log.level", "info")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Chroma.URL == "" {
		return fmt.Errorf("chroma url is required")
	}
	if c.Chroma.Collection == "" {
		return fmt.Errorf("chroma collection is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding model cannot be empty")
	}
	if c.Chunking.MinChunkSize <= 0 || c.Chunking.MaxChunkSize <= c.Chunking.MinChunkSize {
		return fmt.Errorf("invalid chunk sizing: min=%d max=%d", c.Chunking.MinChunkSize, c.Chunking.MaxChunkSize)
	}
	if c.Chunking.OverlapSize < 0 || c.Chunking.OverlapSize >= c.Chunking.MaxChunkSize {
		return fmt.Errorf("invalid overlap size: %d", c.Chunking.OverlapSize)
	}
	if c.Retrieval.TopKResults <= 0 {
		return fmt.Errorf("top_k_results must be positive")
	}
	if c.Retrieval.SimilarityThreshold < 0 || c.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1]")
	}
	return nil
}
