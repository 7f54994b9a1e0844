// Package config loads the build configuration from an optional YAML
// file plus the embedding credential from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no -config flag is given.
const DefaultPath = "kb.yaml"

// Config holds the application configuration
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
	Database  DatabaseConfig  `yaml:"database,omitempty"`
	Corpus    CorpusConfig    `yaml:"corpus,omitempty"`
	TextIndex TextIndexConfig `yaml:"text_index,omitempty"`
}

// ChunkingConfig controls how document bodies are split.
type ChunkingConfig struct {
	Size    int `yaml:"size,omitempty"`
	Overlap int `yaml:"overlap,omitempty"`
}

// EmbeddingConfig holds embedding service configuration. The credential
// is never read from YAML: it comes from the API_KEY environment
// variable (a .env file in the working directory is honored).
type EmbeddingConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	Model       string `yaml:"model,omitempty"`
	MaxRetries  int    `yaml:"max_retries,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`

	APIKey string `yaml:"-"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// CorpusConfig names the two input corpora.
type CorpusConfig struct {
	DiscourseJSON string   `yaml:"discourse_json,omitempty"`
	PagesDir      string   `yaml:"pages_dir,omitempty"`
	PagesMetadata string   `yaml:"pages_metadata,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty"`
}

// TextIndexConfig controls the supplementary full-text chunk index.
type TextIndexConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	Dir      string `yaml:"dir,omitempty"`
}

// Load reads the config file at path, or falls back to defaults when
// path is empty and no kb.yaml exists in the working directory. The
// API_KEY environment variable is required either way.
func Load(path string) (*Config, error) {
	// Environment variables already set take precedence over .env values.
	_ = godotenv.Load()

	cfg := &Config{}
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.Embedding.APIKey = os.Getenv("API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Overlap zero is a valid setting, so only default it alongside size.
	if c.Chunking.Size == 0 && c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = 100
	}
	if c.Chunking.Size == 0 {
		c.Chunking.Size = 500
	}
	if c.Embedding.Endpoint == "" {
		c.Embedding.Endpoint = "https://aipipe.org/openai/v1/embeddings"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.MaxRetries == 0 {
		c.Embedding.MaxRetries = 3
	}
	if c.Embedding.Concurrency == 0 {
		c.Embedding.Concurrency = 4
	}
	if c.Database.Path == "" {
		c.Database.Path = "knowledge_base.db"
	}
	if c.Corpus.DiscourseJSON == "" {
		c.Corpus.DiscourseJSON = "discourse_posts.json"
	}
	if c.Corpus.PagesDir == "" {
		c.Corpus.PagesDir = "tds_pages_md"
	}
	if c.Corpus.PagesMetadata == "" {
		c.Corpus.PagesMetadata = "metadata.json"
	}
	if c.TextIndex.Dir == "" {
		c.TextIndex.Dir = "kb_text_index"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable not set")
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must not be negative, got %d", c.Chunking.Overlap)
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap %d must be smaller than chunking.size %d",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Embedding.MaxRetries <= 0 {
		return fmt.Errorf("embedding.max_retries must be positive, got %d", c.Embedding.MaxRetries)
	}
	if c.Embedding.Concurrency <= 0 {
		return fmt.Errorf("embedding.concurrency must be positive, got %d", c.Embedding.Concurrency)
	}
	return nil
}
