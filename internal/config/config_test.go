package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 100 {
		t.Errorf("chunking defaults = %d/%d, want 500/100", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("model default = %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.MaxRetries != 3 || cfg.Embedding.Concurrency != 4 {
		t.Errorf("retry/concurrency defaults = %d/%d, want 3/4",
			cfg.Embedding.MaxRetries, cfg.Embedding.Concurrency)
	}
	if cfg.Database.Path != "knowledge_base.db" {
		t.Errorf("database path default = %q", cfg.Database.Path)
	}
	if cfg.Embedding.APIKey != "secret" {
		t.Errorf("api key not read from environment")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("API_KEY", "secret")

	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	data := `
chunking:
  size: 200
  overlap: 0
embedding:
  model: custom-model
  concurrency: 8
corpus:
  discourse_json: posts.json
  exclude:
    - "draft-*.md"
text_index:
  disabled: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chunking.Size != 200 || cfg.Chunking.Overlap != 0 {
		t.Errorf("chunking = %d/%d, want 200/0", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Embedding.Model != "custom-model" || cfg.Embedding.Concurrency != 8 {
		t.Errorf("embedding overrides not applied: %+v", cfg.Embedding)
	}
	// Unset fields still get defaults.
	if cfg.Embedding.MaxRetries != 3 {
		t.Errorf("max retries = %d, want default 3", cfg.Embedding.MaxRetries)
	}
	if cfg.Corpus.DiscourseJSON != "posts.json" || cfg.Corpus.PagesDir != "tds_pages_md" {
		t.Errorf("corpus config mismatch: %+v", cfg.Corpus)
	}
	if !cfg.TextIndex.Disabled {
		t.Error("text_index.disabled not applied")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	chdir(t, t.TempDir())

	if _, err := Load(""); err == nil {
		t.Fatal("expected fatal configuration error without API_KEY")
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("API_KEY", "secret")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for explicitly named missing config file")
	}
}

func TestValidateChunking(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid", size: 500, overlap: 100, wantErr: false},
		{name: "zero overlap", size: 500, overlap: 0, wantErr: false},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 150, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Chunking:  ChunkingConfig{Size: tt.size, Overlap: tt.overlap},
				Embedding: EmbeddingConfig{APIKey: "k", MaxRetries: 3, Concurrency: 4},
			}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
