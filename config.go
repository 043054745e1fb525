package lexgov

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lexgov/retrieval"
)

// Config holds all configuration for the lexgov engine.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.lexgov/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "lexgov".
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database and index are created when
	// DBPath/IndexPath are not explicitly set. Options: "home" (default)
	// uses ~/.lexgov/, "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// IndexPath is the base path for the vector index artifacts
	// (<IndexPath>.bin and <IndexPath>.meta.json). If empty, defaults to
	// <DBName>.index next to the database.
	IndexPath string `json:"index_path" yaml:"index_path"`

	// Statute is the statute code prefixed to every chunk ID.
	Statute string `json:"statute" yaml:"statute"`

	// LLM providers
	Chat      LLMConfig `json:"chat" yaml:"chat"`
	Embedding LLMConfig `json:"embedding" yaml:"embedding"`

	// Chunking
	MaxChunkChars int `json:"max_chunk_chars" yaml:"max_chunk_chars"`
	ChunkOverlap  int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// Retrieval
	TopK               int    `json:"top_k" yaml:"top_k"`
	DefinitionsSection string `json:"definitions_section" yaml:"definitions_section"`

	// Reference extraction
	MinRefConfidence float64 `json:"min_ref_confidence" yaml:"min_ref_confidence"`

	// IngestWorkers bounds batch ingestion parallelism.
	IngestWorkers int `json:"ingest_workers" yaml:"ingest_workers"`
}

// LLMConfig configures a single model provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // ollama, openai, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults for local inference.
// Database and index are stored under ~/.lexgov/ by default.
func DefaultConfig() Config {
	return Config{
		DBName:     "lexgov",
		StorageDir: "home",
		Statute:    "ca2013",
		Chat: LLMConfig{
			Provider: "ollama",
			Model:    "qwen2.5:1.5b",
			BaseURL:  "http://localhost:11434",
		},
		Embedding: LLMConfig{
			Provider: "ollama",
			Model:    "qwen3-embedding:0.6b",
			BaseURL:  "http://localhost:11434",
		},
		MaxChunkChars:      1000,
		ChunkOverlap:       100,
		TopK:               retrieval.DefaultConfig().TopK,
		DefinitionsSection: retrieval.DefaultConfig().DefinitionsSection,
		MinRefConfidence:   0.5,
		IngestWorkers:      4,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "lexgov"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		return filepath.Join(home, ".lexgov", name+".db")
	}
}

// resolveIndexPath computes the vector index base path, co-located with the
// database by default.
func (c *Config) resolveIndexPath() string {
	if c.IndexPath != "" {
		return c.IndexPath
	}
	db := c.resolveDBPath()
	return db[:len(db)-len(filepath.Ext(db))] + ".index"
}
