package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// Default configuration values.
const (
	DefaultDataDir     = "data"
	DefaultIndexDir    = "vector_db"
	DefaultChunkSize   = 512
	DefaultOverlap     = 50
	DefaultTopK        = 5
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultProvider    = domain.ProviderLMStudio
)

// Config is the full application configuration.
type Config struct {
	// DataDir is the folder scanned for documents.
	DataDir string `toml:"data_dir"`

	// IndexDir is where index artifacts are persisted.
	IndexDir string `toml:"index_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// RetrievalConfig controls context retrieval.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per query.
	TopK int `toml:"top_k"`
}

// LLMConfig configures the generation endpoint.
type LLMConfig struct {
	Provider    string  `toml:"provider"`
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// EmbeddingConfig configures the embedding endpoint.
type EmbeddingConfig struct {
	Provider          string  `toml:"provider"`
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	Dimensions        int     `toml:"dimensions"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		DataDir:  DefaultDataDir,
		IndexDir: DefaultIndexDir,
		Chunking: ChunkingConfig{
			Size:    DefaultChunkSize,
			Overlap: DefaultOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK: DefaultTopK,
		},
		LLM: LLMConfig{
			Provider:    DefaultProvider,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Embedding: EmbeddingConfig{
			Provider: DefaultProvider,
		},
	}
}

// DefaultPath returns the default config file location, ~/.ragchat/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat", "config.toml"), nil
}

// Load reads configuration from path, filling unset fields with defaults.
// A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// fillDefaults restores defaults for fields the file left zero.
func (c *Config) fillDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.IndexDir == "" {
		c.IndexDir = DefaultIndexDir
	}
	if c.Chunking.Size == 0 {
		c.Chunking.Size = DefaultChunkSize
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = DefaultOverlap
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = DefaultTopK
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = DefaultTemperature
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = c.LLM.Provider
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d",
			domain.ErrInvalidChunkConfig, c.Chunking.Size)
	}
	if c.Chunking.Overlap <= 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: overlap %d must be between 0 and chunk size %d",
			domain.ErrInvalidChunkConfig, c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d",
			domain.ErrInvalidInput, c.Retrieval.TopK)
	}
	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LLMSettings converts the LLM section to domain settings.
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider:    c.LLM.Provider,
		BaseURL:     c.LLM.BaseURL,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
	}
}

// EmbeddingSettings converts the embedding section to domain settings.
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider:          c.Embedding.Provider,
		BaseURL:           c.Embedding.BaseURL,
		APIKey:            c.Embedding.APIKey,
		Model:             c.Embedding.Model,
		Dimensions:        c.Embedding.Dimensions,
		RequestsPerSecond: c.Embedding.RequestsPerSecond,
	}
}
