package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL       string `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv     string `yaml:"api_key_env"`
	AllowEmptyKey bool   `yaml:"allow_empty_key"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions" validate:"gte=0"`
	TimeoutSecs   int    `yaml:"timeout_secs" validate:"gte=0"`
	BatchSize     int    `yaml:"batch_size" validate:"gte=0"`
	MaxRetries    int    `yaml:"max_retries" validate:"gte=0"`
}

// HashingEmbedderConfig configures the local hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension" validate:"gte=0"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string                 `yaml:"type" validate:"omitempty,oneof=hashing openai"`
	Hashing *HashingEmbedderConfig `yaml:"hashing,omitempty"`
	OpenAI  *OpenAIEmbedderConfig  `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type" validate:"omitempty,oneof=sentence window"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk" validate:"gte=0"`
	OverlapSentences  int    `yaml:"overlap_sentences" validate:"gte=0"`
	ChunkSize         int    `yaml:"chunk_size" validate:"gte=0"`
	ChunkOverlap      int    `yaml:"chunk_overlap" validate:"gte=0"`
}

// OpenAIGeneratorConfig configures answer generation through a chat completion API.
type OpenAIGeneratorConfig struct {
	BaseURL       string  `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv     string  `yaml:"api_key_env"`
	AllowEmptyKey bool    `yaml:"allow_empty_key"`
	Model         string  `yaml:"model"`
	Temperature   float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens     int     `yaml:"max_tokens" validate:"gte=0"`
	TimeoutSecs   int     `yaml:"timeout_secs" validate:"gte=0"`
	MaxRetries    int     `yaml:"max_retries" validate:"gte=0"`
	SystemPrompt  string  `yaml:"system_prompt"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type         string                 `yaml:"type" validate:"omitempty,oneof=extractive openai"`
	MaxSentences int                    `yaml:"max_sentences" validate:"gte=0"`
	OpenAI       *OpenAIGeneratorConfig `yaml:"openai,omitempty"`
}

// ExtractorConfig limits uploaded files.
type ExtractorConfig struct {
	MaxFileMB int `yaml:"max_file_mb" validate:"gte=0"`
}

// RetrievalConfig controls searches and how their results are shown.
type RetrievalConfig struct {
	TopK          int `yaml:"top_k" validate:"gte=0"`
	MaxTopK       int `yaml:"max_top_k" validate:"gte=0"`
	PreviewLength int `yaml:"preview_length" validate:"gte=0"`
	// SummarySentences bounds the summary shown after each upload batch.
	SummarySentences int `yaml:"summary_sentences" validate:"gte=0"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Engine      string   `yaml:"engine" validate:"omitempty,oneof=slog zap"`
	Level       string   `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL debug info warn error fatal"`
	Format      string   `yaml:"format" validate:"omitempty,oneof=json console"`
	OutputPaths []string `yaml:"output_paths"`
	// File receives the logs while the terminal UI owns the screen.
	File string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Extractor ExtractorConfig `yaml:"extractor"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Generator GeneratorConfig `yaml:"generator"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Log       LogConfig       `yaml:"log"`
}

var validate = validator.New()

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Retrieval.TopK > c.Retrieval.MaxTopK {
		return fmt.Errorf("invalid config: retrieval.top_k %d exceeds retrieval.max_top_k %d", c.Retrieval.TopK, c.Retrieval.MaxTopK)
	}
	if c.Chunker.Type == "window" && c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("invalid config: chunker.chunk_overlap %d must be below chunker.chunk_size %d", c.Chunker.ChunkOverlap, c.Chunker.ChunkSize)
	}
	return nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/studymate/config.yaml.
// If neither exists, it writes defaults to ~/.config/studymate/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "studymate", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Extractor.MaxFileMB == 0 {
		cfg.Extractor.MaxFileMB = 50
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Type == "hashing" {
		if cfg.Embedder.Hashing == nil {
			cfg.Embedder.Hashing = &HashingEmbedderConfig{}
		}
		if cfg.Embedder.Hashing.Dimension == 0 {
			cfg.Embedder.Hashing.Dimension = 512
		}
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
		if o.BatchSize == 0 {
			o.BatchSize = 32
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = 5
		}
	}

	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "window"
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
		if cfg.Chunker.ChunkOverlap == 0 {
			cfg.Chunker.ChunkOverlap = 200
		}
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "extractive"
	}
	if cfg.Generator.MaxSentences == 0 {
		cfg.Generator.MaxSentences = 3
	}
	if cfg.Generator.Type == "openai" {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIGeneratorConfig{}
		}
		o := cfg.Generator.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "gpt-4o-mini"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 60
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = 3
		}
	}

	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = 10
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = min(4, cfg.Retrieval.MaxTopK)
	}
	if cfg.Retrieval.PreviewLength == 0 {
		cfg.Retrieval.PreviewLength = 400
	}
	if cfg.Retrieval.SummarySentences == 0 {
		cfg.Retrieval.SummarySentences = 3
	}

	if cfg.Log.Engine == "" {
		cfg.Log.Engine = "slog"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(os.TempDir(), "studymate.log")
	}
}
