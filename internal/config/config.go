package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LogConfig configures the process logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// GeminiConfig configures the remote model client shared by OCR,
// embeddings and generation. Keys come from the environment.
type GeminiConfig struct {
	BaseURL           string  `yaml:"base_url"`
	OCRModel          string  `yaml:"ocr_model"`
	EmbedModel        string  `yaml:"embed_model"`
	GenerateModel     string  `yaml:"generate_model"`
	Temperature       float64 `yaml:"temperature"`
	ExpandTemperature float64 `yaml:"expand_temperature"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// DriveConfig selects where law PDFs come from.
type DriveConfig struct {
	// Source is "gdrive" or "local".
	Source    string `yaml:"source"`
	FolderEnv string `yaml:"folder_env"`
	LocalDir  string `yaml:"local_dir"`
	// RequestsPerSecond paces Drive API calls.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// RedisConfig is used when the extraction cache backend is redis.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`
	KeyPrefix   string `yaml:"key_prefix"`
	TTLHours    int    `yaml:"ttl_hours"`
}

// ExtractionConfig configures the law extractor and its cache.
type ExtractionConfig struct {
	MinCharsPerPage int          `yaml:"min_chars_per_page"`
	CacheBackend    string       `yaml:"cache_backend"`
	CacheDir        string       `yaml:"cache_dir"`
	Redis           *RedisConfig `yaml:"redis,omitempty"`
	MarkdownDir     string       `yaml:"markdown_dir"`
	SectionFiles    bool         `yaml:"section_files"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChars       int `yaml:"max_chars"`
	SplitThreshold int `yaml:"split_threshold"`
	TextChunkSize  int `yaml:"text_chunk_size"`
	TextOverlap    int `yaml:"text_overlap"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// TextIndexConfig configures the bleve keyword index.
type TextIndexConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RetrievalConfig tunes query-time behaviour.
type RetrievalConfig struct {
	TopK        int  `yaml:"top_k"`
	RerankTopK  int  `yaml:"rerank_top_k"`
	ExpandQuery bool `yaml:"expand_query"`
}

// SummarizerConfig configures the extractive answer fallback.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// BatchConfig configures LawIndexer.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// AppConfig is the root application configuration structure. Relative
// paths are resolved against DataDir.
type AppConfig struct {
	DataDir     string            `yaml:"data_dir"`
	Log         LogConfig         `yaml:"log"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Drive       DriveConfig       `yaml:"drive"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	TextIndex   TextIndexConfig   `yaml:"text_index"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Batch       BatchConfig       `yaml:"batch"`
}

// Path resolves p against DataDir unless it is absolute.
func (c *AppConfig) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/lawrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/lawrag/config.yaml and returns them.
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
	return filepath.Join(home, ".config", "lawrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		DataDir: "data",
		Log:     LogConfig{Level: "info"},
		Gemini: GeminiConfig{
			Temperature:       0.1,
			ExpandTemperature: 0.2,
			TimeoutSecs:       300,
			MaxRetries:        5,
		},
		Drive: DriveConfig{Source: "gdrive", FolderEnv: "DRIVE_FOLDER_LAW", LocalDir: "pdfs", RequestsPerSecond: 8},
		Extraction: ExtractionConfig{
			MinCharsPerPage: 50,
			CacheBackend:    "file",
			CacheDir:        "law_cache",
			MarkdownDir:     "law_md",
		},
		Chunker:     ChunkerConfig{MaxChars: 800, SplitThreshold: 1000, TextChunkSize: 1000, TextOverlap: 150},
		Embedder:    EmbedderConfig{Type: "tfidf", Dimension: 4096},
		VectorStore: VectorStoreConfig{Type: "memory"},
		TextIndex:   TextIndexConfig{Enabled: true, Path: "text.bleve"},
		Retrieval:   RetrievalConfig{TopK: 10, RerankTopK: 5, ExpandQuery: false},
		Summarizer:  SummarizerConfig{MaxSentences: 5},
		Batch:       BatchConfig{Workers: 2},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Extraction.MinCharsPerPage <= 0 {
		cfg.Extraction.MinCharsPerPage = 50
	}
	if cfg.Extraction.CacheBackend == "redis" {
		if cfg.Extraction.Redis == nil {
			cfg.Extraction.Redis = &RedisConfig{}
		}
		if cfg.Extraction.Redis.Addr == "" {
			cfg.Extraction.Redis.Addr = "localhost:6379"
		}
		if cfg.Extraction.Redis.KeyPrefix == "" {
			cfg.Extraction.Redis.KeyPrefix = "lawrag:law:"
		}
	}
	if cfg.Chunker.MaxChars <= 0 {
		cfg.Chunker.MaxChars = 800
	}
	if cfg.Chunker.SplitThreshold <= 0 {
		cfg.Chunker.SplitThreshold = 1000
	}
	if cfg.Chunker.TextChunkSize <= 0 {
		cfg.Chunker.TextChunkSize = 1000
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "thai_law"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Retrieval.RerankTopK <= 0 {
		cfg.Retrieval.RerankTopK = 5
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = 5
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = 1
	}
}
