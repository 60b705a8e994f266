package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EmbeddingProvider identifies the encoder implementation.
type EmbeddingProvider string

const (
	EmbeddingFastEmbed EmbeddingProvider = "fastembed"
	EmbeddingRemote    EmbeddingProvider = "remote"
)

// EmbeddingConfig selects and configures the text encoder.
type EmbeddingConfig struct {
	// Provider is "fastembed" (local ONNX) or "remote" (OpenAI-compatible API).
	Provider EmbeddingProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the embedding model name (e.g. "BAAI/bge-small-en-v1.5").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the remote embedding endpoint (remote provider only).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey authenticates against the remote endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// CacheDir holds downloaded model files (fastembed only).
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty" mapstructure:"cache_dir"`

	// Normalize L2-normalizes vectors so dot products equal cosine similarity.
	Normalize bool `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
}

// LLMProvider identifies the text-generation backend.
type LLMProvider string

const (
	LLMOpenAI    LLMProvider = "openai"
	LLMAnthropic LLMProvider = "anthropic"
	LLMOllama    LLMProvider = "ollama"
)

// LLMConfig configures the summarization backend.
type LLMConfig struct {
	Provider LLMProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the generation model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL points at an OpenAI-compatible server or an Ollama host.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds each summarization call. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Tokenizer is the tiktoken encoding used for prompt budgeting.
	Tokenizer string `json:"tokenizer" yaml:"tokenizer" mapstructure:"tokenizer"`

	// MaxPromptTokens is the prompt token budget (default 3800).
	MaxPromptTokens int `json:"max_prompt_tokens" yaml:"max_prompt_tokens" mapstructure:"max_prompt_tokens"`
}

// ZoteroConfig locates the reference library.
type ZoteroConfig struct {
	// UserID is the numeric Zotero user (or group) ID.
	UserID string `json:"user_id" yaml:"user_id" mapstructure:"user_id"`

	// LibraryType is "user" or "group".
	LibraryType string `json:"library_type" yaml:"library_type" mapstructure:"library_type"`

	// APIKey is the Zotero API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// ItemTypes restricts which library items form the corpus.
	ItemTypes []string `json:"item_types" yaml:"item_types" mapstructure:"item_types"`

	// ExportFile, when set, loads the corpus from a JSON export instead of the API.
	ExportFile string `json:"export_file,omitempty" yaml:"export_file,omitempty" mapstructure:"export_file"`
}

// ArxivConfig selects the announcement feed.
type ArxivConfig struct {
	// Query is the RSS category expression (e.g. "cs.AI+cs.CL").
	Query string `json:"query" yaml:"query" mapstructure:"query"`

	// IncludeCross keeps cross-listed announcements.
	IncludeCross bool `json:"include_cross" yaml:"include_cross" mapstructure:"include_cross"`
}

// DigestConfig holds settings for a digest run.
type DigestConfig struct {
	// MaxPapers is how many top-ranked candidates are summarized (default 50).
	MaxPapers int `json:"max_papers" yaml:"max_papers" mapstructure:"max_papers"`

	// SkipSummary returns extracted sections without calling the LLM.
	SkipSummary bool `json:"skip_summary" yaml:"skip_summary" mapstructure:"skip_summary"`

	// DBPath is the SQLite file for the embedding cache and run history.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// Format selects the output: "table", "html", "yaml", or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the digest pipeline.
type Config struct {
	HTTP      HTTPConfig      `json:"http" yaml:"http" mapstructure:"http"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	LLM       LLMConfig       `json:"llm" yaml:"llm" mapstructure:"llm"`
	Zotero    ZoteroConfig    `json:"zotero" yaml:"zotero" mapstructure:"zotero"`
	Arxiv     ArxivConfig     `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Digest    DigestConfig    `json:"digest" yaml:"digest" mapstructure:"digest"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
