// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/corpus"
	"github.com/pdiddy/paper-digest/internal/digest"
	"github.com/pdiddy/paper-digest/internal/embed"
	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/internal/tldr"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults() {
	viper.SetDefault("http.timeout", 60*time.Second)
	viper.SetDefault("http.user_agent", httputil.DefaultUserAgent)

	viper.SetDefault("embedding.provider", string(types.EmbeddingFastEmbed))
	viper.SetDefault("embedding.model", embed.DefaultModel)
	viper.SetDefault("embedding.base_url", "")
	viper.SetDefault("embedding.api_key", "")
	viper.SetDefault("embedding.cache_dir", "")
	viper.SetDefault("embedding.normalize", true)

	viper.SetDefault("llm.provider", string(types.LLMOpenAI))
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.timeout", 2*time.Minute)
	viper.SetDefault("llm.tokenizer", tldr.DefaultEncoding)
	viper.SetDefault("llm.max_prompt_tokens", tldr.DefaultMaxPromptTokens)

	viper.SetDefault("zotero.user_id", "")
	viper.SetDefault("zotero.library_type", "user")
	viper.SetDefault("zotero.api_key", "")
	viper.SetDefault("zotero.item_types", corpus.DefaultItemTypes)
	viper.SetDefault("zotero.export_file", "")

	viper.SetDefault("arxiv.query", "")
	viper.SetDefault("arxiv.include_cross", false)

	viper.SetDefault("digest.max_papers", digest.DefaultMaxPapers)
	viper.SetDefault("digest.skip_summary", false)
	viper.SetDefault("digest.db_path", ".paper-digest/digest.db")
	viper.SetDefault("digest.format", formatTable)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
}

// loadConfig decodes the resolved configuration.
func loadConfig() (types.Config, error) {
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// applySecrets fills API keys left empty from .secrets/.
func applySecrets(c *types.Config) {
	c.Zotero.APIKey = secretDefault(secrets.ZoteroAPIKey, c.Zotero.APIKey)
	switch c.LLM.Provider {
	case types.LLMOpenAI:
		c.LLM.APIKey = secretDefault(secrets.OpenAIAPIKey, c.LLM.APIKey)
	case types.LLMAnthropic:
		c.LLM.APIKey = secretDefault(secrets.AnthropicAPIKey, c.LLM.APIKey)
	}
	if c.Embedding.Provider == types.EmbeddingRemote {
		c.Embedding.APIKey = secretDefault(secrets.OpenAIAPIKey, c.Embedding.APIKey)
	}
}

// secretDefault returns fallback when it is set, else the secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}
