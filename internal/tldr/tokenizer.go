// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tldr

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	// BPE ranks ship with the binary; no download at startup.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Tokenizer converts between text and model tokens.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// NewTokenizer returns a tiktoken tokenizer. name is either an encoding
// ("cl100k_base", "p50k_base") or a model name ("gpt-4"). An empty name
// selects DefaultEncoding.
func NewTokenizer(name string) (Tokenizer, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		var modelErr error
		enc, modelErr = tiktoken.EncodingForModel(name)
		if modelErr != nil {
			return nil, fmt.Errorf("loading tokenizer %q: %w", name, err)
		}
	}
	return &tiktokenizer{enc: enc}, nil
}

type tiktokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t *tiktokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
