//go:build !cgo

package embed

import (
	"context"
	"errors"
)

// ErrFastEmbedNotAvailable is returned when the binary was built without cgo.
var ErrFastEmbedNotAvailable = errors.New("fastembed: not available (built without cgo, use the remote provider)")

// FastEmbedConfig holds configuration for the local ONNX encoder.
type FastEmbedConfig struct {
	Model     string
	CacheDir  string
	MaxLength int
	BatchSize int
}

// FastEmbed is unavailable without cgo.
type FastEmbed struct{}

// NewFastEmbed always fails without cgo.
func NewFastEmbed(FastEmbedConfig) (*FastEmbed, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbed) Encode(context.Context, []string) ([][]float32, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbed) Dimension() int { return 0 }
func (p *FastEmbed) Model() string  { return "" }
func (p *FastEmbed) Close() error   { return nil }
