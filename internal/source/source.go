// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source downloads arXiv LaTeX source archives.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// eprintBase is the arXiv source endpoint. Declared as a var so tests can
// substitute an httptest server.
var eprintBase = "https://arxiv.org/e-print/"

// arxivPattern matches new-style arXiv IDs: "2301.07041", "arXiv:2301.07041",
// "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// legacyPattern matches old-style IDs such as "hep-th/9901001" or
// "math.GT/0309136".
var legacyPattern = regexp.MustCompile(`^(?:arXiv:)?([a-z\-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)$`)

// ArxivID normalizes an arXiv identifier, stripping an "arXiv:" prefix and
// the abs/pdf URL forms. It reports false when s is not an arXiv ID.
func ArxivID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://arxiv.org/abs/", "http://arxiv.org/abs/", "https://arxiv.org/pdf/", "http://arxiv.org/pdf/"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSuffix(strings.TrimPrefix(s, prefix), ".pdf")
			break
		}
	}
	if m := arxivPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := legacyPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return s, false
}

// Slug returns a filesystem-safe name for a paper ID.
func Slug(id string) string {
	return strings.NewReplacer("/", "_", ":", "_", "\\", "_").Replace(id)
}

// EprintURL returns the source archive URL for an arXiv ID.
func EprintURL(id string) string {
	return eprintBase + id
}

// ErrNoSourceURL is returned for a candidate with neither a source URL nor
// an arXiv ID.
var ErrNoSourceURL = errors.New("no source URL and not an arXiv ID")

// Fetcher downloads source archives from arXiv.
type Fetcher struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	Logger     *zap.Logger
}

// New returns a Fetcher configured from cfg.
func New(cfg types.HTTPConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client:    httputil.NewClient(cfg),
		UserAgent: httputil.UserAgent(cfg),
		Logger:    logger,
	}
}

// Fetch downloads the source archive of c into dir and returns its path.
// c.SourceURL is used when set; otherwise c.ID must be an arXiv ID. The
// download goes to a temporary file that is renamed on success, so a
// failed transfer never leaves a partial archive behind.
func (f *Fetcher) Fetch(ctx context.Context, c types.Candidate, dir string) (string, error) {
	id, url := c.ID, c.SourceURL
	if url == "" {
		arxivID, ok := ArxivID(c.ID)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrNoSourceURL, c.ID)
		}
		id, url = arxivID, EprintURL(arxivID)
	}
	destPath := filepath.Join(dir, Slug(id)+".tar.gz")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	f.logger().Debug("downloading source", zap.String("paper", id), zap.String("url", url))
	resp, err := httputil.DoWithRetry(ctx, f.client(), req, f.MaxRetries, f.logger())
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(dir, ".source-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// WithTempDir creates a scratch directory, runs fn with it, and removes
// the directory afterwards whatever fn returns.
func WithTempDir(prefix string, fn func(dir string) error) error {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)
	return fn(dir)
}
