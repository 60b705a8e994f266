// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads the user's reference library from the Zotero web
// API or from a JSON export of it.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// zoteroAPIBase is the Zotero web API root. Declared as a var so tests can
// substitute an httptest server.
var zoteroAPIBase = "https://api.zotero.org"

// pageSize is the largest page the Zotero API serves.
const pageSize = 100

// DefaultItemTypes are the item types that make up the corpus when none
// are configured.
var DefaultItemTypes = []string{"conferencePaper", "journalArticle", "preprint"}

var (
	// ErrNoLibrary is returned when no Zotero user ID is configured.
	ErrNoLibrary = errors.New("zotero user ID is not set")

	// ErrNoAPIKey is returned when no Zotero API key is configured.
	ErrNoAPIKey = errors.New("zotero API key is not set")
)

// item is the subset of a Zotero item record used here.
type item struct {
	Key  string   `json:"key"`
	Data itemData `json:"data"`
}

type itemData struct {
	Key          string `json:"key"`
	ItemType     string `json:"itemType"`
	Title        string `json:"title"`
	AbstractNote string `json:"abstractNote"`
	DateAdded    string `json:"dateAdded"`
}

// Client reads libraries from the Zotero web API.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Logger    *zap.Logger
}

// New returns a Client configured from cfg.
func New(cfg types.HTTPConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{HTTP: httputil.NewClient(cfg), UserAgent: httputil.UserAgent(cfg), Logger: logger}
}

// Fetch pages through the library's items of the configured types and
// returns those with a non-empty abstract.
func (c *Client) Fetch(ctx context.Context, cfg types.ZoteroConfig) ([]types.CorpusEntry, error) {
	if cfg.UserID == "" {
		return nil, ErrNoLibrary
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	var items []item
	for start := 0; ; {
		page, total, err := c.page(ctx, cfg, start)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		start += len(page)
		c.Logger.Debug("fetched library page", zap.Int("items", start), zap.Int("total", total))
		if len(page) == 0 || start >= total {
			break
		}
	}

	entries, err := toEntries(items)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("loaded library",
		zap.Int("items", len(items)),
		zap.Int("with_abstract", len(entries)))
	return entries, nil
}

func (c *Client) page(ctx context.Context, cfg types.ZoteroConfig, start int) ([]item, int, error) {
	itemTypes := cfg.ItemTypes
	if len(itemTypes) == 0 {
		itemTypes = DefaultItemTypes
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("itemType", strings.Join(itemTypes, " || "))
	q.Set("start", strconv.Itoa(start))
	q.Set("limit", strconv.Itoa(pageSize))
	apiURL := fmt.Sprintf("%s/%s/%s/items?%s", zoteroAPIBase, libraryPath(cfg.LibraryType), url.PathEscape(cfg.UserID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Zotero-API-Key", cfg.APIKey)
	req.Header.Set("Zotero-API-Version", "3")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0, c.Logger)
	if err != nil {
		return nil, 0, fmt.Errorf("Zotero API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}

	var page []item
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, 0, fmt.Errorf("parsing Zotero response: %w", err)
	}
	total, err := strconv.Atoi(resp.Header.Get("Total-Results"))
	if err != nil {
		// Without a total, stop after a short page.
		total = start + len(page)
		if len(page) == pageSize {
			total++
		}
	}
	return page, total, nil
}

func libraryPath(libraryType string) string {
	if libraryType == "group" {
		return "groups"
	}
	return "users"
}

// Load reads a JSON export in the Zotero API item shape.
func Load(r io.Reader) ([]types.CorpusEntry, error) {
	var items []item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing library export: %w", err)
	}
	return toEntries(items)
}

// LoadFile reads a JSON export from path.
func LoadFile(path string) ([]types.CorpusEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening library export: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// toEntries drops items without an abstract and parses the rest. An
// unparseable dateAdded fails the whole corpus, naming the item.
func toEntries(items []item) ([]types.CorpusEntry, error) {
	entries := make([]types.CorpusEntry, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Data.AbstractNote) == "" {
			continue
		}
		key := it.Key
		if key == "" {
			key = it.Data.Key
		}
		added, err := types.ParseAddedAt(it.Data.DateAdded)
		if err != nil {
			return nil, fmt.Errorf("library item %s: %w", key, err)
		}
		entries = append(entries, types.CorpusEntry{
			Key:      key,
			Title:    it.Data.Title,
			Abstract: it.Data.AbstractNote,
			AddedAt:  added,
		})
	}
	return entries, nil
}
