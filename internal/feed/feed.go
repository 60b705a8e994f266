// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed reads the daily arXiv announcement RSS feed and turns its
// items into ranking candidates.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/source"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// rssBase is the arXiv RSS endpoint. Declared as a var so tests can
// substitute an httptest server.
var rssBase = "https://rss.arxiv.org/rss/"

// arxivPDFBase prefixes the PDF link of each candidate.
var arxivPDFBase = "https://arxiv.org/pdf/"

// Announcement types carried in the arxiv:announce_type element.
const (
	AnnounceNew          = "new"
	AnnounceCross        = "cross"
	AnnounceReplace      = "replace"
	AnnounceReplaceCross = "replace-cross"
)

var (
	// ErrInvalidQuery is returned when arXiv reports the category
	// expression as unknown.
	ErrInvalidQuery = errors.New("invalid arXiv query")

	// ErrEmptyQuery is returned when no category expression is configured.
	ErrEmptyQuery = errors.New("arXiv query is empty")
)

// invalidQueryTitle prefixes the feed title arXiv returns for a bad query.
const invalidQueryTitle = "Feed error for query"

// Client fetches announcement feeds.
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

// Candidates fetches today's announcements for cfg.Query and returns the
// new ones, plus cross-lists when cfg.IncludeCross is set.
func (c *Client) Candidates(ctx context.Context, cfg types.ArxivConfig) ([]types.Candidate, error) {
	query := strings.TrimSpace(cfg.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	url := rssBase + query

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("arXiv RSS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv RSS returned HTTP %d", resp.StatusCode)
	}

	candidates, err := Parse(resp.Body, cfg.IncludeCross)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("fetched announcements",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// Parse reads an arXiv RSS document. Items whose announce type is not
// "new" (or "cross" when includeCross is set) are skipped, as are items
// without a recognizable arXiv ID.
func Parse(r io.Reader, includeCross bool) ([]types.Candidate, error) {
	f, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv RSS: %w", err)
	}
	if strings.HasPrefix(f.Title, invalidQueryTitle) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, f.Title)
	}

	var out []types.Candidate
	for _, item := range f.Items {
		kind := announceType(item)
		switch {
		case kind == AnnounceNew:
		case kind == AnnounceCross && includeCross:
		default:
			continue
		}
		c, ok := toCandidate(item)
		if !ok {
			continue
		}
		c.AnnounceType = kind
		out = append(out, c)
	}
	return out, nil
}

func toCandidate(item *gofeed.Item) (types.Candidate, bool) {
	id, ok := source.ArxivID(item.Link)
	if !ok {
		id, ok = source.ArxivID(strings.TrimPrefix(item.GUID, "oai:arXiv.org:"))
	}
	if !ok {
		return types.Candidate{}, false
	}
	c := types.Candidate{
		ID:        id,
		Title:     strings.TrimSpace(item.Title),
		Abstract:  abstract(item.Description),
		Authors:   authors(item),
		SourceURL: source.EprintURL(id),
		PDFURL:    arxivPDFBase + id,
	}
	if item.PublishedParsed != nil {
		c.Published = item.PublishedParsed.UTC()
	}
	return c, true
}

// announceType reads the arxiv:announce_type extension element.
func announceType(item *gofeed.Item) string {
	ext, ok := item.Extensions["arxiv"]
	if !ok {
		return ""
	}
	vals := ext["announce_type"]
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0].Value)
}

// abstract returns the text after the "Abstract:" marker of an arXiv item
// description, or the whole description when there is no marker.
func abstract(description string) string {
	if i := strings.Index(description, "Abstract:"); i >= 0 {
		description = description[i+len("Abstract:"):]
	}
	return strings.TrimSpace(description)
}

// authors collects author names. arXiv packs every author into one
// comma-separated dc:creator element.
func authors(item *gofeed.Item) []string {
	var raw []string
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			raw = append(raw, p.Name)
		}
	}
	if len(raw) == 0 && item.DublinCoreExt != nil {
		raw = item.DublinCoreExt.Creator
	}
	var names []string
	for _, r := range raw {
		for _, n := range strings.Split(r, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	return names
}
