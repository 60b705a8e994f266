// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const fakeArchive = "\x1f\x8b fake gzip bytes"

func TestArxivID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare", "2301.07041", "2301.07041", true},
		{"prefixed", "arXiv:2301.07041", "2301.07041", true},
		{"versioned", "2301.07041v2", "2301.07041v2", true},
		{"five digit", "2301.12345", "2301.12345", true},
		{"abs url", "https://arxiv.org/abs/2301.07041v1", "2301.07041v1", true},
		{"pdf url", "http://arxiv.org/pdf/2301.07041.pdf", "2301.07041", true},
		{"legacy", "hep-th/9901001", "hep-th/9901001", true},
		{"legacy subject class", "math.GT/0309136", "math.GT/0309136", true},
		{"whitespace trimmed", "  2301.07041  ", "2301.07041", true},
		{"doi", "10.1145/1234567", "10.1145/1234567", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ArxivID(tt.input)
			if ok != tt.wantOK {
				t.Errorf("ArxivID(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "2301.07041", Slug("2301.07041"))
	assert.Equal(t, "hep-th_9901001", Slug("hep-th/9901001"))
	assert.Equal(t, "doi_10.1101_x", Slug("doi:10.1101/x"))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/e-print/2401.00001":
			if r.Header.Get("User-Agent") == "" {
				http.Error(w, "missing user agent", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, fakeArchive)
		default:
			http.NotFound(w, r)
		}
	}))
}

func overrideBase(t *testing.T, tsURL string) {
	t.Helper()
	orig := eprintBase
	eprintBase = tsURL + "/e-print/"
	t.Cleanup(func() { eprintBase = orig })
}

func TestFetch(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	overrideBase(t, ts.URL)

	f := New(types.HTTPConfig{}, nil)
	dir := t.TempDir()
	path, err := f.Fetch(context.Background(), types.Candidate{ID: "arXiv:2401.00001"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2401.00001.tar.gz"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakeArchive, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFetch_NotFound(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	overrideBase(t, ts.URL)

	dir := t.TempDir()
	_, err := New(types.HTTPConfig{}, nil).Fetch(context.Background(), types.Candidate{ID: "2401.99999"}, dir)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "HTTP 404"), err.Error())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetch_BadID(t *testing.T) {
	_, err := New(types.HTTPConfig{}, nil).Fetch(context.Background(), types.Candidate{ID: "not-an-id"}, t.TempDir())
	assert.ErrorIs(t, err, ErrNoSourceURL)
}

func TestFetch_ExplicitSourceURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content/10.1101/2024.01.01.123456.source.tar.gz" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, fakeArchive)
	}))
	defer ts.Close()
	// eprintBase is left pointing at arXiv: the explicit URL must win.

	c := types.Candidate{
		ID:        "10.1101/2024.01.01.123456",
		SourceURL: ts.URL + "/content/10.1101/2024.01.01.123456.source.tar.gz",
	}
	dir := t.TempDir()
	path, err := New(types.HTTPConfig{}, nil).Fetch(context.Background(), c, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "10.1101_2024.01.01.123456.tar.gz"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakeArchive, string(data))
}

func TestFetch_SourceURLOverridesArxivID(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c := types.Candidate{ID: "2401.55555", SourceURL: ts.URL + "/e-print/2401.00001"}
	_, err := New(types.HTTPConfig{}, nil).Fetch(context.Background(), c, t.TempDir())
	assert.NoError(t, err, "the candidate's own URL is fetched, not one built from its ID")
}

func TestEprintURL(t *testing.T) {
	assert.Equal(t, "https://arxiv.org/e-print/2401.00001", EprintURL("2401.00001"))
}

func TestWithTempDir(t *testing.T) {
	var seen string
	err := WithTempDir("source-test-", func(dir string) error {
		seen = dir
		return os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o644)
	})
	require.NoError(t, err)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))

	boom := errors.New("boom")
	err = WithTempDir("source-test-", func(dir string) error {
		seen = dir
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, statErr = os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr), "removed on error too")
}
