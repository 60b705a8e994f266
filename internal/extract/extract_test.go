// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// --- helpers ---

type entry struct {
	name string
	body string
	dir  bool
}

func tarBytes(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// --- Clean ---

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line comment", "a % note\nb", "a \nb"},
		{"full line comment", "x\n% gone\ny", "x\ny"},
		{"escaped percent kept", `50\% of cases`, `50\% of cases`},
		{"escaped percent then comment", "50\\% of cases % drop\n", "50\\% of cases \n"},
		{"comment after line break", "line one\\\\% secret\nnext", "line one\\\\\nnext"},
		{"escaped percent after line break", `a\\\% b`, `a\\\% b`},
		{"comment at line start", "% all gone\nkept", "\nkept"},
		{"comment env", `a\begin{comment}hidden\end{comment}b`, "ab"},
		{"iffalse block", `a\iffalse hidden \fi b`, "a b"},
		{"blank lines", "p1\n\n\n\np2", "p1\np2"},
		{"crlf", "p1\r\n\r\np2", "p1\np2"},
		{"cite with tie", `result~\cite{smith20} holds`, "result holds"},
		{"citep with note", `see \citep[p.~3]{doe}.`, "see ."},
		{"figure", `a\begin{figure}\includegraphics{x}\end{figure}b`, "ab"},
		{"figure star", `a\begin{figure*}x\end{figure*}b`, "ab"},
		{"table", `a\begin{table}x\end{table}b`, "ab"},
		{"table star", `a\begin{table*}x\end{table*}b`, "ab"},
		{"plain text", "nothing to strip", "nothing to strip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

// --- FindSection ---

func TestFindSection(t *testing.T) {
	tests := []struct {
		name    string
		tex     string
		heading string
		want    string
	}{
		{"next section ends", `\section{Introduction} text-A \section{Method}`, IntroductionHeading, "text-A"},
		{"absent", `\section{Introduction} text-A \section{Method}`, ConclusionHeading, ""},
		{"bibliography ends", "\\section{Conclusion}\nWe win.\n\\bibliography{refs}", ConclusionHeading, "We win."},
		{"appendix ends", `\section{Conclusion} done \appendix more`, ConclusionHeading, "done"},
		{"end document ends", `\section{Conclusion} bye \end{document}`, ConclusionHeading, "bye"},
		{"end of text ends", `\section{Introduction} runs to the end`, IntroductionHeading, "runs to the end"},
		{"starred heading", `\section*{Introduction} star \section{Next}`, IntroductionHeading, "star"},
		{"case sensitive", `\section{introduction} lower`, IntroductionHeading, ""},
		{"plural does not match", `\section{Conclusions} many`, ConclusionHeading, ""},
		{"first occurrence", `\section{Introduction} one \section{Introduction} two`, IntroductionHeading, "one"},
		{"multiline body", "\\section{Introduction}\nline one\nline two\n\\section{B}", IntroductionHeading, "line one\nline two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindSection(tt.tex, tt.heading))
		})
	}
}

// --- FromFiles ---

func TestFromFiles_LastFileWins(t *testing.T) {
	files := []File{
		{Name: "intro.tex", Content: `\section{Introduction} first \section{Conclusion} early end`},
		{Name: "notes.txt"},
		{Name: "main.tex", Content: `\section{Introduction} second \section{Method} m`},
	}
	sections, n := FromFiles(files)
	assert.Equal(t, 2, n)
	assert.Equal(t, "second", sections.Introduction)
	assert.Equal(t, "early end", sections.Conclusion, "a file without the heading leaves the earlier match")
}

func TestFromFiles_EmptyMatchOverwrites(t *testing.T) {
	files := []File{
		{Name: "a.tex", Content: `\section{Introduction} real text \section{B}`},
		{Name: "b.tex", Content: `\section{Introduction}\section{B}`},
	}
	sections, _ := FromFiles(files)
	assert.Equal(t, "", sections.Introduction)
}

func TestFromFiles_CleansBeforeMatching(t *testing.T) {
	files := []File{{Name: "main.tex", Content: "\\section{Introduction}\nWe show~\\cite{x} it. % todo\n\\section{Method}"}}
	sections, _ := FromFiles(files)
	assert.Equal(t, "We show it.", sections.Introduction)
}

func TestFromFiles_NoTeX(t *testing.T) {
	sections, n := FromFiles([]File{{Name: "fig.png"}, {Name: "refs.bib"}})
	assert.Zero(t, n)
	assert.True(t, sections.IsEmpty())

	sections, n = FromFiles(nil)
	assert.Zero(t, n)
	assert.True(t, sections.IsEmpty())
}

// --- ReadArchive ---

func TestReadArchive_TarGz(t *testing.T) {
	data := gzipBytes(t, tarBytes(t, []entry{
		{name: "./sec", dir: true},
		{name: "./sec/intro.tex", body: `\section{Introduction} hi`},
		{name: "figure.pdf", body: "%PDF"},
	}))
	files, err := ReadArchive(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "sec/intro.tex", files[0].Name)
	assert.Equal(t, `\section{Introduction} hi`, files[0].Content)
	assert.Equal(t, "figure.pdf", files[1].Name)
	assert.Empty(t, files[1].Content, "non-tex content is not kept")
}

func TestReadArchive_PlainTar(t *testing.T) {
	data := tarBytes(t, []entry{{name: "main.tex", body: "body"}})
	files, err := ReadArchive(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "body", files[0].Content)
}

func TestReadArchive_SingleGzippedFile(t *testing.T) {
	data := gzipBytes(t, []byte(`\section{Conclusion} single`))
	files, err := ReadArchive(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.tex", files[0].Name)

	sections, _ := FromFiles(files)
	assert.Equal(t, "single", sections.Conclusion)
}

func TestReadArchive_InvalidUTF8Replaced(t *testing.T) {
	data := tarBytes(t, []entry{{name: "main.tex", body: "caf\xe9"}})
	files, err := ReadArchive(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "caf\uFFFD", files[0].Content)
}

func TestReadArchive_NotArchive(t *testing.T) {
	_, err := ReadArchive(bytes.NewReader([]byte("plain text, not a tarball")))
	assert.ErrorIs(t, err, ErrNotArchive)

	_, err = ReadArchive(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNotArchive)
}

func TestReadArchive_LargeFiguresAreStreamed(t *testing.T) {
	saved := maxFileBytes
	maxFileBytes = 1 << 10
	t.Cleanup(func() { maxFileBytes = saved })

	data := gzipBytes(t, tarBytes(t, []entry{
		{name: "figures/plot.pdf", body: strings.Repeat("x", 256<<10)},
		{name: "main.tex", body: `\section{Introduction} small \section{B}`},
	}))
	files, err := ReadArchive(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, files, 2)

	sections, _ := FromFiles(files)
	assert.Equal(t, "small", sections.Introduction)
}

func TestReadArchive_TeXTooLarge(t *testing.T) {
	saved := maxFileBytes
	maxFileBytes = 1 << 10
	t.Cleanup(func() { maxFileBytes = saved })

	data := tarBytes(t, []entry{{name: "main.tex", body: strings.Repeat("y", 2<<10)}})
	_, err := ReadArchive(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestReadArchive_DirectoryOnlyTar(t *testing.T) {
	files, err := ReadArchive(bytes.NewReader(tarBytes(t, []entry{{name: "src/", dir: true}})))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIsTarHeader(t *testing.T) {
	data := tarBytes(t, []entry{{name: "main.tex", body: "x"}})
	assert.True(t, isTarHeader(data[:tarBlockSize]))
	assert.False(t, isTarHeader(make([]byte, tarBlockSize)), "zero block")
	assert.False(t, isTarHeader(data[:100]), "short block")
	assert.False(t, isTarHeader([]byte(strings.Repeat("\\section{Introduction} ", 40))), "LaTeX text")
}

// --- FromArchive ---

func TestFromArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.tar.gz")
	data := gzipBytes(t, tarBytes(t, []entry{
		{name: "main.tex", body: "\\section{Introduction}\nIntro.\n\\section{Conclusion}\nEnd.\n\\end{document}"},
	}))
	require.NoError(t, os.WriteFile(path, data, 0o644))

	sections, err := FromArchive(path)
	require.NoError(t, err)
	assert.Equal(t, types.Sections{Introduction: "Intro.", Conclusion: "End."}, sections)
}

func TestFromArchive_NoTeX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.tar")
	require.NoError(t, os.WriteFile(path, tarBytes(t, []entry{{name: "paper.pdf", body: "x"}}), 0o644))

	sections, err := FromArchive(path)
	assert.ErrorIs(t, err, ErrNoTeX)
	assert.True(t, sections.IsEmpty())
}

func TestFromArchive_Missing(t *testing.T) {
	sections, err := FromArchive(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.True(t, sections.IsEmpty())
}

// --- Extractor ---

type fakeFetcher struct {
	data []byte
	err  error
	dirs []string
}

func (f *fakeFetcher) Fetch(_ context.Context, c types.Candidate, dir string) (string, error) {
	f.dirs = append(f.dirs, dir)
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(dir, c.ID)
	return path, os.WriteFile(path, f.data, 0o644)
}

func TestExtractor_Sections(t *testing.T) {
	f := &fakeFetcher{data: gzipBytes(t, tarBytes(t, []entry{
		{name: "main.tex", body: `\section{Introduction} hello \section{Conclusion} bye`},
	}))}
	e := New(f, nil)

	sections, err := e.Sections(context.Background(), types.Candidate{ID: "2401.00001"})
	require.NoError(t, err)
	assert.Equal(t, "hello", sections.Introduction)
	assert.Equal(t, "bye", sections.Conclusion)

	require.Len(t, f.dirs, 1)
	_, statErr := os.Stat(f.dirs[0])
	assert.True(t, os.IsNotExist(statErr), "scratch directory is removed")
}

func TestExtractor_FetchFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := &fakeFetcher{err: errors.New("HTTP 404")}
	e := New(f, zap.New(core))

	sections, err := e.Sections(context.Background(), types.Candidate{ID: "2401.00002"})
	assert.ErrorIs(t, err, ErrNoSource)
	assert.True(t, sections.IsEmpty())

	entries := logs.FilterMessage("section extraction failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "2401.00002", entries[0].ContextMap()["paper"])

	_, statErr := os.Stat(f.dirs[0])
	assert.True(t, os.IsNotExist(statErr), "scratch directory is removed on failure")
}

func TestExtractor_NoTeXDegrades(t *testing.T) {
	f := &fakeFetcher{data: gzipBytes(t, tarBytes(t, []entry{{name: "paper.pdf", body: "%PDF"}}))}
	sections, err := New(f, nil).Sections(context.Background(), types.Candidate{ID: "x"})
	assert.ErrorIs(t, err, ErrNoTeX)
	assert.True(t, sections.IsEmpty())
}

func TestExtractor_BiorxivUsesAbstract(t *testing.T) {
	f := &fakeFetcher{err: errors.New("must not be called")}
	c := types.Candidate{ID: "10.1101/2024.01.01.1", Abstract: "Cells divide.", Origin: types.OriginBiorxiv}

	sections, err := New(f, nil).Sections(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, types.Sections{Introduction: "Cells divide."}, sections)
	assert.Empty(t, f.dirs, "no download without a source URL")
}

func TestExtractor_BiorxivConclusionFromSource(t *testing.T) {
	f := &fakeFetcher{data: gzipBytes(t, tarBytes(t, []entry{
		{name: "main.tex", body: `\section{Introduction} ignored \section{Conclusion} It works.`},
	}))}
	c := types.Candidate{ID: "bio1", Abstract: "Abstract text.", Origin: types.OriginBiorxiv, SourceURL: "https://example.org/bio1.tar.gz"}

	sections, err := New(f, nil).Sections(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "Abstract text.", sections.Introduction)
	assert.Equal(t, "It works.", sections.Conclusion)
}

func TestExtractor_BiorxivSourceFailureKeepsAbstract(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := &fakeFetcher{err: errors.New("HTTP 500")}
	c := types.Candidate{ID: "bio2", Abstract: "A.", Origin: types.OriginBiorxiv, SourceURL: "https://example.org/bio2.tar.gz"}

	sections, err := New(f, zap.New(core)).Sections(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, types.Sections{Introduction: "A."}, sections)
	assert.Equal(t, 1, logs.FilterMessage("conclusion extraction failed").Len())
}
