// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// maxFileBytes bounds how much of one LaTeX file, or of a single-file
// gzip submission, is read into memory. Other archive entries are skipped
// without being buffered, so figures do not count against it.
var maxFileBytes int64 = 32 << 20

// singleFileName names the lone file of a gzip-compressed single-file
// submission, which arrives without a tar wrapper.
const singleFileName = "main.tex"

const tarBlockSize = 512

var (
	// ErrNotArchive is returned when the source is neither tar nor gzip.
	ErrNotArchive = errors.New("source is not a tar or gzip archive")

	// ErrFileTooLarge is returned when a LaTeX file exceeds maxFileBytes.
	ErrFileTooLarge = errors.New("source file too large")
)

// File is one entry of a source archive. Content is only populated for
// LaTeX files.
type File struct {
	Name    string
	Content string
}

// ReadArchive reads a source archive: a gzip-compressed tar, a plain tar,
// or a single gzip-compressed LaTeX file. Entries are returned in archive
// order. Invalid UTF-8 is replaced rather than rejected. Tar archives are
// streamed; only LaTeX file contents are held in memory.
func ReadArchive(r io.Reader) ([]File, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(2)
	compressed := len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b

	var src io.Reader = br
	if compressed {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	body := bufio.NewReaderSize(src, 4*tarBlockSize)
	header, _ := body.Peek(tarBlockSize)
	if isTarHeader(header) {
		return readTar(tar.NewReader(body))
	}
	if !compressed {
		return nil, ErrNotArchive
	}
	data, err := readLimited(body, singleFileName)
	if err != nil {
		return nil, err
	}
	return []File{{Name: singleFileName, Content: toText(data)}}, nil
}

func readTar(tr *tar.Reader) ([]File, error) {
	var files []File
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := path.Clean(strings.TrimPrefix(hdr.Name, "./"))
		f := File{Name: name}
		if IsTeX(name) {
			body, err := readLimited(tr, name)
			if err != nil {
				return nil, err
			}
			f.Content = toText(body)
		}
		files = append(files, f)
	}
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > maxFileBytes {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, name)
	}
	return data, nil
}

// isTarHeader reports whether block is a tar header with a valid checksum.
// The checksum is the byte sum of the header with its own field read as
// spaces, stored as octal at offset 148.
func isTarHeader(block []byte) bool {
	if len(block) < tarBlockSize {
		return false
	}
	field := strings.Trim(string(block[148:156]), " \x00")
	want, err := strconv.ParseInt(field, 8, 64)
	if err != nil {
		return false
	}
	var sum int64
	for i, b := range block[:tarBlockSize] {
		if i >= 148 && i < 156 {
			b = ' '
		}
		sum += int64(b)
	}
	return sum == want
}

func toText(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// ReadArchiveFile opens the archive at name and reads it with ReadArchive.
func ReadArchiveFile(name string) ([]File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening source archive: %w", err)
	}
	defer f.Close()
	return ReadArchive(f)
}
