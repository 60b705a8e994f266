// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/render"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Output formats.
const (
	formatTable = "table"
	formatHTML  = "html"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

// entry is one paper in YAML and JSON output.
type entry struct {
	Paper  types.Scored  `json:"paper" yaml:"paper"`
	Stars  float64       `json:"stars" yaml:"stars"`
	Result *types.Result `json:"result,omitempty" yaml:"result,omitempty"`
}

// writeDigest renders scored papers in format. results[i] belongs to
// scored[i] and may be shorter or nil.
func writeDigest(w io.Writer, format string, scored []types.Scored, results []types.Result) error {
	switch format {
	case formatTable, "":
		return render.Table(w, scored, results)
	case formatHTML:
		return render.HTML(w, scored, results)
	case formatYAML, formatJSON:
		entries := make([]entry, 0, len(scored))
		for i, s := range scored {
			e := entry{Paper: s, Stars: render.Stars(s.Score)}
			if i < len(results) {
				r := results[i]
				e.Result = &r
			}
			entries = append(entries, e)
		}
		if format == formatYAML {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(entries); err != nil {
				return fmt.Errorf("encoding YAML: %w", err)
			}
			return enc.Close()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s, %s, or %s)", format, formatTable, formatHTML, formatYAML, formatJSON)
	}
}

// outputWriter returns the destination named by the --output flag, or
// stdout. The returned close function must be called when done.
func outputWriter(cmd *cobra.Command) (io.Writer, func() error, error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}
