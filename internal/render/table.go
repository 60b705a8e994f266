// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/paper-digest/pkg/types"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// tldrWidth wraps the synopsis column.
const tldrWidth = 72

// Table writes a terminal table of scored papers in order, with results
// aligned to scored as in HTML.
func Table(w io.Writer, scored []types.Scored, results []types.Result) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "SCORE", "STARS", "ID", "TITLE", "TLDR").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return starStyle
			case col == 5:
				return cellStyle.Width(tldrWidth)
			default:
				return cellStyle
			}
		})

	for i, s := range scored {
		t.Row(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.2f", s.Score),
			StarString(Stars(s.Score)),
			s.ID,
			s.Title,
			strings.TrimSpace(synopsis(i, s, results)),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
