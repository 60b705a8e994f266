// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Cleanup patterns, applied in order by Clean. These are text surgery on
// LaTeX source, not a parser: malformed markup passes through unchanged.
var (
	// lineCommentRe matches an unescaped % and the rest of its line. A %
	// is escaped only by an odd run of backslashes; \\% is a line break
	// followed by a comment. The text before the % is captured so it can
	// be put back.
	lineCommentRe = regexp.MustCompile(`(?m)((?:^|[^\\])(?:\\\\)*)%.*$`)

	commentEnvRe = regexp.MustCompile(`(?s)\\begin\{comment\}.*?\\end\{comment\}`)
	iffalseRe    = regexp.MustCompile(`(?s)\\iffalse\b.*?\\fi\b`)

	blankRunRe = regexp.MustCompile(`\n{2,}`)

	// citeRe matches \cite, \citep, \citet*, \citeauthor and friends,
	// with optional [..] arguments and an optional leading tie.
	citeRe = regexp.MustCompile(`~?\\cite[a-zA-Z]*\*?(?:\[[^\]]*\])*\{[^}]*\}`)

	figureRe = regexp.MustCompile(`(?s)\\begin\{figure\*?\}.*?\\end\{figure\*?\}`)
	tableRe  = regexp.MustCompile(`(?s)\\begin\{table\*?\}.*?\\end\{table\*?\}`)
)

// Headings searched for by Sections.
const (
	IntroductionHeading = "Introduction"
	ConclusionHeading   = "Conclusion"
)

// sectionEnd lists what terminates a captured section: the next section
// heading, the bibliography, the appendix, the end of the document, or
// the end of the text.
const sectionEnd = `(?:\\section|\\bibliography|\\appendix|\\end\{document\}|\z)`

var sectionRes = map[string]*regexp.Regexp{
	IntroductionHeading: sectionRe(IntroductionHeading),
	ConclusionHeading:   sectionRe(ConclusionHeading),
}

func sectionRe(heading string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)\\section\*?\{` + regexp.QuoteMeta(heading) + `\}(.*?)` + sectionEnd)
}

// Clean strips noise from LaTeX source: line comments, comment and
// \iffalse blocks, repeated newlines, citations, and figure and table
// environments.
func Clean(tex string) string {
	tex = strings.ReplaceAll(tex, "\r\n", "\n")
	tex = lineCommentRe.ReplaceAllString(tex, "${1}")
	tex = commentEnvRe.ReplaceAllString(tex, "")
	tex = iffalseRe.ReplaceAllString(tex, "")
	tex = blankRunRe.ReplaceAllString(tex, "\n")
	tex = citeRe.ReplaceAllString(tex, "")
	tex = figureRe.ReplaceAllString(tex, "")
	tex = tableRe.ReplaceAllString(tex, "")
	return tex
}

// FindSection returns the trimmed body of the first \section{heading} in
// tex, or "" when there is none. The heading match is exact and
// case-sensitive.
func FindSection(tex, heading string) string {
	body, _ := findSection(tex, heading)
	return body
}

func findSection(tex, heading string) (string, bool) {
	re, ok := sectionRes[heading]
	if !ok {
		re = sectionRe(heading)
	}
	m := re.FindStringSubmatch(tex)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// FromFiles extracts the introduction and conclusion from the .tex files
// among files, visited in the given order. Each file is cleaned first.
// When several files contain the same heading, the last one visited wins.
func FromFiles(files []File) (sections types.Sections, texCount int) {
	for _, f := range files {
		if !IsTeX(f.Name) {
			continue
		}
		texCount++
		content := Clean(f.Content)
		if intro, ok := findSection(content, IntroductionHeading); ok {
			sections.Introduction = intro
		}
		if concl, ok := findSection(content, ConclusionHeading); ok {
			sections.Conclusion = concl
		}
	}
	return sections, texCount
}

// IsTeX reports whether name is a LaTeX source file.
func IsTeX(name string) bool {
	return strings.HasSuffix(name, ".tex")
}
