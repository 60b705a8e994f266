// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tldr

import (
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultMaxPromptTokens is the prompt budget. Longer prompts keep their
// first DefaultMaxPromptTokens tokens.
const DefaultMaxPromptTokens = 3800

// Persona is the system instruction sent with every prompt.
const Persona = "You are an assistant who perfectly summarizes scientific paper, and gives the core idea of the paper to the user."

// promptTemplate uses << >> delimiters because LaTeX braces collide with
// the default ones.
const promptTemplate = `Given the title, abstract, introduction and the conclusion (if any) of a paper in latex format, generate a one-sentence TLDR summary:

\title{<<.Title>>}
\begin{abstract}<<.Abstract>>\end{abstract}
<<with .Introduction>>\section{Introduction}
<<.>>
<<end>><<with .Conclusion>>\section{Conclusion}
<<.>>
<<end>>`

var promptTmpl = template.Must(template.New("prompt").Delims("<<", ">>").Parse(promptTemplate))

type promptData struct {
	Title        string
	Abstract     string
	Introduction string
	Conclusion   string
}

// BuildPrompt fills the summary template. Empty sections are left out.
func BuildPrompt(title, abstract string, sections types.Sections) (string, error) {
	var b strings.Builder
	err := promptTmpl.Execute(&b, promptData{
		Title:        title,
		Abstract:     abstract,
		Introduction: sections.Introduction,
		Conclusion:   sections.Conclusion,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}

// Truncate keeps the first budget tokens of text and decodes them back to
// text. It reports whether anything was dropped. A budget of zero or less
// disables truncation.
func Truncate(tok Tokenizer, text string, budget int) (string, bool) {
	out, _, truncated := truncate(tok, text, budget)
	return out, truncated
}

// truncate also returns the token count of the original text.
func truncate(tok Tokenizer, text string, budget int) (string, int, bool) {
	tokens := tok.Encode(text)
	if budget <= 0 || len(tokens) <= budget {
		return text, len(tokens), false
	}
	// A BPE boundary can fall inside a multi-byte rune; back off until the
	// kept tokens end on a whole rune.
	n := budget
	out := tok.Decode(tokens[:n])
	for n > 0 && n > budget-utf8.UTFMax && splitRune(out) {
		n--
		out = tok.Decode(tokens[:n])
	}
	return out, len(tokens), true
}

// splitRune reports whether s ends in an incomplete UTF-8 sequence.
func splitRune(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return r == utf8.RuneError && size == 1
}
