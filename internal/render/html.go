// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const pageTemplate = `<!DOCTYPE HTML>
<html>
<head>
  <meta charset="utf-8">
  <style>
    .star-wrapper { font-size: 1.3em; line-height: 1; display: inline-flex; align-items: center; }
    .half-star { display: inline-block; width: 0.5em; overflow: hidden; white-space: nowrap; vertical-align: middle; }
    .full-star { vertical-align: middle; }
  </style>
</head>
<body>
<div>
{{- if not .Papers}}
<p>No new papers today.</p>
{{- end}}
{{- range .Papers}}
<br>
<table border="0" cellpadding="0" cellspacing="0" width="100%" style="font-family: Arial, sans-serif; border: 1px solid #ddd; border-radius: 8px; padding: 16px; background-color: #f9f9f9;">
  <tr><td style="font-size: 20px; font-weight: bold; color: #333;">{{.Title}} ({{.Origin}})</td></tr>
  <tr><td style="font-size: 14px; color: #666; padding: 8px 0;">{{.Authors}}</td></tr>
  <tr><td style="font-size: 14px; color: #333; padding: 8px 0;"><strong>Relevance:</strong> {{if .Full}}<div class="star-wrapper">{{range .Full}}<span class="full-star">⭐</span>{{end}}{{if .Half}}<span class="half-star">⭐</span>{{end}}</div>{{else if .Half}}<div class="star-wrapper"><span class="half-star">⭐</span></div>{{end}}</td></tr>
  <tr><td style="font-size: 14px; color: #333; padding: 8px 0;"><strong>{{.Origin}} ID:</strong> {{.ID}}</td></tr>
  <tr><td style="font-size: 14px; color: #333; padding: 8px 0;"><strong>TLDR:</strong> {{.TLDR}}</td></tr>
  <tr><td style="padding: 8px 0;"><a href="{{.PDFURL}}" style="display: inline-block; text-decoration: none; font-size: 14px; font-weight: bold; color: #fff; background-color: #d9534f; padding: 8px 16px; border-radius: 4px;">PDF</a>{{if .CodeURL}}
    <a href="{{.CodeURL}}" style="display: inline-block; text-decoration: none; font-size: 14px; font-weight: bold; color: #fff; background-color: #5bc0de; padding: 8px 16px; border-radius: 4px; margin-left: 8px;">Code</a>{{end}}</td></tr>
</table>
</br>
{{- end}}
</div>
</body>
</html>
`

var pageTmpl = template.Must(template.New("digest").Parse(pageTemplate))

type htmlPaper struct {
	ID      string
	Title   string
	Authors string
	TLDR    string
	PDFURL  string
	CodeURL string
	Origin  string
	Full    []struct{}
	Half    bool
}

// HTML writes the digest page for scored papers in order. results[i], when
// present, holds the TLDR of scored[i]; a paper without one shows its
// abstract instead.
func HTML(w io.Writer, scored []types.Scored, results []types.Result) error {
	papers := make([]htmlPaper, 0, len(scored))
	for i, s := range scored {
		stars := Stars(s.Score)
		full := int(stars)
		papers = append(papers, htmlPaper{
			ID:      s.ID,
			Title:   s.Title,
			Authors: Authors(s.Authors),
			TLDR:    synopsis(i, s, results),
			PDFURL:  s.PDFURL,
			CodeURL: s.CodeURL,
			Origin:  s.OriginName(),
			Full:    make([]struct{}, full),
			Half:    stars-float64(full) >= 0.5,
		})
	}
	if err := pageTmpl.Execute(w, struct{ Papers []htmlPaper }{papers}); err != nil {
		return fmt.Errorf("rendering digest: %w", err)
	}
	return nil
}

func synopsis(i int, s types.Scored, results []types.Result) string {
	if i < len(results) && results[i].TLDR != "" {
		return results[i].TLDR
	}
	return s.Abstract
}
