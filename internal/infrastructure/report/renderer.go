// Package report renders a finished research report as console text.
package report

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"research-client/internal/domain/entity"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	ruleWidth    = 72
	resultIndent = "   "
)

type Renderer struct {
	tmpl *template.Template
}

type reportView struct {
	Query     string
	Summary   string
	Findings  []findingView
	Citations []citationView
}

type findingView struct {
	Index   int
	Title   string
	Results []resultView
}

type resultView struct {
	Text string
	URL  string
}

type citationView struct {
	Index  int
	Source string
	IsLink bool
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"rule":   func() string { return strings.Repeat("=", ruleWidth) },
		"indent": indent,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, report *entity.Report) error {
	if report == nil {
		return errors.New("render report: no report")
	}
	if err := r.tmpl.ExecuteTemplate(w, "report", newReportView(report)); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func newReportView(report *entity.Report) reportView {
	view := reportView{
		Query:   strings.TrimSpace(report.OriginalQuery),
		Summary: strings.TrimSpace(report.SummaryText()),
	}

	for i, finding := range report.Findings {
		fv := findingView{
			Index: i + 1,
			Title: strings.TrimSpace(finding.Question),
		}
		if fv.Title == "" {
			fv.Title = fmt.Sprintf("Finding %d", i+1)
		}
		for _, result := range finding.Results {
			fv.Results = append(fv.Results, resultView{
				Text: StripHTML(result.Body()),
				URL:  result.URL,
			})
		}
		view.Findings = append(view.Findings, fv)
	}

	for i, citation := range report.Citations {
		view.Citations = append(view.Citations, citationView{
			Index:  i + 1,
			Source: citation.Source,
			IsLink: citation.IsURL(),
		})
	}

	return view
}

func indent(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = resultIndent + line
		}
	}
	return strings.Join(lines, "\n")
}
