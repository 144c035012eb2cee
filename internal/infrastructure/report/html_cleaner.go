package report

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements whose content never reaches the report.
var tagsToRemove = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true, "iframe": true,
	"link": true, "meta": true, "head": true, "title": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "br": true,
	"ul": true, "ol": true, "li": true, "pre": true, "blockquote": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripHTML turns a finding body that may contain markup into plain text.
// Links keep their target in parentheses. Input without tags is only trimmed.
func StripHTML(raw string) string {
	if !strings.Contains(raw, "<") {
		return strings.TrimSpace(raw)
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw) // fallback
	}

	body := findBodyNode(doc)
	if body == nil {
		body = doc
	}

	var sb strings.Builder
	writeText(&sb, body)
	return normalizeLines(sb.String())
}

// findBodyNode finds <body> in the parsed tree.
func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if tagsToRemove[n.Data] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	if n.Type == html.ElementNode && n.Data == "li" {
		sb.WriteString("- ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}

	if n.Type == html.ElementNode && n.Data == "a" {
		if href := attr(n, "href"); href != "" && href != textOf(n) {
			sb.WriteString(" (" + href + ")")
		}
	}
	if block {
		sb.WriteByte('\n')
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	writeText(&sb, n)
	return strings.TrimSpace(sb.String())
}

// normalizeLines collapses runs of spaces within lines and runs of blank lines.
func normalizeLines(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
