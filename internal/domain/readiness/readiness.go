// Package readiness decides whether a fetched report is final. The results
// endpoint may answer with an empty or placeholder summary while the service
// is still writing it, so such reports must not end polling.
package readiness

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"research-client/internal/domain/entity"

	"golang.org/x/text/cases"
)

// MinSummaryLength is counted in UTF-16 code units, the unit the web
// client measured summaries in.
const MinSummaryLength = 120

var failurePlaceholders = []string{
	"summarization failed.",
	"summarization failed",
}

func IsSummaryReady(report *entity.Report) bool {
	if report == nil {
		return false
	}

	text := strings.TrimFunc(report.SummaryText(), isTrimmable)
	if text == "" {
		return false
	}

	folded := cases.Fold().String(text)
	for _, placeholder := range failurePlaceholders {
		if folded == placeholder {
			return false
		}
	}

	return textLength(text) >= MinSummaryLength
}

func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// isTrimmable matches the whitespace and line terminators stripped by the
// web client: Unicode White_Space without NEL, plus the byte order mark.
func isTrimmable(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}
