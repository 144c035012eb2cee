package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Text is a loosely typed JSON value read as display text. Strings decode
// as-is. Numbers and booleans keep their JSON spelling, arrays join their
// elements with commas and objects read as "[object Object]", matching how
// the web client stringified the same payloads.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	s, err := coerceText(data)
	if err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

const objectText = "[object Object]"

func coerceText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{':
		if !json.Valid(data) {
			return "", errors.New("invalid JSON object")
		}
		return objectText, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return "", err
		}
		parts := make([]string, len(items))
		for i, item := range items {
			if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
				continue
			}
			part, err := coerceText(item)
			if err != nil {
				return "", err
			}
			parts[i] = part
		}
		return strings.Join(parts, ","), nil
	case 'n':
		return "", nil
	default:
		return string(data), nil
	}
}

func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return string(*t)
}

type Report struct {
	OriginalQuery string     `json:"original_query"`
	Summary       *Text      `json:"summary,omitempty"`
	FinalReport   *Text      `json:"final_report,omitempty"`
	Findings      []Finding  `json:"findings"`
	Citations     []Citation `json:"citations"`
}

// SummaryText picks summary when the field is present, even if empty, and
// falls back to the legacy final_report otherwise.
func (r *Report) SummaryText() string {
	if r == nil {
		return ""
	}
	if r.Summary != nil {
		return r.Summary.String()
	}
	return r.FinalReport.String()
}

type Finding struct {
	Question string         `json:"question"`
	Results  FindingResults `json:"results"`
}

// UnmarshalJSON accepts any question value and a bare value in place of
// the finding object.
func (f *Finding) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Finding{}
		return nil
	}
	if data[0] != '{' {
		var results FindingResults
		if err := results.UnmarshalJSON(data); err != nil {
			return err
		}
		*f = Finding{Results: results}
		return nil
	}

	var raw struct {
		Question Text           `json:"question"`
		Results  FindingResults `json:"results"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Finding{Question: string(raw.Question), Results: raw.Results}
	return nil
}

type FindingResults []FindingResult

// UnmarshalJSON accepts both a list of results and a single bare value,
// which older services send for one-paragraph answers.
func (r *FindingResults) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if data[0] != '[' {
		var single FindingResult
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*r = FindingResults{single}
		return nil
	}
	var items []FindingResult
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*r = items
	return nil
}

type FindingResult struct {
	Content string `json:"content,omitempty"`
	Text    string `json:"text,omitempty"`
	Summary string `json:"summary,omitempty"`
	URL     string `json:"url,omitempty"`
}

func (r *FindingResult) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = FindingResult{}
		return nil
	case data[0] == '{':
		var raw struct {
			Content Text `json:"content"`
			Text    Text `json:"text"`
			Summary Text `json:"summary"`
			URL     Text `json:"url"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*r = FindingResult{
			Content: string(raw.Content),
			Text:    string(raw.Text),
			Summary: string(raw.Summary),
			URL:     string(raw.URL),
		}
		return nil
	default:
		var t Text
		if err := t.UnmarshalJSON(data); err != nil {
			return err
		}
		*r = FindingResult{Content: string(t)}
		return nil
	}
}

// Body is the displayable text of a result: content, then text, then summary.
func (r FindingResult) Body() string {
	switch {
	case r.Content != "":
		return r.Content
	case r.Text != "":
		return r.Text
	default:
		return r.Summary
	}
}

type Citation struct {
	Source  string `json:"source"`
	Content string `json:"content,omitempty"`
}

// UnmarshalJSON accepts a bare source string as well as the object form.
func (c *Citation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Citation{}
		return nil
	}
	if data[0] != '{' {
		source, err := coerceText(data)
		if err != nil {
			return err
		}
		*c = Citation{Source: source}
		return nil
	}

	var raw struct {
		Source  Text `json:"source"`
		Content Text `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Citation{Source: string(raw.Source), Content: string(raw.Content)}
	return nil
}

func (c Citation) IsURL() bool {
	return strings.HasPrefix(c.Source, "http")
}

// DecodeReport decodes a results payload. A payload that is null or not a
// JSON object yields a nil report and no error. Only a malformed body is an
// error: a field with an unexpected shape is dropped so it cannot hold back
// a report whose summary is ready.
func DecodeReport(data []byte) (*Report, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	var report Report
	var query Text
	decodeField(fields, "original_query", &query)
	report.OriginalQuery = string(query)
	decodeField(fields, "summary", &report.Summary)
	decodeField(fields, "final_report", &report.FinalReport)
	decodeField(fields, "findings", &report.Findings)
	decodeField(fields, "citations", &report.Citations)
	return &report, nil
}

// decodeField leaves out unchanged when the field is missing, null or of
// a shape T cannot hold.
func decodeField[T any](fields map[string]json.RawMessage, key string, out *T) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*out = v
}
