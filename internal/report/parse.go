package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse marks a generation response that is not a JSON object. Objects of
// an unexpected shape still parse; see Validate.
var ErrParse = errors.New("failed to parse report")

// ExtractJSON trims whitespace and a surrounding markdown code fence, and
// compacts the object so equal reports have equal bytes.
func ExtractJSON(raw string) (json.RawMessage, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	if !strings.HasPrefix(s, "{") {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrParse)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return buf.Bytes(), nil
}

// ParseFeedback decodes a combined report.
func ParseFeedback(raw string) (FeedbackReport, json.RawMessage, error) {
	var r FeedbackReport
	data, err := decode(raw, &r)
	return r, data, err
}

// ParseSection decodes a single-section stage response for the section
// named key. The section may be sent bare or wrapped under its key.
func ParseSection(key, raw string) (SectionReport, json.RawMessage, error) {
	if _, ok := FindSection(key); !ok {
		return SectionReport{}, nil, fmt.Errorf("unknown report section %q", key)
	}
	var fields map[string]json.RawMessage
	data, err := decode(raw, &fields)
	if err != nil {
		return SectionReport{}, nil, err
	}
	body := json.RawMessage(data)
	if wrapped, ok := fields[key]; ok {
		body = wrapped
	}
	sec, issues := decodeSection(key, body)
	return SectionReport{Key: key, Section: sec, issues: issues}, data, nil
}

// ParseMaturity decodes a maturity classification.
func ParseMaturity(raw string) (MaturityReport, json.RawMessage, error) {
	var m MaturityReport
	data, err := decode(raw, &m)
	return m, data, err
}

func decode(raw string, v any) (json.RawMessage, error) {
	data, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return data, nil
}
