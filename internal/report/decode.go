package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// kind names the JSON type of raw for issue messages.
func kind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	}
	return "a number"
}

func absent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// scalar returns the text of a JSON string, number or boolean. Objects and
// arrays are not scalars. null and absent values are empty scalars.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if absent(raw) {
		return "", true
	}
	switch raw[0] {
	case '{', '[':
		return "", false
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return string(raw), true
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// decodeLeaf reads {score|label, rationale}. A bare scalar is taken as the
// score. Anything else is dropped with an issue.
func decodeLeaf(field string, raw json.RawMessage) (Leaf, []Issue) {
	if absent(raw) {
		return Leaf{}, nil
	}
	if v, ok := scalar(raw); ok {
		return Leaf{Score: v}, []Issue{{Field: field, Message: fmt.Sprintf("expected an object, got %s; used it as the score", kind(raw))}}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Leaf{}, []Issue{{Field: field, Message: fmt.Sprintf("expected an object, got %s", kind(raw))}}
	}

	var leaf Leaf
	var issues []Issue
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"score", &leaf.Score},
		{"label", &leaf.Label},
		{"rationale", &leaf.Rationale},
	} {
		v, ok := scalar(fields[f.key])
		if !ok {
			issues = append(issues, Issue{Field: join(field, f.key), Message: fmt.Sprintf("expected a string, got %s", kind(fields[f.key]))})
			continue
		}
		*f.dst = v
	}
	return leaf, issues
}

// decodeSection reads an object of leaves. A section of any other type is
// dropped with an issue.
func decodeSection(field string, raw json.RawMessage) (Section, []Issue) {
	if absent(raw) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, []Issue{{Field: field, Message: fmt.Sprintf("expected an object, got %s", kind(raw))}}
	}
	sec := make(Section, len(fields))
	var issues []Issue
	for key, value := range fields {
		leaf, leafIssues := decodeLeaf(join(field, key), value)
		sec[key] = leaf
		issues = append(issues, leafIssues...)
	}
	sortIssues(issues)
	return sec, issues
}

// sortIssues orders issues by field since they come from map iteration.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
}

// decodeClassification reads the classification block. Numbers and booleans
// become strings; other values are dropped with an issue.
func decodeClassification(raw json.RawMessage) (Classification, []Issue) {
	const field = "classification"
	var c Classification
	if absent(raw) {
		return c, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return c, []Issue{{Field: field, Message: fmt.Sprintf("expected an object, got %s", kind(raw))}}
	}
	var issues []Issue
	for key, dst := range c.fields() {
		v, ok := scalar(fields[key])
		if !ok {
			issues = append(issues, Issue{Field: join(field, key), Message: fmt.Sprintf("expected a string, got %s", kind(fields[key]))})
			continue
		}
		*dst = v
	}
	sortIssues(issues)
	return c, issues
}

// decodeSuggestions reads a string or a list of strings. List items that are
// not scalars are dropped with an issue.
func decodeSuggestions(raw json.RawMessage) (Suggestions, []Issue) {
	const field = "suggestions"
	if v, ok := scalar(raw); ok {
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return Suggestions{v}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, []Issue{{Field: field, Message: fmt.Sprintf("expected a string or a list, got %s", kind(raw))}}
	}
	var out Suggestions
	var issues []Issue
	for i, item := range items {
		v, ok := scalar(item)
		if !ok {
			issues = append(issues, Issue{Field: fmt.Sprintf("%s[%d]", field, i), Message: fmt.Sprintf("expected a string, got %s", kind(item))})
			continue
		}
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out, issues
}
