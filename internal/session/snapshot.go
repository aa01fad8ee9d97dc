package session

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Snapshot is the persisted state of one finished report. FeedbackData and
// MaturityData hold the report JSON exactly as received.
type Snapshot struct {
	AgentDescription string          `json:"agentDescription"`
	FeedbackData     json.RawMessage `json:"feedbackData"`
	MaturityData     json.RawMessage `json:"maturityData"`
	IdeaSummary      string          `json:"ideaSummary"`
}

// Complete reports whether every required field is present.
func (s Snapshot) Complete() bool {
	return strings.TrimSpace(s.AgentDescription) != "" &&
		present(s.FeedbackData) &&
		present(s.MaturityData) &&
		strings.TrimSpace(s.IdeaSummary) != ""
}

// Missing lists the JSON names of absent required fields.
func (s Snapshot) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.AgentDescription) == "" {
		missing = append(missing, "agentDescription")
	}
	if !present(s.FeedbackData) {
		missing = append(missing, "feedbackData")
	}
	if !present(s.MaturityData) {
		missing = append(missing, "maturityData")
	}
	if strings.TrimSpace(s.IdeaSummary) == "" {
		missing = append(missing, "ideaSummary")
	}
	return missing
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// encode marshals without HTML escaping so report text is stored as given.
func (s Snapshot) encode() ([]byte, error) {
	return encodeJSON(s)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
