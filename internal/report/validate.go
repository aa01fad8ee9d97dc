package report

import (
	"fmt"
	"strings"
)

// Issue is one schema problem found in a parsed report.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every issue found. Rendering still succeeds; the
// error tells callers which values were defaulted.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return fmt.Sprintf("report failed validation: %s", strings.Join(parts, "; "))
}

func asError(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// ValidateSection checks that every attribute of spec is present with a
// recognized value and a rationale.
func ValidateSection(spec SectionSpec, s Section) []Issue {
	var issues []Issue
	if s == nil {
		return []Issue{{Field: spec.Key, Message: "section missing"}}
	}
	for _, attr := range spec.Attributes {
		field := spec.Key + "." + attr.Key
		leaf, ok := s[attr.Key]
		if !ok || strings.TrimSpace(leaf.Value()) == "" {
			issues = append(issues, Issue{Field: field, Message: "value missing"})
			continue
		}
		if _, recognized := attr.score(leaf.Value()); !recognized {
			issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("unrecognized value %q", leaf.Value())})
		}
		if strings.TrimSpace(leaf.Rationale) == "" {
			issues = append(issues, Issue{Field: field, Message: "rationale missing"})
		}
	}
	return issues
}

// Validate returns nil or a *ValidationError covering all four sections.
func (r FeedbackReport) Validate() error {
	issues := append([]Issue(nil), r.issues...)
	for _, spec := range Sections {
		issues = append(issues, ValidateSection(spec, r.Section(spec.Key))...)
	}
	return asError(issues)
}

// Validate returns nil or a *ValidationError for the classification.
func (m MaturityReport) Validate() error {
	issues := append([]Issue(nil), m.issues...)
	c := m.Classification
	if strings.TrimSpace(c.MaturityClassification) == "" {
		issues = append(issues, Issue{Field: "classification.maturity_classification", Message: "value missing"})
	} else if _, ok := ParseMaturityLevel(c.MaturityClassification); !ok {
		if _, recognized := LevelFromClassification(c.MaturityClassification); !recognized {
			issues = append(issues, Issue{
				Field:   "classification.maturity_classification",
				Message: fmt.Sprintf("unrecognized value %q", c.MaturityClassification),
			})
		}
	}
	for _, attr := range c.Attributes() {
		field := "classification." + attr.Key + "_level"
		if strings.TrimSpace(attr.Level) == "" {
			issues = append(issues, Issue{Field: field, Message: "value missing"})
			continue
		}
		if _, recognized := ScoreLabel(attr.Level); !recognized {
			issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("unrecognized value %q", attr.Level)})
		}
	}
	return asError(issues)
}

// Validate returns nil or a *ValidationError for the section.
func (s SectionReport) Validate() error {
	issues := append([]Issue(nil), s.issues...)
	if spec, ok := FindSection(s.Key); ok {
		issues = append(issues, ValidateSection(spec, s.Section)...)
	}
	return asError(issues)
}
