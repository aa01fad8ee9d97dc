package report

import (
	"encoding/json"
	"strings"
)

// Leaf is one scored or labelled attribute with its rationale. Score may
// arrive as a string or an integer.
type Leaf struct {
	Score     string `json:"score,omitempty"`
	Label     string `json:"label,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// Value returns Score, or Label when no score was given.
func (l Leaf) Value() string {
	if strings.TrimSpace(l.Score) != "" {
		return l.Score
	}
	return l.Label
}

func (l *Leaf) UnmarshalJSON(data []byte) error {
	*l, _ = decodeLeaf("", data)
	return nil
}

// Section holds the leaves of one report section keyed by attribute name.
type Section map[string]Leaf

func (s *Section) UnmarshalJSON(data []byte) error {
	*s, _ = decodeSection("", data)
	return nil
}

// FeedbackReport is the combined blueprint report. Values of the wrong JSON
// type are dropped while decoding and reported by Validate.
type FeedbackReport struct {
	Prioritize Section `json:"Prioritize,omitempty"`
	Market     Section `json:"Market,omitempty"`
	Build      Section `json:"Build,omitempty"`
	Evaluate   Section `json:"Evaluate,omitempty"`

	issues []Issue
}

func (r *FeedbackReport) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = FeedbackReport{}
	for _, spec := range Sections {
		sec, issues := decodeSection(spec.Key, fields[spec.Key])
		r.issues = append(r.issues, issues...)
		switch spec.Key {
		case SectionPrioritize:
			r.Prioritize = sec
		case SectionMarket:
			r.Market = sec
		case SectionBuild:
			r.Build = sec
		case SectionEvaluate:
			r.Evaluate = sec
		}
	}
	return nil
}

// Section returns the section stored under key.
func (r FeedbackReport) Section(key string) Section {
	switch key {
	case SectionPrioritize:
		return r.Prioritize
	case SectionMarket:
		return r.Market
	case SectionBuild:
		return r.Build
	case SectionEvaluate:
		return r.Evaluate
	}
	return nil
}

// Classification is the maturity classification block.
type Classification struct {
	Agent                       string `json:"agent"`
	AutonomyLevel               string `json:"autonomy_level"`
	AutonomyDescription         string `json:"autonomy_description"`
	ProactivityLevel            string `json:"proactivity_level"`
	ProactivityDescription      string `json:"proactivity_description"`
	IntegrationLevel            string `json:"integration_level"`
	IntegrationDescription      string `json:"integration_description"`
	UseCaseOwnershipLevel       string `json:"use_case_ownership_level"`
	UseCaseOwnershipDescription string `json:"use_case_ownership_description"`
	OrchestrationLevel          string `json:"orchestration_level"`
	OrchestrationDescription    string `json:"orchestration_description"`
	IntelligenceLevel           string `json:"intelligence_level"`
	IntelligenceDescription     string `json:"intelligence_description"`
	MaturityClassification      string `json:"maturity_classification"`
	MaturityClassificationName  string `json:"maturity_classification_name"`
}

func (c *Classification) UnmarshalJSON(data []byte) error {
	*c, _ = decodeClassification(data)
	return nil
}

func (c *Classification) fields() map[string]*string {
	return map[string]*string{
		"agent":                          &c.Agent,
		"autonomy_level":                 &c.AutonomyLevel,
		"autonomy_description":           &c.AutonomyDescription,
		"proactivity_level":              &c.ProactivityLevel,
		"proactivity_description":        &c.ProactivityDescription,
		"integration_level":              &c.IntegrationLevel,
		"integration_description":        &c.IntegrationDescription,
		"use_case_ownership_level":       &c.UseCaseOwnershipLevel,
		"use_case_ownership_description": &c.UseCaseOwnershipDescription,
		"orchestration_level":            &c.OrchestrationLevel,
		"orchestration_description":      &c.OrchestrationDescription,
		"intelligence_level":             &c.IntelligenceLevel,
		"intelligence_description":       &c.IntelligenceDescription,
		"maturity_classification":        &c.MaturityClassification,
		"maturity_classification_name":   &c.MaturityClassificationName,
	}
}

// MaturityAttribute is one of the six classified attributes.
type MaturityAttribute struct {
	Key         string
	Name        string
	Level       string
	Description string
}

// Attributes lists the six attributes in display order.
func (c Classification) Attributes() []MaturityAttribute {
	return []MaturityAttribute{
		{Key: "autonomy", Name: "Autonomy", Level: c.AutonomyLevel, Description: c.AutonomyDescription},
		{Key: "proactivity", Name: "Proactivity", Level: c.ProactivityLevel, Description: c.ProactivityDescription},
		{Key: "integration", Name: "Integration", Level: c.IntegrationLevel, Description: c.IntegrationDescription},
		{Key: "use_case_ownership", Name: "Use Case Ownership", Level: c.UseCaseOwnershipLevel, Description: c.UseCaseOwnershipDescription},
		{Key: "orchestration", Name: "Orchestration", Level: c.OrchestrationLevel, Description: c.OrchestrationDescription},
		{Key: "intelligence", Name: "Intelligence", Level: c.IntelligenceLevel, Description: c.IntelligenceDescription},
	}
}

// Suggestions accepts either a single string or a list of strings.
type Suggestions []string

func (s *Suggestions) UnmarshalJSON(data []byte) error {
	*s, _ = decodeSuggestions(data)
	return nil
}

// MaturityReport is the maturity stage output. Values of the wrong JSON type
// are dropped while decoding and reported by Validate.
type MaturityReport struct {
	Classification Classification `json:"classification"`
	Suggestions    Suggestions    `json:"suggestions"`

	issues []Issue
}

func (m *MaturityReport) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = MaturityReport{}
	var issues []Issue
	m.Classification, issues = decodeClassification(fields["classification"])
	m.issues = append(m.issues, issues...)
	m.Suggestions, issues = decodeSuggestions(fields["suggestions"])
	m.issues = append(m.issues, issues...)
	return nil
}

// SectionReport is the output of a single-section stage such as prioritize.
type SectionReport struct {
	Key     string  `json:"key"`
	Section Section `json:"section"`

	issues []Issue
}
