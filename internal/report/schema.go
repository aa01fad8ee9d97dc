package report

import "strings"

// Section keys of the combined report.
const (
	SectionPrioritize = "Prioritize"
	SectionMarket     = "Market"
	SectionBuild      = "Build"
	SectionEvaluate   = "Evaluate"
)

// Scale says how an attribute value becomes a position.
type Scale int

const (
	// ScaleLevel uses the five-bucket vocabulary (see ScoreLabel).
	ScaleLevel Scale = iota
	// ScaleOrdinal spreads Options evenly over 1..5 in listed order.
	ScaleOrdinal
	// ScaleNominal has no position; only badges are shown.
	ScaleNominal
)

// AttributeSpec describes one leaf of a section.
type AttributeSpec struct {
	Key     string
	Name    string
	Scale   Scale
	Options []string
}

// SectionSpec describes one section of the combined report.
type SectionSpec struct {
	Key        string
	Title      string
	Attributes []AttributeSpec
}

var threeLevels = []string{"Low", "Medium", "High"}

var fiveLevels = []string{"Low", "Medium-Low", "Medium", "Medium-High", "High"}

// Sections is the canonical report schema in display order.
var Sections = []SectionSpec{
	{
		Key:   SectionPrioritize,
		Title: "Prioritize",
		Attributes: []AttributeSpec{
			{Key: "Relevance", Name: "Relevance", Scale: ScaleLevel, Options: threeLevels},
			{Key: "Capability", Name: "Capability", Scale: ScaleOrdinal, Options: []string{"XS", "S", "M", "L", "XL"}},
			{Key: "StrategicAlignment", Name: "Strategic Alignment", Scale: ScaleLevel, Options: threeLevels},
			{Key: "BusinessImpact", Name: "Business Impact", Scale: ScaleOrdinal, Options: []string{"Expand", "Double-Down", "Right-to-Win"}},
		},
	},
	{
		Key:   SectionMarket,
		Title: "Market",
		Attributes: []AttributeSpec{
			{Key: "UserType", Name: "User Type", Scale: ScaleNominal, Options: []string{"Knowledge Worker", "Student", "Developer"}},
			{Key: "BehavioralSegment", Name: "Behavioral Segment", Scale: ScaleNominal, Options: []string{"Early Adopter", "Mainstream", "Late Adopter"}},
			{Key: "UserAIMindset", Name: "User AI Mindset", Scale: ScaleNominal, Options: []string{"Enthusiast", "Pragmatist", "Skeptic"}},
		},
	},
	{
		Key:   SectionBuild,
		Title: "Build",
		Attributes: []AttributeSpec{
			{Key: "Scope", Name: "Scope", Scale: ScaleNominal, Options: []string{"Narrow", "Broad"}},
			{Key: "Anchor", Name: "Anchor", Scale: ScaleNominal, Options: []string{"Task", "User", "Context"}},
			{Key: "Control", Name: "Control", Scale: ScaleLevel, Options: threeLevels},
			{Key: "Humanity", Name: "Humanity", Scale: ScaleLevel, Options: threeLevels},
			{Key: "Mediation", Name: "Mediation", Scale: ScaleNominal, Options: []string{"Direct", "Indirect"}},
		},
	},
	{
		Key:   SectionEvaluate,
		Title: "Evaluate",
		Attributes: []AttributeSpec{
			{Key: "UserFeedback", Name: "User Feedback", Scale: ScaleLevel, Options: fiveLevels},
			{Key: "Metrics", Name: "Metrics", Scale: ScaleLevel, Options: fiveLevels},
			{Key: "Improvements", Name: "Improvements", Scale: ScaleLevel, Options: fiveLevels},
		},
	},
}

// FindSection returns the spec for key.
func FindSection(key string) (SectionSpec, bool) {
	for _, s := range Sections {
		if s.Key == key {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// canonical folds case, spaces and underscores so "Right to Win" matches
// "Right-to-Win".
func canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}

// optionIndex finds value among the spec options.
func (a AttributeSpec) optionIndex(value string) int {
	v := canonical(value)
	if v == "" {
		return -1
	}
	for i, opt := range a.Options {
		if canonical(opt) == v {
			return i
		}
	}
	return -1
}

// score resolves value to a 1..5 score. The bool is false when the value was
// not recognized and the midpoint default was used.
func (a AttributeSpec) score(value string) (int, bool) {
	switch a.Scale {
	case ScaleLevel:
		return ScoreLabel(value)
	case ScaleOrdinal:
		i := a.optionIndex(value)
		if i < 0 {
			return DefaultScore, false
		}
		if len(a.Options) == 1 {
			return DefaultScore, true
		}
		return MinScore + i*(MaxScore-MinScore)/(len(a.Options)-1), true
	}
	return 0, a.optionIndex(value) >= 0
}
