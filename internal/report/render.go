package report

import (
	"errors"
	"strings"
)

// Badge is one option of a categorical attribute.
type Badge struct {
	Option   string `json:"option"`
	Selected bool   `json:"selected"`
}

// AttributeView is the visual model of one attribute.
type AttributeView struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Value       string  `json:"value"`
	Rationale   string  `json:"rationale,omitempty"`
	Description string  `json:"description,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	Scored      bool    `json:"scored"`
	Score       int     `json:"score,omitempty"`
	Position    float64 `json:"position"`
	Color       string  `json:"color"`
	LevelLabel  string  `json:"level_label,omitempty"`
	Badges      []Badge `json:"badges,omitempty"`
	Defaulted   bool    `json:"defaulted"`
}

// SectionView is one report card.
type SectionView struct {
	Key        string          `json:"key"`
	Title      string          `json:"title"`
	Attributes []AttributeView `json:"attributes"`
}

// MaturityView is the maturity card with its slider and attribute bars.
type MaturityView struct {
	Agent              string          `json:"agent,omitempty"`
	Level              MaturityLevel   `json:"level"`
	LevelName          string          `json:"level_name"`
	LevelDescription   string          `json:"level_description"`
	ClassificationName string          `json:"classification_name,omitempty"`
	SliderPosition     float64         `json:"slider_position"`
	Stops              []SliderStop    `json:"stops"`
	Attributes         []AttributeView `json:"attributes"`
	Suggestions        []string        `json:"suggestions,omitempty"`
	Defaulted          bool            `json:"defaulted"`
}

// View is everything needed to draw a report.
type View struct {
	Sections []SectionView `json:"sections,omitempty"`
	Maturity *MaturityView `json:"maturity,omitempty"`
	Issues   []Issue       `json:"issues,omitempty"`
}

// RenderAttribute maps one leaf to its visual model. A nil leaf renders as a
// defaulted attribute.
func RenderAttribute(spec AttributeSpec, leaf *Leaf) AttributeView {
	v := AttributeView{Key: spec.Key, Name: spec.Name}
	if leaf != nil {
		v.Value = strings.TrimSpace(leaf.Value())
		v.Rationale = leaf.Rationale
	}

	score, recognized := spec.score(v.Value)
	v.Defaulted = !recognized
	if spec.Scale != ScaleNominal {
		v.Scored = true
		v.Score = score
		v.Position = Position(score)
		v.Color = ColorForScore(score)
		v.LevelLabel = LevelLabel(score)
	} else {
		v.Color = NeutralColor
	}

	if len(spec.Options) > 0 {
		selected := spec.optionIndex(v.Value)
		v.Badges = make([]Badge, len(spec.Options))
		for i, opt := range spec.Options {
			v.Badges[i] = Badge{Option: opt, Selected: i == selected}
		}
	}
	return v
}

// RenderSection maps a section to a card. Missing leaves are defaulted.
func RenderSection(spec SectionSpec, s Section) SectionView {
	view := SectionView{Key: spec.Key, Title: spec.Title}
	for _, attr := range spec.Attributes {
		var leaf *Leaf
		if l, ok := s[attr.Key]; ok {
			leaf = &l
		}
		view.Attributes = append(view.Attributes, RenderAttribute(attr, leaf))
	}
	return view
}

// RenderMaturity maps a maturity classification to its card.
func RenderMaturity(m MaturityReport) MaturityView {
	c := m.Classification
	level, ok := ParseMaturityLevel(c.MaturityClassification)
	recognized := ok
	if !ok {
		level, recognized = LevelFromClassification(c.MaturityClassification)
	}
	info := level.Info()

	view := MaturityView{
		Agent:              c.Agent,
		Level:              level,
		LevelName:          info.Name,
		LevelDescription:   info.Description,
		ClassificationName: c.MaturityClassificationName,
		SliderPosition:     SliderPosition(level),
		Stops:              SliderStops(),
		Suggestions:        []string(m.Suggestions),
		Defaulted:          !recognized,
	}
	for _, attr := range c.Attributes() {
		score, known := ScoreLabel(attr.Level)
		view.Attributes = append(view.Attributes, AttributeView{
			Key:         attr.Key,
			Name:        attr.Name,
			Value:       attr.Level,
			Description: attr.Description,
			Reference:   AttributeReference(attr.Name, level),
			Scored:      true,
			Score:       score,
			Position:    Position(score),
			Color:       ColorForScore(score),
			LevelLabel:  LevelLabel(score),
			Defaulted:   !known,
		})
	}
	return view
}

// Render builds the full view. Either input may be nil. Validation issues
// from both are collected into View.Issues.
func Render(feedback *FeedbackReport, maturity *MaturityReport) View {
	var view View
	if feedback != nil {
		for _, spec := range Sections {
			view.Sections = append(view.Sections, RenderSection(spec, feedback.Section(spec.Key)))
		}
		view.Issues = append(view.Issues, issuesOf(feedback.Validate())...)
	}
	if maturity != nil {
		mv := RenderMaturity(*maturity)
		view.Maturity = &mv
		view.Issues = append(view.Issues, issuesOf(maturity.Validate())...)
	}
	return view
}

func issuesOf(err error) []Issue {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}

// StageView is the card of a single-section stage.
type StageView struct {
	Section SectionView `json:"section"`
	Issues  []Issue     `json:"issues,omitempty"`
}

// RenderSectionReport renders a single-section stage with its issues.
func RenderSectionReport(s SectionReport) StageView {
	spec, _ := FindSection(s.Key)
	return StageView{
		Section: RenderSection(spec, s.Section),
		Issues:  issuesOf(s.Validate()),
	}
}
