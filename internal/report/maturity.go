package report

import "strings"

// MaturityLevel is the three-step agent maturity ordinal.
type MaturityLevel string

const (
	LevelL0 MaturityLevel = "L0"
	LevelL1 MaturityLevel = "L1"
	LevelL2 MaturityLevel = "L2"
)

// Levels lists the maturity ladder in order.
var Levels = []MaturityLevel{LevelL0, LevelL1, LevelL2}

// LevelInfo names a maturity level.
type LevelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var levelInfo = map[MaturityLevel]LevelInfo{
	LevelL0: {
		Name:        "Connector Agent",
		Description: "Passively push and pull data from external sources with simple data ingress/egress, minimal decision-making, and no end-to-end use case ownership.",
	},
	LevelL1: {
		Name:        "Task Agent",
		Description: "Built to solve defined use cases, often across multiple tools, and may call other agents or use internal skills with some opinion about their role.",
	},
	LevelL2: {
		Name:        "Collaborative Agent",
		Description: "Strategic agents that coordinate end-to-end workflows, invoke other agents and tools to achieve outcomes, and are proactive by design.",
	},
}

// Info returns the display name and description of l.
func (l MaturityLevel) Info() LevelInfo {
	return levelInfo[l]
}

// Index is the position of l on the ladder, or -1.
func (l MaturityLevel) Index() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return -1
}

// ParseMaturityLevel accepts l0, l1 or l2 in any case.
func ParseMaturityLevel(s string) (MaturityLevel, bool) {
	lv := MaturityLevel(strings.ToUpper(strings.TrimSpace(s)))
	if lv.Index() < 0 {
		return "", false
	}
	return lv, true
}

// LevelFromClassification reads a free-form classification: anything
// mentioning low or l0 is L0, high or l2 is L2, and everything else is L1.
// The bool is false when nothing recognizable was found.
func LevelFromClassification(classification string) (MaturityLevel, bool) {
	s := strings.ToLower(classification)
	switch {
	case strings.Contains(s, "low") || strings.Contains(s, "l0"):
		return LevelL0, true
	case strings.Contains(s, "high") || strings.Contains(s, "l2"):
		return LevelL2, true
	case strings.Contains(s, "medium") || strings.Contains(s, "l1"):
		return LevelL1, true
	}
	return LevelL1, false
}

// SliderStop is one labelled point on the maturity slider.
type SliderStop struct {
	Level    MaturityLevel `json:"level"`
	Name     string        `json:"name"`
	Color    string        `json:"color"`
	Position float64       `json:"position"`
}

var sliderNames = map[MaturityLevel]string{
	LevelL0: "Connector Agent",
	LevelL1: "Solution Agent",
	LevelL2: "Workflow Agent",
}

var sliderColors = map[MaturityLevel]string{
	LevelL0: "red",
	LevelL1: "yellow",
	LevelL2: "green",
}

// SliderPosition is index/(n-1)*100 for l.
func SliderPosition(l MaturityLevel) float64 {
	i := l.Index()
	if i < 0 {
		i = LevelL1.Index()
	}
	return float64(i) / float64(len(Levels)-1) * 100
}

// SliderStops returns the three slider markers.
func SliderStops() []SliderStop {
	stops := make([]SliderStop, 0, len(Levels))
	for _, l := range Levels {
		stops = append(stops, SliderStop{
			Level:    l,
			Name:     sliderNames[l],
			Color:    sliderColors[l],
			Position: SliderPosition(l),
		})
	}
	return stops
}

// attributeReference describes what each maturity attribute looks like at
// each level.
var attributeReference = map[string]map[MaturityLevel]string{
	"Autonomy": {
		LevelL0: "No decision-making authority. Requires explicit invocation for every action.",
		LevelL1: "Partial autonomy with limited initiative within defined scope and boundaries.",
		LevelL2: "High autonomy with independent decision-making to achieve strategic goals.",
	},
	"Proactivity": {
		LevelL0: "Purely reactive. Only responds to direct user requests or external triggers.",
		LevelL1: "Sometimes proactive with scheduled actions and context-based suggestions.",
		LevelL2: "Fully proactive. Initiates actions based on monitoring and predictive insights.",
	},
	"Integration": {
		LevelL0: "Basic 2-way data sync with single sources like calendar or CRM systems.",
		LevelL1: "Multi-tool integration with ability to pull data and coordinate across platforms.",
		LevelL2: "Comprehensive integration across all relevant tools and systems in workflow.",
	},
	"Use Case Ownership": {
		LevelL0: "No end-to-end ownership. Acts only as utility for specific data operations.",
		LevelL1: "Owns single job-to-be-done with defined scope and clear boundaries.",
		LevelL2: "Full workflow ownership with responsibility for complex multi-step outcomes.",
	},
	"Orchestration": {
		LevelL0: "No coordination capabilities. Cannot delegate or manage other agents.",
		LevelL1: "Can coordinate sub-tasks and call helper agents within defined workflow.",
		LevelL2: "Advanced orchestration of multiple agents, tools, and complex processes.",
	},
	"Intelligence": {
		LevelL0: "No contextual understanding or learning. Pure data access and manipulation.",
		LevelL1: "Uses user and content context with short-term memory and basic adaptation.",
		LevelL2: "Deep contextual intelligence with long-term memory and continuous learning.",
	},
}

// AttributeReference returns the reference description of attribute at level.
func AttributeReference(attribute string, level MaturityLevel) string {
	return attributeReference[attribute][level]
}
