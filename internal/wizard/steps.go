package wizard

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/prompts"
)

// Step is one page of the blueprint wizard.
type Step struct {
	ID            string        `yaml:"id" json:"id"`
	Title         string        `yaml:"title" json:"title"`
	Info          string        `yaml:"info" json:"info"`
	Questions     []string      `yaml:"questions" json:"questions"`
	FeedbackStage prompts.Stage `yaml:"feedback_stage" json:"feedback_stage"`
}

// PromptFor is the assistant message shown when question i becomes active.
func (s Step) PromptFor(i int) string {
	return fmt.Sprintf("%s: %s\n\n%s", s.Title, s.Info, s.Questions[i])
}

// FormatAnswers renders answers as "question: answer" lines in question order.
// Unanswered questions are skipped.
func (s Step) FormatAnswers(answers map[string]string) string {
	lines := make([]string, 0, len(s.Questions))
	for _, q := range s.Questions {
		a, ok := answers[q]
		if !ok {
			continue
		}
		lines = append(lines, q+": "+a)
	}
	return strings.Join(lines, "\n")
}

//go:embed steps.yaml
var defaultStepsYAML []byte

// ParseSteps decodes a YAML step table and checks it is usable.
func ParseSteps(data []byte) ([]Step, error) {
	var file struct {
		Steps []Step `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse steps: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("no steps defined")
	}
	seen := make(map[string]bool, len(file.Steps))
	for _, s := range file.Steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step without id")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate step id %q", s.ID)
		}
		seen[s.ID] = true
		if len(s.Questions) == 0 {
			return nil, fmt.Errorf("step %q has no questions", s.ID)
		}
	}
	return file.Steps, nil
}

// DefaultSteps returns the four blueprint steps: prioritize, market, build, evaluate.
func DefaultSteps() []Step {
	steps, err := ParseSteps(defaultStepsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded steps.yaml is invalid: %v", err))
	}
	return steps
}

// FindStep looks a step up by id.
func FindStep(steps []Step, id string) (Step, bool) {
	for _, s := range steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}
