package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
)

var (
	// ErrComplete is returned for submissions after the last step.
	ErrComplete = errors.New("wizard is complete")
	// ErrEmptyAnswer is returned for blank answers; nothing is recorded.
	ErrEmptyAnswer = errors.New("answer is empty")
)

// FeedbackFunc fetches assistant feedback for a finished step.
type FeedbackFunc func(ctx context.Context, step Step, answers map[string]string) (string, error)

// State is the position of the wizard. StepIndex equals the number of steps
// once the wizard is complete.
type State struct {
	StepIndex     int  `json:"step_index"`
	QuestionIndex int  `json:"question_index"`
	Complete      bool `json:"complete"`
}

// Outcome describes what a single submission did.
type Outcome struct {
	State        State
	StepFinished bool
	Feedback     string
	FeedbackErr  error
}

// Machine sequences the wizard steps. It is not safe for concurrent use.
type Machine struct {
	steps         []Step
	stepIndex     int
	questionIndex int
	responses     ResponseSet
	transcript    []models.ChatMessage
}

// NewMachine starts at (0, 0) with the first question already in the transcript.
func NewMachine(steps []Step) *Machine {
	m := &Machine{steps: steps}
	m.Reset()
	return m
}

// Reset discards answers and transcript and returns to the first question.
func (m *Machine) Reset() {
	m.stepIndex = 0
	m.questionIndex = 0
	m.responses = make(ResponseSet)
	m.transcript = nil
	m.announce()
}

// State returns the current position.
func (m *Machine) State() State {
	return State{
		StepIndex:     m.stepIndex,
		QuestionIndex: m.questionIndex,
		Complete:      m.Complete(),
	}
}

// Complete reports whether every step has been answered.
func (m *Machine) Complete() bool {
	return m.stepIndex >= len(m.steps)
}

// Steps returns the step table.
func (m *Machine) Steps() []Step {
	return m.steps
}

// CurrentStep returns the active step, or false when complete.
func (m *Machine) CurrentStep() (Step, bool) {
	if m.Complete() {
		return Step{}, false
	}
	return m.steps[m.stepIndex], true
}

// CurrentQuestion returns the active question, or false when complete.
func (m *Machine) CurrentQuestion() (string, bool) {
	step, ok := m.CurrentStep()
	if !ok {
		return "", false
	}
	return step.Questions[m.questionIndex], true
}

// Responses returns a copy of the recorded answers.
func (m *Machine) Responses() ResponseSet {
	return m.responses.Clone()
}

// Transcript returns a copy of the chat transcript.
func (m *Machine) Transcript() []models.ChatMessage {
	out := make([]models.ChatMessage, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// SubmitAnswer records text for the active question and advances. On the last
// question of a step it calls fetch with that step's answers; a fetch error is
// replaced by a fixed apology and the wizard still advances.
func (m *Machine) SubmitAnswer(ctx context.Context, text string, fetch FeedbackFunc) (Outcome, error) {
	if m.Complete() {
		return Outcome{State: m.State()}, ErrComplete
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{State: m.State()}, ErrEmptyAnswer
	}

	step := m.steps[m.stepIndex]
	question := step.Questions[m.questionIndex]
	m.responses.Record(step.ID, question, text)
	m.transcript = append(m.transcript, models.ChatMessage{Role: models.RoleUser, Content: text})

	var out Outcome
	if m.questionIndex == len(step.Questions)-1 {
		out.StepFinished = true
		if fetch != nil {
			feedback, err := fetch(ctx, step, m.responses.Step(step.ID))
			if err != nil {
				out.FeedbackErr = err
				feedback = models.MsgStepFeedbackError
			}
			out.Feedback = feedback
			m.transcript = append(m.transcript, models.ChatMessage{Role: models.RoleAssistant, Content: feedback})
		}
		m.stepIndex++
		m.questionIndex = 0
	} else {
		m.questionIndex++
	}

	m.announce()
	out.State = m.State()
	return out, nil
}

func (m *Machine) announce() {
	step, ok := m.CurrentStep()
	if !ok {
		return
	}
	m.transcript = append(m.transcript, models.ChatMessage{
		Role:    models.RoleAssistant,
		Content: step.PromptFor(m.questionIndex),
	})
}

// Progress is the serializable state of a Machine.
type Progress struct {
	StepIndex     int                  `json:"stepIndex"`
	QuestionIndex int                  `json:"questionIndex"`
	Responses     ResponseSet          `json:"responses"`
	Transcript    []models.ChatMessage `json:"transcript"`
}

// Progress returns a copy of the machine's state.
func (m *Machine) Progress() Progress {
	return Progress{
		StepIndex:     m.stepIndex,
		QuestionIndex: m.questionIndex,
		Responses:     m.Responses(),
		Transcript:    m.Transcript(),
	}
}

// RestoreMachine rebuilds a machine from saved progress. Progress that does
// not fit steps is rejected.
func RestoreMachine(steps []Step, p Progress) (*Machine, error) {
	switch {
	case p.StepIndex < 0 || p.StepIndex > len(steps):
		return nil, fmt.Errorf("step index %d out of range", p.StepIndex)
	case p.StepIndex == len(steps) && p.QuestionIndex != 0:
		return nil, fmt.Errorf("question index %d set on a complete wizard", p.QuestionIndex)
	case p.StepIndex < len(steps) && (p.QuestionIndex < 0 || p.QuestionIndex >= len(steps[p.StepIndex].Questions)):
		return nil, fmt.Errorf("question index %d out of range for step %q", p.QuestionIndex, steps[p.StepIndex].ID)
	}
	m := &Machine{
		steps:         steps,
		stepIndex:     p.StepIndex,
		questionIndex: p.QuestionIndex,
		responses:     p.Responses.Clone(),
		transcript:    append([]models.ChatMessage(nil), p.Transcript...),
	}
	if len(m.transcript) == 0 {
		m.announce()
	}
	return m, nil
}
