package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/export"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/metrics"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/prompts"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/report"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/session"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

var (
	// ErrSuperseded is returned to a submission whose results were discarded
	// because a newer submission or a start-over happened meanwhile.
	ErrSuperseded = errors.New("submission superseded")
	// ErrEmptyDescription is returned for a blank agent description.
	ErrEmptyDescription = errors.New("agent description is empty")
	// ErrNoReport is returned by operations that need a submitted report.
	ErrNoReport = errors.New("no report submitted")
	// ErrNotSectionStage is returned when a stage does not produce a single
	// report section.
	ErrNotSectionStage = errors.New("stage does not produce a report section")
)

// sectionStages maps the single-section rubric stages to their section.
var sectionStages = map[prompts.Stage]string{
	prompts.StagePrioritize: report.SectionPrioritize,
	prompts.StageMarket:     report.SectionMarket,
	prompts.StageBuild:      report.SectionBuild,
	prompts.StageEvaluate:   report.SectionEvaluate,
}

// ReportError is a user-visible report failure. Message is one of the fixed
// feedback messages and Code the matching API error code.
type ReportError struct {
	Code    string
	Message string
	Err     error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// ProgressEvent reports which generation step a submission is on.
type ProgressEvent struct {
	Stage string `json:"stage"`
	Step  int    `json:"step"`
	Total int    `json:"total"`
	Label string `json:"label"`
}

// ProgressFunc receives progress events. It is called synchronously.
type ProgressFunc func(ProgressEvent)

// ReportState is the report half of a session.
type ReportState struct {
	AgentDescription string                 `json:"agent_description,omitempty"`
	IdeaSummary      string                 `json:"idea_summary,omitempty"`
	SummaryError     bool                   `json:"summary_error"`
	FeedbackData     json.RawMessage        `json:"feedback_data,omitempty"`
	MaturityData     json.RawMessage        `json:"maturity_data,omitempty"`
	Feedback         *report.FeedbackReport `json:"-"`
	Maturity         *report.MaturityReport `json:"-"`
	Error            string                 `json:"error,omitempty"`
	Submitted        bool                   `json:"submitted"`
	Loading          bool                   `json:"loading"`
	Restored         bool                   `json:"restored"`
}

// View renders the report cards for this state.
func (r ReportState) View() report.View {
	return report.Render(r.Feedback, r.Maturity)
}

// WizardView is a snapshot of a session's wizard.
type WizardView struct {
	State      wizard.State         `json:"state"`
	TotalSteps int                  `json:"total_steps"`
	Step       *wizard.Step         `json:"step,omitempty"`
	Question   string               `json:"question,omitempty"`
	Transcript []models.ChatMessage `json:"transcript"`
	Responses  wizard.ResponseSet   `json:"responses"`
}

// MaturityInsight explains how the submitted idea looks at one maturity level.
type MaturityInsight struct {
	Level     report.MaturityLevel `json:"level"`
	LevelName string               `json:"level_name"`
	Summary   string               `json:"summary"`
	Ideas     []string             `json:"ideas"`
}

type liveSession struct {
	id string

	mu           sync.Mutex
	generation   uint64
	cancel       context.CancelFunc
	report       ReportState
	wizardCancel context.CancelFunc
	narrative    string
	narrativeErr bool

	// persistMu orders snapshot writes, reads and clears. It is taken
	// before mu.
	persistMu sync.Mutex

	// wizardMu serializes wizard submissions, which block on step feedback.
	// wizardLoaded is set once stored progress has been read.
	wizardMu     sync.Mutex
	wizard       *wizard.Machine
	feedback     map[string]string
	wizardLoaded bool
}

func (ls *liveSession) cancelAll() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.cancel != nil {
		ls.cancel()
	}
	if ls.wizardCancel != nil {
		ls.wizardCancel()
	}
}

// ServiceConfig tunes the orchestration service.
type ServiceConfig struct {
	// ReportModel is sent with JSON stages that do not name a model.
	ReportModel string
	MaxSessions int
	// SessionTTL is how long a live session stays in memory after it is
	// created. Zero keeps sessions until they are evicted by size.
	SessionTTL  time.Duration
}

// Service handles report generation, the wizard and session persistence
type Service struct {
	client  GenerationClientInterface
	builder *prompts.Builder
	steps   []wizard.Step
	shim    *session.Shim
	cfg     ServiceConfig
	logger  *zap.Logger
	metrics *metrics.GenerationMetrics
	tracer  trace.Tracer

	mu       sync.Mutex
	sessions *expirable.LRU[string, *liveSession]
}

// NewService creates a new orchestration service. m may be nil.
func NewService(client GenerationClientInterface, builder *prompts.Builder, steps []wizard.Step, shim *session.Shim, cfg ServiceConfig, logger *zap.Logger, m *metrics.GenerationMetrics) *Service {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1024
	}
	onEvict := func(_ string, ls *liveSession) {
		ls.cancelAll()
	}
	return &Service{
		client:   client,
		builder:  builder,
		steps:    steps,
		shim:     shim,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("orchestration-service"),
		sessions: expirable.NewLRU[string, *liveSession](cfg.MaxSessions, onEvict, cfg.SessionTTL),
	}
}

// IsHealthy reports whether the generation endpoint is usable.
func (s *Service) IsHealthy(ctx context.Context) bool {
	return s.client.IsHealthy(ctx)
}

// Steps returns the wizard step table.
func (s *Service) Steps() []wizard.Step {
	return s.steps
}

func (s *Service) session(id string) *liveSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.sessions.Get(id); ok {
		return ls
	}
	ls := &liveSession{
		id:       id,
		wizard:   wizard.NewMachine(s.steps),
		feedback: make(map[string]string),
	}
	s.sessions.Add(id, ls)
	return ls
}

// RunStage builds the prompt for stage and sends it. JSON stages ask for a
// JSON object and fall back to the configured report model.
func (s *Service) RunStage(ctx context.Context, stage prompts.Stage, input string) (string, error) {
	messages, err := s.builder.Build(stage, input)
	if err != nil {
		return "", err
	}
	cfg, _ := s.builder.Config(stage)
	req := GenerationRequest{
		Messages:    messages,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Stage:       string(stage),
	}
	if cfg.JSON {
		req.ResponseFormat = JSONObject
		if req.Model == "" {
			req.Model = s.cfg.ReportModel
		}
	}
	return s.client.Generate(ctx, req)
}

// SubmitIdea generates the full report for description: the idea summary,
// then the combined feedback, then the maturity classification, one after
// another. Starting a submission cancels any earlier one for the session.
// A summary failure is recorded and does not stop the report.
func (s *Service) SubmitIdea(ctx context.Context, sessionID, description string, progress ProgressFunc) (ReportState, error) {
	ctx, span := s.tracer.Start(ctx, "orchestration.submit_idea")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	if strings.TrimSpace(description) == "" {
		return ReportState{}, ErrEmptyDescription
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	ls := s.session(sessionID)
	ls.mu.Lock()
	if ls.cancel != nil {
		ls.cancel()
	}
	ls.generation++
	gen := ls.generation
	genCtx, cancel := context.WithCancel(ctx)
	ls.cancel = cancel
	ls.report = ReportState{AgentDescription: description, Submitted: true, Loading: true}
	ls.mu.Unlock()
	defer cancel()

	const total = 3
	result := ReportState{AgentDescription: description, Submitted: true}

	progress(ProgressEvent{Stage: string(prompts.StageIdeaSummary), Step: 1, Total: total, Label: "Summarizing your idea"})
	summary, err := s.RunStage(genCtx, prompts.StageIdeaSummary, description)
	if !s.current(ls, gen) {
		return s.superseded(ctx, span)
	}
	if err != nil {
		s.logger.Warn("Idea summary failed", zap.String("session_id", sessionID), zap.Error(err))
		result.SummaryError = true
	} else {
		result.IdeaSummary = strings.TrimSpace(summary)
	}

	progress(ProgressEvent{Stage: string(prompts.StageCombined), Step: 2, Total: total, Label: "Scoring your blueprint"})
	rawFeedback, err := s.RunStage(genCtx, prompts.StageCombined, description)
	if !s.current(ls, gen) {
		return s.superseded(ctx, span)
	}
	if err != nil {
		return s.fail(ls, gen, span, result, &ReportError{Code: models.ErrCodeGenerationFailed, Message: models.MsgFeedbackFailed, Err: err})
	}

	progress(ProgressEvent{Stage: string(prompts.StageMaturity), Step: 3, Total: total, Label: "Classifying agent maturity"})
	rawMaturity, err := s.RunStage(genCtx, prompts.StageMaturity, description)
	if !s.current(ls, gen) {
		return s.superseded(ctx, span)
	}
	if err != nil {
		return s.fail(ls, gen, span, result, &ReportError{Code: models.ErrCodeGenerationFailed, Message: models.MsgFeedbackFailed, Err: err})
	}

	feedback, feedbackJSON, err := report.ParseFeedback(rawFeedback)
	if err != nil {
		return s.fail(ls, gen, span, result, &ReportError{Code: models.ErrCodeParseFailed, Message: models.MsgFeedbackParse, Err: err})
	}
	result.Feedback = &feedback
	result.FeedbackData = feedbackJSON

	maturity, maturityJSON, err := report.ParseMaturity(rawMaturity)
	if err != nil {
		// Feedback parsed on its own and is kept.
		return s.fail(ls, gen, span, result, &ReportError{Code: models.ErrCodeParseFailed, Message: models.MsgFeedbackParse, Err: err})
	}
	result.Maturity = &maturity
	result.MaturityData = maturityJSON

	for _, verr := range []error{feedback.Validate(), maturity.Validate()} {
		if verr != nil {
			s.logger.Warn("Report fields defaulted", zap.String("session_id", sessionID), zap.Error(verr))
		}
	}

	if !s.commit(ls, gen, result) {
		return s.superseded(ctx, span)
	}

	snap := session.Snapshot{
		AgentDescription: result.AgentDescription,
		FeedbackData:     result.FeedbackData,
		MaturityData:     result.MaturityData,
		IdeaSummary:      result.IdeaSummary,
	}
	saved, err := s.persistReport(ctx, ls, gen, snap)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("Failed to save session snapshot", zap.String("session_id", sessionID), zap.Error(err))
	}
	if !saved && err == nil {
		return s.superseded(ctx, span)
	}
	return result, nil
}

// persistReport saves snap while gen is still the latest submission. It
// reports false when the submission was superseded before the write.
func (s *Service) persistReport(ctx context.Context, ls *liveSession, gen uint64, snap session.Snapshot) (bool, error) {
	ls.persistMu.Lock()
	defer ls.persistMu.Unlock()
	if !s.current(ls, gen) {
		return false, nil
	}
	_, err := s.shim.Save(ctx, ls.id, snap)
	return err == nil, err
}

func (s *Service) current(ls *liveSession, gen uint64) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.generation == gen
}

// commit stores result when gen is still the latest submission.
func (s *Service) commit(ls *liveSession, gen uint64, result ReportState) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.generation != gen {
		return false
	}
	result.Loading = false
	ls.report = result
	ls.cancel = nil
	return true
}

func (s *Service) fail(ls *liveSession, gen uint64, span trace.Span, result ReportState, rerr *ReportError) (ReportState, error) {
	span.RecordError(rerr)
	s.logger.Warn("Report generation failed",
		zap.String("session_id", ls.id),
		zap.String("code", rerr.Code),
		zap.Error(rerr.Err),
	)
	result.Error = rerr.Message
	if !s.commit(ls, gen, result) {
		return ReportState{}, ErrSuperseded
	}
	return result, rerr
}

func (s *Service) superseded(ctx context.Context, span trace.Span) (ReportState, error) {
	span.SetAttributes(attribute.Bool("superseded", true))
	if s.metrics != nil {
		s.metrics.RecordSuperseded(ctx)
	}
	return ReportState{}, ErrSuperseded
}

// Report returns the session's report, restoring it from the persistence
// shim when the live session has none.
func (s *Service) Report(ctx context.Context, sessionID string) (ReportState, error) {
	ls := s.session(sessionID)
	ls.mu.Lock()
	if ls.report.Submitted {
		r := ls.report
		ls.mu.Unlock()
		return r, nil
	}
	ls.mu.Unlock()

	ls.persistMu.Lock()
	gen, restored, err := s.loadReport(ctx, ls)
	ls.persistMu.Unlock()
	if err != nil || !restored.Submitted {
		return ReportState{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.generation != gen || ls.report.Submitted {
		return ls.report, nil
	}
	ls.report = restored
	return restored, nil
}

// loadReport reads the stored snapshot and the generation it belongs to.
// The caller holds persistMu.
func (s *Service) loadReport(ctx context.Context, ls *liveSession) (uint64, ReportState, error) {
	ls.mu.Lock()
	gen := ls.generation
	ls.mu.Unlock()

	snap, ok, err := s.shim.Load(ctx, ls.id)
	if err != nil || !ok {
		return gen, ReportState{}, err
	}
	restored, err := restore(snap)
	if err != nil {
		s.logger.Warn("Discarding unreadable snapshot", zap.String("session_id", ls.id), zap.Error(err))
		return gen, ReportState{}, s.shim.Clear(ctx, ls.id)
	}
	return gen, restored, nil
}

func restore(snap *session.Snapshot) (ReportState, error) {
	feedback, _, err := report.ParseFeedback(string(snap.FeedbackData))
	if err != nil {
		return ReportState{}, err
	}
	maturity, _, err := report.ParseMaturity(string(snap.MaturityData))
	if err != nil {
		return ReportState{}, err
	}
	return ReportState{
		AgentDescription: snap.AgentDescription,
		IdeaSummary:      snap.IdeaSummary,
		FeedbackData:     snap.FeedbackData,
		MaturityData:     snap.MaturityData,
		Feedback:         &feedback,
		Maturity:         &maturity,
		Submitted:        true,
		Restored:         true,
	}, nil
}

// StartOver cancels any running submission, clears the report and removes
// the stored snapshot.
func (s *Service) StartOver(ctx context.Context, sessionID string) error {
	ls := s.session(sessionID)
	ls.persistMu.Lock()
	defer ls.persistMu.Unlock()

	ls.mu.Lock()
	if ls.cancel != nil {
		ls.cancel()
		ls.cancel = nil
	}
	ls.generation++
	ls.report = ReportState{}
	ls.mu.Unlock()

	return s.shim.Clear(ctx, sessionID)
}

// Wizard returns the session's wizard.
func (s *Service) Wizard(ctx context.Context, sessionID string) (WizardView, error) {
	ls, err := s.lockWizard(ctx, sessionID)
	if err != nil {
		return WizardView{}, err
	}
	defer ls.wizardMu.Unlock()
	return s.wizardView(ls), nil
}

// lockWizard returns the session with wizardMu held, reading the stored
// wizard progress on first use.
func (s *Service) lockWizard(ctx context.Context, sessionID string) (*liveSession, error) {
	ls := s.session(sessionID)
	ls.wizardMu.Lock()
	if ls.wizardLoaded {
		return ls, nil
	}

	state, ok, err := s.shim.LoadWizard(ctx, sessionID)
	if err != nil {
		ls.wizardMu.Unlock()
		return nil, err
	}
	if ok {
		m, err := wizard.RestoreMachine(s.steps, state.Progress)
		if err != nil {
			s.logger.Warn("Discarding stored wizard state", zap.String("session_id", sessionID), zap.Error(err))
			if err := s.shim.ClearWizard(ctx, sessionID); err != nil {
				ls.wizardMu.Unlock()
				return nil, err
			}
		} else {
			ls.wizard = m
			ls.feedback = make(map[string]string, len(state.Feedback))
			for id, fb := range state.Feedback {
				ls.feedback[id] = fb
			}
			ls.mu.Lock()
			ls.narrative = state.Narrative
			ls.narrativeErr = state.NarrativeFailed
			ls.mu.Unlock()
		}
	}
	ls.wizardLoaded = true
	return ls, nil
}

// persistWizard saves the wizard progress. The caller holds wizardMu. A
// failed write is logged; the live session keeps the answers.
func (s *Service) persistWizard(ctx context.Context, ls *liveSession) {
	state := session.WizardState{
		Progress: ls.wizard.Progress(),
		Feedback: make(map[string]string, len(ls.feedback)),
	}
	for id, fb := range ls.feedback {
		state.Feedback[id] = fb
	}
	ls.mu.Lock()
	state.Narrative = ls.narrative
	state.NarrativeFailed = ls.narrativeErr
	ls.mu.Unlock()

	if err := s.shim.SaveWizard(ctx, ls.id, state); err != nil {
		s.logger.Error("Failed to save wizard state", zap.String("session_id", ls.id), zap.Error(err))
	}
}

func (s *Service) wizardView(ls *liveSession) WizardView {
	view := WizardView{
		State:      ls.wizard.State(),
		TotalSteps: len(s.steps),
		Transcript: ls.wizard.Transcript(),
		Responses:  ls.wizard.Responses(),
	}
	if step, ok := ls.wizard.CurrentStep(); ok {
		view.Step = &step
		view.Question, _ = ls.wizard.CurrentQuestion()
	}
	return view
}

// SubmitAnswer records an answer. When it finishes a step the step feedback
// is fetched first; a failed fetch is reported in the outcome, not as an
// error. The new progress is saved through the persistence shim.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, answer string) (WizardView, wizard.Outcome, error) {
	ls, err := s.lockWizard(ctx, sessionID)
	if err != nil {
		return WizardView{}, wizard.Outcome{}, err
	}
	defer ls.wizardMu.Unlock()

	fetchCtx, cancel := context.WithCancel(ctx)
	ls.mu.Lock()
	ls.wizardCancel = cancel
	ls.mu.Unlock()
	defer func() {
		cancel()
		ls.mu.Lock()
		ls.wizardCancel = nil
		ls.mu.Unlock()
	}()

	out, err := ls.wizard.SubmitAnswer(fetchCtx, answer, s.stepFeedback)
	if err != nil {
		return s.wizardView(ls), out, err
	}
	if out.StepFinished {
		finished := s.steps[out.State.StepIndex-1]
		ls.feedback[finished.ID] = out.Feedback
		if out.FeedbackErr != nil {
			s.logger.Warn("Step feedback failed",
				zap.String("session_id", sessionID),
				zap.String("step", finished.ID),
				zap.Error(out.FeedbackErr),
			)
		}
	}
	s.persistWizard(ctx, ls)
	return s.wizardView(ls), out, nil
}

func (s *Service) stepFeedback(ctx context.Context, step wizard.Step, answers map[string]string) (string, error) {
	return s.RunStage(ctx, step.FeedbackStage, step.FormatAnswers(answers))
}

// ResetWizard cancels a pending step feedback fetch and starts the wizard
// over. The generated narrative and the stored progress are dropped with it.
func (s *Service) ResetWizard(ctx context.Context, sessionID string) (WizardView, error) {
	ls := s.session(sessionID)
	ls.mu.Lock()
	if ls.wizardCancel != nil {
		ls.wizardCancel()
	}
	ls.narrative = ""
	ls.narrativeErr = false
	ls.mu.Unlock()

	ls.wizardMu.Lock()
	defer ls.wizardMu.Unlock()
	ls.wizard.Reset()
	ls.feedback = make(map[string]string)
	ls.wizardLoaded = true
	if err := s.shim.ClearWizard(ctx, sessionID); err != nil {
		return s.wizardView(ls), err
	}
	return s.wizardView(ls), nil
}

// Narrative asks for a markdown overview of every wizard answer. The outcome
// is kept for the export document.
func (s *Service) Narrative(ctx context.Context, sessionID string) (string, error) {
	ls, err := s.lockWizard(ctx, sessionID)
	if err != nil {
		return "", err
	}
	responses := ls.wizard.Responses()
	ls.wizardMu.Unlock()

	data, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode responses: %w", err)
	}

	narrative, genErr := s.RunStage(ctx, prompts.StageNarrative, string(data))

	ls.wizardMu.Lock()
	defer ls.wizardMu.Unlock()
	ls.mu.Lock()
	if genErr != nil {
		ls.narrative = ""
		ls.narrativeErr = true
	} else {
		ls.narrative = narrative
		ls.narrativeErr = false
	}
	ls.mu.Unlock()
	s.persistWizard(ctx, ls)

	if genErr != nil {
		return "", genErr
	}
	return narrative, nil
}

// SummaryDocument collects what the export needs.
func (s *Service) SummaryDocument(ctx context.Context, sessionID string) (export.Document, error) {
	ls, err := s.lockWizard(ctx, sessionID)
	if err != nil {
		return export.Document{}, err
	}
	responses := ls.wizard.Responses()
	feedback := make(map[string]string, len(ls.feedback))
	for id, fb := range ls.feedback {
		feedback[id] = fb
	}
	ls.wizardMu.Unlock()

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return export.Document{
		Steps:           s.steps,
		Responses:       responses,
		Feedback:        feedback,
		Narrative:       ls.narrative,
		NarrativeFailed: ls.narrativeErr,
	}, nil
}

// StageReport runs one single-section rubric stage, such as prioritize, on
// description and parses its section. Shape problems in the response are
// defaulted and listed by the section's Validate.
func (s *Service) StageReport(ctx context.Context, stage prompts.Stage, description string) (report.SectionReport, error) {
	ctx, span := s.tracer.Start(ctx, "orchestration.stage_report")
	defer span.End()
	span.SetAttributes(attribute.String("stage", string(stage)))

	key, ok := sectionStages[stage]
	if !ok {
		return report.SectionReport{}, ErrNotSectionStage
	}
	if strings.TrimSpace(description) == "" {
		return report.SectionReport{}, ErrEmptyDescription
	}

	raw, err := s.RunStage(ctx, stage, description)
	if err != nil {
		span.RecordError(err)
		return report.SectionReport{}, &ReportError{Code: models.ErrCodeGenerationFailed, Message: models.MsgFeedbackFailed, Err: err}
	}
	sec, _, err := report.ParseSection(key, raw)
	if err != nil {
		span.RecordError(err)
		return report.SectionReport{}, &ReportError{Code: models.ErrCodeParseFailed, Message: models.MsgFeedbackParse, Err: err}
	}
	if verr := sec.Validate(); verr != nil {
		s.logger.Warn("Report fields defaulted", zap.String("stage", string(stage)), zap.Error(verr))
	}
	return sec, nil
}

// MaturityInsights describes the submitted idea at level: a short summary
// and the bullet ideas for growing into it.
func (s *Service) MaturityInsights(ctx context.Context, sessionID string, level report.MaturityLevel) (MaturityInsight, error) {
	state, err := s.Report(ctx, sessionID)
	if err != nil {
		return MaturityInsight{}, err
	}
	if state.AgentDescription == "" {
		return MaturityInsight{}, ErrNoReport
	}

	summary, err := s.RunStage(ctx, prompts.StageMaturitySummary,
		fmt.Sprintf("Agent: %s\n\nMaturity Level: %s", state.AgentDescription, level))
	if err != nil {
		return MaturityInsight{}, fmt.Errorf("failed to generate maturity summary: %w", err)
	}
	expanded, err := s.RunStage(ctx, prompts.StageExpandedIdea,
		fmt.Sprintf("Agent: %s\n\nTarget Level: %s", state.AgentDescription, level))
	if err != nil {
		return MaturityInsight{}, fmt.Errorf("failed to generate expanded idea: %w", err)
	}

	return MaturityInsight{
		Level:     level,
		LevelName: level.Info().Name,
		Summary:   strings.TrimSpace(summary),
		Ideas:     ParseBullets(expanded),
	}, nil
}

// ParseBullets keeps the lines starting with "- " and strips the marker.
func ParseBullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			out = append(out, line[2:])
		}
	}
	return out
}
