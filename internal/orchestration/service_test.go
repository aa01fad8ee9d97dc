package orchestration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/prompts"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/report"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/session"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

const combinedFixture = `{"Prioritize":{"Relevance":{"score":"High","rationale":"Used daily."},"Capability":{"score":"M","rationale":"Needs tuning."},"StrategicAlignment":{"score":"Medium","rationale":"Adjacent."},"BusinessImpact":{"score":"Right to Win","rationale":"Core engine."}},"Market":{"UserType":{"label":"Knowledge Worker","rationale":"Office users."}},"Build":{"Control":{"label":"High","rationale":"User approves."}},"Evaluate":{"Metrics":{"score":"Medium","rationale":"Measurable."}}}`

const maturityFixture = `{"classification":{"agent":"Calendar Sync","autonomy_level":"Low","autonomy_description":"Runs on request.","maturity_classification":"L1","maturity_classification_name":"Task Agent"},"suggestions":["Detect conflicts"]}`

// mockGenerator answers by stage and records every request.
type mockGenerator struct {
	mu       sync.Mutex
	requests []GenerationRequest
	respond  func(ctx context.Context, req GenerationRequest) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	respond := m.respond
	m.mu.Unlock()
	if respond != nil {
		return respond(ctx, req)
	}
	return defaultResponse(req)
}

func (m *mockGenerator) IsHealthy(ctx context.Context) bool {
	return true
}

func (m *mockGenerator) stages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, r.Stage)
	}
	return out
}

func (m *mockGenerator) last(stage prompts.Stage) (GenerationRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.requests) - 1; i >= 0; i-- {
		if m.requests[i].Stage == string(stage) {
			return m.requests[i], true
		}
	}
	return GenerationRequest{}, false
}

func defaultResponse(req GenerationRequest) (string, error) {
	switch prompts.Stage(req.Stage) {
	case prompts.StageIdeaSummary:
		return "Calendar sync agent for busy teams", nil
	case prompts.StageCombined:
		return combinedFixture, nil
	case prompts.StageMaturity:
		return "```json\n" + maturityFixture + "\n```", nil
	case prompts.StageNarrative:
		return "## Executive Summary\nSolid plan.", nil
	case prompts.StageMaturitySummary:
		return "At this level the agent coordinates calendars on its own.", nil
	case prompts.StageExpandedIdea:
		return "Here are ideas:\n- Predict conflicts\n- Reschedule automatically\n  - Coordinate with travel agents", nil
	}
	return "Feedback for " + req.Stage, nil
}

type serviceFixture struct {
	svc   *Service
	gen   *mockGenerator
	store *session.MemoryStore
	shim  *session.Shim
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	store, err := session.NewMemoryStore(64)
	require.NoError(t, err)
	return newServiceFixtureWithStore(t, store)
}

func newServiceFixtureWithStore(t *testing.T, store *session.MemoryStore) serviceFixture {
	t.Helper()
	gen := &mockGenerator{}
	shim := session.NewShim(store, zap.NewNop(), nil)
	svc := NewService(gen, prompts.NewDefaultBuilder(), wizard.DefaultSteps(), shim,
		ServiceConfig{ReportModel: "gpt-4.1", MaxSessions: 16}, zap.NewNop(), nil)
	return serviceFixture{svc: svc, gen: gen, store: store, shim: shim}
}

func TestService_SubmitIdea(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newServiceFixture(t)
	ctx := context.Background()

	var events []ProgressEvent
	state, err := f.svc.SubmitIdea(ctx, "s1", "Agent that syncs calendar events", func(e ProgressEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"idea-summary", "combined", "maturity"}, f.gen.stages())
	require.Len(t, events, 3)
	assert.Equal(t, 1, events[0].Step)
	assert.Equal(t, 3, events[2].Step)
	assert.Equal(t, 3, events[2].Total)

	assert.True(t, state.Submitted)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, "Calendar sync agent for busy teams", state.IdeaSummary)
	require.NotNil(t, state.Feedback)
	assert.Equal(t, "High", state.Feedback.Prioritize["Relevance"].Value())
	require.NotNil(t, state.Maturity)
	assert.Equal(t, maturityFixture, string(state.MaturityData))

	view := state.View()
	assert.Len(t, view.Sections, len(report.Sections))
	require.NotNil(t, view.Maturity)
	assert.Equal(t, report.LevelL1, view.Maturity.Level)

	snap, ok, err := f.shim.Load(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, combinedFixture, string(snap.FeedbackData))
	assert.Equal(t, "Agent that syncs calendar events", snap.AgentDescription)

	combined, ok := f.gen.last(prompts.StageCombined)
	require.True(t, ok)
	assert.Equal(t, "gpt-4.1", combined.Model)
	assert.Equal(t, JSONObject, combined.ResponseFormat)
	require.NotNil(t, combined.Temperature)
	assert.Equal(t, 0.0, *combined.Temperature)
	assert.Contains(t, combined.Messages[1].Content, "Agent that syncs calendar events")
}

func TestService_SubmitIdea_EmptyDescription(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.SubmitIdea(context.Background(), "s1", "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyDescription)
	assert.Empty(t, f.gen.stages())
}

func TestService_SubmitIdea_SummaryFailureContinues(t *testing.T) {
	f := newServiceFixture(t)
	f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
		if req.Stage == string(prompts.StageIdeaSummary) {
			return "", ErrRequestFailed
		}
		return defaultResponse(req)
	}

	state, err := f.svc.SubmitIdea(context.Background(), "s1", "Agent that syncs calendar events", nil)
	require.NoError(t, err)
	assert.True(t, state.SummaryError)
	assert.NotNil(t, state.Feedback)
	assert.NotNil(t, state.Maturity)

	// Without a summary the snapshot is incomplete and not stored.
	assert.Equal(t, 0, f.store.Len())
}

func TestService_SubmitIdea_Failures(t *testing.T) {
	tests := []struct {
		name         string
		failStage    prompts.Stage
		response     string
		err          error
		wantMessage  string
		wantCode     string
		keepFeedback bool
	}{
		{
			name:        "feedback request fails",
			failStage:   prompts.StageCombined,
			err:         ErrRequestFailed,
			wantMessage: models.MsgFeedbackFailed,
			wantCode:    models.ErrCodeGenerationFailed,
		},
		{
			name:        "maturity request fails",
			failStage:   prompts.StageMaturity,
			err:         ErrRequestFailed,
			wantMessage: models.MsgFeedbackFailed,
			wantCode:    models.ErrCodeGenerationFailed,
		},
		{
			name:        "feedback is not json",
			failStage:   prompts.StageCombined,
			response:    "Sure! Here is your report.",
			wantMessage: models.MsgFeedbackParse,
			wantCode:    models.ErrCodeParseFailed,
		},
		{
			name:         "maturity is not json",
			failStage:    prompts.StageMaturity,
			response:     "{broken",
			wantMessage:  models.MsgFeedbackParse,
			wantCode:     models.ErrCodeParseFailed,
			keepFeedback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
				if req.Stage == string(tt.failStage) {
					return tt.response, tt.err
				}
				return defaultResponse(req)
			}

			state, err := f.svc.SubmitIdea(context.Background(), "s1", "Agent that syncs calendar events", nil)
			require.Error(t, err)

			var rerr *ReportError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.wantMessage, rerr.Message)
			assert.Equal(t, tt.wantCode, rerr.Code)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.ErrorIs(t, err, report.ErrParse)
			}

			assert.Equal(t, tt.wantMessage, state.Error)
			assert.False(t, state.Loading)
			assert.Equal(t, tt.keepFeedback, state.Feedback != nil)
			assert.Nil(t, state.Maturity)

			stored, err := f.svc.Report(context.Background(), "s1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, stored.Error)
			assert.Equal(t, 0, f.store.Len())
		})
	}
}

func TestService_SubmitIdea_Superseded(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newServiceFixture(t)

	started := make(chan struct{})
	f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
		if req.Stage == string(prompts.StageCombined) && strings.Contains(req.Messages[1].Content, "first idea") {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return defaultResponse(req)
	}

	type result struct {
		state ReportState
		err   error
	}
	firstDone := make(chan result, 1)
	go func() {
		state, err := f.svc.SubmitIdea(context.Background(), "s1", "first idea", nil)
		firstDone <- result{state, err}
	}()

	<-started
	second, err := f.svc.SubmitIdea(context.Background(), "s1", "second idea", nil)
	require.NoError(t, err)

	first := <-firstDone
	assert.ErrorIs(t, first.err, ErrSuperseded)

	current, err := f.svc.Report(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "second idea", current.AgentDescription)
	assert.Equal(t, second.IdeaSummary, current.IdeaSummary)
	assert.Empty(t, current.Error)
}

func TestService_StartOverCancelsSubmission(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitIdea(ctx, "s1", "Agent that syncs calendar events", nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.store.Len())

	started := make(chan struct{})
	f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
		if req.Stage == string(prompts.StageIdeaSummary) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return defaultResponse(req)
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.SubmitIdea(ctx, "s1", "another idea", nil)
		done <- err
	}()
	<-started

	require.NoError(t, f.svc.StartOver(ctx, "s1"))
	assert.ErrorIs(t, <-done, ErrSuperseded)

	state, err := f.svc.Report(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.Submitted)
	assert.Equal(t, 0, f.store.Len())
}

// gatedStore holds the first snapshot write until release is closed.
type gatedStore struct {
	*session.MemoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Set(ctx context.Context, key string, value []byte) error {
	if strings.HasPrefix(key, session.DefaultNamespace+":") {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.MemoryStore.Set(ctx, key, value)
}

func TestService_StartOverDuringSnapshotSave(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx := context.Background()
	mem, err := session.NewMemoryStore(8)
	require.NoError(t, err)
	store := &gatedStore{MemoryStore: mem, entered: make(chan struct{}), release: make(chan struct{})}
	shim := session.NewShim(store, zap.NewNop(), nil)
	svc := NewService(&mockGenerator{}, prompts.NewDefaultBuilder(), wizard.DefaultSteps(), shim,
		ServiceConfig{ReportModel: "gpt-4.1", MaxSessions: 16}, zap.NewNop(), nil)

	submitted := make(chan error, 1)
	go func() {
		_, err := svc.SubmitIdea(ctx, "s1", "Agent that syncs calendar events", nil)
		submitted <- err
	}()
	<-store.entered

	stopped := make(chan error, 1)
	go func() {
		stopped <- svc.StartOver(ctx, "s1")
	}()

	// StartOver waits for the write in flight instead of racing it.
	select {
	case err := <-stopped:
		t.Fatalf("StartOver returned while a snapshot write was pending: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(store.release)

	require.NoError(t, <-stopped)
	<-submitted

	state, err := svc.Report(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.Submitted)
	_, err = mem.Get(ctx, shim.Key("s1"))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestService_ReportRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewMemoryStore(8)
	require.NoError(t, err)

	first := newServiceFixtureWithStore(t, store)
	submitted, err := first.svc.SubmitIdea(ctx, "s1", "Agent that syncs calendar events", nil)
	require.NoError(t, err)

	// A fresh service has no live session and falls back to the store.
	second := newServiceFixtureWithStore(t, store)
	restored, err := second.svc.Report(ctx, "s1")
	require.NoError(t, err)

	assert.True(t, restored.Restored)
	assert.True(t, restored.Submitted)
	assert.Equal(t, submitted.AgentDescription, restored.AgentDescription)
	assert.Equal(t, submitted.IdeaSummary, restored.IdeaSummary)
	assert.Equal(t, string(submitted.FeedbackData), string(restored.FeedbackData))
	assert.Equal(t, string(submitted.MaturityData), string(restored.MaturityData))
	assert.Equal(t, submitted.View(), restored.View())
	assert.Empty(t, second.gen.stages())
}

func TestService_ReportIgnoresIncompleteSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	partial := `{"agentDescription":"Agent that syncs calendar events","feedbackData":` + combinedFixture + `,"ideaSummary":"Calendar sync"}`
	require.NoError(t, f.store.Set(ctx, f.shim.Key("s1"), []byte(partial)))

	state, err := f.svc.Report(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.Submitted)
	assert.Equal(t, 0, f.store.Len())
}

func TestService_Wizard(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newServiceFixture(t)
	ctx := context.Background()

	view, err := f.svc.Wizard(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, wizard.State{}, view.State)
	assert.Equal(t, 4, view.TotalSteps)
	require.NotNil(t, view.Step)
	assert.Equal(t, "prioritize", view.Step.ID)
	assert.Equal(t, "Describe the use case in 1–2 sentences.", view.Question)
	require.Len(t, view.Transcript, 1)

	answers := []string{"Calendar sync", "High", "M", "Medium", "Double Down"}
	var out wizard.Outcome
	for i, a := range answers {
		var err error
		view, out, err = f.svc.SubmitAnswer(ctx, "s1", a)
		require.NoError(t, err)
		if i < len(answers)-1 {
			assert.Equal(t, i+1, view.State.QuestionIndex)
			assert.False(t, out.StepFinished)
		}
	}

	assert.True(t, out.StepFinished)
	assert.Equal(t, "Feedback for step-prioritize", out.Feedback)
	assert.Equal(t, wizard.State{StepIndex: 1, QuestionIndex: 0}, view.State)
	assert.Equal(t, "market", view.Step.ID)

	req, ok := f.gen.last(prompts.StageStepPrioritize)
	require.True(t, ok)
	assert.Equal(t, "Describe the use case in 1–2 sentences.: Calendar sync", strings.Split(req.Messages[1].Content, "\n")[0])

	doc, err := f.svc.SummaryDocument(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Feedback for step-prioritize", doc.Feedback["prioritize"])
	assert.Len(t, doc.Responses["prioritize"], 5)
}

func TestService_WizardFeedbackFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
		return "", ErrRequestFailed
	}

	var view WizardView
	var out wizard.Outcome
	for i := 0; i < 5; i++ {
		var err error
		view, out, err = f.svc.SubmitAnswer(context.Background(), "s1", "answer")
		require.NoError(t, err)
	}

	assert.ErrorIs(t, out.FeedbackErr, ErrRequestFailed)
	assert.Equal(t, models.MsgStepFeedbackError, out.Feedback)
	assert.Equal(t, 1, view.State.StepIndex)
	assert.Len(t, view.Responses["prioritize"], 5)
}

func TestService_ResetWizardCancelsFetch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newServiceFixture(t)
	ctx := context.Background()

	started := make(chan struct{})
	f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}

	for i := 0; i < 4; i++ {
		_, _, err := f.svc.SubmitAnswer(ctx, "s1", "answer")
		require.NoError(t, err)
	}

	done := make(chan wizard.Outcome, 1)
	go func() {
		_, out, _ := f.svc.SubmitAnswer(ctx, "s1", "last answer")
		done <- out
	}()
	<-started

	view, err := f.svc.ResetWizard(ctx, "s1")
	require.NoError(t, err)
	out := <-done

	assert.ErrorIs(t, out.FeedbackErr, context.Canceled)
	assert.Equal(t, wizard.State{}, view.State)
	assert.Empty(t, view.Responses)
	assert.Len(t, view.Transcript, 1)
	doc, err := f.svc.SummaryDocument(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, doc.Feedback)

	// The canceled submission saved before the reset cleared the store.
	_, err = f.store.Get(ctx, f.shim.WizardKey("s1"))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestService_Narrative(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.SubmitAnswer(ctx, "s1", "Calendar sync")
	require.NoError(t, err)

	narrative, err := f.svc.Narrative(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "## Executive Summary\nSolid plan.", narrative)

	req, ok := f.gen.last(prompts.StageNarrative)
	require.True(t, ok)
	assert.Contains(t, req.Messages[1].Content, "Here is the complete blueprint implementation data:\n{\n  \"prioritize\": {")
	assert.Contains(t, req.Messages[1].Content, `"Describe the use case in 1–2 sentences.": "Calendar sync"`)

	doc, err := f.svc.SummaryDocument(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, narrative, doc.Narrative)
	assert.False(t, doc.NarrativeFailed)

	f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
		return "", ErrRequestFailed
	}
	_, err = f.svc.Narrative(ctx, "s1")
	assert.ErrorIs(t, err, ErrRequestFailed)

	doc, err = f.svc.SummaryDocument(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, doc.NarrativeFailed)
	assert.Contains(t, doc.Markdown(), models.MsgSummaryFailed)
	assert.Contains(t, doc.Markdown(), "Calendar sync")
}

func TestService_WizardRestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewMemoryStore(8)
	require.NoError(t, err)

	first := newServiceFixtureWithStore(t, store)
	var before WizardView
	for _, a := range []string{"Calendar sync", "High", "M", "Medium", "Double Down", "Developer"} {
		before, _, err = first.svc.SubmitAnswer(ctx, "s1", a)
		require.NoError(t, err)
	}
	narrative, err := first.svc.Narrative(ctx, "s1")
	require.NoError(t, err)

	// A fresh service has no live session and reads the saved progress.
	second := newServiceFixtureWithStore(t, store)
	view, err := second.svc.Wizard(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, wizard.State{StepIndex: 1, QuestionIndex: 1}, view.State)
	assert.Equal(t, before.Responses, view.Responses)
	assert.Equal(t, before.Transcript, view.Transcript)
	assert.Equal(t, before.Question, view.Question)

	doc, err := second.svc.SummaryDocument(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Feedback for step-prioritize", doc.Feedback["prioritize"])
	assert.Equal(t, narrative, doc.Narrative)
	assert.Empty(t, second.gen.stages())

	view, _, err = second.svc.SubmitAnswer(ctx, "s1", "Early Adopter")
	require.NoError(t, err)
	assert.Equal(t, wizard.State{StepIndex: 1, QuestionIndex: 2}, view.State)

	_, err = second.svc.ResetWizard(ctx, "s1")
	require.NoError(t, err)
	_, err = store.Get(ctx, second.shim.WizardKey("s1"))
	assert.ErrorIs(t, err, session.ErrNotFound)

	third := newServiceFixtureWithStore(t, store)
	view, err = third.svc.Wizard(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, wizard.State{}, view.State)
	assert.Empty(t, view.Responses)
}

func TestService_WizardDiscardsInvalidProgress(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	require.NoError(t, f.store.Set(ctx, f.shim.WizardKey("s1"), []byte(`{"progress":{"stepIndex":9,"questionIndex":0}}`)))

	view, err := f.svc.Wizard(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, wizard.State{}, view.State)
	assert.Len(t, view.Transcript, 1)
	assert.Equal(t, 0, f.store.Len())
}

func TestService_StageReport(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.gen.respond = func(ctx context.Context, req GenerationRequest) (string, error) {
		switch prompts.Stage(req.Stage) {
		case prompts.StagePrioritize:
			return `{"Relevance":{"score":"Low","rationale":"Rarely used."},"Capability":"M"}`, nil
		case prompts.StageBuild:
			return "", ErrRequestFailed
		}
		return defaultResponse(req)
	}

	sec, err := f.svc.StageReport(ctx, prompts.StagePrioritize, "Agent that syncs calendar events")
	require.NoError(t, err)
	assert.Equal(t, report.SectionPrioritize, sec.Key)
	assert.Equal(t, "Low", sec.Section["Relevance"].Value())
	assert.Equal(t, "M", sec.Section["Capability"].Value())
	assert.Error(t, sec.Validate())

	req, ok := f.gen.last(prompts.StagePrioritize)
	require.True(t, ok)
	assert.Contains(t, req.Messages[1].Content, "Agent that syncs calendar events")

	_, err = f.svc.StageReport(ctx, prompts.StageMaturity, "idea")
	assert.ErrorIs(t, err, ErrNotSectionStage)
	_, err = f.svc.StageReport(ctx, prompts.StageMarket, "   ")
	assert.ErrorIs(t, err, ErrEmptyDescription)

	var rerr *ReportError
	_, err = f.svc.StageReport(ctx, prompts.StageMarket, "idea")
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, models.ErrCodeParseFailed, rerr.Code)
	assert.ErrorIs(t, err, report.ErrParse)

	_, err = f.svc.StageReport(ctx, prompts.StageBuild, "idea")
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, models.ErrCodeGenerationFailed, rerr.Code)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestService_MaturityInsights(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.MaturityInsights(ctx, "s1", report.LevelL2)
	assert.ErrorIs(t, err, ErrNoReport)

	_, err = f.svc.SubmitIdea(ctx, "s1", "Agent that syncs calendar events", nil)
	require.NoError(t, err)

	insight, err := f.svc.MaturityInsights(ctx, "s1", report.LevelL2)
	require.NoError(t, err)
	assert.Equal(t, report.LevelL2, insight.Level)
	assert.Equal(t, "Collaborative Agent", insight.LevelName)
	assert.Equal(t, "At this level the agent coordinates calendars on its own.", insight.Summary)
	assert.Equal(t, []string{"Predict conflicts", "Reschedule automatically", "Coordinate with travel agents"}, insight.Ideas)

	req, ok := f.gen.last(prompts.StageMaturitySummary)
	require.True(t, ok)
	assert.Equal(t, "Agent: Agent that syncs calendar events\n\nMaturity Level: L2", req.Messages[1].Content)
	req, ok = f.gen.last(prompts.StageExpandedIdea)
	require.True(t, ok)
	assert.Equal(t, "Agent: Agent that syncs calendar events\n\nTarget Level: L2", req.Messages[1].Content)
}

func TestService_RunStage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.RunStage(ctx, prompts.StageIdeaSummary, "idea")
	require.NoError(t, err)
	req, _ := f.gen.last(prompts.StageIdeaSummary)
	assert.Empty(t, req.Model)
	assert.Nil(t, req.ResponseFormat)
	assert.Len(t, req.Messages, 2)

	_, err = f.svc.RunStage(ctx, prompts.Stage("unknown"), "idea")
	assert.ErrorIs(t, err, prompts.ErrUnknownStage)
}

func TestService_SessionsAreIsolated(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.SubmitAnswer(ctx, "s1", "only in s1")
	require.NoError(t, err)

	s1, err := f.svc.Wizard(ctx, "s1")
	require.NoError(t, err)
	s2, err := f.svc.Wizard(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, 1, s1.State.QuestionIndex)
	assert.Equal(t, 0, s2.State.QuestionIndex)
}

func TestService_SessionExpiry(t *testing.T) {
	store, err := session.NewMemoryStore(8)
	require.NoError(t, err)
	shim := session.NewShim(store, zap.NewNop(), nil)
	svc := NewService(&mockGenerator{}, prompts.NewDefaultBuilder(), wizard.DefaultSteps(), shim,
		ServiceConfig{MaxSessions: 1}, zap.NewNop(), nil)

	ctx := context.Background()
	_, _, err = svc.SubmitAnswer(ctx, "s1", "answer")
	require.NoError(t, err)
	_, err = svc.Wizard(ctx, "s2")
	require.NoError(t, err)

	// s1 was evicted by size and comes back from the store.
	view, err := svc.Wizard(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.State.QuestionIndex)
	assert.Equal(t, "answer", view.Responses["prioritize"]["Describe the use case in 1–2 sentences."])
}

func TestParseBullets(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, ParseBullets("intro\n- one\n  - two\n* three\n-four"))
	assert.Empty(t, ParseBullets("no bullets here"))
}
