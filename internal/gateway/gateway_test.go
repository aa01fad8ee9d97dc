package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/auth"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/llm"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/orchestration"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/prompts"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/report"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/session"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

const combinedFixture = `{"Prioritize":{"Relevance":{"score":"High","rationale":"Used daily."},"Capability":{"score":"M","rationale":"Needs tuning."}},"Market":{"UserType":{"label":"Developer","rationale":"Engineers."}}}`

const maturityFixture = `{"classification":{"agent":"Calendar Sync","autonomy_level":"Low","maturity_classification":"L0","maturity_classification_name":"Connector Agent"},"suggestions":"Add scheduling rules"}`

// stubGenerator answers generation requests by stage.
type stubGenerator struct {
	mu   sync.Mutex
	fail map[prompts.Stage]error
}

func (g *stubGenerator) Generate(ctx context.Context, req orchestration.GenerationRequest) (string, error) {
	g.mu.Lock()
	err := g.fail[prompts.Stage(req.Stage)]
	g.mu.Unlock()
	if err != nil {
		return "", err
	}
	switch prompts.Stage(req.Stage) {
	case prompts.StageIdeaSummary:
		return "Calendar sync agent", nil
	case prompts.StageCombined:
		return combinedFixture, nil
	case prompts.StageMaturity:
		return maturityFixture, nil
	case prompts.StageNarrative:
		return "## Overall\nPromising.", nil
	case prompts.StageMaturitySummary:
		return "A connector that moves events.", nil
	case prompts.StageExpandedIdea:
		return "- Watch for conflicts\n- Suggest times", nil
	case prompts.StagePrioritize:
		return `{"Prioritize":{"Relevance":{"score":"High","rationale":"Used daily."}}}`, nil
	case prompts.StageMarket:
		return `{"UserType":["Developer"]}`, nil
	case prompts.StageEvaluate:
		return "Evaluation is not available.", nil
	}
	return "Feedback for " + req.Stage, nil
}

func (g *stubGenerator) IsHealthy(ctx context.Context) bool { return true }

func (g *stubGenerator) failStage(stage prompts.Stage, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail == nil {
		g.fail = make(map[prompts.Stage]error)
	}
	g.fail[stage] = err
}

// stubBackend is a chat backend returning a fixed reply or error.
type stubBackend struct {
	reply    func(req llm.Request) (string, error)
	mu       sync.Mutex
	requests []llm.Request
}

func (b *stubBackend) Complete(ctx context.Context, req llm.Request) (string, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()
	return b.reply(req)
}

func (b *stubBackend) Name() string { return "stub" }

type gatewayFixture struct {
	router  *gin.Engine
	service *orchestration.Service
	store   *session.MemoryStore
}

type fixtureOptions struct {
	generator orchestration.GenerationClientInterface
	backend   llm.Backend
	rps       float64
	burst     int
	checks    []ReadinessCheck
}

func newGatewayFixture(t *testing.T, opts fixtureOptions) gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if opts.generator == nil {
		opts.generator = &stubGenerator{}
	}
	if opts.backend == nil {
		opts.backend = &stubBackend{reply: func(llm.Request) (string, error) { return "hello", nil }}
	}

	store, err := session.NewMemoryStore(64)
	require.NoError(t, err)
	logger := zap.NewNop()
	shim := session.NewShim(store, logger, nil)
	service := orchestration.NewService(opts.generator, prompts.NewDefaultBuilder(), wizard.DefaultSteps(), shim,
		orchestration.ServiceConfig{ReportModel: "gpt-4.1", MaxSessions: 16}, logger, nil)

	jwtManager, err := auth.NewJWTManager("test-secret-key-for-testing-purposes-only")
	require.NoError(t, err)
	limiter, err := NewRateLimiter(opts.rps, opts.burst, 64)
	require.NoError(t, err)

	handler := NewHandler(service, jwtManager, opts.backend, time.Hour, logger)
	router := NewRouter(handler, NewReportStream(service, logger), limiter, opts.checks, logger)
	return gatewayFixture{router: router, service: service, store: store}
}

func (f gatewayFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f gatewayFixture) session(t *testing.T) SessionResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	healthy := newGatewayFixture(t, fixtureOptions{
		checks: []ReadinessCheck{{Name: "store", Check: func(ctx context.Context) error { return nil }}},
	})
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/ready", "", nil).Code)

	failing := newGatewayFixture(t, fixtureOptions{
		checks: []ReadinessCheck{{Name: "store", Check: func(ctx context.Context) error { return errors.New("down") }}},
	})
	w := failing.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "store unavailable")
}

func TestSessions(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	created := f.session(t)

	w := f.do(t, http.MethodPost, "/api/sessions/refresh", created.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := decode[SessionResponse](t, w)
	assert.Equal(t, created.SessionID, refreshed.SessionID)
	assert.NotEmpty(t, refreshed.Token)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/wizard", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/wizard", "bogus", nil).Code)
}

func TestChat(t *testing.T) {
	backend := &stubBackend{reply: func(req llm.Request) (string, error) {
		if req.Messages[len(req.Messages)-1].Content == "fail" {
			return "", errors.New("upstream down")
		}
		return "echo: " + req.Messages[len(req.Messages)-1].Content, nil
	}}
	f := newGatewayFixture(t, fixtureOptions{backend: backend})

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: map[string]any{
				"messages":        []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
				"response_format": map[string]string{"type": "json_object"},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"echo: hi"}`,
		},
		{
			name:           "no messages",
			body:           map[string]any{"messages": []models.ChatMessage{}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad role",
			body:           map[string]any{"messages": []map[string]string{{"role": "tool", "content": "x"}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "backend failure",
			body:           map[string]any{"messages": []models.ChatMessage{{Role: models.RoleUser, Content: "fail"}}},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Failed to get response from model"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/chat", "", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.NotEmpty(t, backend.requests)
	assert.True(t, backend.requests[0].JSON)
}

func TestWizardFlow(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	token := f.session(t).Token

	view := decode[orchestration.WizardView](t, f.do(t, http.MethodGet, "/api/wizard", token, nil))
	assert.Equal(t, 4, view.TotalSteps)
	require.NotNil(t, view.Step)
	assert.Equal(t, "prioritize", view.Step.ID)
	require.Len(t, view.Transcript, 1)

	w := f.do(t, http.MethodPost, "/api/wizard/answers", token, AnswerRequest{Answer: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var last AnswerResponse
	for i := 0; i < 5; i++ {
		w = f.do(t, http.MethodPost, "/api/wizard/answers", token, AnswerRequest{Answer: "answer"})
		require.Equal(t, http.StatusOK, w.Code)
		last = decode[AnswerResponse](t, w)
	}
	assert.True(t, last.StepFinished)
	assert.Equal(t, "Feedback for step-prioritize", last.Feedback)
	assert.False(t, last.FeedbackError)
	assert.Equal(t, 1, last.Wizard.State.StepIndex)
	assert.Len(t, last.Wizard.Responses["prioritize"], 5)

	reset := decode[orchestration.WizardView](t, f.do(t, http.MethodPost, "/api/wizard/reset", token, nil))
	assert.Equal(t, 0, reset.State.StepIndex)
	assert.Empty(t, reset.Responses)
}

func TestWizardComplete(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	token := f.session(t).Token

	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/wizard/answers", token, AnswerRequest{Answer: "a"}).Code)
	}
	w := f.do(t, http.MethodPost, "/api/wizard/answers", token, AnswerRequest{Answer: "a"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrCodeWizardComplete, decode[models.ErrorResponse](t, w).Code)
}

func TestReportLifecycle(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	token := f.session(t).Token

	w := f.do(t, http.MethodPost, "/api/report", token, ReportRequest{AgentDescription: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/report", token, ReportRequest{AgentDescription: "Agent that syncs calendars"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ReportResponse](t, w)
	assert.Equal(t, "Calendar sync agent", resp.Report.IdeaSummary)
	assert.JSONEq(t, maturityFixture, string(resp.Report.MaturityData))
	assert.Len(t, resp.View.Sections, len(report.Sections))
	require.NotNil(t, resp.View.Maturity)
	assert.Equal(t, report.LevelL0, resp.View.Maturity.Level)
	assert.Equal(t, []string{"Add scheduling rules"}, resp.View.Maturity.Suggestions)
	assert.Equal(t, 1, f.store.Len())

	got := decode[ReportResponse](t, f.do(t, http.MethodGet, "/api/report", token, nil))
	assert.Equal(t, resp.Report.IdeaSummary, got.Report.IdeaSummary)

	w = f.do(t, http.MethodGet, "/api/report/cards", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Calendar sync agent")
	assert.Contains(t, w.Body.String(), "Connector Agent")

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/report", token, nil).Code)
	assert.Equal(t, 0, f.store.Len())
	cleared := decode[ReportResponse](t, f.do(t, http.MethodGet, "/api/report", token, nil))
	assert.False(t, cleared.Report.Submitted)
}

func TestReportFailures(t *testing.T) {
	tests := []struct {
		name            string
		stage           prompts.Stage
		expectedStatus  int
		expectedMessage string
	}{
		{"generation", prompts.StageCombined, http.StatusBadGateway, models.MsgFeedbackFailed},
		{"summary only", prompts.StageIdeaSummary, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			gen.failStage(tt.stage, orchestration.ErrRequestFailed)
			f := newGatewayFixture(t, fixtureOptions{generator: gen})
			token := f.session(t).Token

			w := f.do(t, http.MethodPost, "/api/report", token, ReportRequest{AgentDescription: "idea"})
			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decode[ReportResponse](t, w)
			assert.Equal(t, tt.expectedMessage, resp.Report.Error)
		})
	}
}

func TestMaturityInsights(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	token := f.session(t).Token

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/report/maturity/L7", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/report/maturity/L1", token, nil).Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/report", token, ReportRequest{AgentDescription: "idea"}).Code)
	w := f.do(t, http.MethodPost, "/api/report/maturity/l2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	insight := decode[orchestration.MaturityInsight](t, w)
	assert.Equal(t, report.LevelL2, insight.Level)
	assert.Equal(t, "Collaborative Agent", insight.LevelName)
	assert.Equal(t, []string{"Watch for conflicts", "Suggest times"}, insight.Ideas)
}

func TestSummary(t *testing.T) {
	gen := &stubGenerator{}
	f := newGatewayFixture(t, fixtureOptions{generator: gen})
	token := f.session(t).Token

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/wizard/answers", token, AnswerRequest{Answer: "Sync calendars"}).Code)

	w := f.do(t, http.MethodPost, "/api/summary/narrative", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "## Overall\nPromising.", decode[NarrativeResponse](t, w).Narrative)

	w = f.do(t, http.MethodGet, "/api/summary/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="ai-success-blueprint-summary.md"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "# AI Success Blueprint Summary"))
	assert.Contains(t, w.Body.String(), "Sync calendars")
	assert.Contains(t, w.Body.String(), "Promising.")

	w = f.do(t, http.MethodGet, "/api/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sync calendars")

	gen.failStage(prompts.StageNarrative, orchestration.ErrRequestFailed)
	w = f.do(t, http.MethodPost, "/api/summary/narrative", token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, models.MsgSummaryFailed, decode[models.ErrorResponse](t, w).Error)

	w = f.do(t, http.MethodGet, "/api/summary/export", token, nil)
	assert.Contains(t, w.Body.String(), models.MsgSummaryFailed)
}

func TestRateLimit(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{rps: 0.001, burst: 1})
	first := f.session(t).Token
	second := f.session(t).Token

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/report", first, ReportRequest{AgentDescription: "idea"}).Code)
	w := f.do(t, http.MethodPost, "/api/report", first, ReportRequest{AgentDescription: "idea"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, models.ErrCodeRateLimited, decode[models.ErrorResponse](t, w).Code)

	// Limits are per session and reads are not limited.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/report", second, ReportRequest{AgentDescription: "idea"}).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/report", first, nil).Code)
}

func TestStreamReport(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	server := httptest.NewServer(f.router)
	defer server.Close()
	token := f.session(t).Token

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws/report?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(StreamRequest{AgentDescription: "Agent that syncs calendars"}))

	var events []StreamEvent
	for {
		var ev StreamEvent
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		events = append(events, ev)
		if ev.Type != EventProgress {
			break
		}
	}

	require.Len(t, events, 4)
	for i, ev := range events[:3] {
		assert.Equal(t, EventProgress, ev.Type)
		require.NotNil(t, ev.Progress)
		assert.Equal(t, i+1, ev.Progress.Step)
	}
	final := events[3]
	assert.Equal(t, EventReport, final.Type)
	require.NotNil(t, final.Report)
	assert.Equal(t, "Calendar sync agent", final.Report.Report.IdeaSummary)
}

func TestStreamReport_RejectsBlank(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	server := httptest.NewServer(f.router)
	defer server.Close()
	token := f.session(t).Token

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws/report?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(StreamRequest{}))
	var ev StreamEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, models.ErrCodeValidationFailed, ev.Code)
}

func TestStreamReport_Unauthorized(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{})
	server := httptest.NewServer(f.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws/report"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestReportThroughChatRoute sends the report stages through the real
// generation client to the service's own /api/chat route.
func TestReportThroughChatRoute(t *testing.T) {
	backend := &stubBackend{reply: func(req llm.Request) (string, error) {
		system := req.Messages[0].Content
		switch {
		case req.JSON && strings.Contains(system, "maturity_classification"):
			return maturityFixture, nil
		case req.JSON:
			return combinedFixture, nil
		}
		return "Calendar sync agent", nil
	}}

	client := orchestration.NewGenerationClient("", 5*time.Second, zap.NewNop(), nil)
	f := newGatewayFixture(t, fixtureOptions{generator: client, backend: backend})
	server := httptest.NewServer(f.router)
	defer server.Close()
	client.SetURL(server.URL + "/api/chat")

	token := f.session(t).Token
	w := f.do(t, http.MethodPost, "/api/report", token, ReportRequest{AgentDescription: "Agent that syncs calendars"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ReportResponse](t, w)
	assert.Equal(t, "Calendar sync agent", resp.Report.IdeaSummary)
	assert.Equal(t, report.LevelL0, resp.View.Maturity.Level)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.requests, 3)
	assert.False(t, backend.requests[0].JSON)
	assert.True(t, backend.requests[1].JSON)
	assert.Equal(t, "gpt-4.1", backend.requests[1].Model)
}

func TestStageReport(t *testing.T) {
	gen := &stubGenerator{}
	f := newGatewayFixture(t, fixtureOptions{generator: gen})
	token := f.session(t).Token
	body := ReportRequest{AgentDescription: "Agent that syncs calendars"}

	w := f.do(t, http.MethodPost, "/api/report/stages/prioritize", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[StageReportResponse](t, w)
	assert.Equal(t, "prioritize", resp.Stage)
	assert.Equal(t, report.SectionPrioritize, resp.Report.Key)
	assert.Equal(t, "High", resp.Report.Section["Relevance"].Value())
	require.NotEmpty(t, resp.View.Section.Attributes)
	assert.Equal(t, 5, resp.View.Section.Attributes[0].Score)
	assert.True(t, resp.View.Section.Attributes[1].Defaulted)

	// A wrong-shaped attribute defaults instead of failing the stage.
	w = f.do(t, http.MethodPost, "/api/report/stages/market", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[StageReportResponse](t, w)
	assert.True(t, resp.View.Section.Attributes[0].Defaulted)
	var fields []string
	for _, issue := range resp.View.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Contains(t, fields, "Market.UserType")

	tests := []struct {
		name           string
		path           string
		body           any
		expectedStatus int
		expectedCode   string
	}{
		{"unknown stage", "/api/report/stages/maturity", body, http.StatusNotFound, models.ErrCodeInvalidRequest},
		{"empty description", "/api/report/stages/build", ReportRequest{AgentDescription: "  "}, http.StatusBadRequest, models.ErrCodeValidationFailed},
		{"unparseable output", "/api/report/stages/evaluate", body, http.StatusBadGateway, models.ErrCodeParseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, tt.path, token, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decode[models.ErrorResponse](t, w).Code)
		})
	}

	gen.failStage(prompts.StageBuild, orchestration.ErrRequestFailed)
	w = f.do(t, http.MethodPost, "/api/report/stages/build", token, body)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, models.ErrCodeGenerationFailed, decode[models.ErrorResponse](t, w).Code)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/report/stages/prioritize", "", body).Code)
}

func TestStageReport_RateLimited(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{rps: 0.001, burst: 1})
	token := f.session(t).Token
	body := ReportRequest{AgentDescription: "idea"}

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/report/stages/prioritize", token, body).Code)
	w := f.do(t, http.MethodPost, "/api/report/stages/prioritize", token, body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, models.ErrCodeRateLimited, decode[models.ErrorResponse](t, w).Code)
}

func TestChat_RateLimitedPerClient(t *testing.T) {
	f := newGatewayFixture(t, fixtureOptions{rps: 0.001, burst: 1})

	chat := func(remoteAddr string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
			"messages": []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
		}))
		req := httptest.NewRequest(http.MethodPost, "/api/chat", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, chat("192.0.2.1:4000").Code)
	w := chat("192.0.2.1:4001")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, models.ErrCodeRateLimited, decode[models.ErrorResponse](t, w).Code)

	assert.Equal(t, http.StatusOK, chat("192.0.2.2:4000").Code)

	// Loopback callers are the service's own generation client.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, chat("127.0.0.1:5000").Code)
	}
}
