package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/auth"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/export"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/llm"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/orchestration"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/prompts"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/report"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/views"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

// Handler handles HTTP requests for the gateway layer
type Handler struct {
	service    *orchestration.Service
	jwtManager *auth.JWTManager
	chat       llm.Backend
	tokenTTL   time.Duration
	logger     *zap.Logger
}

// NewHandler creates a new gateway handler
func NewHandler(service *orchestration.Service, jwtManager *auth.JWTManager, chat llm.Backend, tokenTTL time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		service:    service,
		jwtManager: jwtManager,
		chat:       chat,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// SessionResponse carries a session token
type SessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession godoc
// @Summary Create session
// @Description Start an anonymous blueprint session and return its token
// @Tags sessions
// @Produce json
// @Success 201 {object} SessionResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	sessionID := auth.NewSessionID()
	token, err := h.jwtManager.GenerateToken(c.Request.Context(), sessionID, h.tokenTTL)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: time.Now().Add(h.tokenTTL).UTC(),
	})
}

// RefreshSession godoc
// @Summary Refresh session token
// @Description Issue a new token for the session of a still valid token
// @Tags sessions
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /sessions/refresh [post]
func (h *Handler) RefreshSession(c *gin.Context) {
	token, err := h.jwtManager.RefreshToken(c.Request.Context(), auth.ExtractToken(c), h.tokenTTL)
	if err != nil {
		respondError(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid or expired token")
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		SessionID: auth.SessionID(c),
		ExpiresAt: time.Now().Add(h.tokenTTL).UTC(),
	})
}

// ChatRequest is the generation request body
type ChatRequest struct {
	Messages       []models.ChatMessage `json:"messages"`
	Model          string               `json:"model,omitempty"`
	Temperature    *float64             `json:"temperature,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

// ChatResponse is the generation response body
type ChatResponse struct {
	Message string `json:"message"`
}

// Chat godoc
// @Summary Chat completion
// @Description Send a message list to the configured model and return its reply
// @Tags chat
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Messages"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} map[string]string
// @Failure 429 {object} models.ErrorResponse
// @Router /chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request")
		return
	}

	llmReq := llm.Request{
		Messages:    req.Messages,
		Model:       req.Model,
		Temperature: req.Temperature,
		JSON:        req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object",
	}
	if err := llmReq.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
		return
	}

	message, err := h.chat.Complete(c.Request.Context(), llmReq)
	if err != nil {
		h.logger.Error("Chat completion failed", zap.String("backend", h.chat.Name()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.MsgChatFailed})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Message: message})
}

// GetWizard godoc
// @Summary Get wizard
// @Description Current wizard position, transcript and answers
// @Tags wizard
// @Produce json
// @Success 200 {object} orchestration.WizardView
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /wizard [get]
func (h *Handler) GetWizard(c *gin.Context) {
	view, err := h.service.Wizard(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		h.logger.Error("Failed to load wizard", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to load wizard")
		return
	}
	c.JSON(http.StatusOK, view)
}

// AnswerRequest is a wizard answer
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// AnswerResponse is the wizard after an answer
type AnswerResponse struct {
	Wizard        orchestration.WizardView `json:"wizard"`
	StepFinished  bool                     `json:"step_finished"`
	Feedback      string                   `json:"feedback,omitempty"`
	FeedbackError bool                     `json:"feedback_error"`
}

// SubmitAnswer godoc
// @Summary Submit wizard answer
// @Description Answer the active question. Finishing a step returns the step feedback.
// @Tags wizard
// @Accept json
// @Produce json
// @Param request body AnswerRequest true "Answer"
// @Success 200 {object} AnswerResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /wizard/answers [post]
func (h *Handler) SubmitAnswer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request")
		return
	}

	view, out, err := h.service.SubmitAnswer(c.Request.Context(), auth.SessionID(c), req.Answer)
	switch {
	case errors.Is(err, wizard.ErrEmptyAnswer):
		respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, "Answer must not be empty")
		return
	case errors.Is(err, wizard.ErrComplete):
		respondError(c, http.StatusConflict, models.ErrCodeWizardComplete, "All steps are complete")
		return
	case err != nil:
		h.logger.Error("Failed to submit answer", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to submit answer")
		return
	}

	c.JSON(http.StatusOK, AnswerResponse{
		Wizard:        view,
		StepFinished:  out.StepFinished,
		Feedback:      out.Feedback,
		FeedbackError: out.FeedbackErr != nil,
	})
}

// ResetWizard godoc
// @Summary Reset wizard
// @Description Discard all answers and start again from the first question
// @Tags wizard
// @Produce json
// @Success 200 {object} orchestration.WizardView
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /wizard/reset [post]
func (h *Handler) ResetWizard(c *gin.Context) {
	view, err := h.service.ResetWizard(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		h.logger.Error("Failed to reset wizard", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to reset wizard")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ReportRequest submits an agent idea
type ReportRequest struct {
	AgentDescription string `json:"agent_description"`
}

// ReportResponse is a report and its rendered view
type ReportResponse struct {
	Report orchestration.ReportState `json:"report"`
	View   report.View               `json:"view"`
}

func newReportResponse(state orchestration.ReportState) ReportResponse {
	return ReportResponse{Report: state, View: state.View()}
}

// SubmitReport godoc
// @Summary Generate report
// @Description Summarize, score and classify an agent idea
// @Tags report
// @Accept json
// @Produce json
// @Param request body ReportRequest true "Agent idea"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} ReportResponse
// @Security BearerAuth
// @Router /report [post]
func (h *Handler) SubmitReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request")
		return
	}

	state, err := h.service.SubmitIdea(c.Request.Context(), auth.SessionID(c), req.AgentDescription, nil)
	status, apiErr := reportStatus(err)
	if apiErr != nil && status != http.StatusBadGateway {
		c.JSON(status, apiErr)
		return
	}
	c.JSON(status, newReportResponse(state))
}

// reportStatus maps a SubmitIdea error. Generation and parse failures still
// carry the partial report, so they return no error body.
func reportStatus(err error) (int, *models.ErrorResponse) {
	var rerr *orchestration.ReportError
	switch {
	case err == nil:
		return http.StatusOK, nil
	case errors.Is(err, orchestration.ErrEmptyDescription):
		return http.StatusBadRequest, &models.ErrorResponse{Error: "Agent description must not be empty", Code: models.ErrCodeValidationFailed}
	case errors.Is(err, orchestration.ErrSuperseded):
		return http.StatusConflict, &models.ErrorResponse{Error: "Submission was replaced by a newer one", Code: models.ErrCodeSuperseded}
	case errors.As(err, &rerr):
		return http.StatusBadGateway, &models.ErrorResponse{Error: rerr.Message, Code: rerr.Code}
	}
	return http.StatusInternalServerError, &models.ErrorResponse{Error: models.MsgFeedbackFailed, Code: models.ErrCodeInternalError}
}

// GetReport godoc
// @Summary Get report
// @Description Current report, restored from the snapshot store when needed
// @Tags report
// @Produce json
// @Success 200 {object} ReportResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /report [get]
func (h *Handler) GetReport(c *gin.Context) {
	state, err := h.service.Report(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		h.logger.Error("Failed to load report", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to load report")
		return
	}
	c.JSON(http.StatusOK, newReportResponse(state))
}

// DeleteReport godoc
// @Summary Start over
// @Description Cancel generation, clear the report and remove the snapshot
// @Tags report
// @Success 204
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /report [delete]
func (h *Handler) DeleteReport(c *gin.Context) {
	if err := h.service.StartOver(c.Request.Context(), auth.SessionID(c)); err != nil {
		h.logger.Error("Failed to clear report", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to clear report")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReportCards godoc
// @Summary Report cards
// @Description The report rendered as HTML cards
// @Tags report
// @Produce html
// @Success 200 {string} string
// @Security BearerAuth
// @Router /report/cards [get]
func (h *Handler) ReportCards(c *gin.Context) {
	state, err := h.service.Report(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		h.logger.Error("Failed to load report", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to load report")
		return
	}
	header := views.ReportHeader{IdeaSummary: state.IdeaSummary, SummaryError: state.SummaryError, Error: state.Error}
	h.renderHTML(c, views.ReportCards(header, state.View()))
}

// StageReportResponse is a single-section report and its card
type StageReportResponse struct {
	Stage  string               `json:"stage"`
	Report report.SectionReport `json:"report"`
	View   report.StageView     `json:"view"`
}

// StageReport godoc
// @Summary Generate single-section report
// @Description Score an agent idea against one rubric: prioritize, market, build or evaluate
// @Tags report
// @Accept json
// @Produce json
// @Param stage path string true "prioritize, market, build or evaluate"
// @Param request body ReportRequest true "Agent idea"
// @Success 200 {object} StageReportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /report/stages/{stage} [post]
func (h *Handler) StageReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request")
		return
	}

	stage := prompts.Stage(c.Param("stage"))
	sec, err := h.service.StageReport(c.Request.Context(), stage, req.AgentDescription)
	var rerr *orchestration.ReportError
	switch {
	case errors.Is(err, orchestration.ErrNotSectionStage):
		respondError(c, http.StatusNotFound, models.ErrCodeInvalidRequest, "Stage must be prioritize, market, build or evaluate")
		return
	case errors.Is(err, orchestration.ErrEmptyDescription):
		respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, "Agent description must not be empty")
		return
	case errors.As(err, &rerr):
		h.logger.Warn("Stage report failed", zap.String("stage", string(stage)), zap.Error(err))
		respondError(c, http.StatusBadGateway, rerr.Code, rerr.Message)
		return
	case err != nil:
		h.logger.Error("Stage report failed", zap.String("stage", string(stage)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, models.MsgFeedbackFailed)
		return
	}
	c.JSON(http.StatusOK, StageReportResponse{Stage: string(stage), Report: sec, View: report.RenderSectionReport(sec)})
}

// MaturityInsights godoc
// @Summary Maturity insights
// @Description Summary and growth ideas for the submitted idea at a maturity level
// @Tags report
// @Produce json
// @Param level path string true "L0, L1 or L2"
// @Success 200 {object} orchestration.MaturityInsight
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /report/maturity/{level} [post]
func (h *Handler) MaturityInsights(c *gin.Context) {
	level, ok := report.ParseMaturityLevel(c.Param("level"))
	if !ok {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Level must be L0, L1 or L2")
		return
	}

	insight, err := h.service.MaturityInsights(c.Request.Context(), auth.SessionID(c), level)
	switch {
	case errors.Is(err, orchestration.ErrNoReport):
		respondError(c, http.StatusNotFound, models.ErrCodeSessionIncomplete, "Submit an agent idea first")
		return
	case err != nil:
		h.logger.Warn("Maturity insights failed", zap.String("level", string(level)), zap.Error(err))
		respondError(c, http.StatusBadGateway, models.ErrCodeGenerationFailed, models.MsgFeedbackFailed)
		return
	}
	c.JSON(http.StatusOK, insight)
}

// NarrativeResponse is the generated blueprint overview
type NarrativeResponse struct {
	Narrative string `json:"narrative"`
}

// Narrative godoc
// @Summary Generate narrative
// @Description High-level summary and overall evaluation of the wizard answers
// @Tags summary
// @Produce json
// @Success 200 {object} NarrativeResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /summary/narrative [post]
func (h *Handler) Narrative(c *gin.Context) {
	narrative, err := h.service.Narrative(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		h.logger.Warn("Narrative generation failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, models.ErrCodeGenerationFailed, models.MsgSummaryFailed)
		return
	}
	c.JSON(http.StatusOK, NarrativeResponse{Narrative: narrative})
}

// SummaryPage godoc
// @Summary Summary page
// @Description The blueprint summary as an HTML page
// @Tags summary
// @Produce html
// @Success 200 {string} string
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /summary [get]
func (h *Handler) SummaryPage(c *gin.Context) {
	doc, ok := h.summaryDocument(c)
	if !ok {
		return
	}
	h.renderHTML(c, views.SummaryPage(doc))
}

// ExportSummary godoc
// @Summary Download summary
// @Description The blueprint summary as a markdown file
// @Tags summary
// @Produce text/markdown
// @Success 200 {string} string
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /summary/export [get]
func (h *Handler) ExportSummary(c *gin.Context) {
	doc, ok := h.summaryDocument(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, []byte(doc.Markdown()))
}

func (h *Handler) summaryDocument(c *gin.Context) (export.Document, bool) {
	doc, err := h.service.SummaryDocument(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		h.logger.Error("Failed to load summary", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to load summary")
		return export.Document{}, false
	}
	return doc, true
}

type component interface {
	Render(ctx context.Context, w io.Writer) error
}

func (h *Handler) renderHTML(c *gin.Context, comp component) {
	var buf bytes.Buffer
	if err := comp.Render(c.Request.Context(), &buf); err != nil {
		h.logger.Error("Failed to render view", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to render view")
		return
	}
	c.Data(http.StatusOK, views.ContentType, buf.Bytes())
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{Error: message, Code: code})
}
