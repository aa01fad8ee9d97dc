package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/auth"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/orchestration"
)

// Stream event types
const (
	EventProgress = "progress"
	EventReport   = "report"
	EventError    = "error"
)

// StreamRequest is the first and only client message on the report stream
type StreamRequest struct {
	AgentDescription string `json:"agent_description"`
}

// StreamEvent is one server message on the report stream
type StreamEvent struct {
	Type     string                       `json:"type"`
	Progress *orchestration.ProgressEvent `json:"progress,omitempty"`
	Report   *ReportResponse              `json:"report,omitempty"`
	Error    string                       `json:"error,omitempty"`
	Code     string                       `json:"code,omitempty"`
}

// ReportStream runs a report submission over a WebSocket and pushes
// progress while the stages run.
type ReportStream struct {
	service  *orchestration.Service
	logger   *zap.Logger
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// NewReportStream creates the report stream handler
func NewReportStream(service *orchestration.Service, logger *zap.Logger) *ReportStream {
	return &ReportStream{
		service: service,
		logger:  logger,
		tracer:  otel.Tracer("report-stream"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// StreamReport handles WebSocket /api/ws/report
// @Summary Stream report generation
// @Description Send {"agent_description": "..."} and receive progress events followed by the report
// @Tags report
// @Param token query string false "Session token"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /ws/report [get]
func (s *ReportStream) StreamReport(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), "report_stream.stream_report")
	defer span.End()

	sessionID := auth.SessionID(c)
	span.SetAttributes(attribute.String("session.id", sessionID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	var req StreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Warn("Failed to read stream request", zap.String("session_id", sessionID), zap.Error(err))
		s.send(conn, StreamEvent{Type: EventError, Error: "Invalid request"})
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The client sends nothing more; a read error means it went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	progress := func(ev orchestration.ProgressEvent) {
		s.send(conn, StreamEvent{Type: EventProgress, Progress: &ev})
	}
	state, err := s.service.SubmitIdea(ctx, sessionID, req.AgentDescription, progress)

	status, apiErr := reportStatus(err)
	if apiErr != nil {
		span.RecordError(err)
		if status != http.StatusBadGateway {
			s.send(conn, StreamEvent{Type: EventError, Error: apiErr.Error, Code: apiErr.Code})
			s.close(conn)
			return
		}
	}
	ev := StreamEvent{Type: EventReport}
	resp := newReportResponse(state)
	ev.Report = &resp
	if apiErr != nil {
		ev.Code = apiErr.Code
	}
	s.send(conn, ev)
	s.close(conn)
}

func (s *ReportStream) send(conn *websocket.Conn, ev StreamEvent) {
	if err := conn.WriteJSON(ev); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		s.logger.Debug("Failed to write stream event", zap.String("type", ev.Type), zap.Error(err))
	}
}

func (s *ReportStream) close(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
