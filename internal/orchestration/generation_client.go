package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/metrics"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
)

// ErrRequestFailed is returned when the generation endpoint answers with a
// non-2xx status.
var ErrRequestFailed = errors.New("generation request failed")

// ErrNoMessages is returned for a request without messages.
var ErrNoMessages = errors.New("generation request has no messages")

// GenerationClientInterface defines the interface for the text-generation endpoint
type GenerationClientInterface interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	IsHealthy(ctx context.Context) bool
}

// ResponseFormat asks the backend for strict JSON output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// JSONObject is the response format used by report stages.
var JSONObject = &ResponseFormat{Type: "json_object"}

// GenerationRequest is the body posted to the generation endpoint
type GenerationRequest struct {
	Messages       []models.ChatMessage `json:"messages"`
	Model          string               `json:"model,omitempty"`
	Temperature    *float64             `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat      `json:"response_format,omitempty"`

	// Stage labels spans and metrics. It is not sent.
	Stage string `json:"-"`
}

// GenerationResponse is the success body of the generation endpoint
type GenerationResponse struct {
	Message string `json:"message"`
}

// GenerationClient posts message lists to a single chat endpoint
type GenerationClient struct {
	url        string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	metrics    *metrics.GenerationMetrics
}

// NewGenerationClient creates a client for url. A zero timeout leaves calls
// bounded only by the caller's context. m may be nil.
func NewGenerationClient(url string, timeout time.Duration, logger *zap.Logger, m *metrics.GenerationMetrics) *GenerationClient {
	settings := gobreaker.Settings{
		Name:        "generation",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// A caller giving up says nothing about the endpoint.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &GenerationClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer:  otel.Tracer("generation-client"),
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		metrics: m,
	}
}

// SetURL sets the endpoint URL for testing purposes
func (c *GenerationClient) SetURL(url string) {
	c.url = url
}

// Generate sends req and returns the raw message text. It does not retry.
func (c *GenerationClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "generation.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("stage", req.Stage),
		attribute.Int("messages", len(req.Messages)),
		attribute.Bool("json", req.ResponseFormat != nil),
	)
	if req.Model != "" {
		span.SetAttributes(attribute.String("model", req.Model))
	}

	if len(req.Messages) == 0 {
		span.RecordError(ErrNoMessages)
		return "", ErrNoMessages
	}

	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordStarted(ctx, req.Stage)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generateInternal(ctx, req)
	})

	if err != nil {
		span.RecordError(err)
		if c.metrics != nil {
			c.metrics.RecordFailed(ctx, req.Stage, errorType(err), time.Since(start))
		}
		return "", fmt.Errorf("failed to generate %s: %w", stageName(req.Stage), err)
	}

	message := result.(string)
	span.SetAttributes(attribute.Int("response_length", len(message)))
	if c.metrics != nil {
		c.metrics.RecordSucceeded(ctx, req.Stage, time.Since(start))
	}
	return message, nil
}

// generateInternal performs the actual HTTP request
func (c *GenerationClient) generateInternal(ctx context.Context, req GenerationRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	// Inject trace context
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: status %d (failed to read body: %v)", ErrRequestFailed, resp.StatusCode, err)
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, string(bodyBytes))
	}

	var genResp GenerationResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return genResp.Message, nil
}

// IsHealthy reports whether the breaker is letting requests through
func (c *GenerationClient) IsHealthy(ctx context.Context) bool {
	_, span := c.tracer.Start(ctx, "generation.health_check")
	defer span.End()

	healthy := c.breaker.State() != gobreaker.StateOpen
	span.SetAttributes(attribute.Bool("healthy", healthy))
	if !healthy {
		span.SetAttributes(attribute.String("reason", "circuit_breaker_open"))
	}
	return healthy
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, ErrRequestFailed):
		return "http_error"
	}
	return "transport"
}

func stageName(stage string) string {
	if stage == "" {
		return "response"
	}
	return stage
}
