package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
)

// DefaultOpenAIURL is the API base used when none is set.
const DefaultOpenAIURL = "https://api.openai.com/v1/"

// OpenAIClient calls an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client  openai.Client
	model   string
	baseURL string
	tracer  trace.Tracer
}

// NewOpenAIClient creates a client. An empty baseURL uses DefaultOpenAIURL.
// Failed calls are not retried.
func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		model:   model,
		baseURL: baseURL,
		tracer:  otel.Tracer("openai-client"),
	}
}

func (c *OpenAIClient) Name() string { return "OpenAI:" + c.model }

// Complete sends the messages as given. req.Model overrides the default model.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openai.complete")
	defer span.End()

	model := req.Model
	if model == "" {
		model = c.model
	}
	span.SetAttributes(attribute.String("model", model), attribute.Bool("json", req.JSON))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case models.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai: unexpected status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
