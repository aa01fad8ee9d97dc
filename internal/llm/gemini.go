package llm

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	genai "google.golang.org/genai"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli    *genai.Client
	model  string
	tracer trace.Tracer
}

// NewGeminiClient creates a Gemini API client. baseURL is only set in tests.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions.BaseURL = baseURL
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model, tracer: otel.Tracer("gemini-client")}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

// Complete maps system messages to the system instruction and assistant turns
// to model turns. JSON requests ask for application/json.
func (g *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gemini.complete")
	defer span.End()

	// Requests may name models of other providers.
	model := req.Model
	if model == "" || !strings.HasPrefix(model, "gemini") {
		model = g.model
	}
	span.SetAttributes(attribute.String("model", model), attribute.Bool("json", req.JSON))

	contents, system := toGeminiContents(req.Messages)
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		cfg.Temperature = &t
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.cli.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func toGeminiContents(messages []models.ChatMessage) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = append(system, m.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}
