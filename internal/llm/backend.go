// Package llm holds the chat completion backends behind POST /api/chat.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
)

var (
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("llm: empty response from model")
	// ErrInvalidMessage is returned for messages with an unknown role.
	ErrInvalidMessage = errors.New("llm: invalid message")
)

// Request is a chat completion request.
type Request struct {
	Messages    []models.ChatMessage
	Model       string
	Temperature *float64
	JSON        bool
}

// Validate checks the message list.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidMessage)
	}
	for i, m := range r.Messages {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidMessage, i, m.Role)
		}
	}
	return nil
}

// Backend completes a chat.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}
