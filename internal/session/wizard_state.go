package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

// ResponsesNamespace prefixes the wizard progress keys.
const ResponsesNamespace = "aiSuccessBlueprintResponses"

// WizardState is the saved wizard progress of one session, with the step
// feedback and the generated narrative that the summary page shows.
type WizardState struct {
	Progress        wizard.Progress   `json:"progress"`
	Feedback        map[string]string `json:"feedback,omitempty"`
	Narrative       string            `json:"narrative,omitempty"`
	NarrativeFailed bool              `json:"narrativeFailed,omitempty"`
}

// WizardKey returns the store key for a session's wizard progress.
func (s *Shim) WizardKey(scope string) string {
	return ResponsesNamespace + ":" + scope
}

// SaveWizard overwrites the wizard progress for scope.
func (s *Shim) SaveWizard(ctx context.Context, scope string, state WizardState) error {
	ctx, span := s.tracer.Start(ctx, "session_shim.save_wizard")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", scope))

	data, err := encodeJSON(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode wizard state: %w", err)
	}
	if err := s.store.Set(ctx, s.WizardKey(scope), data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to store wizard state: %w", err)
	}
	return nil
}

// LoadWizard returns the saved wizard progress. An undecodable blob is
// removed and reported as absent.
func (s *Shim) LoadWizard(ctx context.Context, scope string) (*WizardState, bool, error) {
	ctx, span := s.tracer.Start(ctx, "session_shim.load_wizard")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", scope))

	data, err := s.store.Get(ctx, s.WizardKey(scope))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to read wizard state: %w", err)
	}

	var state WizardState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("Discarding stored wizard state", zap.String("session_id", scope), zap.Error(err))
		if err := s.ClearWizard(ctx, scope); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return &state, true, nil
}

// ClearWizard removes the wizard progress for scope.
func (s *Shim) ClearWizard(ctx context.Context, scope string) error {
	ctx, span := s.tracer.Start(ctx, "session_shim.clear_wizard")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", scope))

	if err := s.store.Remove(ctx, s.WizardKey(scope)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear wizard state: %w", err)
	}
	return nil
}
