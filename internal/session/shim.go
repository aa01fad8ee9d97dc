package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/metrics"
)

// DefaultNamespace prefixes every snapshot key.
const DefaultNamespace = "aiSuccessBlueprintState"

// Shim saves and restores snapshots so persisted state is always complete or
// absent.
type Shim struct {
	store     Store
	namespace string
	logger    *zap.Logger
	metrics   *metrics.SnapshotMetrics
	tracer    trace.Tracer
}

// NewShim wraps store. m may be nil.
func NewShim(store Store, logger *zap.Logger, m *metrics.SnapshotMetrics) *Shim {
	return &Shim{
		store:     store,
		namespace: DefaultNamespace,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("session-shim"),
	}
}

// Store returns the underlying store.
func (s *Shim) Store() Store {
	return s.store
}

// Key returns the store key for a session scope.
func (s *Shim) Key(scope string) string {
	return s.namespace + ":" + scope
}

// Save writes snap when it is complete. It returns false without touching the
// store otherwise.
func (s *Shim) Save(ctx context.Context, scope string, snap Snapshot) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "session_shim.save")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", scope))

	if !snap.Complete() {
		span.SetAttributes(attribute.StringSlice("snapshot.missing", snap.Missing()))
		return false, nil
	}

	data, err := snap.encode()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.store.Set(ctx, s.Key(scope), data); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to store snapshot: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordSaved(ctx)
	}
	return true, nil
}

// Load returns the stored snapshot. Undecodable or incomplete blobs are
// removed and reported as absent.
func (s *Shim) Load(ctx context.Context, scope string) (*Snapshot, bool, error) {
	ctx, span := s.tracer.Start(ctx, "session_shim.load")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", scope))

	data, err := s.store.Get(ctx, s.Key(scope))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	reason := ""
	if err := json.Unmarshal(data, &snap); err != nil {
		reason = "undecodable"
	} else if !snap.Complete() {
		reason = "missing " + strings.Join(snap.Missing(), ",")
	}
	if reason != "" {
		span.SetAttributes(attribute.String("snapshot.discarded", reason))
		s.logger.Warn("Discarding stored snapshot",
			zap.String("session_id", scope),
			zap.String("reason", reason),
		)
		if s.metrics != nil {
			s.metrics.RecordDiscarded(ctx, reason)
		}
		if err := s.store.Remove(ctx, s.Key(scope)); err != nil {
			span.RecordError(err)
			return nil, false, fmt.Errorf("failed to discard snapshot: %w", err)
		}
		return nil, false, nil
	}
	return &snap, true, nil
}

// Clear removes the snapshot for scope.
func (s *Shim) Clear(ctx context.Context, scope string) error {
	ctx, span := s.tracer.Start(ctx, "session_shim.clear")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", scope))

	if err := s.store.Remove(ctx, s.Key(scope)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
