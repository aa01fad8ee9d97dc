package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SnapshotMetrics records persistence shim activity.
type SnapshotMetrics struct {
	savedCounter     metric.Int64Counter
	discardedCounter metric.Int64Counter
}

func NewSnapshotMetrics() (*SnapshotMetrics, error) {
	savedCounter, err := meter.Int64Counter(
		"success_blueprint.snapshots.saved",
		metric.WithDescription("Total number of session snapshots written"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, err
	}

	discardedCounter, err := meter.Int64Counter(
		"success_blueprint.snapshots.discarded",
		metric.WithDescription("Stored snapshots dropped on load because they were incomplete"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, err
	}

	return &SnapshotMetrics{
		savedCounter:     savedCounter,
		discardedCounter: discardedCounter,
	}, nil
}

func (sm *SnapshotMetrics) RecordSaved(ctx context.Context) {
	sm.savedCounter.Add(ctx, 1)
}

func (sm *SnapshotMetrics) RecordDiscarded(ctx context.Context, reason string) {
	sm.discardedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}
