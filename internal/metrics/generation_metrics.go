package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("success-blueprint")

// GenerationMetrics records calls made to the text-generation endpoint.
type GenerationMetrics struct {
	requestsCounter   metric.Int64Counter
	failuresCounter   metric.Int64Counter
	durationHistogram metric.Float64Histogram
	inFlightGauge     metric.Int64UpDownCounter
	supersededCounter metric.Int64Counter
}

// NewGenerationMetrics creates the generation instruments.
func NewGenerationMetrics() (*GenerationMetrics, error) {
	requestsCounter, err := meter.Int64Counter(
		"success_blueprint.generation.requests",
		metric.WithDescription("Total number of generation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	failuresCounter, err := meter.Int64Counter(
		"success_blueprint.generation.failures",
		metric.WithDescription("Total number of failed generation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"success_blueprint.generation.duration",
		metric.WithDescription("Duration of generation requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inFlightGauge, err := meter.Int64UpDownCounter(
		"success_blueprint.generation.in_flight",
		metric.WithDescription("Number of generation requests in flight"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	supersededCounter, err := meter.Int64Counter(
		"success_blueprint.submissions.superseded",
		metric.WithDescription("Report submissions discarded because a newer one started"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{
		requestsCounter:   requestsCounter,
		failuresCounter:   failuresCounter,
		durationHistogram: durationHistogram,
		inFlightGauge:     inFlightGauge,
		supersededCounter: supersededCounter,
	}, nil
}

// RecordStarted marks the start of a request for stage.
func (gm *GenerationMetrics) RecordStarted(ctx context.Context, stage string) {
	gm.requestsCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
	gm.inFlightGauge.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordSucceeded records a completed request.
func (gm *GenerationMetrics) RecordSucceeded(ctx context.Context, stage string, duration time.Duration) {
	gm.durationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("status", "completed"),
		),
	)
	gm.inFlightGauge.Add(ctx, -1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordFailed records a failed request with a coarse error type.
func (gm *GenerationMetrics) RecordFailed(ctx context.Context, stage, errorType string, duration time.Duration) {
	gm.failuresCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("error.type", errorType),
		),
	)
	gm.durationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("status", "failed"),
		),
	)
	gm.inFlightGauge.Add(ctx, -1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordSuperseded counts a submission whose results were discarded.
func (gm *GenerationMetrics) RecordSuperseded(ctx context.Context) {
	gm.supersededCounter.Add(ctx, 1)
}
