// Package obs provides the engine's observability primitives: OpenTelemetry
// metric instruments plus a Prometheus exporter bridge, following the
// teacher's application-wide observe package but narrowed to the
// instruments a simulation run actually emits (epoch/tick counters,
// pressure gauges, an epoch-duration histogram) instead of a voice
// pipeline's per-stage latencies.
//
// A package-level default [Metrics] instance is deliberately not provided:
// unlike the teacher's single long-lived service process, a run's
// [metric.MeterProvider] is supplied by the host embedding the engine, so
// [NewMetrics] always takes one explicitly.
package obs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for all engine metrics.
const meterName = "github.com/arcweave/worldengine"

// epochDurationBuckets are histogram bucket boundaries in seconds, sized
// for an epoch that runs a growth phase plus a handful of simulation
// ticks rather than a single RPC.
var epochDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// Metrics holds every OpenTelemetry instrument the engine records against
// during a run. All fields are safe for concurrent use.
type Metrics struct {
	// EpochsCompleted counts completed epochs.
	EpochsCompleted metric.Int64Counter

	// TicksCompleted counts completed simulation ticks.
	TicksCompleted metric.Int64Counter

	// EpochDuration tracks wall-clock time spent per epoch. This is a
	// host-observability figure only: the engine's own logical clock
	// (the worldgraph.Graph tick counter) never reads wall time for
	// simulation semantics.
	EpochDuration metric.Float64Histogram

	// PressureValue is a gauge of each pressure's current value, keyed by
	// the "pressure" attribute.
	PressureValue metric.Float64Gauge

	// RelationshipsInserted counts relationship insertions by system.
	RelationshipsInserted metric.Int64Counter

	// RelationshipsDropped counts relationship proposals dropped by the
	// per-tick budget.
	RelationshipsDropped metric.Int64Counter

	// BudgetHits counts ticks on which the relationship budget was hit.
	BudgetHits metric.Int64Counter

	// ProtectedViolations counts protected-relationship threshold
	// violations recorded by the graph.
	ProtectedViolations metric.Int64Counter
}

// NewMetrics creates a fully initialized [Metrics] using the given
// [metric.MeterProvider]. Returns an error if any instrument creation
// fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{}
	var err error

	if met.EpochsCompleted, err = m.Int64Counter("worldengine.epochs_completed",
		metric.WithDescription("Total epochs completed."),
	); err != nil {
		return nil, err
	}
	if met.TicksCompleted, err = m.Int64Counter("worldengine.ticks_completed",
		metric.WithDescription("Total simulation ticks completed."),
	); err != nil {
		return nil, err
	}
	if met.EpochDuration, err = m.Float64Histogram("worldengine.epoch.duration",
		metric.WithDescription("Wall-clock time spent processing one epoch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(epochDurationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PressureValue, err = m.Float64Gauge("worldengine.pressure.value",
		metric.WithDescription("Current value of a named pressure."),
	); err != nil {
		return nil, err
	}
	if met.RelationshipsInserted, err = m.Int64Counter("worldengine.relationships.inserted",
		metric.WithDescription("Total relationships inserted by systems."),
	); err != nil {
		return nil, err
	}
	if met.RelationshipsDropped, err = m.Int64Counter("worldengine.relationships.dropped",
		metric.WithDescription("Total relationship proposals dropped by the per-tick budget."),
	); err != nil {
		return nil, err
	}
	if met.BudgetHits, err = m.Int64Counter("worldengine.budget_hits",
		metric.WithDescription("Total ticks on which the relationship budget was hit."),
	); err != nil {
		return nil, err
	}
	if met.ProtectedViolations, err = m.Int64Counter("worldengine.protected_violations",
		metric.WithDescription("Total protected-relationship threshold violations."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordEpoch is a convenience method recording one completed epoch and
// its wall-clock duration.
func (m *Metrics) RecordEpoch(ctx context.Context, durationSeconds float64) {
	m.EpochsCompleted.Add(ctx, 1)
	m.EpochDuration.Record(ctx, durationSeconds)
}

// RecordTick is a convenience method recording one completed simulation
// tick and the relationship-budget outcome for that tick.
func (m *Metrics) RecordTick(ctx context.Context, inserted, dropped int, budgetHit bool) {
	m.TicksCompleted.Add(ctx, 1)
	if inserted > 0 {
		m.RelationshipsInserted.Add(ctx, int64(inserted))
	}
	if dropped > 0 {
		m.RelationshipsDropped.Add(ctx, int64(dropped))
	}
	if budgetHit {
		m.BudgetHits.Add(ctx, 1)
	}
}

// RecordPressures records a gauge reading for every pressure in values.
func (m *Metrics) RecordPressures(ctx context.Context, values map[string]float64) {
	for id, v := range values {
		m.PressureValue.Record(ctx, v, metric.WithAttributes(attribute.String("pressure", id)))
	}
}

// RecordProtectedViolation records one protected-relationship violation.
func (m *Metrics) RecordProtectedViolation(ctx context.Context) {
	m.ProtectedViolations.Add(ctx, 1)
}
