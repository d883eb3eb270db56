package obs_test

import (
	"context"
	"testing"

	"github.com/arcweave/worldengine/internal/obs"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*obs.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := obs.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsCreatesWithoutError(t *testing.T) {
	t.Parallel()
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordEpochIncrementsCounterAndHistogram(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordEpoch(ctx, 0.02)
	m.RecordEpoch(ctx, 0.04)

	rm := collect(t, reader)

	counter := findMetric(rm, "worldengine.epochs_completed")
	if counter == nil {
		t.Fatal("epochs_completed metric not found")
	}
	sum, ok := counter.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) == 0 || sum.DataPoints[0].Value != 2 {
		t.Fatalf("expected epoch counter of 2, got %+v", counter.Data)
	}

	hist := findMetric(rm, "worldengine.epoch.duration")
	if hist == nil {
		t.Fatal("epoch.duration metric not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(h.DataPoints) == 0 || h.DataPoints[0].Count != 2 {
		t.Fatalf("expected 2 histogram samples, got %+v", hist.Data)
	}
}

func TestRecordTickAccumulatesInsertedDroppedAndBudget(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTick(ctx, 3, 1, true)
	m.RecordTick(ctx, 2, 0, false)

	rm := collect(t, reader)

	ticks := findMetric(rm, "worldengine.ticks_completed")
	if sum, ok := ticks.Data.(metricdata.Sum[int64]); !ok || sum.DataPoints[0].Value != 2 {
		t.Fatalf("expected 2 ticks, got %+v", ticks.Data)
	}

	inserted := findMetric(rm, "worldengine.relationships.inserted")
	if sum, ok := inserted.Data.(metricdata.Sum[int64]); !ok || sum.DataPoints[0].Value != 5 {
		t.Fatalf("expected 5 inserted, got %+v", inserted.Data)
	}

	dropped := findMetric(rm, "worldengine.relationships.dropped")
	if sum, ok := dropped.Data.(metricdata.Sum[int64]); !ok || sum.DataPoints[0].Value != 1 {
		t.Fatalf("expected 1 dropped, got %+v", dropped.Data)
	}

	hits := findMetric(rm, "worldengine.budget_hits")
	if sum, ok := hits.Data.(metricdata.Sum[int64]); !ok || sum.DataPoints[0].Value != 1 {
		t.Fatalf("expected 1 budget hit, got %+v", hits.Data)
	}
}

func TestRecordPressuresSetsGaugePerKey(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordPressures(ctx, map[string]float64{"tension": 42, "unrest": 7})

	rm := collect(t, reader)
	gauge := findMetric(rm, "worldengine.pressure.value")
	if gauge == nil {
		t.Fatal("pressure.value metric not found")
	}
	g, ok := gauge.Data.(metricdata.Gauge[float64])
	if !ok {
		t.Fatal("expected a gauge")
	}
	if len(g.DataPoints) != 2 {
		t.Fatalf("expected 2 gauge data points, got %d", len(g.DataPoints))
	}
}

func TestRecordProtectedViolationIncrements(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordProtectedViolation(ctx)
	m.RecordProtectedViolation(ctx)

	rm := collect(t, reader)
	met := findMetric(rm, "worldengine.protected_violations")
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok || sum.DataPoints[0].Value != 2 {
		t.Fatalf("expected 2 violations, got %+v", met.Data)
	}
}
