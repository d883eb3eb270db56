package obs

import (
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig configures the meter provider returned by
// [NewMeterProvider].
type ProviderConfig struct {
	// ServiceName is the service name reported in telemetry. Default:
	// "worldengine".
	ServiceName string

	// ServiceVersion is the service version reported in telemetry.
	ServiceVersion string
}

// NewMeterProvider builds an [sdkmetric.MeterProvider] backed by a
// Prometheus exporter so a host CLI can expose a /metrics endpoint for
// scraping. Unlike the teacher's InitProvider, this does not register a
// tracer provider or mutate process-global OTel state: a library embedded
// in a GA outer loop should not silently claim the global meter provider
// out from under its host.
func NewMeterProvider(cfg ProviderConfig) (*sdkmetric.MeterProvider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "worldengine"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	), nil
}
