package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// testConfig returns a valid Config with both signals disabled. Tests flip
// the Enable flags they care about.
func testConfig() Config {
	return Config{
		ServiceName:    "bookstore-api",
		ServiceVersion: "0.1.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

// setupTracerProvider installs an in-memory tracer provider and returns the
// exporter plus a cleanup function that restores the global provider.
func setupTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)

	cleanup := func() {
		otel.SetTracerProvider(nil)
	}

	return exp, cleanup
}
