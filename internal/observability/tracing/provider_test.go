package tracing

import (
	"context"
	"testing"

	"github.com/smallbiznis/fraudreview/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewProviderStampsCorrelationID(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tp, err := NewProvider(nil, Config{ServiceName: "fraudreview", SamplingRatio: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx := correlation.ContextWithCorrelationID(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	_, span := tp.Tracer("test").Start(ctx, "ingest")
	defer span.End()

	ro, ok := span.(interface{ Attributes() []attribute.KeyValue })
	require.True(t, ok)
	assert.Contains(t, ro.Attributes(), attribute.String("correlation_id", "01ARZ3NDEKTSV4RRFFQ69G5FAV"))
}

func TestNewExporterRejectsUnknownProtocol(t *testing.T) {
	_, err := newExporter("carrier-pigeon", "")
	assert.Error(t, err)
}
