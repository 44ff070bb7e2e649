package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, p.HealthCheck())
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	require.NoError(t, ValidateConfig(cfg))

	cfg.SampleRate = -0.5
	require.Error(t, ValidateConfig(cfg))

	cfg.SampleRate = 0.5
	cfg.OTLPEndpoint = ""
	require.Error(t, ValidateConfig(cfg))
}

func TestOperationSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartOperationSpan(context.Background(), "stake", 7)
	RecordError(span, errors.New("boom"))
	span.End()

	_, span = StartQuerySpan(context.Background(), "trader")
	SetSpanStatus(span, true, "")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	require.Equal(t, "zklr.stake", ended[0].Name())
	require.Equal(t, codes.Error, ended[0].Status().Code)
	require.Equal(t, "zklr.query.trader", ended[1].Name())
	require.Equal(t, codes.Ok, ended[1].Status().Code)
}
