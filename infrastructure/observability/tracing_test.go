package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_DevelopmentRecordsSpans(t *testing.T) {
	tp, err := InitTracing(TracingConfig{Environment: "development"})
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	ctx, span := tp.StartSpan(context.Background(), "organize-canvas")
	defer span.End()

	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
}

func TestInitTracing_ShutdownIsIdempotent(t *testing.T) {
	tp, err := InitTracing(TracingConfig{ServiceName: "chartfusion-agent-test", Environment: "production", SampleRate: 0.5})
	require.NoError(t, err)

	require.NoError(t, tp.Shutdown(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestDefaultSampleRate(t *testing.T) {
	assert.Equal(t, 0.01, defaultSampleRate("production"))
	assert.Equal(t, 1.0, defaultSampleRate("development"))
	assert.Equal(t, 1.0, defaultSampleRate(""))
}
