package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "opboxlink", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, 1.0, cfg.SampleFraction)
}

func TestInitDisabledReturnsNoOpShutdown(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOpWhenUninitialized(t *testing.T) {
	tracer = nil
	enabled = false
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpanDoesNotPanicWithoutInit(t *testing.T) {
	ctx := context.Background()
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestRecordErrorHandlesNilAndRealError(t *testing.T) {
	ctx := context.Background()
	require.NotPanics(t, func() { RecordError(ctx, nil) })
	require.NotPanics(t, func() { RecordError(ctx, errors.New("boom")) })
}

func TestSetAttributesDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	require.NotPanics(t, func() {
		SetAttributes(ctx, RoleAttr("robot"), FrameIDAttr("ROBOT_STATUS_FRAME"))
	})
}
