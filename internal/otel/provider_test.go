package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, p.Meter("test"))
}

func TestNew_EnabledWithoutSink(t *testing.T) {
	_, err := New(context.Background(), Config{Enabled: true, ServiceName: "playauthor"})
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_EnabledWithWriter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "playauthor",
		BatchTimeout: time.Second,
		LogWriter:    &buf,
	})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())
	assert.True(t, p.Enabled())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EndpointExportsMetrics(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	p, err := New(context.Background(), Config{
		Enabled:        true,
		ServiceName:    "playauthor",
		BatchTimeout:   time.Second,
		Endpoint:       "127.0.0.1:4318",
		Insecure:       true,
		MetricInterval: time.Hour,
	})
	require.NoError(t, err)
	assert.True(t, p.MetricsEnabled())
	assert.NotNil(t, p.LoggerProvider())
	assert.NotNil(t, p.Meter("test"))

	counter, err := otel.Meter("test").Int64Counter("test.events")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	// Nothing listens on the endpoint, so only make sure shutdown returns.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = p.Shutdown(ctx)
}

func TestNew_WriterOnlyKeepsGlobalMeter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), Config{
		Enabled:     true,
		ServiceName: "playauthor",
		LogWriter:   &buf,
	})
	require.NoError(t, err)
	assert.False(t, p.MetricsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}
