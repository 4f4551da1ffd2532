package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nebrenner/basketball-play-author/internal/dispatcher"

// instruments are the command metrics. They report through the global meter
// provider, which is a no-op unless an exporter was installed.
type instruments struct {
	backlog  metric.Int64ObservableGauge
	handled  metric.Int64Counter
	failed   metric.Int64Counter
	rejected metric.Int64Counter
}

func newInstruments(d *Dispatcher) (*instruments, error) {
	m := otel.Meter(instrumentationName)
	ins := &instruments{}

	var err error
	if ins.backlog, err = m.Int64ObservableGauge(
		"playauthor.commands.backlog",
		metric.WithDescription("Commands waiting in a background queue"),
	); err != nil {
		return nil, fmt.Errorf("creating backlog gauge: %w", err)
	}
	if _, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for command, n := range d.backlog() {
			o.ObserveInt64(ins.backlog, int64(n), commandAttr(command))
		}
		return nil
	}, ins.backlog); err != nil {
		return nil, fmt.Errorf("registering backlog callback: %w", err)
	}

	if ins.handled, err = m.Int64Counter(
		"playauthor.commands.handled",
		metric.WithDescription("Commands run to completion, successful or not"),
	); err != nil {
		return nil, fmt.Errorf("creating handled counter: %w", err)
	}
	if ins.failed, err = m.Int64Counter(
		"playauthor.commands.failed",
		metric.WithDescription("Commands whose handler returned an error"),
	); err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}
	if ins.rejected, err = m.Int64Counter(
		"playauthor.commands.rejected",
		metric.WithDescription("Background commands turned away because their queue was full"),
	); err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}
	return ins, nil
}

func (ins *instruments) record(ctx context.Context, command string, err error) {
	attrs := commandAttr(command)
	ins.handled.Add(ctx, 1, attrs)
	if err != nil {
		ins.failed.Add(ctx, 1, attrs)
	}
}

func commandAttr(command string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", command))
}
