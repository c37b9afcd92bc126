package inventory

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/metinatakli/cinema-ticket-inventory/internal/inventory"

var tracer = otel.Tracer(instrumentationName)

type metrics struct {
	provisioned metric.Int64Counter
	released    metric.Int64Counter
	reserved    metric.Int64Counter
	restored    metric.Int64Counter
	conflicts   metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter(instrumentationName)

	return &metrics{
		provisioned: newCounter(meter, "inventory.tickets.provisioned", "Tickets created for showings"),
		released:    newCounter(meter, "inventory.tickets.released", "Ticket quantity withdrawn from showings"),
		reserved:    newCounter(meter, "inventory.cart.reserved", "Ticket quantity moved into carts"),
		restored:    newCounter(meter, "inventory.cart.restored", "Ticket quantity given back by carts"),
		conflicts:   newCounter(meter, "inventory.conflicts", "Operations rejected because of contention"),
	}
}

func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		otel.Handle(err)
		counter, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter(name)
	}

	return counter
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}
