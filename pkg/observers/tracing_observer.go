package observers

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/anggasct/junction"
)

const tracerName = "github.com/anggasct/junction"

// TracingObserver records one span per crossing. The span starts when the
// car began waiting for its quadrants and ends once it has crossed.
type TracingObserver struct {
	junction.BaseObserver

	ctx    context.Context
	tracer trace.Tracer
}

// NewTracingObserver creates spans from tp as children of any span in ctx
func NewTracingObserver(ctx context.Context, tp trace.TracerProvider) *TracingObserver {
	return &TracingObserver{
		ctx:    ctx,
		tracer: tp.Tracer(tracerName),
	}
}

func (o *TracingObserver) OnCrossing(event junction.CrossingEvent) {
	_, span := o.tracer.Start(o.ctx, "junction.cross",
		trace.WithTimestamp(event.WaitStarted),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("junction.run_id", event.RunID),
			attribute.Int("junction.car.id", event.Car.ID),
			attribute.String("junction.entry", event.Car.Entry.String()),
			attribute.String("junction.exit", event.Car.Exit.String()),
			attribute.String("junction.maneuver", event.Car.Maneuver().String()),
			attribute.String("junction.path", event.Path.String()),
			attribute.Int("junction.sequence", event.Sequence),
		),
	)
	span.AddEvent("quadrants.acquired", trace.WithTimestamp(event.Entered))
	span.End(trace.WithTimestamp(time.Now()))
}

func (o *TracingObserver) OnError(err error) {
	_, span := o.tracer.Start(o.ctx, "junction.observer_error")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
