package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer provides distributed tracing for task runs using OpenTelemetry.
//
// Spans are created per task run and per step, carrying the task ID, tool
// name, and outcome as attributes. When no collector endpoint is configured
// the tracer is a no-op and adds no overhead to the hot path.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// TraceConfig configures trace export.
type TraceConfig struct {
	// ServiceName identifies this service in traces.
	ServiceName string

	// Endpoint is the OTLP/gRPC collector endpoint (e.g. "localhost:4317").
	// Empty disables tracing.
	Endpoint string
}

// NewTracer creates a tracer and returns it with a shutdown function.
// With an empty endpoint the returned tracer is a no-op.
func NewTracer(ctx context.Context, config TraceConfig) (*Tracer, func(context.Context) error, error) {
	if config.Endpoint == "" {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer("webpilot")},
			func(context.Context) error { return nil }, nil
	}
	if config.ServiceName == "" {
		config.ServiceName = "webpilot"
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(config.Endpoint),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer := &Tracer{
		provider: provider,
		tracer:   provider.Tracer("webpilot"),
	}
	return tracer, provider.Shutdown, nil
}

// StartTaskSpan starts a span covering a full task run.
func (t *Tracer) StartTaskSpan(ctx context.Context, taskID, goal string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "task.run",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("task.goal", goal),
		),
	)
}

// StartStepSpan starts a span covering a single step execution.
func (t *Tracer) StartStepSpan(ctx context.Context, taskID, stepID, tool string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "task.step",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("step.id", stepID),
			attribute.String("step.tool", tool),
		),
	)
}

// EndSpan finalizes a span with an optional error.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
