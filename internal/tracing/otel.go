package tracing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/phrazzld/srsforge/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// maxAttrLen caps the length of input and output values copied into span
// attributes. Prompts and generated files are far larger than collectors
// accept.
const maxAttrLen = 1024

var (
	errNoEndpoint    = errors.New("OTLP endpoint is empty")
	errNoServiceName = errors.New("service name is empty")
)

// NewProvider creates a TracerProvider exporting over OTLP/HTTP to endpoint
// (host:port, optionally with a scheme).
func NewProvider(ctx context.Context, serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	if endpoint == "" {
		return nil, errNoEndpoint
	}
	if serviceName == "" {
		return nil, errNoServiceName
	}

	exporter, err := otlptracehttp.New(ctx, endpointOption(endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

func endpointOption(endpoint string) []otlptracehttp.Option {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	}
	return []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure()}
}

// OTelRecorder exports trace runs as OpenTelemetry spans.
type OTelRecorder struct {
	tracer trace.Tracer
	spans  sync.Map // trace run ID -> trace.Span
}

// NewOTelRecorder creates an OTelRecorder using a tracer from tp.
func NewOTelRecorder(tp trace.TracerProvider) *OTelRecorder {
	return &OTelRecorder{tracer: tp.Tracer("github.com/phrazzld/srsforge/internal/tracing")}
}

// StartRun implements Recorder.
func (r *OTelRecorder) StartRun(ctx context.Context, name string, inputs map[string]any) (*domain.TraceRun, context.Context) {
	tr, ctx := begin(ctx, name, inputs)
	return tr, r.attach(ctx, tr)
}

// EndRun implements Recorder.
func (r *OTelRecorder) EndRun(ctx context.Context, tr *domain.TraceRun, outputs map[string]any, err error) {
	if tr == nil {
		return
	}
	tr.End(outputs, err)
	r.finish(ctx, tr)
}

func (r *OTelRecorder) attach(ctx context.Context, tr *domain.TraceRun) context.Context {
	attrs := []attribute.KeyValue{
		attribute.String("srsforge.trace_run_id", tr.ID.String()),
		attribute.String("srsforge.run_id", tr.RunID.String()),
	}
	attrs = append(attrs, mapAttributes("input.", tr.Inputs)...)

	ctx, span := r.tracer.Start(ctx, tr.Name,
		trace.WithTimestamp(tr.StartedAt),
		trace.WithAttributes(attrs...),
	)
	r.spans.Store(tr.ID, span)
	return ctx
}

func (r *OTelRecorder) finish(_ context.Context, tr *domain.TraceRun) {
	v, ok := r.spans.LoadAndDelete(tr.ID)
	if !ok {
		return
	}
	span := v.(trace.Span)

	span.SetAttributes(mapAttributes("output.", tr.Outputs)...)
	if tr.Error != "" {
		span.SetStatus(codes.Error, tr.Error)
		span.RecordError(errors.New(tr.Error))
	}

	var opts []trace.SpanEndOption
	if tr.EndedAt != nil {
		opts = append(opts, trace.WithTimestamp(*tr.EndedAt))
	}
	span.End(opts...)
}

// open reports how many spans are still open.
func (r *OTelRecorder) open() int {
	n := 0
	r.spans.Range(func(_, _ any) bool { n++; return true })
	return n
}

func mapAttributes(prefix string, m map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(m))
	for k, v := range m {
		key := attribute.Key(prefix + k)
		switch v := v.(type) {
		case string:
			attrs = append(attrs, key.String(truncate(v)))
		case int:
			attrs = append(attrs, key.Int(v))
		case int64:
			attrs = append(attrs, key.Int64(v))
		case bool:
			attrs = append(attrs, key.Bool(v))
		case float64:
			attrs = append(attrs, key.Float64(v))
		case []string:
			attrs = append(attrs, key.StringSlice(v))
		default:
			attrs = append(attrs, key.String(truncate(fmt.Sprint(v))))
		}
	}
	return attrs
}

func truncate(s string) string {
	if len(s) <= maxAttrLen {
		return s
	}
	return s[:maxAttrLen] + "..."
}

var (
	_ Recorder = (*OTelRecorder)(nil)
	_ sink     = (*OTelRecorder)(nil)
)
