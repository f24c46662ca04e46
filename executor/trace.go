package executor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/syssam/pager/dialect"
)

const tracerName = "github.com/syssam/pager/executor"

// WithTracing records every call as a span of tp. A nil tp selects the
// global provider. The tracing interceptor is installed ahead of every
// other interceptor, so its span covers the whole call and is the parent
// of whatever the others start from the call context.
func WithTracing(tp trace.TracerProvider) Option {
	return func(e *Executor) {
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		t := &tracing{tracer: tp.Tracer(tracerName)}
		e.interceptors = append([]Interceptor{t}, e.interceptors...)
	}
}

type tracing struct {
	tracer trace.Tracer
}

type spanKey struct{}

type rowsKey struct{}

func (t *tracing) BeforeQuery(ctx context.Context, _ dialect.ExecQuerier, call *Call) error {
	ctx, span := t.tracer.Start(ctx, "pager.query "+call.Statement.ID,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", call.Dialect),
			attribute.String("pager.statement", call.Statement.ID),
			attribute.String("pager.call_id", call.ID.String()),
		),
	)
	call.SetAttr(spanKey{}, span)
	call.SetContext(ctx)
	return nil
}

func (t *tracing) AfterQuery(_ context.Context, call *Call, rows RowSet) (RowSet, error) {
	call.SetAttr(rowsKey{}, rows.Len())
	return rows, nil
}

func (t *tracing) FinishCall(_ context.Context, call *Call, err error) {
	v, ok := call.TakeAttr(spanKey{})
	if !ok {
		return
	}
	span := v.(trace.Span)
	defer span.End()
	span.SetAttributes(attribute.String("db.query.text", call.SQL()))
	if n, ok := call.TakeAttr(rowsKey{}); ok {
		span.SetAttributes(attribute.Int("pager.rows", n.(int)))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

var (
	_ Interceptor  = (*tracing)(nil)
	_ CallFinisher = (*tracing)(nil)
)
