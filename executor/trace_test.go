package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/syssam/pager/dialect"
)

func attrs(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	stmts, mock, conn := newMock(t)
	var events []string
	rewrite := recorder{name: "r", events: &events, before: func(c *Call) error {
		c.SetSQL(c.SQL() + " LIMIT 0,1")
		return nil
	}}
	exec := New(stmts, WithDialect(dialect.MySQL), WithInterceptors(rewrite), WithTracing(tp))

	t.Run("Success", func(t *testing.T) {
		exporter.Reset()
		mock.ExpectQuery("SELECT id, status FROM orders WHERE status = ? LIMIT 0,1").
			WithArgs("open").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(int64(1), "open"))

		_, err := exec.Query(context.Background(), conn(), "orders.list", map[string]any{"status": "open"})
		require.NoError(t, err)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		span := spans[0]
		assert.Equal(t, "pager.query orders.list", span.Name)
		got := attrs(span.Attributes)
		assert.Equal(t, "mysql", got["db.system"].AsString())
		assert.Equal(t, "orders.list", got["pager.statement"].AsString())
		assert.Equal(t, "SELECT id, status FROM orders WHERE status = ? LIMIT 0,1", got["db.query.text"].AsString())
		assert.Equal(t, int64(1), got["pager.rows"].AsInt64())
		assert.Equal(t, codes.Unset, span.Status.Code)
	})

	t.Run("Error", func(t *testing.T) {
		exporter.Reset()
		mock.ExpectQuery("SELECT id, status FROM orders WHERE status = ? LIMIT 0,1").
			WithArgs("open").
			WillReturnError(errors.New("deadlock"))

		_, err := exec.Query(context.Background(), conn(), "orders.list", map[string]any{"status": "open"})
		require.Error(t, err)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Contains(t, spans[0].Status.Description, "deadlock")
		require.NotEmpty(t, spans[0].Events)
		assert.Equal(t, "exception", spans[0].Events[0].Name)
		_, ok := attrs(spans[0].Attributes)["pager.rows"]
		assert.False(t, ok)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTracingContext(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	stmts, mock, conn := newMock(t)
	var seen []trace.SpanContext
	events := []string{}
	observe := func(c *Call) error {
		seen = append(seen, trace.SpanContextFromContext(c.Context()))
		return nil
	}
	exec := New(stmts,
		WithDialect(dialect.MySQL),
		WithInterceptors(recorder{name: "r", events: &events, before: observe}),
		WithTracing(tp),
	)
	mock.ExpectQuery("SELECT id, status FROM orders WHERE status = ?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "request")
	_, err := exec.Query(ctx, conn(), "orders.list", map[string]any{"status": "open"})
	require.NoError(t, err)
	parent.End()
	require.NoError(t, mock.ExpectationsWereMet())

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	call := spans[0]
	assert.Equal(t, "pager.query orders.list", call.Name)
	assert.Equal(t, parent.SpanContext().SpanID(), call.Parent.SpanID())

	// Interceptors behind the tracing one run under the call span.
	require.Len(t, seen, 1)
	assert.True(t, seen[0].IsValid())
	assert.Equal(t, call.SpanContext.SpanID(), seen[0].SpanID())
	assert.Equal(t, parent.SpanContext().TraceID(), seen[0].TraceID())
}
