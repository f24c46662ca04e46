// Package executor runs mapper statements against a database connection
// and lets interceptors observe and rewrite each call.
//
// A call goes through these steps:
//
//  1. the statement is rendered for the parameter object (mapper.Statement.Bind)
//  2. every Interceptor's BeforeQuery runs, in registration order
//  3. the arguments are bound and the SQL text is executed on the connection,
//     under the context of the call (Call.Context)
//  4. the rows are materialized into Rows
//  5. every Interceptor's AfterQuery runs, in reverse order, and may
//     substitute the RowSet returned to the caller
package executor

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/syssam/pager"
	"github.com/syssam/pager/convert"
	"github.com/syssam/pager/dialect"
	"github.com/syssam/pager/mapper"
)

// Interceptor observes a call before it is executed and after its rows
// are materialized.
type Interceptor interface {
	// BeforeQuery runs before the call is executed on conn. It may replace
	// the SQL text through call.SetSQL. A non-nil error aborts the call.
	BeforeQuery(ctx context.Context, conn dialect.ExecQuerier, call *Call) error
	// AfterQuery receives the materialized rows and returns the value
	// handed to the caller.
	AfterQuery(ctx context.Context, call *Call, rows RowSet) (RowSet, error)
}

// CallFinisher is implemented by interceptors that need to know when a
// call ends. FinishCall runs once per call, after AfterQuery or after the
// failure that ended the call, in reverse registration order.
type CallFinisher interface {
	FinishCall(ctx context.Context, call *Call, err error)
}

// Executor executes registered statements.
type Executor struct {
	stmts        *mapper.Registry
	dialect      string
	types        *convert.Registry
	interceptors []Interceptor
	logger       *slog.Logger

	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
}

// Option configures the Executor.
type Option func(*Executor)

// WithDialect sets the dialect used to render placeholders.
// Default is dialect.Default.
func WithDialect(name string) Option {
	return func(e *Executor) {
		e.dialect = dialect.Normalize(name)
	}
}

// WithConverters sets the converter registry used for binding.
func WithConverters(types *convert.Registry) Option {
	return func(e *Executor) {
		e.types = types
	}
}

// WithInterceptors appends interceptors.
func WithInterceptors(ics ...Interceptor) Option {
	return func(e *Executor) {
		e.interceptors = append(e.interceptors, ics...)
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithStats makes the executor record into stats instead of its own
// QueryStats, so several executors can share one set of counters.
func WithStats(stats *QueryStats) Option {
	return func(e *Executor) {
		e.stats = stats
	}
}

// New returns an Executor for the statements of stmts.
//
// Example:
//
//	stmts, _ := mapper.NewRegistry()
//	_ = stmts.Load("mappers/orders.yaml")
//	exec := executor.New(stmts,
//	    executor.WithDialect(dialect.MySQL),
//	    executor.WithInterceptors(paging.New(paging.WithDialect(dialect.MySQL))),
//	    executor.WithSlowQueryLog(),
//	)
func New(stmts *mapper.Registry, opts ...Option) *Executor {
	e := &Executor{
		stmts:         stmts,
		dialect:       dialect.Default,
		types:         convert.NewRegistry(),
		logger:        slog.Default(),
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect placeholders are rendered for.
func (e *Executor) Dialect() string { return e.dialect }

// Converters returns the converter registry.
func (e *Executor) Converters() *convert.Registry { return e.types }

// QueryStats returns the statistics of the executor.
func (e *Executor) QueryStats() *QueryStats { return e.stats }

// Query executes the statement id with payload on conn. The payload is
// either the parameter object itself or a Payload wrapping it.
//
// The returned RowSet is Rows unless an interceptor substituted it.
func (e *Executor) Query(ctx context.Context, conn dialect.ExecQuerier, id string, payload any) (_ RowSet, rerr error) {
	stmt, err := e.stmts.Statement(id)
	if err != nil {
		return nil, err
	}
	param := payload
	if p, ok := payload.(Payload); ok {
		param = p.Param()
	}
	bound, err := stmt.Bind(param, e.dialect, e.types)
	if err != nil {
		return nil, pager.NewStatementError(id, "bind", err)
	}
	call := newCall(ctx, stmt, e.dialect, e.types, bound, payload, param)
	call.record = e.record
	defer func() { e.finish(call.Context(), call, rerr) }()
	for _, ic := range e.interceptors {
		if err := ic.BeforeQuery(call.Context(), conn, call); err != nil {
			return nil, err
		}
	}
	args, err := bound.Args(e.types, id)
	if err != nil {
		return nil, err
	}
	ctx = call.Context()
	start := time.Now()
	rows, err := query(ctx, conn, call.SQL(), args)
	e.record(ctx, call, call.SQL(), args, start, err)
	if err != nil {
		return nil, pager.NewStatementError(id, "query", err)
	}
	var out RowSet = rows
	for i := len(e.interceptors) - 1; i >= 0; i-- {
		if out, err = e.interceptors[i].AfterQuery(ctx, call, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *Executor) finish(ctx context.Context, call *Call, err error) {
	for i := len(e.interceptors) - 1; i >= 0; i-- {
		if f, ok := e.interceptors[i].(CallFinisher); ok {
			f.FinishCall(ctx, call, err)
		}
	}
}

// query executes text on conn and materializes every row. The cursor is
// closed on every path.
func query(ctx context.Context, conn dialect.ExecQuerier, text string, args []any) (_ Rows, rerr error) {
	rows, err := conn.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer func() { rerr = errors.Join(rerr, rows.Close()) }()
	return scan(rows)
}

// scan materializes rows as returned by the driver; text columns may come
// back as []byte depending on the driver.
func scan(rows *sql.Rows) (Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := Rows{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
