package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/pager/convert"
	"github.com/syssam/pager/mapper"
)

// SQLHolder is the capability to read and replace the SQL text of a call
// before it is executed.
type SQLHolder interface {
	SQL() string
	SetSQL(string)
}

// Payload is implemented by parameter wrappers that carry call options
// next to the parameter object. The executor binds Param() and leaves the
// wrapper available to interceptors through Call.Payload.
type Payload interface {
	Param() any
}

// Call is the state of one Executor.Query invocation. It is created per
// call and never shared, so interceptors can use its attributes to pass
// values from BeforeQuery to AfterQuery.
type Call struct {
	// ID identifies the call in logs.
	ID        uuid.UUID
	Statement *mapper.Statement
	Dialect   string

	types   *convert.Registry
	bound   *mapper.BoundSQL
	payload any
	param   any
	attrs   map[any]any

	ctx    context.Context
	record func(ctx context.Context, call *Call, query string, args []any, start time.Time, err error)
}

func newCall(ctx context.Context, stmt *mapper.Statement, dialect string, types *convert.Registry, bound *mapper.BoundSQL, payload, param any) *Call {
	return &Call{
		ctx:       ctx,
		ID:        uuid.New(),
		Statement: stmt,
		Dialect:   dialect,
		types:     types,
		bound:     bound,
		payload:   payload,
		param:     param,
	}
}

// SQL returns the SQL text that will be executed.
func (c *Call) SQL() string { return c.bound.SQL() }

// SetSQL replaces the SQL text. Parameter mappings are left untouched.
func (c *Call) SetSQL(sql string) { c.bound.SetSQL(sql) }

// Bound returns the rendered statement.
func (c *Call) Bound() *mapper.BoundSQL { return c.bound }

// Converters returns the converter registry the call is bound with.
func (c *Call) Converters() *convert.Registry { return c.types }

// Payload returns the payload as passed to Query.
func (c *Call) Payload() any { return c.payload }

// Param returns the parameter object the statement is bound to.
func (c *Call) Param() any { return c.param }

// Context returns the context the call runs under. It starts as the
// context passed to Query.
func (c *Call) Context() context.Context { return c.ctx }

// SetContext replaces the context of the call. Interceptors registered
// after the caller, the query itself and AfterQuery run under ctx; the
// tracing interceptor uses it to carry the call span.
func (c *Call) SetContext(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
}

// Record accounts for a statement an interceptor executed on behalf of the
// call, a count query for instance, the same way the executor accounts for
// the query of the call itself.
func (c *Call) Record(ctx context.Context, query string, args []any, start time.Time, err error) {
	if c.record != nil {
		c.record(ctx, c, query, args, start, err)
	}
}

// SetAttr stores a value on the call.
func (c *Call) SetAttr(key, v any) {
	if c.attrs == nil {
		c.attrs = make(map[any]any)
	}
	c.attrs[key] = v
}

// Attr returns the value stored under key.
func (c *Call) Attr(key any) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// TakeAttr returns the value stored under key and removes it.
func (c *Call) TakeAttr(key any) (any, bool) {
	v, ok := c.attrs[key]
	if ok {
		delete(c.attrs, key)
	}
	return v, ok
}

var _ SQLHolder = (*Call)(nil)
