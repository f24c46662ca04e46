package paging

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/syssam/pager"
	"github.com/syssam/pager/dialect"
	"github.com/syssam/pager/executor"
)

// Interceptor paginates calls whose payload carries a Page.
//
// Before such a call runs, it counts the rows of the base query on the same
// connection, stores the total on the Page and rewrites the SQL to fetch
// only the requested page. After the rows are materialized, it attaches
// them to the Page and returns the Page in their place. Calls without a
// Page pass through untouched.
type Interceptor struct {
	dialect  string
	strategy Strategy
	logger   *slog.Logger

	once sync.Once
	err  error
}

// Option configures the Interceptor.
type Option func(*Interceptor)

// WithDialect sets the dialect queries are rewritten for.
// Default is dialect.Default.
func WithDialect(name string) Option {
	return func(i *Interceptor) {
		i.dialect = name
	}
}

// WithStrategy sets the rewrite strategy, overriding WithDialect.
func WithStrategy(s Strategy) Option {
	return func(i *Interceptor) {
		i.strategy = s
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(i *Interceptor) {
		i.logger = l
	}
}

// New returns a paging Interceptor. The dialect is resolved on the first
// paginated call; an unsupported name fails that call and every later one.
func New(opts ...Option) *Interceptor {
	i := &Interceptor{logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Strategy returns the rewrite strategy of the configured dialect.
func (i *Interceptor) Strategy() (Strategy, error) {
	i.once.Do(func() {
		if i.strategy == nil {
			i.strategy, i.err = StrategyFor(i.dialect)
		}
	})
	return i.strategy, i.err
}

// BeforeQuery implements executor.Interceptor.
func (i *Interceptor) BeforeQuery(ctx context.Context, conn dialect.ExecQuerier, call *executor.Call) error {
	page, ok := pageOf(call.Payload())
	if !ok {
		return nil
	}
	strategy, err := i.Strategy()
	if err != nil {
		return err
	}
	if !page.claim(call) {
		return pager.ErrPageInUse
	}
	start := time.Now()
	total, err := i.count(ctx, conn, call, strategy)
	if err != nil {
		page.release(call)
		return err
	}
	page.setTotalCount(total)
	page.setResults(nil)
	call.SetSQL(strategy.PageSQL(call.SQL(), page.StartIndex(), page.PageSize()))
	putPage(call, page)
	i.logger.DebugContext(ctx, "page query rewritten",
		slog.String("call_id", call.ID.String()),
		slog.String("statement", call.Statement.ID),
		slog.String("dialect", strategy.Name()),
		slog.Int("total", total),
		slog.Int("page", page.CurrentPage()),
		slog.Int("size", page.PageSize()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// AfterQuery implements executor.Interceptor.
func (i *Interceptor) AfterQuery(_ context.Context, call *executor.Call, rows executor.RowSet) (executor.RowSet, error) {
	page, ok := takePage(call)
	if !ok {
		return rows, nil
	}
	page.setResults(executor.Collect(rows))
	page.release(call)
	return page, nil
}

// FinishCall implements executor.CallFinisher. It unbinds the Page of a
// call that failed after BeforeQuery.
func (i *Interceptor) FinishCall(_ context.Context, call *executor.Call, _ error) {
	takePage(call)
	if page, ok := pageOf(call.Payload()); ok {
		page.release(call)
	}
}

// count runs the count query derived from the call's SQL.
func (i *Interceptor) count(ctx context.Context, conn dialect.ExecQuerier, call *executor.Call, s Strategy) (int, error) {
	id := call.Statement.ID
	text := s.CountSQL(call.SQL())
	args, err := rebind(call.Bound(), text).Args(call.Converters(), id)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := queryCount(ctx, conn, text, args)
	call.Record(ctx, text, args, start, err)
	if err != nil {
		return 0, pager.NewCountQueryError(id, text, err)
	}
	return n, nil
}

// queryCount returns the first column of the first row, or 0 when the
// query yields no row.
func queryCount(ctx context.Context, conn dialect.ExecQuerier, text string, args []any) (_ int, rerr error) {
	rows, err := conn.QueryContext(ctx, text, args...)
	if err != nil {
		return 0, err
	}
	defer func() { rerr = errors.Join(rerr, rows.Close()) }()
	var n sql.NullInt64
	if rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return 0, err
		}
		dest := make([]any, max(len(cols), 1))
		dest[0] = &n
		for j := 1; j < len(dest); j++ {
			dest[j] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return 0, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

var (
	_ executor.Interceptor  = (*Interceptor)(nil)
	_ executor.CallFinisher = (*Interceptor)(nil)
)
