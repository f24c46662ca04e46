package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of statements executed.
	TotalQueries atomic.Int64
	// TotalDuration is the total time spent executing them.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of failed statements.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average query duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	if s.TotalQueries == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TotalQueries)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalDuration, s.AvgQueryDuration(), s.SlowQueries, s.Errors)
}

// SlowQueryHook is a function called when a slow statement is detected.
// query is the executed text, which differs from call.SQL() for statements
// an interceptor ran through Call.Record.
type SlowQueryHook func(ctx context.Context, call *Call, query string, args []any, duration time.Duration)

// WithSlowThreshold sets the threshold for slow query detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) Option {
	return func(e *Executor) {
		e.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) Option {
	return func(e *Executor) {
		e.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements at warn level on the executor's
// logger.
func WithSlowQueryLog() Option {
	return func(e *Executor) {
		e.slowHook = func(ctx context.Context, call *Call, query string, args []any, duration time.Duration) {
			e.logger.WarnContext(ctx, "slow query detected",
				"call_id", call.ID, "statement", call.Statement.ID,
				"duration", duration, "query", query, "args", args)
		}
	}
}

func (e *Executor) record(ctx context.Context, call *Call, query string, args []any, start time.Time, err error) {
	duration := time.Since(start)
	e.stats.TotalQueries.Add(1)
	e.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		e.stats.Errors.Add(1)
	}
	if duration > e.slowThreshold {
		e.stats.SlowQueries.Add(1)
		if e.slowHook != nil {
			e.slowHook(ctx, call, query, args, duration)
		}
	}
	e.logger.DebugContext(ctx, "query executed",
		slog.String("call_id", call.ID.String()),
		slog.String("statement", call.Statement.ID),
		slog.String("query", query),
		slog.Duration("duration", duration),
		slog.Any("error", err))
}
