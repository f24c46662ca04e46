package paging

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/pager/dialect"
	"github.com/syssam/pager/executor"
)

// Query runs statement id for page and returns the filled Page. exec must
// have a paging Interceptor installed.
func Query(ctx context.Context, exec *executor.Executor, conn dialect.ExecQuerier, id string, param any, page *Page) (*Page, error) {
	rs, err := exec.Query(ctx, conn, id, Paginated(param, page))
	if err != nil {
		return nil, err
	}
	p, ok := rs.(*Page)
	if !ok {
		return nil, fmt.Errorf("pager/paging: statement %s: executor returned %T, no paging interceptor installed", id, rs)
	}
	return p, nil
}

// FetchAll returns every page of statement id, size rows each. The first
// page is fetched alone to learn the page count; the others are fetched
// concurrently, at most limit at a time (limit <= 0 means no limit). conn
// must be safe for concurrent use, such as a *sql.DB.
func FetchAll(ctx context.Context, exec *executor.Executor, conn dialect.ExecQuerier, id string, param any, size, limit int) ([]*Page, error) {
	first, err := Query(ctx, exec, conn, id, param, NewPage(1, size))
	if err != nil {
		return nil, err
	}
	n := max(first.TotalPages(), 1)
	pages := make([]*Page, n)
	pages[0] = first
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 1; i < n; i++ {
		g.Go(func() error {
			p, err := Query(ctx, exec, conn, id, param, NewPage(i+1, size))
			if err != nil {
				return fmt.Errorf("pager/paging: page %d: %w", i+1, err)
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}
