// Package paging adds transparent pagination to executor calls.
//
// A caller asks for a page by wrapping the parameter object with
// Paginated. The Interceptor counts the rows of the statement, rewrites it
// for the requested page in the configured dialect and returns the Page,
// filled with its rows, in place of the plain rows:
//
//	exec := executor.New(stmts,
//	    executor.WithDialect(dialect.MySQL),
//	    executor.WithInterceptors(paging.New(paging.WithDialect(dialect.MySQL))),
//	)
//	rs, err := exec.Query(ctx, db, "orders.byStatus",
//	    paging.Paginated(map[string]any{"status": "open"}, paging.NewPage(3, 10)))
//	if err != nil {
//	    return err
//	}
//	page := rs.(*paging.Page)
//	fmt.Println(page.TotalCount(), page.TotalPages(), page.Len())
//
// Query and FetchAll wrap this for the common cases. The count query and
// the page query run on the connection passed to Query, so passing a
// transaction makes both see the same snapshot.
package paging
