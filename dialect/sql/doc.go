// Package sql wraps database/sql connections with the dialect they speak.
//
// Importing this package registers the "mysql", "pgx", "postgres" and "sqlite"
// database/sql drivers. Oracle drivers are not registered; open the
// *sql.DB yourself and wrap it with OpenDB:
//
//	db, err := sql.Open("godror", dsn)
//	drv := sqldrv.OpenDB(dialect.Oracle, db)
//
// Both Driver and Tx implement dialect.ExecQuerier, so a paginated call can
// run its count query and its page query on the same transaction:
//
//	err := drv.InTx(ctx, func(tx *sqldrv.Tx) error {
//	    rows, err := exec.Query(ctx, tx, "orders.list", paging.Paginated(params, page))
//	    ...
//	})
package sql
