package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pager/executor"
	"github.com/syssam/pager/paging"
)

// TestShopExample runs the statements of examples/shop against a fresh
// database seeded from its schema.sql.
func TestShopExample(t *testing.T) {
	dir := filepath.Join("..", "examples", "shop")
	t.Setenv(EnvDSN, filepath.Join(t.TempDir(), "shop.db"))
	c, err := Load(filepath.Join(dir, "pager.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, c.DefaultPageSize)

	drv, err := c.Open()
	require.NoError(t, err)
	defer drv.Close()
	schema, err := os.ReadFile(filepath.Join(dir, "schema.sql"))
	require.NoError(t, err)
	ctx := context.Background()
	for stmt := range strings.SplitSeq(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := drv.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	stmts, err := c.Statements()
	require.NoError(t, err)
	assert.Equal(t, []string{"customers.all", "orders.byCustomers", "orders.byStatus", "orders.totalsByStatus"}, stmts.IDs())
	exec := c.Executor(stmts, nil)

	ids := func(rs executor.RowSet) []int64 {
		var out []int64
		for _, row := range rs.All() {
			out = append(out, row["id"].(int64))
		}
		return out
	}

	t.Run("ByStatus", func(t *testing.T) {
		page, err := paging.Query(ctx, exec, drv, "orders.byStatus", map[string]any{"status": "open"}, c.NewPage(2, 0))
		require.NoError(t, err)
		assert.Equal(t, 8, page.TotalCount())
		assert.Equal(t, 2, page.TotalPages())
		assert.Equal(t, []int64{9, 11, 12}, ids(page))
		assert.Equal(t, "Chen", page.Row(0)["customer"])
	})

	t.Run("ByCustomers", func(t *testing.T) {
		param := map[string]any{"customers": []map[string]any{{"id": 1}, {"id": 3}}}
		page, err := paging.Query(ctx, exec, drv, "orders.byCustomers", param, c.NewPage(1, 0))
		require.NoError(t, err)
		assert.Equal(t, 8, page.TotalCount())
		assert.Equal(t, []int64{1, 3, 4, 6, 7}, ids(page))
	})

	t.Run("Grouped", func(t *testing.T) {
		page, err := paging.Query(ctx, exec, drv, "orders.totalsByStatus", nil, c.NewPage(1, 2))
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalCount())
		require.Equal(t, 2, page.Len())
		assert.Equal(t, "cancelled", page.Row(0)["status"])
	})

	t.Run("Unpaginated", func(t *testing.T) {
		rs, err := exec.Query(ctx, drv, "customers.all", nil)
		require.NoError(t, err)
		assert.IsType(t, executor.Rows{}, rs)
		assert.Equal(t, 3, rs.Len())
	})
}
