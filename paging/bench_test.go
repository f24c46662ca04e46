package paging

import (
	"testing"

	"github.com/syssam/pager/convert"
	"github.com/syssam/pager/dialect"
	"github.com/syssam/pager/mapper"
)

func BenchmarkPageSQL(b *testing.B) {
	const base = "SELECT o.id, o.status, u.name FROM orders o JOIN users u ON u.id = o.user_id WHERE o.status = ? ORDER BY o.created_at DESC"
	for _, d := range dialect.Names() {
		b.Run(d, func(b *testing.B) {
			s, err := StrategyFor(d)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s.CountSQL(base)
				s.PageSQL(base, 200, 20)
			}
		})
	}
}

func BenchmarkRebind(b *testing.B) {
	stmt := mapper.MustStatement("orders.byUsers", "SELECT id FROM orders WHERE user_id IN (#{users[].id}) AND status = #{status}")
	users := make([]map[string]any, 50)
	for i := range users {
		users[i] = map[string]any{"id": int64(i)}
	}
	param := map[string]any{"users": users, "status": "open"}
	types := convert.NewRegistry()
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		b.Run(d, func(b *testing.B) {
			s, err := StrategyFor(d)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				bound, err := stmt.Bind(param, d, types)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := rebind(bound, s.CountSQL(bound.SQL())).Args(types, stmt.ID); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPageMetadata(b *testing.B) {
	p := NewPage(7, 25)
	p.setTotalCount(10_000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = p.Metadata()
	}
}
