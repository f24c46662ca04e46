package paging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pager/executor"
	"github.com/syssam/pager/mapper"
)

func TestHandoffReadOnce(t *testing.T) {
	call := &executor.Call{}
	_, ok := takePage(call)
	require.False(t, ok)

	page := NewPage(1, 10)
	putPage(call, page)
	got, ok := takePage(call)
	require.True(t, ok)
	assert.Same(t, page, got)
	_, ok = takePage(call)
	assert.False(t, ok)
}

func TestAfterQuerySubstitutesOnce(t *testing.T) {
	ic := New()
	call := &executor.Call{}
	rows := executor.Rows{{"id": int64(1)}}

	page := NewPage(1, 10)
	require.True(t, page.claim(call))
	putPage(call, page)

	rs, err := ic.AfterQuery(context.Background(), call, rows)
	require.NoError(t, err)
	assert.Same(t, page, rs)
	assert.Equal(t, rows, page.Results())

	rs, err = ic.AfterQuery(context.Background(), call, rows)
	require.NoError(t, err)
	assert.Equal(t, rows, rs)

	// The page was released and can serve another call.
	assert.True(t, page.claim(&executor.Call{}))
}

func TestPageOf(t *testing.T) {
	page := NewPage(1, 10)
	tests := []struct {
		name    string
		payload any
		want    bool
	}{
		{"Request", Paginated(map[string]any{"a": 1}, page), true},
		{"RequestPointer", &Request{page: page}, true},
		{"RequestNilPage", Paginated(nil, nil), false},
		{"NilRequestPointer", (*Request)(nil), false},
		{"MapKey", map[string]any{PageKey: page}, true},
		{"MapNilPage", map[string]any{PageKey: (*Page)(nil)}, false},
		{"MapOtherValue", map[string]any{PageKey: 3}, false},
		{"MapNoKey", map[string]any{"status": "open"}, false},
		{"Scalar", 42, false},
		{"Nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pageOf(tt.payload)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Same(t, page, got)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	param := map[string]any{"status": "open"}
	mappings := []mapper.ParameterMapping{
		{Property: "__frch_ids_0"},
		{Property: "status"},
	}
	orig := mapper.NewBoundSQL("SELECT id FROM orders WHERE id IN (?) AND status = ?", mappings, param)
	orig.SetAdditionalParam("__frch_ids_0", int64(7))

	count := rebind(orig, "SELECT COUNT(0) FROM (x) QEEKA_TMP_COUNTB")
	assert.Equal(t, "SELECT COUNT(0) FROM (x) QEEKA_TMP_COUNTB", count.SQL())
	assert.Equal(t, mappings, count.Mappings())
	assert.Equal(t, param, count.Param())
	require.True(t, count.HasAdditionalParam("__frch_ids_0"))
	assert.Equal(t, int64(7), count.AdditionalParam("__frch_ids_0"))

	count.SetAdditionalParam("__frch_ids_0", int64(8))
	assert.Equal(t, int64(7), orig.AdditionalParam("__frch_ids_0"))
	assert.Equal(t, "SELECT id FROM orders WHERE id IN (?) AND status = ?", orig.SQL())
}
