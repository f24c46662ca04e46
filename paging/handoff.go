package paging

import "github.com/syssam/pager/executor"

// handoffKey is the call attribute holding the Page between BeforeQuery
// and AfterQuery.
type handoffKey struct{}

func putPage(call *executor.Call, page *Page) {
	call.SetAttr(handoffKey{}, page)
}

// takePage reads and clears the slot.
func takePage(call *executor.Call) (*Page, bool) {
	v, ok := call.TakeAttr(handoffKey{})
	if !ok {
		return nil, false
	}
	page, ok := v.(*Page)
	return page, ok
}
