package paging

// PageKey is the key under which map-style parameters carry their Page.
const PageKey = "param_key_page"

// Request is a parameter payload that asks for one page of results. It
// implements executor.Payload: statements are bound to the wrapped
// parameter object, not to the Request.
type Request struct {
	param any
	page  *Page
}

// Paginated wraps param with a pagination request for page.
func Paginated(param any, page *Page) Request {
	return Request{param: param, page: page}
}

// Param returns the wrapped parameter object.
func (r Request) Param() any { return r.param }

// Page returns the pagination request.
func (r Request) Page() *Page { return r.page }

// pageOf returns the Page a payload asks for, if any. Besides Request it
// accepts a map holding a *Page under PageKey.
func pageOf(payload any) (*Page, bool) {
	switch p := payload.(type) {
	case Request:
		return p.page, p.page != nil
	case *Request:
		if p == nil || p.page == nil {
			return nil, false
		}
		return p.page, true
	case map[string]any:
		page, ok := p[PageKey].(*Page)
		return page, ok && page != nil
	}
	return nil, false
}
