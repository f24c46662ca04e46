package paging

import "github.com/syssam/pager/mapper"

// rebind returns a BoundSQL for text that binds exactly like orig: same
// mappings, same parameter object and a copy of every auxiliary binding,
// so expanded collection items resolve per placeholder in text as well.
func rebind(orig *mapper.BoundSQL, text string) *mapper.BoundSQL {
	b := mapper.NewBoundSQL(text, orig.Mappings(), orig.Param())
	for name, v := range orig.AdditionalParams() {
		b.SetAdditionalParam(name, v)
	}
	return b
}
