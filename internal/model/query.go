package model

// DefaultLimit is the page size the remote source assumes when a query
// does not carry one.
const DefaultLimit = 100

// Query is one item request against the remote source.
//
// Since selects items with Added > Since. After selects items strictly
// older than the given item in (Published, ID) order. A zero Since with
// no After is a full reload. Limit <= 0 means DefaultLimit.
type Query struct {
	Scope Scope
	Since int64
	After string
	Limit int
}

// EffectiveLimit returns Limit, or DefaultLimit when unset.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}
