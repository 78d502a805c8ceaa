package model

import "fmt"

// ScopeKind tags the Scope variant.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeGroup
	ScopeFeed
)

// String returns the route segment for the kind.
func (k ScopeKind) String() string {
	switch k {
	case ScopeGroup:
		return "group"
	case ScopeFeed:
		return "feed"
	default:
		return "all"
	}
}

// Scope is the active view filter: all items, one group, or one feed.
// Scope is comparable; two scopes are equal when kind and ID match.
type Scope struct {
	Kind ScopeKind
	ID   string
}

// All returns the unscoped view.
func All() Scope {
	return Scope{Kind: ScopeAll}
}

// GroupScope returns a scope limited to the feeds of one group.
func GroupScope(id string) Scope {
	return Scope{Kind: ScopeGroup, ID: id}
}

// FeedScope returns a scope limited to one feed.
func FeedScope(id string) Scope {
	return Scope{Kind: ScopeFeed, ID: id}
}

// IsAll reports whether the scope is unfiltered.
func (s Scope) IsAll() bool {
	return s.Kind == ScopeAll
}

// String renders the scope as "all", "group:<id>" or "feed:<id>".
func (s Scope) String() string {
	if s.Kind == ScopeAll {
		return "all"
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}

// Contains reports whether an item of the given feed belongs to the scope.
// Group membership is resolved through the catalog.
func (s Scope) Contains(feedID string, c *Catalog) bool {
	switch s.Kind {
	case ScopeFeed:
		return feedID == s.ID
	case ScopeGroup:
		if c == nil {
			return false
		}
		f, ok := c.Feed(feedID)
		return ok && f.Group == s.ID
	default:
		return true
	}
}
