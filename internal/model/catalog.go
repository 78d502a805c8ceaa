package model

// Catalog is the reference data loaded once at startup: the group list
// and the feed list. Read-only after construction.
type Catalog struct {
	Groups []string
	Feeds  []Feed

	byID map[string]int
}

// NewCatalog indexes feeds by ID. Later duplicates of an ID are ignored.
func NewCatalog(groups []string, feeds []Feed) *Catalog {
	c := &Catalog{
		Groups: append([]string(nil), groups...),
		Feeds:  make([]Feed, 0, len(feeds)),
		byID:   make(map[string]int, len(feeds)),
	}
	for _, f := range feeds {
		if _, dup := c.byID[f.ID]; dup {
			continue
		}
		c.byID[f.ID] = len(c.Feeds)
		c.Feeds = append(c.Feeds, f)
	}
	return c
}

// Feed looks up a feed by ID.
func (c *Catalog) Feed(id string) (Feed, bool) {
	if c == nil {
		return Feed{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Feed{}, false
	}
	return c.Feeds[i], true
}

// FeedsInGroup returns the feeds of a group in catalog order.
func (c *Catalog) FeedsInGroup(group string) []Feed {
	if c == nil {
		return nil
	}
	var out []Feed
	for _, f := range c.Feeds {
		if f.Group == group {
			out = append(out, f)
		}
	}
	return out
}

// HasGroup reports whether the group is known.
func (c *Catalog) HasGroup(group string) bool {
	if c == nil {
		return false
	}
	for _, g := range c.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Valid reports whether the scope refers to a known group or feed.
func (c *Catalog) Valid(s Scope) bool {
	switch s.Kind {
	case ScopeGroup:
		return c.HasGroup(s.ID)
	case ScopeFeed:
		_, ok := c.Feed(s.ID)
		return ok
	default:
		return true
	}
}
