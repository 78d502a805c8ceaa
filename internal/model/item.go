// Package model defines the records minifeed synchronizes from the remote
// item source: items, feeds, groups, and the scope that filters them.
//
// All values are immutable once fetched. Nothing here does I/O.
package model

import "time"

// Item is a single feed entry as served by the remote source.
// Published and Added are unix seconds; Added is the server receipt time
// and drives the poll high-water mark.
type Item struct {
	ID          string `json:"id"`
	Feed        string `json:"feed"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Published   int64  `json:"published"`
	Added       int64  `json:"added"`
}

// PublishedTime returns Published as a time.Time.
func (i Item) PublishedTime() time.Time {
	return time.Unix(i.Published, 0)
}

// AddedTime returns Added as a time.Time.
func (i Item) AddedTime() time.Time {
	return time.Unix(i.Added, 0)
}

// Feed is a named source of items. Favicon is the raw image bytes;
// encoding/json carries it as base64, which is what the server sends.
type Feed struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Group   string `json:"group"`
	URL     string `json:"url,omitempty"`
	Favicon []byte `json:"favicon,omitempty"`
}

// HasFavicon reports whether the feed carries an icon.
func (f Feed) HasFavicon() bool {
	return len(f.Favicon) > 0
}
