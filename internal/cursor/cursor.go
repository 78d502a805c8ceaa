// Package cursor tracks the two sync cursors of a session: the poll
// high-water mark and the pagination cursor.
package cursor

// Tracker holds the newest known arrival time and the oldest loaded item.
// The zero value is ready to use.
//
// The high-water mark never decreases for the life of a Tracker, across
// scope changes included. The pagination cursor is per scope and is
// cleared by ResetScope.
type Tracker struct {
	highWater int64
	oldestID  string
}

// HighWaterMark returns the newest Added value seen so far (0 before any).
func (t *Tracker) HighWaterMark() int64 {
	return t.highWater
}

// Advance raises the high-water mark to added if it is newer. It reports
// whether the mark moved.
func (t *Tracker) Advance(added int64) bool {
	if added <= t.highWater {
		return false
	}
	t.highWater = added
	return true
}

// OldestID returns the pagination cursor and whether it is set.
func (t *Tracker) OldestID() (string, bool) {
	return t.oldestID, t.oldestID != ""
}

// SetOldest moves the pagination cursor. An empty id leaves it unset.
func (t *Tracker) SetOldest(id string) {
	t.oldestID = id
}

// ResetScope clears the pagination cursor. The high-water mark is kept.
func (t *Tracker) ResetScope() {
	t.oldestID = ""
}
