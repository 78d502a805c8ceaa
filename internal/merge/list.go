// Package merge is the ordering and dedup core of minifeed. A List holds
// the rendered sequence for the active scope; Merge folds a fetched batch
// into it and returns the render instruction that describes the change.
//
// List is not safe for concurrent use. The session drives it from a
// single event loop.
package merge

import (
	"cmp"
	"slices"

	"github.com/abelbrown/minifeed/internal/model"
)

// List is the duplicate-free rendered sequence of items.
type List struct {
	items []model.Item
	ids   map[string]struct{}
}

// Result is the outcome of one Merge.
type Result struct {
	Instruction Instruction
	// Inserted is the number of rows added after dedup.
	Inserted int
	// Dropped counts batch items discarded as duplicates.
	Dropped int
	// MaxAdded is the newest Added value of the raw batch, 0 when empty.
	MaxAdded int64
	// OldestID is the rendered item with the smallest Published value,
	// empty when the list is empty.
	OldestID string
	// Exhausted is set when a pagination batch came back empty.
	Exhausted bool
}

// Len returns the number of rendered items.
func (l *List) Len() int {
	return len(l.items)
}

// Items returns a copy of the rendered sequence, top to bottom.
func (l *List) Items() []model.Item {
	return slices.Clone(l.items)
}

// Has reports whether an item ID is rendered.
func (l *List) Has(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Clear empties the list and returns the matching instruction.
func (l *List) Clear() Instruction {
	l.items = nil
	l.ids = nil
	return Instruction{Op: OpClear}
}

// Merge folds batch into the list according to mode.
//
// The batch is stable-sorted newest first by Published. Items already
// rendered, and repeats inside the batch, are dropped so the first copy
// wins. Initial replaces the list (dedup only within the batch),
// PollAppend prepends, PaginationAppend appends.
func (l *List) Merge(batch []model.Item, mode Mode) Result {
	var res Result
	if len(batch) == 0 {
		switch mode {
		case PaginationAppend:
			res.Exhausted = true
		case Initial:
			if len(l.items) > 0 {
				l.items, l.ids = nil, nil
				res.Instruction = Instruction{Op: OpReplace}
			}
		}
		res.OldestID = l.oldestID()
		return res
	}

	for _, it := range batch {
		res.MaxAdded = max(res.MaxAdded, it.Added)
	}

	sorted := SortNewestFirst(batch)

	var against map[string]struct{}
	if mode != Initial {
		against = l.ids
	}
	fresh := dedup(sorted, against)
	res.Dropped = len(batch) - len(fresh)
	res.Inserted = len(fresh)

	switch mode {
	case Initial:
		l.items = slices.Clone(fresh)
		l.ids = make(map[string]struct{}, len(fresh))
		res.Instruction = Instruction{Op: OpReplace, Items: fresh}
	case PollAppend:
		if len(fresh) > 0 {
			l.items = append(slices.Clone(fresh), l.items...)
			res.Instruction = Instruction{
				Op:     OpPrepend,
				Items:  fresh,
				Anchor: AnchorCompensateTop,
				Unseen: true,
			}
		}
	case PaginationAppend:
		if len(fresh) > 0 {
			l.items = append(l.items, fresh...)
			res.Instruction = Instruction{Op: OpAppend, Items: fresh}
		}
	}

	if l.ids == nil {
		l.ids = make(map[string]struct{}, len(fresh))
	}
	for _, it := range fresh {
		l.ids[it.ID] = struct{}{}
	}

	res.OldestID = l.oldestID()
	return res
}

// oldestID finds the rendered item with the smallest Published value.
// On ties the lowest row wins, which for a sorted list is the last one.
func (l *List) oldestID() string {
	if len(l.items) == 0 {
		return ""
	}
	oldest := 0
	for i := 1; i < len(l.items); i++ {
		if l.items[i].Published <= l.items[oldest].Published {
			oldest = i
		}
	}
	return l.items[oldest].ID
}

// SortNewestFirst returns a copy of items stable-sorted by Published,
// newest first. Equal timestamps keep their source order.
func SortNewestFirst(items []model.Item) []model.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b model.Item) int {
		return cmp.Compare(b.Published, a.Published)
	})
	return out
}

// dedup keeps the first occurrence of each ID and skips IDs in seen.
func dedup(items []model.Item, seen map[string]struct{}) []model.Item {
	out := make([]model.Item, 0, len(items))
	batch := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		if _, ok := batch[it.ID]; ok {
			continue
		}
		batch[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
