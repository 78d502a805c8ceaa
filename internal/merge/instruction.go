package merge

import "github.com/abelbrown/minifeed/internal/model"

// Mode selects how a fetched batch joins the rendered list.
type Mode int

const (
	// Initial replaces the list with a full-reload batch.
	Initial Mode = iota
	// PollAppend puts newly arrived items above everything rendered.
	PollAppend
	// PaginationAppend puts older items below everything rendered.
	PaginationAppend
)

func (m Mode) String() string {
	switch m {
	case Initial:
		return "initial"
	case PollAppend:
		return "poll"
	case PaginationAppend:
		return "page"
	default:
		return "unknown"
	}
}

// Op is the list operation a renderer must perform.
type Op int

const (
	OpNone Op = iota
	// OpClear empties the list (scope change).
	OpClear
	// OpReplace swaps the whole list for Items.
	OpReplace
	// OpPrepend inserts Items above the current first row.
	OpPrepend
	// OpAppend inserts Items below the current last row.
	OpAppend
	// OpMarkSeen drops the unseen highlight from every row.
	OpMarkSeen
)

func (o Op) String() string {
	switch o {
	case OpClear:
		return "clear"
	case OpReplace:
		return "replace"
	case OpPrepend:
		return "prepend"
	case OpAppend:
		return "append"
	case OpMarkSeen:
		return "mark-seen"
	default:
		return "none"
	}
}

// Anchor tells the renderer how to keep the viewport steady.
type Anchor int

const (
	// AnchorNone leaves the scroll offset alone.
	AnchorNone Anchor = iota
	// AnchorCompensateTop shifts the scroll offset down by the height of
	// the inserted rows, unless the viewport is at the very top.
	AnchorCompensateTop
)

// Instruction is a declarative render step. Items are newest first.
type Instruction struct {
	Op     Op
	Items  []model.Item
	Anchor Anchor
	// Unseen marks the inserted rows as not yet looked at.
	Unseen bool
}

// IsNoop reports whether the instruction changes nothing on screen.
func (in Instruction) IsNoop() bool {
	return in.Op == OpNone
}
