package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/minifeed/internal/merge"
	"github.com/abelbrown/minifeed/internal/model"
)

// makeItems creates n items of feed, newest first.
func makeItems(feed, prefix string, n int, base int64) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{
			ID:          fmt.Sprintf("%s%02d", prefix, i+1),
			Feed:        feed,
			Title:       fmt.Sprintf("headline %d", i+1),
			Description: "some text",
			Published:   base - int64(i),
			Added:       base - int64(i),
		}
	}
	return items
}

func testCatalog() *model.Catalog {
	return model.NewCatalog(
		[]string{"news", "tech"},
		[]model.Feed{
			{ID: "f1", Title: "Feed One", Group: "news"},
			{ID: "f2", Title: "Feed Two", Group: "tech", Favicon: []byte{1, 2, 3}},
		},
	)
}

func newTestStream(width, height int) *Stream {
	s := NewStream()
	s.SetCatalog(testCatalog())
	s.SetLocation(time.UTC)
	s.SetSize(width, height)
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func TestStreamReplaceAndClear(t *testing.T) {
	s := newTestStream(80, 10)

	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 5, 100)})
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	if got := s.IDs()[0]; got != "a01" {
		t.Errorf("first row = %s, want a01", got)
	}

	s.MoveCursor(2)
	s.Render(merge.Instruction{Op: merge.OpClear})
	if s.Len() != 0 || s.Cursor() != 0 {
		t.Errorf("after clear Len=%d Cursor=%d", s.Len(), s.Cursor())
	}
	if !strings.Contains(s.View(), "No items yet.") {
		t.Errorf("empty view = %q", s.View())
	}
}

func TestStreamRowHeight(t *testing.T) {
	s := newTestStream(80, 10)
	rows := toRows(makeItems("f1", "a", 3, 100), false)
	if got := s.blockHeight(rows); got != 3*rowLines {
		t.Errorf("blockHeight = %d, want %d", got, 3*rowLines)
	}
	long := toRows([]model.Item{{ID: "x", Feed: "f1", Title: strings.Repeat("word ", 100)}}, false)
	if got := s.blockHeight(long); got != rowLines {
		t.Errorf("long title blockHeight = %d, want %d", got, rowLines)
	}
}

func TestStreamPrependAtTopKeepsOffset(t *testing.T) {
	s := newTestStream(80, 8)
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 10, 100)})

	s.Render(merge.Instruction{
		Op:     merge.OpPrepend,
		Items:  makeItems("f1", "b", 2, 200),
		Anchor: merge.AnchorCompensateTop,
		Unseen: true,
	})
	if s.YOffset() != 0 {
		t.Errorf("YOffset = %d, want 0 at top", s.YOffset())
	}
	if s.Cursor() != 0 {
		t.Errorf("Cursor = %d, want 0", s.Cursor())
	}
	if ids := s.IDs(); ids[0] != "b01" || ids[2] != "a01" {
		t.Errorf("order = %v", ids[:3])
	}
}

func TestStreamPrependCompensatesScroll(t *testing.T) {
	s := newTestStream(80, 8)
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 20, 100)})
	s.ScrollBy(10)
	before := firstLine(s.View())

	s.Render(merge.Instruction{
		Op:     merge.OpPrepend,
		Items:  makeItems("f1", "b", 3, 200),
		Anchor: merge.AnchorCompensateTop,
		Unseen: true,
	})

	if s.YOffset() != 10+3*rowLines {
		t.Errorf("YOffset = %d, want %d", s.YOffset(), 10+3*rowLines)
	}
	if after := firstLine(s.View()); after != before {
		t.Errorf("visible line moved: %q -> %q", before, after)
	}
	if s.Cursor() != 3 {
		t.Errorf("Cursor = %d, want 3 (still on a01)", s.Cursor())
	}
	if it, _ := s.Selected(); it.ID != "a01" {
		t.Errorf("selected = %s, want a01", it.ID)
	}
}

func TestStreamPrependWithoutAnchor(t *testing.T) {
	s := newTestStream(80, 8)
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 20, 100)})
	s.ScrollBy(10)

	s.Render(merge.Instruction{Op: merge.OpPrepend, Items: makeItems("f1", "b", 3, 200)})
	if s.YOffset() != 10 {
		t.Errorf("YOffset = %d, want 10", s.YOffset())
	}
}

func TestStreamAppend(t *testing.T) {
	s := newTestStream(80, 8)
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 5, 100)})
	s.ScrollBy(4)
	s.Render(merge.Instruction{Op: merge.OpAppend, Items: makeItems("f1", "z", 5, 50)})

	if s.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", s.Len())
	}
	if ids := s.IDs(); ids[5] != "z01" {
		t.Errorf("ids[5] = %s, want z01", ids[5])
	}
	if s.YOffset() != 4 {
		t.Errorf("YOffset = %d, want 4", s.YOffset())
	}
}

func TestStreamMarkSeen(t *testing.T) {
	s := newTestStream(80, 8)
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 2, 100)})
	s.Render(merge.Instruction{Op: merge.OpPrepend, Items: makeItems("f1", "b", 2, 200), Unseen: true})

	if !s.rows[0].unseen || s.rows[2].unseen {
		t.Fatal("only prepended rows should be unseen")
	}
	s.Render(merge.Instruction{Op: merge.OpMarkSeen})
	for i, r := range s.rows {
		if r.unseen {
			t.Errorf("row %d still unseen", i)
		}
	}
}

func TestStreamUnknownFeed(t *testing.T) {
	s := newTestStream(80, 20)
	items := []model.Item{
		{ID: "x1", Feed: "ghost", Title: "one"},
		{ID: "x2", Feed: "ghost", Title: "two"},
		{ID: "x3", Feed: "f1", Title: "three"},
	}
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: items})

	view := s.View()
	if strings.Count(view, UnknownFeed) != 2 {
		t.Errorf("want two placeholder titles, got view:\n%s", view)
	}
	if !strings.Contains(view, "Feed One") {
		t.Errorf("known feed title missing:\n%s", view)
	}
	if len(s.warned) != 1 || !s.warned["ghost"] {
		t.Errorf("warned = %v, want only ghost", s.warned)
	}
}

func TestStreamDateFormat(t *testing.T) {
	s := newTestStream(80, 8)
	pub := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC).Unix()
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: []model.Item{{ID: "d", Feed: "f1", Title: "t", Published: pub}}})

	if view := s.View(); !strings.Contains(view, "Mar 5, 2024 14:07") {
		t.Errorf("date missing from view:\n%s", view)
	}
}

func TestStreamCursorMovement(t *testing.T) {
	s := newTestStream(80, 8)
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 10, 100)})

	tests := []struct {
		name  string
		move  func()
		want  int
		atTop bool
	}{
		{"down", func() { s.MoveCursor(1) }, 1, true},
		{"clamp low", func() { s.MoveCursor(-5) }, 0, true},
		{"down past screen", func() { s.MoveCursor(4) }, 4, false},
		{"clamp high", func() { s.MoveCursor(100) }, 9, false},
		{"top", s.CursorTop, 0, true},
		{"bottom", s.CursorBottom, 9, false},
	}
	for _, tt := range tests {
		tt.move()
		if s.Cursor() != tt.want {
			t.Errorf("%s: Cursor = %d, want %d", tt.name, s.Cursor(), tt.want)
		}
		if got := s.Scroll().AtTop; got != tt.atTop {
			t.Errorf("%s: AtTop = %v, want %v", tt.name, got, tt.atTop)
		}
	}
	if !s.Scroll().AtBottom {
		t.Error("CursorBottom should reach the bottom")
	}
}

func TestStreamScrollShortContent(t *testing.T) {
	s := newTestStream(80, 40)
	s.Render(merge.Instruction{Op: merge.OpReplace, Items: makeItems("f1", "a", 2, 100)})
	pos := s.Scroll()
	if !pos.AtTop || !pos.AtBottom {
		t.Errorf("short content Scroll() = %+v, want top and bottom", pos)
	}
}

func TestFeedColorStable(t *testing.T) {
	if feedColor("f1") != feedColor("f1") {
		t.Error("feedColor should be deterministic")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo wörld", 4, "hél…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
