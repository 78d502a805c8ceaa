package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/minifeed/internal/logging"
	"github.com/abelbrown/minifeed/internal/merge"
	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/session"
)

const (
	// DateLayout formats item publish times.
	DateLayout = "Jan 2, 2006 15:04"

	// UnknownFeed replaces the title of a feed missing from the catalog.
	UnknownFeed = "unknown feed"

	// rowLines is the number of terminal lines one item occupies,
	// separator included.
	rowLines = 4
)

type row struct {
	item   model.Item
	unseen bool
}

// Stream is the scrolling item list. It implements session.Renderer: every
// merge instruction is applied to its rows, and prepends shift the
// viewport by the height of the inserted block so the rows under the
// reader's eyes do not move.
type Stream struct {
	vp      viewport.Model
	rows    []row
	cursor  int
	catalog *model.Catalog
	warned  map[string]bool
	width   int
	loc     *time.Location
}

var _ session.Renderer = (*Stream)(nil)

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{
		vp:     viewport.New(0, 0),
		warned: make(map[string]bool),
		loc:    time.Local,
	}
}

// SetSize resizes the viewport.
func (s *Stream) SetSize(width, height int) {
	s.width = width
	s.vp.Width = width
	s.vp.Height = max(height, 1)
	s.refresh()
	s.ensureCursorVisible()
}

// SetCatalog sets the feed lookup used for row headers.
func (s *Stream) SetCatalog(c *model.Catalog) {
	s.catalog = c
	s.refresh()
}

// SetLocation sets the zone dates are shown in.
func (s *Stream) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
		s.refresh()
	}
}

// Render applies a merge instruction.
func (s *Stream) Render(in merge.Instruction) {
	switch in.Op {
	case merge.OpClear:
		s.rows = nil
		s.cursor = 0
		s.refresh()
		s.vp.GotoTop()

	case merge.OpReplace:
		s.rows = toRows(in.Items, false)
		s.cursor = 0
		s.refresh()
		s.vp.GotoTop()

	case merge.OpPrepend:
		fresh := toRows(in.Items, in.Unseen)
		offset := s.vp.YOffset
		shift := in.Anchor == merge.AnchorCompensateTop && offset > 0

		s.rows = append(fresh, s.rows...)
		if shift || s.cursor > 0 {
			s.cursor += len(fresh)
		}
		s.refresh()
		if shift {
			s.vp.SetYOffset(offset + s.blockHeight(fresh))
		}

	case merge.OpAppend:
		s.rows = append(s.rows, toRows(in.Items, false)...)
		s.refresh()

	case merge.OpMarkSeen:
		for i := range s.rows {
			s.rows[i].unseen = false
		}
		s.refresh()
	}
}

func toRows(items []model.Item, unseen bool) []row {
	out := make([]row, len(items))
	for i, it := range items {
		out[i] = row{item: it, unseen: unseen}
	}
	return out
}

// blockHeight is the rendered line height of rows.
func (s *Stream) blockHeight(rows []row) int {
	if len(rows) == 0 {
		return 0
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(s.renderRow(r, false))
	}
	return strings.Count(b.String(), "\n")
}

func (s *Stream) refresh() {
	if len(s.rows) == 0 {
		s.vp.SetContent("")
		return
	}
	var b strings.Builder
	for i, r := range s.rows {
		b.WriteString(s.renderRow(r, i == s.cursor))
	}
	s.vp.SetContent(strings.TrimSuffix(b.String(), "\n"))
}

// renderRow renders one item as exactly rowLines newline-terminated lines.
func (s *Stream) renderRow(r row, selected bool) string {
	w := max(s.width-2, 10)

	marker := "  "
	if r.unseen {
		marker = FreshMarker.Render("● ")
	}

	feed := s.feedTitle(r.item.Feed)
	head := marker + s.feedGlyph(r.item.Feed) + " " + FeedName.Render(truncateRunes(feed, w-4))

	title := truncateRunes(r.item.Title, w-2)
	if selected {
		title = SelectedTitle.Render(title)
	} else {
		title = ItemTitle.Render(title)
	}

	date := r.item.PublishedTime().In(s.loc).Format(DateLayout)
	meta := ItemDate.Render(date)
	if desc := oneLine(r.item.Description); desc != "" && desc != r.item.Title {
		room := w - 2 - len(date) - 3
		if room > 8 {
			meta += ItemDescription.Render("  " + truncateRunes(desc, room))
		}
	}

	return head + "\n" + "  " + title + "\n" + "  " + meta + "\n" + "\n"
}

// feedTitle resolves a feed ID, warning once per unknown feed.
func (s *Stream) feedTitle(id string) string {
	if f, ok := s.catalog.Feed(id); ok {
		return f.Title
	}
	if !s.warned[id] {
		s.warned[id] = true
		logging.Warn("item references unknown feed", "feed", id)
	}
	return UnknownFeed
}

// feedGlyph marks feeds that carry a favicon with a colored diamond.
func (s *Stream) feedGlyph(id string) string {
	f, ok := s.catalog.Feed(id)
	if !ok || !f.HasFavicon() {
		return lipgloss.NewStyle().Foreground(colorMuted).Render("·")
	}
	return lipgloss.NewStyle().Foreground(feedColor(id)).Render("◆")
}

func feedColor(id string) lipgloss.Color {
	sum := 0
	for i := 0; i < len(id); i++ {
		sum += int(id[i])
	}
	return feedPalette[sum%len(feedPalette)]
}

// MoveCursor moves the selection by delta rows and scrolls to keep it
// visible.
func (s *Stream) MoveCursor(delta int) {
	if len(s.rows) == 0 {
		return
	}
	s.cursor = min(max(s.cursor+delta, 0), len(s.rows)-1)
	s.refresh()
	s.ensureCursorVisible()
}

// CursorTop selects the first row and scrolls to the top.
func (s *Stream) CursorTop() {
	s.cursor = 0
	s.refresh()
	s.vp.GotoTop()
}

// CursorBottom selects the last row and scrolls to the bottom.
func (s *Stream) CursorBottom() {
	if len(s.rows) == 0 {
		return
	}
	s.cursor = len(s.rows) - 1
	s.refresh()
	s.vp.GotoBottom()
}

// Page moves the cursor by one screen.
func (s *Stream) Page(dir int) {
	s.MoveCursor(dir * max(s.vp.Height/rowLines, 1))
}

func (s *Stream) ensureCursorVisible() {
	if len(s.rows) == 0 {
		return
	}
	top := s.cursor * rowLines
	bottom := top + rowLines - 1
	switch {
	case top < s.vp.YOffset:
		s.vp.SetYOffset(top)
	case bottom >= s.vp.YOffset+s.vp.Height:
		s.vp.SetYOffset(bottom - s.vp.Height + 1)
	}
}

// ScrollBy moves the viewport without moving the cursor.
func (s *Stream) ScrollBy(lines int) {
	s.vp.SetYOffset(s.vp.YOffset + lines)
}

// Scroll reports the viewport position for the session.
func (s *Stream) Scroll() session.Scroll {
	return session.Scroll{AtTop: s.vp.AtTop(), AtBottom: s.vp.AtBottom()}
}

// Len returns the number of rows.
func (s *Stream) Len() int { return len(s.rows) }

// Cursor returns the selected row index.
func (s *Stream) Cursor() int { return s.cursor }

// YOffset returns the viewport scroll offset in lines.
func (s *Stream) YOffset() int { return s.vp.YOffset }

// Selected returns the item under the cursor.
func (s *Stream) Selected() (model.Item, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return model.Item{}, false
	}
	return s.rows[s.cursor].item, true
}

// IDs returns the row item IDs top to bottom.
func (s *Stream) IDs() []string {
	out := make([]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.item.ID
	}
	return out
}

// View renders the visible part of the stream.
func (s *Stream) View() string {
	if len(s.rows) == 0 {
		return HelpStyle.Render("No items yet.")
	}
	return s.vp.View()
}

// oneLine collapses whitespace so a description fits on a row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes shortens s to max runes, ending in an ellipsis when cut.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
