package ui

import (
	"strings"

	"github.com/abelbrown/minifeed/internal/model"
)

// pickerEntry is one selectable row of the scope picker.
type pickerEntry struct {
	scope model.Scope
	label string
	depth int
}

// Picker lists the scopes the catalog offers: all feeds, then each group
// followed by its feeds.
type Picker struct {
	entries []pickerEntry
	cursor  int
	active  model.Scope
}

// NewPicker builds the picker rows for a catalog.
func NewPicker(c *model.Catalog) *Picker {
	p := &Picker{}
	p.entries = append(p.entries, pickerEntry{scope: model.All(), label: "all feeds"})
	if c == nil {
		return p
	}
	for _, g := range c.Groups {
		p.entries = append(p.entries, pickerEntry{scope: model.GroupScope(g), label: g})
		for _, f := range c.FeedsInGroup(g) {
			p.entries = append(p.entries, pickerEntry{scope: model.FeedScope(f.ID), label: f.Title, depth: 1})
		}
	}
	return p
}

// Len returns the number of rows.
func (p *Picker) Len() int { return len(p.entries) }

// Move shifts the cursor, clamped to the list.
func (p *Picker) Move(delta int) {
	if len(p.entries) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.entries)-1)
}

// Selected returns the scope under the cursor.
func (p *Picker) Selected() model.Scope {
	if p.cursor < 0 || p.cursor >= len(p.entries) {
		return model.All()
	}
	return p.entries[p.cursor].scope
}

// SetActive marks scope as the one on screen and moves the cursor to it.
func (p *Picker) SetActive(scope model.Scope) {
	p.active = scope
	for i, e := range p.entries {
		if e.scope == scope {
			p.cursor = i
			return
		}
	}
}

// View renders at most height rows, scrolled to keep the cursor visible.
func (p *Picker) View(width, height int) string {
	if height <= 0 {
		return ""
	}
	start := 0
	if p.cursor >= height {
		start = p.cursor - height + 1
	}
	end := min(start+height, len(p.entries))

	inner := max(width-3, 4)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		e := p.entries[i]
		label := strings.Repeat("  ", e.depth) + truncateRunes(e.label, inner-2*e.depth)

		style := PickerFeed
		if e.depth == 0 {
			style = PickerGroup
		}
		if e.scope == p.active {
			style = style.Inherit(PickerActive)
		}
		if i == p.cursor {
			style = PickerCursor
		}
		lines = append(lines, style.Render(label))
	}
	return Sidebar.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}
