package ui

import (
	"strings"
	"testing"

	"github.com/abelbrown/minifeed/internal/model"
)

func TestPickerEntries(t *testing.T) {
	p := NewPicker(testCatalog())

	want := []model.Scope{
		model.All(),
		model.GroupScope("news"),
		model.FeedScope("f1"),
		model.GroupScope("tech"),
		model.FeedScope("f2"),
	}
	if p.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", p.Len(), len(want))
	}
	for i, w := range want {
		if p.entries[i].scope != w {
			t.Errorf("entry %d = %v, want %v", i, p.entries[i].scope, w)
		}
	}
	if p.entries[2].depth != 1 || p.entries[1].depth != 0 {
		t.Error("feeds should be indented under their group")
	}
}

func TestPickerNilCatalog(t *testing.T) {
	p := NewPicker(nil)
	if p.Len() != 1 || p.Selected() != model.All() {
		t.Errorf("nil catalog picker: Len=%d Selected=%v", p.Len(), p.Selected())
	}
}

func TestPickerMoveAndSelect(t *testing.T) {
	p := NewPicker(testCatalog())

	p.Move(2)
	if got := p.Selected(); got != model.FeedScope("f1") {
		t.Errorf("Selected = %v, want feed:f1", got)
	}
	p.Move(100)
	if got := p.Selected(); got != model.FeedScope("f2") {
		t.Errorf("Selected after clamp = %v, want feed:f2", got)
	}
	p.Move(-100)
	if got := p.Selected(); got != model.All() {
		t.Errorf("Selected after clamp = %v, want all", got)
	}

	p.SetActive(model.GroupScope("tech"))
	if got := p.Selected(); got != model.GroupScope("tech") {
		t.Errorf("SetActive should move cursor, Selected = %v", got)
	}
}

func TestPickerView(t *testing.T) {
	p := NewPicker(testCatalog())
	view := p.View(28, 10)
	for _, want := range []string{"all feeds", "news", "Feed One", "tech", "Feed Two"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if p.View(28, 0) != "" {
		t.Error("zero height should render nothing")
	}
}

func TestPickerViewScrollsToCursor(t *testing.T) {
	p := NewPicker(testCatalog())
	p.Move(4)
	view := p.View(28, 2)
	if !strings.Contains(view, "Feed Two") {
		t.Errorf("cursor row should be visible:\n%s", view)
	}
	if strings.Contains(view, "all feeds") {
		t.Errorf("first row should be scrolled out:\n%s", view)
	}
}
