package cursor

import "testing"

func TestAdvanceIsMonotonic(t *testing.T) {
	var tr Tracker

	steps := []struct {
		added int64
		moved bool
		want  int64
	}{
		{100, true, 100},
		{90, false, 100},
		{100, false, 100},
		{150, true, 150},
		{0, false, 150},
	}
	for i, s := range steps {
		moved := tr.Advance(s.added)
		if moved != s.moved {
			t.Errorf("step %d: moved = %v, want %v", i, moved, s.moved)
		}
		if got := tr.HighWaterMark(); got != s.want {
			t.Errorf("step %d: high-water mark = %d, want %d", i, got, s.want)
		}
	}
}

func TestResetScopeKeepsHighWaterMark(t *testing.T) {
	var tr Tracker
	tr.Advance(500)
	tr.SetOldest("item-9")

	if id, ok := tr.OldestID(); !ok || id != "item-9" {
		t.Fatalf("OldestID = %q, %v", id, ok)
	}

	tr.ResetScope()

	if _, ok := tr.OldestID(); ok {
		t.Error("pagination cursor should be unset after ResetScope")
	}
	if tr.HighWaterMark() != 500 {
		t.Errorf("high-water mark changed on scope reset: %d", tr.HighWaterMark())
	}
}
