package otel

import (
	"sync"
	"testing"
)

func pushCounts(r *RingBuffer, kind EventKind, from, to int) {
	for i := from; i < to; i++ {
		r.Push(Event{Kind: kind, Count: i})
	}
}

func counts(evs []Event) []int {
	out := make([]int, len(evs))
	for i, e := range evs {
		out[i] = e.Count
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingSnapshotAndLast(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		pushed   int
		lastN    int
		wantSnap []int
		wantLast []int
	}{
		{"empty", 4, 0, 2, nil, nil},
		{"partial", 8, 5, 2, []int{0, 1, 2, 3, 4}, []int{3, 4}},
		{"exactly full", 4, 4, 3, []int{0, 1, 2, 3}, []int{1, 2, 3}},
		{"wrapped", 4, 6, 2, []int{2, 3, 4, 5}, []int{4, 5}},
		{"last more than count", 8, 2, 100, []int{0, 1}, []int{0, 1}},
		{"last zero", 8, 3, 0, []int{0, 1, 2}, nil},
		{"last negative", 8, 3, -1, []int{0, 1, 2}, nil},
		{"wrapped twice", 3, 7, 3, []int{4, 5, 6}, []int{4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRingBuffer(tt.size)
			pushCounts(r, KindPollTick, 0, tt.pushed)

			snap := r.Snapshot()
			if tt.wantSnap == nil && snap != nil {
				t.Errorf("Snapshot() = %v, want nil", counts(snap))
			}
			if !equalInts(counts(snap), tt.wantSnap) {
				t.Errorf("Snapshot() = %v, want %v", counts(snap), tt.wantSnap)
			}
			last := r.Last(tt.lastN)
			if tt.wantLast == nil && last != nil {
				t.Errorf("Last(%d) = %v, want nil", tt.lastN, counts(last))
			}
			if !equalInts(counts(last), tt.wantLast) {
				t.Errorf("Last(%d) = %v, want %v", tt.lastN, counts(last), tt.wantLast)
			}
			if r.Len() != len(tt.wantSnap) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.wantSnap))
			}
		})
	}
}

func TestRingStats(t *testing.T) {
	r := NewRingBuffer(16)
	pushCounts(r, KindFetchStart, 0, 2)
	pushCounts(r, KindFetchComplete, 0, 1)
	pushCounts(r, KindStaleDiscard, 0, 3)

	stats := r.Stats()
	want := map[EventKind]int{KindFetchStart: 2, KindFetchComplete: 1, KindStaleDiscard: 3}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("%s = %d, want %d", k, stats[k], v)
		}
	}
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRingBuffer(4)
	extra := map[string]any{"epoch": 1}
	r.Push(Event{Kind: KindScopeChange, Extra: extra})
	extra["epoch"] = 2

	if got := r.Snapshot()[0].Extra["epoch"]; got != 1 {
		t.Errorf("extra aliased: got %v, want 1", got)
	}
}

func TestRingDefaultCap(t *testing.T) {
	if got := NewRingBuffer(0).Cap(); got != DefaultRingSize {
		t.Errorf("Cap() = %d, want %d", got, DefaultRingSize)
	}
	if got := NewRingBuffer(32).Cap(); got != 32 {
		t.Errorf("Cap() = %d, want 32", got)
	}
}

func TestRingConcurrentAccess(t *testing.T) {
	r := NewRingBuffer(64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			pushCounts(r, KindPollTick, 0, 100)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = r.Snapshot()
				_ = r.Last(5)
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()
	if r.Len() != 64 {
		t.Errorf("Len() = %d, want 64", r.Len())
	}
}
