package route

import (
	"testing"

	"github.com/abelbrown/minifeed/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want model.Scope
	}{
		{"", model.All()},
		{"#/all", model.All()},
		{"#/group/news", model.GroupScope("news")},
		{"#/feed/abc123", model.FeedScope("abc123")},
		{"/feed/abc123", model.FeedScope("abc123")},
		{"feed/abc123/", model.FeedScope("abc123")},
		{"  #/group/tech  ", model.GroupScope("tech")},
		{"#/group/", model.All()},
		{"#/feed", model.All()},
		{"#/bogus/x", model.All()},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, s := range []model.Scope{model.All(), model.GroupScope("news"), model.FeedScope("f1")} {
		if got := Parse(Format(s)); got != s {
			t.Errorf("round trip of %v gave %v", s, got)
		}
	}
	if got := Format(model.FeedScope("f1")); got != "#/feed/f1" {
		t.Errorf("Format = %q", got)
	}
}
