package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name           string
		width          int
		height         int
		viewportWidth  int
		viewportHeight int
		progressWidth  int
	}{
		{name: "narrow", width: 80, height: 24, viewportWidth: 76, viewportHeight: 14, progressWidth: 56},
		{name: "wide", width: 200, height: 40, viewportWidth: 196, viewportHeight: 30, progressWidth: 60},
		{name: "tiny", width: 30, height: 10, viewportWidth: 40, viewportHeight: 6, progressWidth: 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.viewportWidth != tc.viewportWidth {
				t.Fatalf("viewport width mismatch: got %d want %d", layout.viewportWidth, tc.viewportWidth)
			}
			if layout.viewportHeight != tc.viewportHeight {
				t.Fatalf("viewport height mismatch: got %d want %d", layout.viewportHeight, tc.viewportHeight)
			}
			if layout.progressWidth != tc.progressWidth {
				t.Fatalf("progress width mismatch: got %d want %d", layout.progressWidth, tc.progressWidth)
			}
		})
	}
}

func TestJoinNonEmptySkipsBlankParts(t *testing.T) {
	got := joinNonEmpty([]string{"a", "  ", "", "b"})
	if got != "a\n\nb" {
		t.Fatalf("unexpected join: %q", got)
	}
}
