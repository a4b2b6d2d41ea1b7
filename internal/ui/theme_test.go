package ui

import (
	"strings"
	"testing"
)

func TestSetTheme_FallsBackToClassic(t *testing.T) {
	SetTheme("no-such-theme")
	if Current().BoxChecked != "☑" {
		t.Fatalf("BoxChecked = %q, want classic glyph", Current().BoxChecked)
	}
	SetTheme("mono")
	if Current().BoxChecked != "[x]" {
		t.Fatalf("BoxChecked = %q, want mono glyph", Current().BoxChecked)
	}
	SetTheme("classic")
}

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(2, 4, 10)
	if !strings.HasSuffix(bar, "] 2/4") {
		t.Fatalf("bar = %q", bar)
	}
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 5 {
		t.Fatalf("bar = %q, want half filled", bar)
	}

	// Zero totals must not divide by zero.
	if got := ProgressBar(0, 0, 10); !strings.HasSuffix(got, "] 0/0") {
		t.Fatalf("bar = %q", got)
	}
}
