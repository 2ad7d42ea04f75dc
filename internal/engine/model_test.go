package engine

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	if got := clampF(-1, 0, 10); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
	if got := clampF(11, 0, 10); got != 10 {
		t.Fatalf("got %v want 10", got)
	}
	if got := clampF(5, 0, 10); got != 5 {
		t.Fatalf("got %v want 5", got)
	}
	if got := clampInt(150, 0, 100); got != 100 {
		t.Fatalf("got %d want 100", got)
	}
	if got := clampInt(-3, 0, 100); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
}

func TestDayKey(t *testing.T) {
	morning := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)
	night := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	next := time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC)
	if dayKey(morning) != dayKey(night) {
		t.Fatalf("same calendar day should share a key")
	}
	if dayKey(night) == dayKey(next) {
		t.Fatalf("midnight should start a new key")
	}
}

func TestIsoWeekOf(t *testing.T) {
	// Sunday and the following Monday land in different ISO weeks
	sunday := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	if isoWeekOf(sunday) == isoWeekOf(monday) {
		t.Fatalf("ISO week should roll over on Monday")
	}
	// Dec 29 2025 belongs to week 1 of 2026
	spill := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)
	if wk := isoWeekOf(spill); wk.Year != 2026 || wk.Week != 1 {
		t.Fatalf("got %+v, want 2026 week 1", wk)
	}
}
