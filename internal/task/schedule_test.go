package task

import (
	"testing"
	"time"
)

func TestParseTiming(t *testing.T) {
	for _, s := range []string{"immediate", "end_of_day", "tomorrow", "next_week"} {
		if _, ok := ParseTiming(s); !ok {
			t.Errorf("ParseTiming(%q) should succeed", s)
		}
	}
	if _, ok := ParseTiming("someday"); ok {
		t.Error("ParseTiming should reject unknown buckets")
	}
}

func TestResolveTimingImmediate(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	if got := ResolveTiming(TimingImmediate, now); !got.Equal(now) {
		t.Errorf("immediate = %v, want %v", got, now)
	}
}

func TestResolveTimingEndOfDayBeforeCutoff(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	want := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	if got := ResolveTiming(TimingEndOfDay, now); !got.Equal(want) {
		t.Errorf("end_of_day at 10:00 = %v, want %v", got, want)
	}
}

func TestResolveTimingEndOfDayRollover(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	want := time.Date(2025, 3, 11, 17, 0, 0, 0, time.UTC)
	if got := ResolveTiming(TimingEndOfDay, now); !got.Equal(want) {
		t.Errorf("end_of_day at 18:00 = %v, want %v", got, want)
	}
}

func TestResolveTimingEndOfDayAtCutoff(t *testing.T) {
	// Exactly 17:00 counts as past the cutoff.
	now := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	want := time.Date(2025, 3, 11, 17, 0, 0, 0, time.UTC)
	if got := ResolveTiming(TimingEndOfDay, now); !got.Equal(want) {
		t.Errorf("end_of_day at 17:00 = %v, want %v", got, want)
	}
}

func TestResolveTimingTomorrow(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 45, 0, 0, time.UTC)
	want := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	if got := ResolveTiming(TimingTomorrow, now); !got.Equal(want) {
		t.Errorf("tomorrow = %v, want %v", got, want)
	}
}

func TestResolveTimingTomorrowCrossesMonth(t *testing.T) {
	now := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)
	want := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	if got := ResolveTiming(TimingTomorrow, now); !got.Equal(want) {
		t.Errorf("tomorrow across month = %v, want %v", got, want)
	}
}

func TestResolveTimingNextWeek(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	want := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	if got := ResolveTiming(TimingNextWeek, now); !got.Equal(want) {
		t.Errorf("next_week = %v, want %v", got, want)
	}
}
