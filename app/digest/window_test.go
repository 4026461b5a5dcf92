package digest

import (
	"testing"
	"time"
)

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"morning", "day", "weekly"} {
		if _, err := ParseKind(valid); err != nil {
			t.Errorf("ParseKind(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseKind("hourly"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestWindowFor_MorningAtPivot(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2024, 1, 15, 6, 0, 0, 0, loc)

	start, end := WindowFor(KindMorning, now, loc)

	wantStart := time.Date(2024, 1, 14, 6, 0, 0, 0, loc)
	wantEnd := time.Date(2024, 1, 15, 6, 0, 0, 0, loc)
	if !start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, start)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("Expected end %v, got %v", wantEnd, end)
	}
}

func TestWindowFor_MorningBeforePivot(t *testing.T) {
	loc := tokyo(t)
	// 03:00, window still ends at today's 06:00.
	now := time.Date(2024, 1, 15, 3, 0, 0, 0, loc)

	start, end := WindowFor(KindMorning, now, loc)

	if !end.Equal(time.Date(2024, 1, 15, 6, 0, 0, 0, loc)) {
		t.Errorf("Window end should be today 06:00, got %v", end)
	}
	if !start.Equal(time.Date(2024, 1, 14, 6, 0, 0, 0, loc)) {
		t.Errorf("Window start should be yesterday 06:00, got %v", start)
	}
}

func TestWindowFor_MorningCrossesMonth(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2024, 3, 1, 7, 0, 0, 0, loc)

	start, _ := WindowFor(KindMorning, now, loc)

	if !start.Equal(time.Date(2024, 2, 29, 6, 0, 0, 0, loc)) {
		t.Errorf("Expected start on Feb 29, got %v", start)
	}
}

func TestWindowFor_Day(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2024, 1, 15, 14, 30, 0, 0, loc)

	start, end := WindowFor(KindDay, now, loc)

	if !start.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("Expected midnight start, got %v", start)
	}
	if !end.Equal(now) {
		t.Errorf("Expected end at now, got %v", end)
	}
}

func TestWindowFor_WeeklyFromMonday(t *testing.T) {
	loc := tokyo(t)
	// 2024-01-15 is a Monday.
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, loc)

	start, end := WindowFor(KindWeekly, now, loc)

	if !start.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, loc)) {
		t.Errorf("Expected start on previous Monday, got %v", start)
	}
	if !end.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("Expected end on this Monday, got %v", end)
	}
}

func TestWindowFor_WeeklyFromSunday(t *testing.T) {
	loc := tokyo(t)
	// 2024-01-14 is a Sunday; it belongs to the week that started
	// on Jan 8, so the completed week is Jan 1 - Jan 8.
	now := time.Date(2024, 1, 14, 9, 0, 0, 0, loc)

	start, end := WindowFor(KindWeekly, now, loc)

	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("Expected start on Jan 1, got %v", start)
	}
	if !end.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, loc)) {
		t.Errorf("Expected end on Jan 8, got %v", end)
	}
}

func TestWindowFor_UTCInputConverted(t *testing.T) {
	loc := tokyo(t)
	// 22:00 UTC Jan 14 is already 07:00 Jan 15 in Tokyo.
	now := time.Date(2024, 1, 14, 22, 0, 0, 0, time.UTC)

	_, end := WindowFor(KindMorning, now, loc)

	if !end.Equal(time.Date(2024, 1, 15, 6, 0, 0, 0, loc)) {
		t.Errorf("Expected Tokyo-local boundary, got %v", end)
	}
}

func TestStamp(t *testing.T) {
	loc := tokyo(t)
	end := time.Date(2024, 1, 15, 6, 0, 0, 0, loc)

	if got := Stamp(end, loc); got != "2024-01-15" {
		t.Errorf("Expected 2024-01-15, got %s", got)
	}
}
