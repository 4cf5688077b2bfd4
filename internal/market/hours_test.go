package market

import (
	"testing"
	"time"
)

func etTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, NYLocation)
}

func TestStatusAtRegularHours(t *testing.T) {
	// Monday 2026-03-02, 11:00 ET
	state := StatusAt(etTime(2026, time.March, 2, 11, 0))
	if state.Status != StatusOpen || !state.IsOpen {
		t.Fatalf("expected open market, got %+v", state)
	}
	wantClose := etTime(2026, time.March, 2, 16, 0)
	if !state.NextClose.Equal(wantClose) {
		t.Errorf("NextClose = %v, want %v", state.NextClose, wantClose)
	}
}

func TestStatusAtSessionBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		at     time.Time
		status Status
		isOpen bool
	}{
		{"pre-market start", etTime(2026, time.March, 2, 4, 0), StatusPreMarket, false},
		{"last pre-market minute", etTime(2026, time.March, 2, 9, 29), StatusPreMarket, false},
		{"opening bell", etTime(2026, time.March, 2, 9, 30), StatusOpen, true},
		{"closing bell", etTime(2026, time.March, 2, 16, 0), StatusAfterHours, false},
		{"after-hours end", etTime(2026, time.March, 2, 20, 0), StatusClosed, false},
		{"overnight", etTime(2026, time.March, 2, 2, 0), StatusClosed, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := StatusAt(tc.at)
			if state.Status != tc.status {
				t.Errorf("status = %v, want %v", state.Status, tc.status)
			}
			if state.IsOpen != tc.isOpen {
				t.Errorf("IsOpen = %v, want %v", state.IsOpen, tc.isOpen)
			}
		})
	}
}

func TestStatusAtWeekend(t *testing.T) {
	// Saturday midday
	state := StatusAt(etTime(2026, time.March, 7, 12, 0))
	if state.Status != StatusClosed || state.IsOpen {
		t.Fatalf("expected closed on Saturday, got %+v", state)
	}
	wantOpen := etTime(2026, time.March, 9, 9, 30) // Monday
	if !state.NextOpen.Equal(wantOpen) {
		t.Errorf("NextOpen = %v, want %v", state.NextOpen, wantOpen)
	}

	// Sunday points one day ahead
	state = StatusAt(etTime(2026, time.March, 8, 12, 0))
	if !state.NextOpen.Equal(wantOpen) {
		t.Errorf("Sunday NextOpen = %v, want %v", state.NextOpen, wantOpen)
	}
}

func TestStatusAtHoliday(t *testing.T) {
	// Christmas 2025 falls on a Thursday.
	state := StatusAt(etTime(2025, time.December, 25, 11, 0))
	if state.Status != StatusClosed || state.IsOpen {
		t.Fatalf("expected closed on holiday, got %+v", state)
	}
	wantOpen := etTime(2025, time.December, 26, 9, 30)
	if !state.NextOpen.Equal(wantOpen) {
		t.Errorf("NextOpen = %v, want %v", state.NextOpen, wantOpen)
	}
}

func TestFormatTimeUntil(t *testing.T) {
	base := etTime(2026, time.March, 2, 9, 0)
	cases := []struct {
		to   time.Time
		want string
	}{
		{base.Add(-time.Minute), "now"},
		{base, "now"},
		{base.Add(30 * time.Minute), "30m"},
		{base.Add(2*time.Hour + 15*time.Minute), "2h 15m"},
		{base.Add(49 * time.Hour), "2d 1h"},
	}
	for _, tc := range cases {
		if got := FormatTimeUntil(base, tc.to); got != tc.want {
			t.Errorf("FormatTimeUntil(+%v) = %q, want %q", tc.to.Sub(base), got, tc.want)
		}
	}
}
