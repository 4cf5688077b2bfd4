// Package market provides a read-only US market-hours calendar.
package market

import (
	"fmt"
	"time"
)

// Status represents the current market session.
type Status string

const (
	StatusOpen       Status = "open"
	StatusPreMarket  Status = "pre-market"
	StatusAfterHours Status = "after-hours"
	StatusClosed     Status = "closed"
)

// State describes the market at a point in time.
type State struct {
	IsOpen    bool
	Status    Status
	NextOpen  time.Time
	NextClose time.Time
	Message   string
}

// NYLocation is the timezone for US markets (NYSE/NASDAQ).
var NYLocation *time.Location

func init() {
	var err error
	NYLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		NYLocation = time.FixedZone("ET", -5*60*60)
	}
}

// US market holidays (2024-2026).
var holidays = map[string]bool{
	"2024-01-01": true, "2024-01-15": true, "2024-02-19": true,
	"2024-03-29": true, "2024-05-27": true, "2024-06-19": true,
	"2024-07-04": true, "2024-09-02": true, "2024-11-28": true,
	"2024-12-25": true,
	"2025-01-01": true, "2025-01-20": true, "2025-02-17": true,
	"2025-04-18": true, "2025-05-26": true, "2025-06-19": true,
	"2025-07-04": true, "2025-09-01": true, "2025-11-27": true,
	"2025-12-25": true,
	"2026-01-01": true, "2026-01-19": true, "2026-02-16": true,
	"2026-04-03": true, "2026-05-25": true, "2026-06-19": true,
	"2026-07-03": true, "2026-09-07": true, "2026-11-26": true,
	"2026-12-25": true,
}

// Session boundaries in minutes from midnight ET.
const (
	preMarketOpen   = 4 * 60
	regularOpen     = 9*60 + 30
	regularClose    = 16 * 60
	afterHoursClose = 20 * 60
)

// GetStatus returns the market state at the current time.
func GetStatus() State {
	return StatusAt(time.Now())
}

// StatusAt returns the market state at the given instant.
func StatusAt(now time.Time) State {
	et := now.In(NYLocation)
	day := et.Weekday()
	minutes := et.Hour()*60 + et.Minute()

	// Weekend
	if day == time.Saturday || day == time.Sunday {
		daysUntilMonday := 2
		if day == time.Sunday {
			daysUntilMonday = 1
		}
		nextOpen := atTime(et.AddDate(0, 0, daysUntilMonday), 9, 30)
		return State{
			Status:   StatusClosed,
			NextOpen: nextOpen,
			Message:  "Market closed for the weekend",
		}
	}

	// Holiday
	if isHoliday(et) {
		nextOpen := atTime(et.AddDate(0, 0, 1), 9, 30)
		return State{
			Status:   StatusClosed,
			NextOpen: nextOpen,
			Message:  "Market closed for holiday",
		}
	}

	switch {
	case minutes >= preMarketOpen && minutes < regularOpen:
		return State{
			Status:   StatusPreMarket,
			NextOpen: atTime(et, 9, 30),
			Message:  "Pre-market trading session",
		}
	case minutes >= regularOpen && minutes < regularClose:
		return State{
			IsOpen:    true,
			Status:    StatusOpen,
			NextClose: atTime(et, 16, 0),
			Message:   "Market is open",
		}
	case minutes >= regularClose && minutes < afterHoursClose:
		return State{
			Status:   StatusAfterHours,
			NextOpen: atTime(et.AddDate(0, 0, 1), 9, 30),
			Message:  "After-hours trading session",
		}
	default:
		next := et
		if minutes >= afterHoursClose {
			next = et.AddDate(0, 0, 1)
		}
		return State{
			Status:   StatusClosed,
			NextOpen: atTime(next, 4, 0),
			Message:  "Market closed",
		}
	}
}

func isHoliday(et time.Time) bool {
	return holidays[et.Format("2006-01-02")]
}

func atTime(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, NYLocation)
}

// FormatTimeUntil renders the duration until a future instant as a short
// human string like "2h 15m".
func FormatTimeUntil(from, to time.Time) string {
	diff := to.Sub(from)
	if diff <= 0 {
		return "now"
	}

	hours := int(diff.Hours())
	minutes := int(diff.Minutes()) % 60

	if hours > 24 {
		days := hours / 24
		return fmt.Sprintf("%dd %dh", days, hours%24)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
