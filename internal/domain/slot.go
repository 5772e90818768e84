package domain

import "time"

// Slot represents a bookable time interval of fixed duration.
// Slots are ephemeral: they exist only as output of an availability query.
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the slot length
func (s Slot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// DayStatus tags an availability result so the caller can tell a non-working
// day apart from a fully booked one
type DayStatus string

const (
	DayOpen        DayStatus = "open"
	DayNonWorking  DayStatus = "non_working"
	DayFullyBooked DayStatus = "fully_booked"
)
