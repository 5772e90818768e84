package domain

// Business validation constants
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 240 // 4 hours
	MinBufferMinutes       = 0
	MaxBufferMinutes       = 120
	MinNoticeHoursLimit    = 0
	MaxNoticeHoursLimit    = 168 // 1 week
	MinBookingDaysLimit    = 1
	MaxBookingDaysLimit    = 365
	MaxNotesLength         = 2000
	MaxChildAge            = 18
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// BlockingStatuses статусы бронирований, занимающих слот.
// Используются при фильтрации для подсчёта доступности.
var BlockingStatuses = []BookingStatus{
	StatusConfirmed,
	StatusRescheduled,
}
