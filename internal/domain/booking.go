package domain

import "time"

// SessionType represents the kind of session being booked
type SessionType string

const (
	SessionPlayPath     SessionType = "playpath"
	SessionConsultation SessionType = "consultation"
)

// IsValid returns true if the session type is one of the known values
func (t SessionType) IsValid() bool {
	return t == SessionPlayPath || t == SessionConsultation
}

// SalesSourceType maps the session type to the source_type of a sales transaction
func (t SessionType) SalesSourceType() string {
	switch t {
	case SessionPlayPath:
		return "playpath_booking"
	case SessionConsultation:
		return "consultation_booking"
	default:
		return "unknown"
	}
}

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCancelled   BookingStatus = "cancelled"
	StatusCompleted   BookingStatus = "completed"
	StatusNoShow      BookingStatus = "no_show"
	StatusRescheduled BookingStatus = "rescheduled"
	// StatusSuperseded помечает старую запись после переноса: новая запись
	// ссылается на неё через rescheduled_from, старая перестаёт занимать слот
	StatusSuperseded BookingStatus = "superseded"
)

// PaymentStatus represents the payment sub-state of a booking
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Booking represents a consultation/playpath session reservation
type Booking struct {
	ID          string
	UserID      int64
	SessionType SessionType
	StartTime   time.Time
	EndTime     time.Time

	// Структурированные поля анкеты ребёнка. Legacy-записи хранят те же данные
	// склеенными в SpecialNotes, поэтому поля опциональны.
	ChildName    *string
	ChildAge     *int
	Concerns     *string
	SpecialNotes *string

	AmountPaid    *float64
	PaymentStatus PaymentStatus
	PaymentID     *string

	Status          BookingStatus
	MeetingLink     *string
	HostNotes       *string
	RescheduledFrom *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// bookingTransitions допустимые переходы booking_status
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusConfirmed:   {StatusCancelled, StatusCompleted, StatusNoShow, StatusRescheduled, StatusSuperseded},
	StatusRescheduled: {StatusCancelled, StatusCompleted, StatusNoShow, StatusSuperseded},
	// cancelled, completed, no_show и superseded — терминальные
}

// paymentTransitions допустимые переходы payment_status
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentFailed:    {PaymentPending},
	PaymentCompleted: {PaymentRefunded},
}

// CanTransitionTo returns true if the booking status may change to target
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanTransitionTo returns true if the payment status may change to target
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// BlocksSlot returns true if the booking occupies its time range
// for availability purposes
func (b *Booking) BlocksSlot() bool {
	return b.Status == StatusConfirmed || b.Status == StatusRescheduled
}

// KeepsMeetingLink returns true if the status allows a meeting link to be set.
// Any transition to another status must clear the link.
func (s BookingStatus) KeepsMeetingLink() bool {
	return s == StatusConfirmed || s == StatusRescheduled
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRescheduled returns true if the booking can be moved to another slot
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusConfirmed || b.Status == StatusRescheduled
}

// IsTerminal returns true if no further status transitions are defined
func (b *Booking) IsTerminal() bool {
	return len(bookingTransitions[b.Status]) == 0
}

// Overlaps reports whether the booking's [StartTime, EndTime) interval
// intersects [start, end). Touching boundaries do not count as overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	UserID        *int64         // Фильтр по владельцу (опционально)
	StartDate     *time.Time     // Начало периода (опционально)
	EndDate       *time.Time     // Конец периода (опционально)
	Status        *BookingStatus // Фильтр по статусу (опционально)
	PaymentStatus *PaymentStatus // Фильтр по статусу оплаты (опционально)
	OnlyBlocking  bool           // Только бронирования, занимающие слот (confirmed/rescheduled)
}
