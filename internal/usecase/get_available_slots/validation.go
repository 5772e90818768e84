package get_available_slots

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if !req.SessionType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSessionType, req.SessionType)
	}

	return nil
}

// validateDate проверяет, что дата попадает в горизонт бронирования
func validateDate(requestDate time.Time, now time.Time, maxBookingDays int) error {
	if isDateInPast(requestDate, now) {
		return ErrInvalidDate
	}

	// Горизонт считается одинаково с созданием бронирования:
	// последний доступный день — сегодня + max_booking_days
	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, maxBookingDays)

	requestDateOnly := time.Date(requestDate.Year(), requestDate.Month(), requestDate.Day(), 0, 0, 0, 0, requestDate.Location())

	if requestDateOnly.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxBookingDays)
	}

	return nil
}
