package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be positive", ErrInvalidInput)
	}

	if !req.SessionType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSessionType, req.SessionType)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}

	if req.ChildName != nil && strings.TrimSpace(*req.ChildName) == "" {
		return fmt.Errorf("%w: child_name must not be blank", ErrInvalidInput)
	}

	if req.ChildAge != nil && (*req.ChildAge < 0 || *req.ChildAge > domain.MaxChildAge) {
		return fmt.Errorf("%w: child_age must be between 0 and %d", ErrInvalidInput, domain.MaxChildAge)
	}

	for field, value := range map[string]*string{
		"concerns":      req.Concerns,
		"special_notes": req.SpecialNotes,
	} {
		if value != nil && len(*value) > domain.MaxNotesLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, domain.MaxNotesLength)
		}
	}

	return nil
}

// validateSlot проверяет слот против правил планирования и рабочих часов дня.
// Слот валиден только если он совпадает с одним из слотов сетки дня.
func validateSlot(
	start time.Time,
	week domain.WeekSchedule,
	rules *domain.SchedulingRules,
	now time.Time,
) (time.Time, error) {
	end := start.Add(time.Duration(rules.SlotDurationMinutes) * time.Minute)

	// Минимальное время до начала
	if start.Before(now.Add(rules.MinNotice())) {
		return time.Time{}, fmt.Errorf("%w: minimum notice is %d hours", ErrTooSoon, rules.MinNoticeHours)
	}

	// Горизонт бронирования
	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, rules.MaxBookingDays+1)
	if !start.Before(maxDate) {
		return time.Time{}, fmt.Errorf("%w: can only book %d days in advance", ErrTooFarInFuture, rules.MaxBookingDays)
	}

	// Рабочие часы дня
	hours := week.ForDate(start)
	if hours == nil || !hours.IsOpen() {
		return time.Time{}, fmt.Errorf("%w: the day is non-working", ErrOutsideWorkingHours)
	}

	windowStart, err := hours.StartTime.OnDate(start)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	windowEnd, err := hours.EndTime.OnDate(start)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if start.Before(windowStart) || end.After(windowEnd) {
		return time.Time{}, fmt.Errorf("%w: working hours are %s-%s", ErrOutsideWorkingHours, hours.StartTime, hours.EndTime)
	}

	// Выравнивание по сетке: start должен отстоять от открытия на k * stride
	offset := start.Sub(windowStart)
	stride := time.Duration(rules.SlotStride()) * time.Minute
	if offset < 0 || offset%stride != 0 {
		return time.Time{}, fmt.Errorf("%w: start_time is not aligned to the slot grid", ErrSlotNotAvailable)
	}

	return end, nil
}
