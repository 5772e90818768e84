package get_available_slots

import (
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// generateDaySlots генерирует слоты дня из рабочих часов и правил планирования.
// Слот k начинается в window_start + k * (slot_duration + buffer); слоты,
// чей конец выходит за закрытие, отбрасываются. Затем отфильтровываются слоты,
// начинающиеся раньше now + min_notice.
func generateDaySlots(
	hours *domain.WorkingHours,
	rules *domain.SchedulingRules,
	date time.Time,
	now time.Time,
) ([]domain.Slot, error) {
	if hours == nil || !hours.IsOpen() {
		return []domain.Slot{}, nil
	}

	windowStart, err := hours.StartTime.OnDate(date)
	if err != nil {
		return nil, err
	}
	windowEnd, err := hours.EndTime.OnDate(date)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(rules.SlotDurationMinutes) * time.Minute
	stride := time.Duration(rules.SlotStride()) * time.Minute

	minStart := now.Add(rules.MinNotice())

	slots := make([]domain.Slot, 0)
	for start := windowStart; ; start = start.Add(stride) {
		end := start.Add(duration)
		if end.After(windowEnd) {
			break
		}
		// Фильтр минимального времени до брони (полноценное сравнение
		// timestamp'ов: notice в часах может пересекать границу суток)
		if start.Before(minStart) {
			continue
		}
		slots = append(slots, domain.Slot{StartTime: start, EndTime: end})
	}

	return slots, nil
}

// filterBlockedSlots отбрасывает слоты, пересекающиеся с бронированиями,
// занимающими слот (confirmed/rescheduled). Граничные случаи (конец одного
// ровно в начале другого) пересечением не считаются.
func filterBlockedSlots(slots []domain.Slot, bookings []*domain.Booking) []domain.Slot {
	available := make([]domain.Slot, 0, len(slots))

	for _, slot := range slots {
		blocked := false
		for _, booking := range bookings {
			if !booking.BlocksSlot() {
				continue
			}
			if booking.Overlaps(slot.StartTime, slot.EndTime) {
				blocked = true
				break
			}
		}
		if !blocked {
			available = append(available, slot)
		}
	}

	return available
}

// dayBounds возвращает границы календарного дня [00:00, 24:00)
func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
