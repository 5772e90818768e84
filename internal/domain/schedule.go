package domain

import (
	"time"

	"github.com/toykraft/consult-booking-service/pkg/types"
)

// WorkingHours represents the host's availability window for one weekday.
// At most one row exists per weekday.
type WorkingHours struct {
	ID          int64
	DayOfWeek   time.Weekday // 0 = Sunday ... 6 = Saturday
	StartTime   types.TimeString
	EndTime     types.TimeString
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen returns true if the day is available and has a valid window
func (wh *WorkingHours) IsOpen() bool {
	return wh.IsAvailable && !wh.StartTime.IsZero() && !wh.EndTime.IsZero()
}

// WeekSchedule расписание на всю неделю, индексированное днём недели
type WeekSchedule map[time.Weekday]*WorkingHours

// ForDate возвращает рабочие часы на день недели даты date (nil, если строки нет)
func (ws WeekSchedule) ForDate(date time.Time) *WorkingHours {
	return ws[date.Weekday()]
}

// SchedulingRules — единственная активная запись глобальных правил планирования
type SchedulingRules struct {
	ID                  int64
	MinNoticeHours      int // Минимальное время до начала слота при бронировании
	MaxBookingDays      int // Горизонт бронирования в днях
	BufferMinutes       int // Обязательный зазор между сессиями
	SlotDurationMinutes int // Фиксированная длительность слота
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SlotStride returns the distance in minutes between consecutive slot starts
func (r *SchedulingRules) SlotStride() int {
	return r.SlotDurationMinutes + r.BufferMinutes
}

// MinNotice returns the minimum lead time as a duration
func (r *SchedulingRules) MinNotice() time.Duration {
	return time.Duration(r.MinNoticeHours) * time.Hour
}
