package models

import (
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
	"github.com/toykraft/consult-booking-service/pkg/types"
)

// Request модели

// DayHoursRequest рабочие часы одного дня недели
type DayHoursRequest struct {
	DayOfWeek   int    `json:"dayOfWeek"` // 0 = воскресенье ... 6 = суббота
	StartTime   string `json:"startTime"` // "09:00"
	EndTime     string `json:"endTime"`   // "17:00"
	IsAvailable bool   `json:"isAvailable"`
}

// UpdateWorkingHoursRequest запрос на обновление рабочих часов
type UpdateWorkingHoursRequest struct {
	Days []DayHoursRequest `json:"days"`
}

// UpdateRulesRequest запрос на обновление правил планирования
type UpdateRulesRequest struct {
	MinNoticeHours      int `json:"minNoticeHours"`
	MaxBookingDays      int `json:"maxBookingDays"`
	BufferMinutes       int `json:"bufferMinutes"`
	SlotDurationMinutes int `json:"slotDurationMinutes"`
}

// Response модели

// DayHoursResponse рабочие часы одного дня недели
type DayHoursResponse struct {
	DayOfWeek   int    `json:"dayOfWeek"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
}

// RulesResponse правила планирования
type RulesResponse struct {
	MinNoticeHours      int `json:"minNoticeHours"`
	MaxBookingDays      int `json:"maxBookingDays"`
	BufferMinutes       int `json:"bufferMinutes"`
	SlotDurationMinutes int `json:"slotDurationMinutes"`
}

// ScheduleResponse полная конфигурация расписания
type ScheduleResponse struct {
	Days  []DayHoursResponse `json:"days"`
	Rules *RulesResponse     `json:"rules,omitempty"`
}

// Методы конвертации

// ToDomainWorkingHours конвертирует запрос дня в domain модель
func (r *DayHoursRequest) ToDomainWorkingHours() (*domain.WorkingHours, error) {
	wh := &domain.WorkingHours{
		DayOfWeek:   time.Weekday(r.DayOfWeek),
		IsAvailable: r.IsAvailable,
	}

	if r.StartTime != "" {
		start, err := types.NewTimeStringFromString(r.StartTime)
		if err != nil {
			return nil, err
		}
		wh.StartTime = start
	}

	if r.EndTime != "" {
		end, err := types.NewTimeStringFromString(r.EndTime)
		if err != nil {
			return nil, err
		}
		wh.EndTime = end
	}

	return wh, nil
}

// FromDomainSchedule конвертирует расписание и правила в DTO
func FromDomainSchedule(week domain.WeekSchedule, rules *domain.SchedulingRules) *ScheduleResponse {
	resp := &ScheduleResponse{
		Days: make([]DayHoursResponse, 0, len(week)),
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		wh, ok := week[day]
		if !ok {
			continue
		}
		resp.Days = append(resp.Days, DayHoursResponse{
			DayOfWeek:   int(wh.DayOfWeek),
			StartTime:   wh.StartTime.String(),
			EndTime:     wh.EndTime.String(),
			IsAvailable: wh.IsAvailable,
		})
	}

	if rules != nil {
		resp.Rules = &RulesResponse{
			MinNoticeHours:      rules.MinNoticeHours,
			MaxBookingDays:      rules.MaxBookingDays,
			BufferMinutes:       rules.BufferMinutes,
			SlotDurationMinutes: rules.SlotDurationMinutes,
		}
	}

	return resp
}
