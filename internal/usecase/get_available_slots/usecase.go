package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/toykraft/consult-booking-service/internal/domain"
	"github.com/toykraft/consult-booking-service/internal/service/schedule"
)

type UseCase struct {
	bookingRepo      BookingRepository
	scheduleProvider ScheduleProvider
	timeProvider     TimeProvider
	logger           Logger
}

func NewUseCase(
	bookingRepo BookingRepository,
	scheduleProvider ScheduleProvider,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		scheduleProvider: scheduleProvider,
		timeProvider:     timeProvider,
		logger:           logger,
	}
}

// Execute возвращает доступные слоты на указанную дату.
// Результат вычисляется на лету из рабочих часов, правил планирования и
// существующих бронирований — таблицы слотов нет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("[GetAvailableSlots.Execute] Запрос слотов: date=%s, session_type=%s, user_id=%d",
		req.Date.Format(domain.DateFormat), req.SessionType, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("[GetAvailableSlots.Execute] Ошибка валидации: %v", err)
		return nil, err
	}

	// 2. Получаем конфигурацию расписания (кешированный snapshot)
	week, rules, err := uc.scheduleProvider.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrRulesNotConfigured) {
			uc.logger.Error("[GetAvailableSlots.Execute] Правила планирования не настроены")
			return nil, ErrRulesNotConfigured
		}
		uc.logger.Error("[GetAvailableSlots.Execute] Ошибка получения конфигурации расписания: %v", err)
		return nil, fmt.Errorf("%w: failed to load schedule configuration: %v", ErrInternal, err)
	}

	// 3. Проверяем дату против горизонта бронирования
	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now, rules.MaxBookingDays); err != nil {
		uc.logger.Warn("[GetAvailableSlots.Execute] Дата вне горизонта: date=%s, err=%v",
			req.Date.Format(domain.DateFormat), err)
		return nil, err
	}

	// 4. Рабочие часы на день недели запрошенной даты
	hours := week.ForDate(req.Date)
	if hours == nil || !hours.IsOpen() {
		uc.logger.Info("[GetAvailableSlots.Execute] Нерабочий день: date=%s", req.Date.Format(domain.DateFormat))
		return &Response{
			Date:        req.Date,
			SessionType: req.SessionType,
			DayStatus:   domain.DayNonWorking,
			Slots:       []domain.Slot{},
		}, nil
	}

	// 5. Генерация сетки слотов дня
	slots, err := generateDaySlots(hours, rules, req.Date, now)
	if err != nil {
		uc.logger.Error("[GetAvailableSlots.Execute] Ошибка генерации слотов: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 6. Загружаем блокирующие бронирования дня и отфильтровываем занятые слоты
	dayStart, dayEnd := dayBounds(req.Date)
	bookings, err := uc.bookingRepo.List(ctx, domain.BookingsFilter{
		StartDate:    &dayStart,
		EndDate:      &dayEnd,
		OnlyBlocking: true,
	})
	if err != nil {
		uc.logger.Error("[GetAvailableSlots.Execute] Ошибка получения бронирований: %v", err)
		return nil, fmt.Errorf("%w: failed to load bookings: %v", ErrInternal, err)
	}

	available := filterBlockedSlots(slots, bookings)

	// Рабочий день без единого свободного слота помечаем отдельным статусом,
	// чтобы клиент мог отличить его от нерабочего дня
	dayStatus := domain.DayOpen
	if len(available) == 0 {
		dayStatus = domain.DayFullyBooked
	}

	uc.logger.Info("[GetAvailableSlots.Execute] Слоты рассчитаны: date=%s, total=%d, available=%d, day_status=%s",
		req.Date.Format(domain.DateFormat), len(slots), len(available), dayStatus)

	return &Response{
		Date:        req.Date,
		SessionType: req.SessionType,
		DayStatus:   dayStatus,
		Slots:       available,
	}, nil
}
