package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	"github.com/toykraft/consult-booking-service/internal/service/schedule"
)

type UseCase struct {
	bookingRepo      BookingRepository
	scheduleProvider ScheduleProvider
	txManager        TxManager
	timeProvider     TimeProvider
	idGenerator      IDGenerator
	logger           Logger
}

func NewUseCase(
	bookingRepo BookingRepository,
	scheduleProvider ScheduleProvider,
	txManager TxManager,
	timeProvider TimeProvider,
	idGenerator IDGenerator,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		scheduleProvider: scheduleProvider,
		txManager:        txManager,
		timeProvider:     timeProvider,
		idGenerator:      idGenerator,
		logger:           logger,
	}
}

// Execute создаёт бронирование со статусом confirmed и payment_status pending.
// Гонка за один слот разрешается тремя уровнями: serializable-транзакция
// с перечитыванием дня под FOR UPDATE и exclusion constraint в БД.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("[CreateBooking.Execute] Создание бронирования: user_id=%d, session_type=%s, start_time=%s",
		req.UserID, req.SessionType, req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("[CreateBooking.Execute] Ошибка валидации: %v", err)
		return nil, err
	}

	// 2. Конфигурация расписания
	week, rules, err := uc.scheduleProvider.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrRulesNotConfigured) {
			uc.logger.Error("[CreateBooking.Execute] Правила планирования не настроены")
			return nil, ErrRulesNotConfigured
		}
		uc.logger.Error("[CreateBooking.Execute] Ошибка получения конфигурации расписания: %v", err)
		return nil, fmt.Errorf("%w: failed to load schedule configuration: %v", ErrInternal, err)
	}

	// 3. Проверяем слот против правил и сетки дня
	now := uc.timeProvider.Now()
	endTime, err := validateSlot(req.StartTime, week, rules, now)
	if err != nil {
		uc.logger.Warn("[CreateBooking.Execute] Слот не прошёл проверку: start_time=%s, err=%v",
			req.StartTime.Format(time.RFC3339), err)
		return nil, err
	}

	newBooking := &domain.Booking{
		ID:            uc.idGenerator.NewID(),
		UserID:        req.UserID,
		SessionType:   req.SessionType,
		StartTime:     req.StartTime,
		EndTime:       endTime,
		ChildName:     req.ChildName,
		ChildAge:      req.ChildAge,
		Concerns:      req.Concerns,
		SpecialNotes:  req.SpecialNotes,
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentPending,
	}

	// 4. Проверка занятости и вставка атомарно, в serializable-транзакции
	var created *domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		dayStart, dayEnd := dayBounds(req.StartTime)

		// Под FOR UPDATE — конкурентная транзакция на тот же день будет ждать
		existing, listErr := uc.bookingRepo.List(txCtx, domain.BookingsFilter{
			StartDate:    &dayStart,
			EndDate:      &dayEnd,
			OnlyBlocking: true,
		})
		if listErr != nil {
			return fmt.Errorf("failed to list bookings for the day: %w", listErr)
		}

		for _, b := range existing {
			if b.Overlaps(newBooking.StartTime, newBooking.EndTime) {
				return ErrSlotNotAvailable
			}
		}

		var createErr error
		created, createErr = uc.bookingRepo.Create(txCtx, newBooking)
		if createErr != nil {
			if errors.Is(createErr, bookingstorage.ErrSlotTaken) {
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("failed to insert booking: %w", createErr)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.logger.Warn("[CreateBooking.Execute] Слот занят: start_time=%s", req.StartTime.Format(time.RFC3339))
			return nil, ErrSlotNotAvailable
		}
		uc.logger.Error("[CreateBooking.Execute] Ошибка транзакции: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("[CreateBooking.Execute] Бронирование создано: booking_id=%s, user_id=%d", created.ID, created.UserID)

	return &Response{Booking: created}, nil
}

// dayBounds возвращает границы календарного дня [00:00, 24:00)
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
