package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	"github.com/toykraft/consult-booking-service/internal/service/schedule"
	"github.com/toykraft/consult-booking-service/pkg/ptr"
)

// AdminUserID обозначает запрос от администратора: проверка владельца не выполняется
const AdminUserID int64 = 0

// Service управляет жизненным циклом бронирований после создания:
// статусные переходы, отмена, перенос, ссылка на встречу и заметки ведущего.
type Service struct {
	bookingRepo      BookingRepository
	scheduleProvider ScheduleProvider
	txManager        TxManager
	timeProvider     TimeProvider
	idGenerator      IDGenerator
	logger           Logger
}

func NewService(
	bookingRepo BookingRepository,
	scheduleProvider ScheduleProvider,
	txManager TxManager,
	timeProvider TimeProvider,
	idGenerator IDGenerator,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:      bookingRepo,
		scheduleProvider: scheduleProvider,
		txManager:        txManager,
		timeProvider:     timeProvider,
		idGenerator:      idGenerator,
		logger:           logger,
	}
}

// GetByID возвращает бронирование. Если requesterID не административный,
// доступ разрешён только владельцу.
func (s *Service) GetByID(ctx context.Context, bookingID string, requesterID int64) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if requesterID != AdminUserID && b.UserID != requesterID {
		s.logger.Warn("[Service.GetByID] Доступ запрещён: booking_id=%s, owner=%d, requester=%d",
			bookingID, b.UserID, requesterID)
		return nil, ErrAccessDenied
	}

	return b, nil
}

// GetUserBookings возвращает бронирования пользователя, опционально
// ограниченные статусом и периодом. Сортировка по start_time по возрастанию.
func (s *Service) GetUserBookings(ctx context.Context, userID int64, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user_id must be positive", ErrInvalidInput)
	}

	filter.UserID = &userID

	list, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("[Service.GetUserBookings] Ошибка получения списка: user_id=%d, err=%v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return list, nil
}

// Cancel отменяет бронирование владельца. Ссылка на встречу очищается.
func (s *Service) Cancel(ctx context.Context, bookingID string, requesterID int64) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, bookingID, requesterID)
	if err != nil {
		return nil, err
	}

	if !b.CanBeCancelled() {
		s.logger.Warn("[Service.Cancel] Отмена невозможна: booking_id=%s, status=%s", bookingID, b.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrCannotCancel, b.Status)
	}

	updated, err := s.bookingRepo.Update(ctx, bookingID, bookingstorage.UpdatePatch{
		Status:           ptr.Ptr(domain.StatusCancelled),
		ClearMeetingLink: true,
	})
	if err != nil {
		s.logger.Error("[Service.Cancel] Ошибка обновления: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info("[Service.Cancel] Бронирование отменено: booking_id=%s, user_id=%d", bookingID, b.UserID)

	return updated, nil
}

// UpdateStatus переводит бронирование в новый статус (административная
// операция). Переход валидируется; при уходе из активных статусов
// ссылка на встречу очищается.
func (s *Service) UpdateStatus(ctx context.Context, bookingID string, target domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !b.Status.CanTransitionTo(target) {
		s.logger.Warn("[Service.UpdateStatus] Недопустимый переход: booking_id=%s, %s -> %s",
			bookingID, b.Status, target)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
	}

	patch := bookingstorage.UpdatePatch{
		Status:           ptr.Ptr(target),
		ClearMeetingLink: !target.KeepsMeetingLink(),
	}

	updated, err := s.bookingRepo.Update(ctx, bookingID, patch)
	if err != nil {
		s.logger.Error("[Service.UpdateStatus] Ошибка обновления: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info("[Service.UpdateStatus] Статус обновлён: booking_id=%s, %s -> %s", bookingID, b.Status, target)

	return updated, nil
}

// SetMeetingLink устанавливает ссылку на встречу. Разрешено только для
// активных статусов, иначе ссылка была бы немедленно очищена переходом.
func (s *Service) SetMeetingLink(ctx context.Context, bookingID string, link string) (*domain.Booking, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, fmt.Errorf("%w: meeting_link must not be blank", ErrInvalidInput)
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !b.Status.KeepsMeetingLink() {
		return nil, fmt.Errorf("%w: cannot attach meeting link in status %s", ErrInvalidTransition, b.Status)
	}

	updated, err := s.bookingRepo.Update(ctx, bookingID, bookingstorage.UpdatePatch{
		MeetingLink: ptr.Ptr(link),
	})
	if err != nil {
		s.logger.Error("[Service.SetMeetingLink] Ошибка обновления: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return updated, nil
}

// SetHostNotes сохраняет заметки ведущего (административная операция)
func (s *Service) SetHostNotes(ctx context.Context, bookingID string, notes string) (*domain.Booking, error) {
	if len(notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: host_notes exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if _, err := s.loadBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.Update(ctx, bookingID, bookingstorage.UpdatePatch{
		HostNotes: ptr.Ptr(notes),
	})
	if err != nil {
		s.logger.Error("[Service.SetHostNotes] Ошибка обновления: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return updated, nil
}

// Reschedule переносит бронирование на новый слот. Исходная запись остаётся
// в истории со статусом superseded, создаётся новая запись со ссылкой
// rescheduled_from на исходную. Оплата и анкета переносятся как есть.
func (s *Service) Reschedule(ctx context.Context, bookingID string, requesterID int64, newStart time.Time) (*domain.Booking, error) {
	original, err := s.GetByID(ctx, bookingID, requesterID)
	if err != nil {
		return nil, err
	}

	if !original.CanBeRescheduled() {
		s.logger.Warn("[Service.Reschedule] Перенос невозможен: booking_id=%s, status=%s", bookingID, original.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrCannotReschedule, original.Status)
	}

	week, rules, err := s.scheduleProvider.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrRulesNotConfigured) {
			return nil, ErrRulesNotConfigured
		}
		s.logger.Error("[Service.Reschedule] Ошибка получения конфигурации расписания: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	newEnd, err := s.validateNewSlot(newStart, week, rules)
	if err != nil {
		s.logger.Warn("[Service.Reschedule] Новый слот не прошёл проверку: booking_id=%s, start=%s, err=%v",
			bookingID, newStart.Format(time.RFC3339), err)
		return nil, err
	}

	replacement := &domain.Booking{
		ID:              s.idGenerator.NewID(),
		UserID:          original.UserID,
		SessionType:     original.SessionType,
		StartTime:       newStart,
		EndTime:         newEnd,
		ChildName:       original.ChildName,
		ChildAge:        original.ChildAge,
		Concerns:        original.Concerns,
		SpecialNotes:    original.SpecialNotes,
		AmountPaid:      original.AmountPaid,
		PaymentStatus:   original.PaymentStatus,
		PaymentID:       original.PaymentID,
		Status:          domain.StatusRescheduled,
		RescheduledFrom: ptr.Ptr(original.ID),
	}

	// Оба изменения атомарно: исходная запись освобождает слот (superseded)
	// тем же commit'ом, которым новая его занимает
	var created *domain.Booking
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		dayStart, dayEnd := dayBounds(newStart)

		existing, listErr := s.bookingRepo.List(txCtx, domain.BookingsFilter{
			StartDate:    &dayStart,
			EndDate:      &dayEnd,
			OnlyBlocking: true,
		})
		if listErr != nil {
			return fmt.Errorf("failed to list bookings for the day: %w", listErr)
		}

		for _, b := range existing {
			if b.ID == original.ID {
				continue
			}
			if b.Overlaps(replacement.StartTime, replacement.EndTime) {
				return ErrSlotNotAvailable
			}
		}

		// Сначала освобождаем исходный слот, чтобы exclusion constraint
		// позволял перенос в пересекающийся с исходным интервал
		if _, updErr := s.bookingRepo.Update(txCtx, original.ID, bookingstorage.UpdatePatch{
			Status:           ptr.Ptr(domain.StatusSuperseded),
			ClearMeetingLink: true,
		}); updErr != nil {
			return fmt.Errorf("failed to supersede original booking: %w", updErr)
		}

		var createErr error
		created, createErr = s.bookingRepo.Create(txCtx, replacement)
		if createErr != nil {
			if errors.Is(createErr, bookingstorage.ErrSlotTaken) {
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("failed to insert replacement booking: %w", createErr)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			return nil, ErrSlotNotAvailable
		}
		s.logger.Error("[Service.Reschedule] Ошибка транзакции: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info("[Service.Reschedule] Бронирование перенесено: old=%s, new=%s, start=%s",
		original.ID, created.ID, newStart.Format(time.RFC3339))

	return created, nil
}

func (s *Service) loadBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("%w: booking_id is required", ErrInvalidInput)
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingstorage.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("[Service.loadBooking] Ошибка получения бронирования: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return b, nil
}

// validateNewSlot проверяет новый слот переноса против правил и сетки дня
func (s *Service) validateNewSlot(
	start time.Time,
	week domain.WeekSchedule,
	rules *domain.SchedulingRules,
) (time.Time, error) {
	now := s.timeProvider.Now()
	end := start.Add(time.Duration(rules.SlotDurationMinutes) * time.Minute)

	if start.Before(now.Add(rules.MinNotice())) {
		return time.Time{}, fmt.Errorf("%w: minimum notice is %d hours", ErrSlotNotAvailable, rules.MinNoticeHours)
	}

	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, rules.MaxBookingDays+1)
	if !start.Before(maxDate) {
		return time.Time{}, fmt.Errorf("%w: beyond the booking horizon of %d days", ErrSlotNotAvailable, rules.MaxBookingDays)
	}

	hours := week.ForDate(start)
	if hours == nil || !hours.IsOpen() {
		return time.Time{}, fmt.Errorf("%w: the day is non-working", ErrSlotNotAvailable)
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
		return time.Time{}, fmt.Errorf("%w: outside working hours %s-%s", ErrSlotNotAvailable, hours.StartTime, hours.EndTime)
	}

	offset := start.Sub(windowStart)
	stride := time.Duration(rules.SlotStride()) * time.Minute
	if offset < 0 || offset%stride != 0 {
		return time.Time{}, fmt.Errorf("%w: start_time is not aligned to the slot grid", ErrSlotNotAvailable)
	}

	return end, nil
}

// dayBounds возвращает границы календарного дня [00:00, 24:00)
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
