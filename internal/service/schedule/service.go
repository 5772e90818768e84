package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/toykraft/consult-booking-service/internal/domain"
	scheduleRepo "github.com/toykraft/consult-booking-service/internal/infra/storage/schedule"
	"github.com/toykraft/consult-booking-service/internal/service/schedule/models"
)

// Service сервис конфигурации расписания.
// Конфигурация читается на каждый запрос доступности, а меняется редко,
// поэтому держим её в памяти и сбрасываем кеш при административной записи.
type Service struct {
	repo   ScheduleRepository
	logger Logger

	mu          sync.RWMutex
	cachedWeek  domain.WeekSchedule
	cachedRules *domain.SchedulingRules
	cacheValid  bool
}

// NewService создает новый экземпляр сервиса расписания
func NewService(repo ScheduleRepository, logger Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Snapshot возвращает текущее расписание и правила планирования из кеша.
// Первый вызов (или вызов после Invalidate) загружает данные из БД.
// Возвращает ErrRulesNotConfigured, если singleton правил отсутствует.
func (s *Service) Snapshot(ctx context.Context) (domain.WeekSchedule, *domain.SchedulingRules, error) {
	s.mu.RLock()
	if s.cacheValid {
		week, rules := s.cachedWeek, s.cachedRules
		s.mu.RUnlock()
		return week, rules, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Повторная проверка: другой запрос мог загрузить кеш, пока мы ждали lock
	if s.cacheValid {
		return s.cachedWeek, s.cachedRules, nil
	}

	week, err := s.repo.GetWeekSchedule(ctx)
	if err != nil {
		s.logger.Error("Snapshot: failed to load week schedule: %v", err)
		return nil, nil, fmt.Errorf("%w: failed to load week schedule: %v", ErrInternal, err)
	}

	rules, err := s.repo.GetRules(ctx)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrRulesNotFound) {
			s.logger.Warn("Snapshot: scheduling rules are not configured")
			return nil, nil, ErrRulesNotConfigured
		}
		s.logger.Error("Snapshot: failed to load scheduling rules: %v", err)
		return nil, nil, fmt.Errorf("%w: failed to load scheduling rules: %v", ErrInternal, err)
	}

	s.cachedWeek = week
	s.cachedRules = rules
	s.cacheValid = true

	s.logger.Info("Snapshot: schedule cache loaded (%d days, slot=%dmin, buffer=%dmin, notice=%dh, horizon=%dd)",
		len(week), rules.SlotDurationMinutes, rules.BufferMinutes, rules.MinNoticeHours, rules.MaxBookingDays)

	return week, rules, nil
}

// Invalidate сбрасывает кеш; следующий Snapshot перечитает БД
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheValid = false
}

// GetSchedule возвращает полную конфигурацию расписания для API.
// Отсутствие правил здесь не ошибка: админка должна видеть пустую конфигурацию.
func (s *Service) GetSchedule(ctx context.Context) (*models.ScheduleResponse, error) {
	week, err := s.repo.GetWeekSchedule(ctx)
	if err != nil {
		s.logger.Error("GetSchedule: failed to load week schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to load week schedule: %v", ErrInternal, err)
	}

	rules, err := s.repo.GetRules(ctx)
	if err != nil && !errors.Is(err, scheduleRepo.ErrRulesNotFound) {
		s.logger.Error("GetSchedule: failed to load scheduling rules: %v", err)
		return nil, fmt.Errorf("%w: failed to load scheduling rules: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(week, rules), nil
}

// UpdateWorkingHours обновляет рабочие часы перечисленных дней недели
func (s *Service) UpdateWorkingHours(ctx context.Context, req *models.UpdateWorkingHoursRequest) (*models.ScheduleResponse, error) {
	if len(req.Days) == 0 {
		return nil, fmt.Errorf("%w: at least one day is required", ErrInvalidInput)
	}

	seen := make(map[int]bool, len(req.Days))
	for _, day := range req.Days {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: dayOfWeek must be in [0, 6], got %d", ErrInvalidInput, day.DayOfWeek)
		}
		if seen[day.DayOfWeek] {
			return nil, fmt.Errorf("%w: duplicate dayOfWeek %d", ErrInvalidInput, day.DayOfWeek)
		}
		seen[day.DayOfWeek] = true

		if err := validateDayHours(&day); err != nil {
			return nil, err
		}
	}

	for _, day := range req.Days {
		wh, err := day.ToDomainWorkingHours()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		if _, err := s.repo.UpsertWorkingHours(ctx, wh); err != nil {
			s.logger.Error("UpdateWorkingHours: failed to upsert day=%d: %v", day.DayOfWeek, err)
			return nil, fmt.Errorf("%w: failed to upsert working hours: %v", ErrInternal, err)
		}
	}

	s.Invalidate()
	s.logger.Info("UpdateWorkingHours: updated %d days, schedule cache invalidated", len(req.Days))

	return s.GetSchedule(ctx)
}

// UpdateRules обновляет singleton правил планирования
func (s *Service) UpdateRules(ctx context.Context, req *models.UpdateRulesRequest) (*models.ScheduleResponse, error) {
	if err := validateRules(req); err != nil {
		return nil, err
	}

	rules := &domain.SchedulingRules{
		MinNoticeHours:      req.MinNoticeHours,
		MaxBookingDays:      req.MaxBookingDays,
		BufferMinutes:       req.BufferMinutes,
		SlotDurationMinutes: req.SlotDurationMinutes,
	}

	if _, err := s.repo.UpsertRules(ctx, rules); err != nil {
		s.logger.Error("UpdateRules: failed to upsert rules: %v", err)
		return nil, fmt.Errorf("%w: failed to upsert rules: %v", ErrInternal, err)
	}

	s.Invalidate()
	s.logger.Info("UpdateRules: rules updated (slot=%dmin, buffer=%dmin, notice=%dh, horizon=%dd), schedule cache invalidated",
		req.SlotDurationMinutes, req.BufferMinutes, req.MinNoticeHours, req.MaxBookingDays)

	return s.GetSchedule(ctx)
}

// validateDayHours проверяет рабочие часы одного дня
func validateDayHours(day *models.DayHoursRequest) error {
	if !day.IsAvailable {
		return nil
	}

	if day.StartTime == "" || day.EndTime == "" {
		return fmt.Errorf("%w: available day %d requires startTime and endTime", ErrInvalidInput, day.DayOfWeek)
	}

	wh, err := day.ToDomainWorkingHours()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if !wh.StartTime.IsBefore(wh.EndTime) {
		return fmt.Errorf("%w: day %d: %s >= %s", ErrInvalidTimeWindow, day.DayOfWeek, day.StartTime, day.EndTime)
	}

	return nil
}

// validateRules проверяет границы значений правил планирования
func validateRules(req *models.UpdateRulesRequest) error {
	if req.SlotDurationMinutes < domain.MinSlotDurationMinutes || req.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slotDurationMinutes must be in [%d, %d]",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}
	if req.BufferMinutes < domain.MinBufferMinutes || req.BufferMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: bufferMinutes must be in [%d, %d]",
			ErrInvalidInput, domain.MinBufferMinutes, domain.MaxBufferMinutes)
	}
	if req.MinNoticeHours < domain.MinNoticeHoursLimit || req.MinNoticeHours > domain.MaxNoticeHoursLimit {
		return fmt.Errorf("%w: minNoticeHours must be in [%d, %d]",
			ErrInvalidInput, domain.MinNoticeHoursLimit, domain.MaxNoticeHoursLimit)
	}
	if req.MaxBookingDays < domain.MinBookingDaysLimit || req.MaxBookingDays > domain.MaxBookingDaysLimit {
		return fmt.Errorf("%w: maxBookingDays must be in [%d, %d]",
			ErrInvalidInput, domain.MinBookingDaysLimit, domain.MaxBookingDaysLimit)
	}
	return nil
}
