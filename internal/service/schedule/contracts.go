package schedule

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// ScheduleRepository интерфейс репозитория конфигурации расписания
type ScheduleRepository interface {
	GetWeekSchedule(ctx context.Context) (domain.WeekSchedule, error)
	UpsertWorkingHours(ctx context.Context, wh *domain.WorkingHours) (*domain.WorkingHours, error)
	GetRules(ctx context.Context) (*domain.SchedulingRules, error)
	UpsertRules(ctx context.Context, rules *domain.SchedulingRules) (*domain.SchedulingRules, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
