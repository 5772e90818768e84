package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// ScheduleProvider интерфейс кешированной конфигурации расписания
type ScheduleProvider interface {
	Snapshot(ctx context.Context) (domain.WeekSchedule, *domain.SchedulingRules, error)
}

// TxManager интерфейс для управления транзакциями
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// IDGenerator интерфейс генерации идентификаторов бронирований
type IDGenerator interface {
	NewID() string
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// UUIDGenerator production-генератор идентификаторов
type UUIDGenerator struct{}

// NewID возвращает новый UUIDv4
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
