package bookings

import (
	"context"
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	Update(ctx context.Context, id string, patch bookingstorage.UpdatePatch) (*domain.Booking, error)
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
