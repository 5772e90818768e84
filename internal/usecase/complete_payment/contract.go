package complete_payment

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, id string, patch bookingstorage.UpdatePatch) (*domain.Booking, error)
}

// SalesRepository интерфейс репозитория транзакций продаж
type SalesRepository interface {
	Create(ctx context.Context, tx *domain.SalesTransaction) (*domain.SalesTransaction, error)
}

// TxManager интерфейс для управления транзакциями
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
