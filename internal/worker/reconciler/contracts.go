package reconciler

import (
	"context"
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	reconstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/reconciliation"
	"github.com/toykraft/consult-booking-service/internal/integrations/paymentgateway"
)

// ReconciliationRepository интерфейс outbox-хранилища применения платежей
type ReconciliationRepository interface {
	ListPending(ctx context.Context, limit int) ([]*reconstorage.Entry, error)
	MarkApplied(ctx context.Context, paymentID string) error
	MarkFailedAttempt(ctx context.Context, paymentID string, attemptErr error) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListStalePendingPayments(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Booking, error)
	Update(ctx context.Context, id string, patch bookingstorage.UpdatePatch) (*domain.Booking, error)
}

// GatewayClient интерфейс клиента платёжного провайдера
type GatewayClient interface {
	GetCharge(ctx context.Context, chargeID string) (*paymentgateway.Charge, error)
}

// PaymentApplier применяет успешный платёж к бронированию
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, bookingID, paymentID string, amount float64) (*domain.Booking, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
