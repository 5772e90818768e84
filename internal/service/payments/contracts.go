package payments

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	"github.com/toykraft/consult-booking-service/internal/integrations/paymentgateway"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, id string, patch bookingstorage.UpdatePatch) (*domain.Booking, error)
}

// GatewayClient интерфейс клиента платёжного провайдера
type GatewayClient interface {
	CreateCharge(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.Charge, error)
	GetCharge(ctx context.Context, chargeID string) (*paymentgateway.Charge, error)
}

// ReconciliationRepository интерфейс outbox-хранилища применения платежей
type ReconciliationRepository interface {
	Record(ctx context.Context, paymentID, bookingID string, amount float64) error
	MarkApplied(ctx context.Context, paymentID string) error
	MarkFailedAttempt(ctx context.Context, paymentID string, attemptErr error) error
}

// SalesRepository интерфейс хранилища sales transactions
type SalesRepository interface {
	GetByBookingID(ctx context.Context, bookingID string) (*domain.SalesTransaction, error)
	UpdatePaymentStatus(ctx context.Context, bookingID string, status domain.PaymentStatus) error
}

// PaymentApplier применяет успешный платёж к бронированию
// (переход payment_status + запись продаж атомарно)
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, bookingID, paymentID string, amount float64) (*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
