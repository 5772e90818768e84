package payment_webhook

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

type PaymentsService interface {
	HandleSuccess(ctx context.Context, paymentID, bookingID string, amount float64) (*domain.Booking, error)
	HandleFailure(ctx context.Context, paymentID, bookingID, reason string) error
	HandleRefund(ctx context.Context, paymentID, bookingID string) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
