package initiate_payment

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/service/payments"
)

type PaymentsService interface {
	Initiate(ctx context.Context, bookingID string, requesterID int64, amount float64) (*payments.InitiateResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
