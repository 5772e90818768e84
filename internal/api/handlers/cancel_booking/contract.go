package cancel_booking

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

type BookingsService interface {
	Cancel(ctx context.Context, bookingID string, requesterID int64) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
