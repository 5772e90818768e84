package reschedule_booking

import (
	"context"
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

type BookingsService interface {
	Reschedule(ctx context.Context, bookingID string, requesterID int64, newStart time.Time) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
