package get_user_bookings

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

type BookingsService interface {
	GetUserBookings(ctx context.Context, userID int64, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
