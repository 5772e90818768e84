package update_booking_status

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

type BookingsService interface {
	UpdateStatus(ctx context.Context, bookingID string, target domain.BookingStatus) (*domain.Booking, error)
	SetMeetingLink(ctx context.Context, bookingID string, link string) (*domain.Booking, error)
	SetHostNotes(ctx context.Context, bookingID string, notes string) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
